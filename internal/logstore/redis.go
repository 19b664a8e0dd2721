package logstore

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"github.com/WholesumNet/block-feeder/internal/fault"
)

// DefaultRedisURL is the local endpoint used when none is configured.
const DefaultRedisURL = "redis://127.0.0.1:6379/"

// RedisStore is a Store over a Redis stream. Entry ids are the server's
// "{ms}-{seq}" stream ids.
type RedisStore struct {
	client *redis.Client
	stream string
}

var _ Store = (*RedisStore)(nil)

// DialRedis connects to url and verifies the server answers.
func DialRedis(ctx context.Context, url, stream string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fault.Configuration(err, "redis url %q", url)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fault.Connection(err, "connect to %s", opts.Addr)
	}
	return NewRedisStore(client, stream), nil
}

// NewRedisStore wraps an existing client. Close closes the client.
func NewRedisStore(client *redis.Client, stream string) *RedisStore {
	return &RedisStore{client: client, stream: stream}
}

func (s *RedisStore) Name() string { return s.stream }

func (s *RedisStore) cursorKey(group string) string {
	return s.stream + ":cursor:" + group
}

func (s *RedisStore) Reset(ctx context.Context) error {
	if err := s.client.Del(ctx, s.stream).Err(); err != nil {
		return fault.Truncation(err, "DEL %s", s.stream)
	}
	return nil
}

func (s *RedisStore) Append(ctx context.Context, fields ...Field) (string, error) {
	values := make([]interface{}, 0, 2*len(fields))
	for _, f := range fields {
		values = append(values, f.Name, f.Value)
	}
	id, err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		ID:     "*",
		Values: values,
	}).Result()
	if err != nil {
		return "", fault.Connection(err, "XADD %s", s.stream)
	}
	return id, nil
}

// Read issues XREAD BLOCK 0 on a dedicated connection. The connection is
// closed when ctx ends, which is what releases a read blocked on an empty
// stream.
func (s *RedisStore) Read(ctx context.Context, after string, limit int) ([]Entry, error) {
	start := after
	if start == "" {
		start = "0"
	}
	conn := s.client.Conn()
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	streams, err := conn.XRead(ctx, &redis.XReadArgs{
		Streams: []string{s.stream, start},
		Count:   int64(limit),
		Block:   0,
	}).Result()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, fault.Connection(err, "XREAD %s", s.stream)
	}
	var entries []Entry
	for _, st := range streams {
		if st.Stream != s.stream {
			return nil, fault.Protocol(nil, "XREAD returned stream %q", st.Stream)
		}
		for _, msg := range st.Messages {
			e, err := entryFromMessage(msg)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// entryFromMessage converts a stream message. go-redis hands fields back as a
// map, so names are sorted to keep the result deterministic.
func entryFromMessage(msg redis.XMessage) (Entry, error) {
	names := make([]string, 0, len(msg.Values))
	for name := range msg.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	e := Entry{ID: msg.ID, Fields: make([]Field, 0, len(names))}
	for _, name := range names {
		switch v := msg.Values[name].(type) {
		case string:
			e.Fields = append(e.Fields, Field{Name: name, Value: []byte(v)})
		case []byte:
			e.Fields = append(e.Fields, Field{Name: name, Value: v})
		default:
			return Entry{}, fault.Protocol(nil, "entry %s field %q has type %T", msg.ID, name, v)
		}
	}
	return e, nil
}

func (s *RedisStore) Len(ctx context.Context) (int64, error) {
	n, err := s.client.XLen(ctx, s.stream).Result()
	if err != nil {
		return 0, fault.Connection(err, "XLEN %s", s.stream)
	}
	return n, nil
}

func (s *RedisStore) LoadCursor(ctx context.Context, group string) (string, bool, error) {
	id, err := s.client.Get(ctx, s.cursorKey(group)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fault.Connection(err, "load cursor %s", group)
	}
	return id, true, nil
}

// CommitCursor stores id unless the stored cursor is already at or past it.
func (s *RedisStore) CommitCursor(ctx context.Context, group, id string) error {
	next, err := parseStreamID(id)
	if err != nil {
		return err
	}
	prev, ok, err := s.LoadCursor(ctx, group)
	if err != nil {
		return err
	}
	if ok {
		if p, err := parseStreamID(prev); err == nil && !p.less(next) {
			return nil
		}
	}
	if err := s.client.Set(ctx, s.cursorKey(group), id, 0).Err(); err != nil {
		return fault.Connection(err, "commit cursor %s", group)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

type streamID struct{ ms, seq uint64 }

func (a streamID) less(b streamID) bool {
	if a.ms != b.ms {
		return a.ms < b.ms
	}
	return a.seq < b.seq
}

func parseStreamID(id string) (streamID, error) {
	msPart, seqPart, found := strings.Cut(id, "-")
	ms, err := strconv.ParseUint(msPart, 10, 64)
	if err != nil {
		return streamID{}, fault.Protocol(err, "stream id %q", id)
	}
	if !found {
		return streamID{ms: ms}, nil
	}
	seq, err := strconv.ParseUint(seqPart, 10, 64)
	if err != nil {
		return streamID{}, fault.Protocol(err, "stream id %q", id)
	}
	return streamID{ms: ms, seq: seq}, nil
}
