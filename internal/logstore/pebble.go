package logstore

import (
	"context"
	"strconv"

	"github.com/WholesumNet/block-feeder/internal/eventlog"
	"github.com/WholesumNet/block-feeder/internal/fault"
)

// PebbleStore is a Store over an embedded event log. Entry ids are the
// decimal sequence numbers assigned by the log.
type PebbleStore struct {
	log   *eventlog.Log
	close func() error
}

var _ Store = (*PebbleStore)(nil)

// NewPebbleStore wraps l. closeFn, when non-nil, is called by Close to release
// the database that owns l.
func NewPebbleStore(l *eventlog.Log, closeFn func() error) *PebbleStore {
	return &PebbleStore{log: l, close: closeFn}
}

func (s *PebbleStore) Name() string { return s.log.Stream() }

func (s *PebbleStore) Reset(ctx context.Context) error {
	if err := s.log.Reset(ctx); err != nil {
		return fault.Truncation(err, "reset stream %s", s.Name())
	}
	return nil
}

func (s *PebbleStore) Append(ctx context.Context, fields ...Field) (string, error) {
	header, payload := encodeFields(fields)
	seqs, err := s.log.Append(ctx, []eventlog.AppendRecord{{Header: header, Payload: payload}})
	if err != nil {
		return "", fault.Connection(err, "append to stream %s", s.Name())
	}
	return strconv.FormatUint(seqs[0], 10), nil
}

func (s *PebbleStore) Read(ctx context.Context, after string, limit int) ([]Entry, error) {
	var start eventlog.Token
	if after != "" {
		seq, err := parseSeq(after)
		if err != nil {
			return nil, err
		}
		start = eventlog.TokenFromSeq(seq + 1)
	}
	items, _, err := s.log.ReadBlocking(ctx, eventlog.ReadOptions{Start: start, Limit: limit})
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(items))
	for _, it := range items {
		fields, err := decodeFields(it.Header, it.Payload)
		if err != nil {
			return nil, fault.Protocol(err, "entry %d", it.Seq)
		}
		entries = append(entries, Entry{ID: strconv.FormatUint(it.Seq, 10), Fields: fields})
	}
	return entries, nil
}

func (s *PebbleStore) Len(ctx context.Context) (int64, error) {
	_, _, count, _, err := s.log.Stats()
	if err != nil {
		return 0, fault.Connection(err, "stat stream %s", s.Name())
	}
	return int64(count), nil
}

func (s *PebbleStore) LoadCursor(_ context.Context, group string) (string, bool, error) {
	tok, ok := s.log.GetCursor(group)
	if !ok {
		return "", false, nil
	}
	return strconv.FormatUint(tok.Seq(), 10), true, nil
}

func (s *PebbleStore) CommitCursor(_ context.Context, group, id string) error {
	seq, err := parseSeq(id)
	if err != nil {
		return err
	}
	if err := s.log.CommitCursor(group, eventlog.TokenFromSeq(seq)); err != nil {
		return fault.Connection(err, "commit cursor %s", group)
	}
	return nil
}

func (s *PebbleStore) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

func parseSeq(id string) (uint64, error) {
	seq, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0, fault.Protocol(err, "entry id %q", id)
	}
	return seq, nil
}
