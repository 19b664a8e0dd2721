package eventlog

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"

	"github.com/cockroachdb/pebble"

	pebblestore "github.com/WholesumNet/block-feeder/internal/storage/pebble"
)

// AppendRecord represents a single appendable record.
type AppendRecord struct {
	Header  []byte
	Payload []byte
}

// Log provides append-only operations for one named stream.
type Log struct {
	db     *pebblestore.DB
	stream string

	mu       sync.Mutex
	lastSeq  uint64
	notifyCh chan struct{}
}

// OpenLog initializes a Log and loads the last sequence from metadata (if any).
func OpenLog(db *pebblestore.DB, stream string) (*Log, error) {
	if stream == "" {
		return nil, errors.New("eventlog: empty stream name")
	}
	l := &Log{db: db, stream: stream, notifyCh: make(chan struct{})}
	meta, err := db.Get(KeyLogMeta(stream))
	if err == nil && len(meta) >= 8 {
		l.lastSeq = binary.BigEndian.Uint64(meta[:8])
	}
	return l, nil
}

// Stream returns the stream name.
func (l *Log) Stream() string { return l.stream }

// Append appends the provided records as a single atomic batch. Returns assigned seq numbers.
func (l *Log) Append(ctx context.Context, recs []AppendRecord) ([]uint64, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.db.NewBatch()
	defer b.Close()

	next := l.lastSeq
	seqs := make([]uint64, len(recs))
	for i, r := range recs {
		next++
		val := EncodeRecord(r.Header, r.Payload)
		if err := b.Set(KeyLogEntry(l.stream, next), val, nil); err != nil {
			return nil, err
		}
		seqs[i] = next
	}

	var meta [8]byte
	binary.BigEndian.PutUint64(meta[:], next)
	if err := b.Set(KeyLogMeta(l.stream), meta[:], nil); err != nil {
		return nil, err
	}

	if err := l.db.CommitBatch(ctx, b); err != nil {
		return nil, err
	}
	l.lastSeq = next
	// wake waiters
	close(l.notifyCh)
	l.notifyCh = make(chan struct{})
	return seqs, nil
}

// Reset deletes every entry of the stream in one batch. The sequence counter
// and reader cursors are kept, so ids assigned after a reset are still larger
// than any id handed out before it.
func (l *Log) Reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.db.NewBatch()
	defer b.Close()
	low, high := entryBounds(l.stream)
	if err := b.DeleteRange(low, high, nil); err != nil {
		return err
	}
	return l.db.CommitBatch(ctx, b)
}

// Stats reports the first and last live sequence, the number of entries and
// their encoded size. An empty stream reports zeros.
func (l *Log) Stats() (first, last, count uint64, bytes int64, err error) {
	low, high := entryBounds(l.stream)
	iter, err := l.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: high})
	if err != nil {
		return 0, 0, 0, 0, err
	}
	defer iter.Close()
	for ok := iter.First(); ok; ok = iter.Next() {
		seq := seqFromKey(iter.Key())
		if count == 0 {
			first = seq
		}
		last = seq
		count++
		bytes += int64(len(iter.Value()))
	}
	return first, last, count, bytes, iter.Error()
}
