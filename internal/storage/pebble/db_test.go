package pebblestore

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/pebble"

	logpkg "github.com/WholesumNet/block-feeder/pkg/log"
)

type testMetrics struct {
	wrote        int
	read         int
	batchCommits int
	batchOps     int
	batchBytes   int
}

func (m *testMetrics) ObserveWrite(d time.Duration, bytes int) { m.wrote += bytes }
func (m *testMetrics) ObserveRead(d time.Duration, bytes int)  { m.read += bytes }
func (m *testMetrics) ObserveBatchCommit(d time.Duration, numOps int, bytes int) {
	m.batchCommits++
	m.batchOps += numOps
	m.batchBytes += bytes
}

func newTestDB(t *testing.T) (*DB, *testMetrics) {
	t.Helper()
	dir := t.TempDir()
	metrics := &testMetrics{}
	db, err := Open(Options{
		DataDir:       dir,
		Fsync:         FsyncModeInterval,
		FsyncInterval: 2 * time.Millisecond,
		Metrics:       metrics,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, metrics
}

func TestOpenRequiresDataDir(t *testing.T) {
	if _, err := Open(Options{}); err == nil {
		t.Fatalf("expected error without DataDir")
	}
}

func TestCRUD(t *testing.T) {
	db, metrics := newTestDB(t)

	key := []byte("k1")
	val := []byte("v1")
	if err := db.Set(key, val); err != nil {
		t.Fatalf("set: %v", err)
	}
	if metrics.wrote != len(key)+len(val) {
		t.Fatalf("write metrics: got %d", metrics.wrote)
	}

	got, err := db.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != string(val) {
		t.Fatalf("got %q want %q", got, val)
	}
	if metrics.read == 0 {
		t.Fatalf("expected read metrics to record bytes")
	}

	if _, err := db.Get([]byte("missing")); !errors.Is(err, pebble.ErrNotFound) {
		t.Fatalf("expected not found for missing key, got %v", err)
	}
}

func TestBatchCommitMetrics(t *testing.T) {
	db, metrics := newTestDB(t)

	b := db.NewBatch()
	if err := b.Set([]byte("a"), []byte("1"), nil); err != nil {
		t.Fatalf("batch set: %v", err)
	}
	if err := b.Set([]byte("b"), []byte("2"), nil); err != nil {
		t.Fatalf("batch set: %v", err)
	}
	if err := db.CommitBatch(context.Background(), b); err != nil {
		t.Fatalf("commit: %v", err)
	}
	b.Close()

	if metrics.batchCommits != 1 {
		t.Fatalf("want 1 batch commit, got %d", metrics.batchCommits)
	}
	if metrics.batchOps != 2 {
		t.Fatalf("want 2 batch ops, got %d", metrics.batchOps)
	}
	if metrics.batchBytes <= 0 {
		t.Fatalf("expected positive batch bytes")
	}
}

func TestCommitBatchCancelled(t *testing.T) {
	db, _ := newTestDB(t)
	b := db.NewBatch()
	defer b.Close()
	_ = b.Set([]byte("a"), []byte("1"), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := db.CommitBatch(ctx, b); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if _, err := db.Get([]byte("a")); err == nil {
		t.Fatalf("cancelled batch must not be applied")
	}
}

func TestParseFsyncMode(t *testing.T) {
	for in, want := range map[string]FsyncMode{
		"always":   FsyncModeAlways,
		"interval": FsyncModeInterval,
		"never":    FsyncModeNever,
	} {
		got, err := ParseFsyncMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseFsyncMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFsyncMode("sometimes"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPebbleLoggerAdapter(t *testing.T) {
	var buf bytes.Buffer
	l := logpkg.NewLogger(
		logpkg.WithFormatter(&logpkg.TextFormatter{DisableTimestamp: true}),
		logpkg.WithOutput(logpkg.NewWriterOutput(&buf)),
	)
	pebbleLogger{l}.Infof("opened %d tables", 3)
	if !strings.Contains(buf.String(), "opened 3 tables") {
		t.Fatalf("unexpected log output %q", buf.String())
	}
}
