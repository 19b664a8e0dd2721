package feeder

import (
	"context"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/WholesumNet/block-feeder/internal/blockkey"
	"github.com/WholesumNet/block-feeder/internal/fault"
	"github.com/WholesumNet/block-feeder/internal/logstore"
	"github.com/WholesumNet/block-feeder/internal/metrics"
	logpkg "github.com/WholesumNet/block-feeder/pkg/log"
)

// Report is one decoded entry.
type Report struct {
	ID     string
	Key    blockkey.Key
	Length int
}

// Consumer replays entries from Store.
type Consumer struct {
	Store logstore.Store
	// Out receives one `"{key}": {length}` line per reported entry. Optional.
	Out     io.Writer
	Logger  logpkg.Logger
	Metrics *metrics.Registry

	// Group, when set, resumes after the group's committed cursor and
	// commits the last delivered id.
	Group string
	// Limit caps the entries of one read; 0 reads everything available.
	Limit int
	// Filter drops entries it does not match. Optional.
	Filter *Filter
}

// ReadOnce blocks until at least one entry after the id after exists (the
// whole log when after is empty), then decodes and reports that batch. It
// returns the reports in arrival order and the id of the last entry read,
// including entries the filter dropped.
func (c *Consumer) ReadOnce(ctx context.Context, after string) ([]Report, string, error) {
	start := time.Now()
	entries, err := c.Store.Read(ctx, after, c.Limit)
	if err != nil {
		return nil, after, err
	}
	out := c.Out
	if out == nil {
		out = io.Discard
	}
	reports := make([]Report, 0, len(entries))
	last := after
	for _, e := range entries {
		key, payload, err := decodeEntry(e)
		if err != nil {
			return reports, last, err
		}
		last = e.ID
		if c.Metrics != nil {
			c.Metrics.EntriesRead.Inc()
		}
		if !c.Filter.Match(key, payload) {
			continue
		}
		fmt.Fprintf(out, "%q: %d\n", key.String(), len(payload))
		reports = append(reports, Report{ID: e.ID, Key: key, Length: len(payload)})
	}
	if c.Metrics != nil {
		c.Metrics.PassDuration.WithLabelValues("read").Observe(time.Since(start).Seconds())
	}
	c.logger().Debug("batch read",
		logpkg.Int("entries", len(entries)),
		logpkg.Int("reported", len(reports)),
		logpkg.Str("last_id", last))
	return reports, last, nil
}

// Run performs one read. Without a group it starts at the beginning of the
// log; with one it resumes after the committed cursor and commits the last id
// read.
func (c *Consumer) Run(ctx context.Context) ([]Report, error) {
	after, err := c.resume(ctx)
	if err != nil {
		return nil, err
	}
	reports, last, err := c.ReadOnce(ctx, after)
	if err != nil {
		return reports, err
	}
	return reports, c.commit(ctx, after, last)
}

// Follow reads batch after batch until ctx ends, committing the cursor after
// each batch when a group is set. It returns nil when ctx is cancelled.
func (c *Consumer) Follow(ctx context.Context) error {
	after, err := c.resume(ctx)
	if err != nil {
		return err
	}
	for {
		_, last, err := c.ReadOnce(ctx, after)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := c.commit(ctx, after, last); err != nil {
			return err
		}
		after = last
	}
}

func (c *Consumer) resume(ctx context.Context) (string, error) {
	if c.Group == "" {
		return "", nil
	}
	id, ok, err := c.Store.LoadCursor(ctx, c.Group)
	if err != nil {
		return "", err
	}
	if ok {
		c.logger().Info("resuming", logpkg.Str("group", c.Group), logpkg.Str("after", id))
	}
	return id, nil
}

func (c *Consumer) commit(ctx context.Context, prev, last string) error {
	if c.Group == "" || last == prev {
		return nil
	}
	return c.Store.CommitCursor(ctx, c.Group, last)
}

func (c *Consumer) logger() logpkg.Logger {
	if c.Logger == nil {
		return logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	return c.Logger.With(logpkg.Component("consumer"))
}

// decodeEntry checks the single-field shape and parses the field name.
func decodeEntry(e logstore.Entry) (blockkey.Key, []byte, error) {
	if len(e.Fields) != 1 {
		return blockkey.Key{}, nil, fault.Protocol(nil, "entry %s has %d fields, want 1", e.ID, len(e.Fields))
	}
	f := e.Fields[0]
	if !utf8.ValidString(f.Name) {
		return blockkey.Key{}, nil, fault.Protocol(nil, "entry %s key is not valid UTF-8", e.ID)
	}
	key, err := blockkey.Parse(f.Name)
	if err != nil {
		return blockkey.Key{}, nil, fault.Protocol(err, "entry %s", e.ID)
	}
	return key, f.Value, nil
}
