package feeder

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/WholesumNet/block-feeder/internal/blobsource"
	"github.com/WholesumNet/block-feeder/internal/logstore"
	"github.com/WholesumNet/block-feeder/internal/metrics"
	logpkg "github.com/WholesumNet/block-feeder/pkg/log"
)

// Summary describes one write pass.
type Summary struct {
	Blocks  int
	Entries int
	Bytes   int64
}

// Producer writes every payload found by Locator to Store.
type Producer struct {
	Store   logstore.Store
	Locator *blobsource.Locator
	// Out receives one progress line per block. Optional.
	Out     io.Writer
	Logger  logpkg.Logger
	Metrics *metrics.Registry
}

// Run resets the log and appends all payloads in block order. Entries
// appended before a failure stay in the log.
func (p *Producer) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	logger := p.logger()
	out := p.Out
	if out == nil {
		out = io.Discard
	}
	start := time.Now()
	defer func() {
		if p.Metrics != nil {
			p.Metrics.PassDuration.WithLabelValues("write").Observe(time.Since(start).Seconds())
		}
	}()

	if err := p.Store.Reset(ctx); err != nil {
		return sum, err
	}
	logger.Debug("log reset", logpkg.Str("stream", p.Store.Name()))

	// Walk a copy so the caller's locator keeps its own hook.
	loc := *p.Locator
	var cur blobsource.Block
	loc.OnBlock = func(b blobsource.Block) {
		cur = b
		fmt.Fprintf(out, "block: %d: ", b.Number)
		if p.Locator.OnBlock != nil {
			p.Locator.OnBlock(b)
		}
	}
	err := loc.Walk(ctx, func(it blobsource.Item) error {
		last := it.Key == cur.AggregateKey()
		if last {
			fmt.Fprintf(out, "%d\n", len(it.Payload))
		} else {
			fmt.Fprintf(out, "%d, ", len(it.Payload))
		}
		if _, err := p.Store.Append(ctx, logstore.Field{Name: it.Key.String(), Value: it.Payload}); err != nil {
			return err
		}
		sum.Entries++
		sum.Bytes += int64(len(it.Payload))
		if p.Metrics != nil {
			p.Metrics.EntriesAppended.Inc()
			p.Metrics.PayloadBytes.Add(float64(len(it.Payload)))
		}
		if !last {
			return nil
		}
		sum.Blocks++
		if p.Metrics != nil {
			p.Metrics.BlocksWritten.Inc()
		}
		logger.Debug("block appended",
			logpkg.Uint64("block", cur.Number),
			logpkg.Int("subblocks", cur.NumSubblocks))
		return nil
	})
	if err != nil {
		return sum, err
	}
	logger.Info("write pass complete",
		logpkg.Int("blocks", sum.Blocks),
		logpkg.Int("entries", sum.Entries),
		logpkg.Int64("bytes", sum.Bytes))
	return sum, nil
}

func (p *Producer) logger() logpkg.Logger {
	if p.Logger == nil {
		return logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	return p.Logger.With(logpkg.Component("producer"))
}
