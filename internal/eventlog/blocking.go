package eventlog

import (
	"context"
)

// waitCh returns the channel closed by the next Append.
func (l *Log) waitCh() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.notifyCh
}

// ReadBlocking is Read that waits, with no timeout, until at least one item at
// or after opts.Start exists. Only ctx or a read error ends the wait.
func (l *Log) ReadBlocking(ctx context.Context, opts ReadOptions) ([]Item, Token, error) {
	for {
		// Take the wake channel before reading so an append that lands
		// between the read and the wait is not missed.
		ch := l.waitCh()
		items, next, err := l.Read(opts)
		if err != nil {
			return nil, Token{}, err
		}
		if len(items) > 0 {
			return items, next, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return nil, Token{}, ctx.Err()
		}
	}
}
