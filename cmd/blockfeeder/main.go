package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cmdpkg "github.com/WholesumNet/block-feeder/internal/cmd/blockfeeder"
	"github.com/WholesumNet/block-feeder/internal/fault"
	logpkg "github.com/WholesumNet/block-feeder/pkg/log"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmdpkg.NewRoot().ExecuteContext(ctx); err != nil {
		// The command's own logger may not exist yet (flag or config errors).
		logger := logpkg.NewLogger(
			logpkg.WithFormatter(&logpkg.TextFormatter{}),
			logpkg.WithOutput(logpkg.NewConsoleOutput()),
		)
		logger.Error("blockfeeder failed", logpkg.Str("kind", fault.Kind(err)), logpkg.Err(err))
		cancel()
		os.Exit(1)
	}
}
