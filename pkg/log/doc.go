// Package log provides block-feeder's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. Records flow through log/slog into a
// bridge handler that applies our formatter and outputs, so the facade and
// any slog-aware library end up on the same stream.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("producer"), log.Str("stream", "blocks"))
//	l.Info("pass started", log.Int("blocks", 12))
//
// # Configuration
//
// ApplyConfig builds a logger from a declarative Config (level and text/json
// format). ParseLevel accepts debug|info|warn|error|fatal.
//
// # Interop
//
// RedirectStdLog routes the standard library logger (used by Pebble's default
// logger) through a Logger.
package log
