package log

import (
	"bufio"
	"fmt"
	"io"
	stdlog "log"
	"strings"
)

// Config declares how to build a Logger.
type Config struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	// Output is "stderr" (default) or "null".
	Output string `json:"output"`
}

// ApplyConfig builds a Logger from cfg.
func ApplyConfig(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	level := InfoLevel
	if cfg.Level != "" {
		l, err := ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		level = l
	}
	var formatter Formatter
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		formatter = &TextFormatter{}
	case "json":
		formatter = &JSONFormatter{}
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	var output Output
	switch strings.ToLower(cfg.Output) {
	case "", "stderr", "console":
		output = NewConsoleOutput()
	case "null", "none":
		output = NullOutput{}
	default:
		return nil, fmt.Errorf("unknown log output %q", cfg.Output)
	}
	return NewLogger(WithLevel(level), WithFormatter(formatter), WithOutput(output)), nil
}

// RedirectStdLog sends output of the standard library logger through l at
// info level.
func RedirectStdLog(l Logger) {
	stdlog.SetFlags(0)
	stdlog.SetPrefix("")
	stdlog.SetOutput(&stdWriter{logger: l.With(Component("stdlog"))})
}

// ToStdLogger returns a *log.Logger whose lines are logged through l.
func ToStdLogger(l Logger) *stdlog.Logger {
	return stdlog.New(&stdWriter{logger: l}, "", 0)
}

type stdWriter struct {
	logger Logger
}

var _ io.Writer = (*stdWriter)(nil)

func (w *stdWriter) Write(p []byte) (int, error) {
	sc := bufio.NewScanner(strings.NewReader(string(p)))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			w.logger.Info(line)
		}
	}
	return len(p), nil
}
