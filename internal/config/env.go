package config

import (
	"os"
	"strconv"

	"github.com/WholesumNet/block-feeder/internal/fault"
)

// FromEnv overlays BLOCKFEEDER_* environment variables onto cfg. A value
// that cannot be parsed is a configuration error.
func FromEnv(cfg *Config) error {
	if v := os.Getenv("BLOCKFEEDER_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("BLOCKFEEDER_STREAM"); v != "" {
		cfg.Stream = v
	}
	if v := os.Getenv("BLOCKFEEDER_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("BLOCKFEEDER_FSYNC"); v != "" {
		cfg.Fsync = v
	}
	if v := os.Getenv("BLOCKFEEDER_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("BLOCKFEEDER_READ_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fault.Configuration(err, "BLOCKFEEDER_READ_LIMIT")
		}
		cfg.ReadLimit = n
	}
	if v := os.Getenv("BLOCKFEEDER_METRICS_TEXTFILE"); v != "" {
		cfg.MetricsTextfile = v
	}
	if v := os.Getenv("BLOCKFEEDER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("BLOCKFEEDER_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	return nil
}
