package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/WholesumNet/block-feeder/internal/fault"
	"github.com/WholesumNet/block-feeder/internal/logstore"
	pebblestore "github.com/WholesumNet/block-feeder/internal/storage/pebble"
	logpkg "github.com/WholesumNet/block-feeder/pkg/log"
)

// Backends accepted in Config.Backend.
const (
	BackendPebble = "pebble"
	BackendRedis  = "redis"
)

// Config is the top-level configuration loaded from file/env/flags.
type Config struct {
	// Backend selects the log store: pebble (embedded) or redis.
	Backend string `json:"backend"`
	// Stream is the fixed identifier of the log.
	Stream string `json:"stream"`
	// DataDir holds the embedded store; empty means DefaultDataDir().
	DataDir string `json:"dataDir"`
	// Fsync is always|interval|never for the embedded store.
	Fsync    string `json:"fsync"`
	RedisURL string `json:"redisURL"`
	// ReadLimit caps the entries returned by one read; 0 means all available.
	ReadLimit       int           `json:"readLimit"`
	MetricsTextfile string        `json:"metricsTextfile"`
	Log             logpkg.Config `json:"log"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Backend:  BackendPebble,
		Stream:   "blocks",
		Fsync:    "always",
		RedisURL: logstore.DefaultRedisURL,
		Log: logpkg.Config{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from a JSON file over the defaults. If path is
// empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fault.Configuration(err, "read config")
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return Config{}, fault.Configuration(nil, "yaml config not supported; use JSON")
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fault.Configuration(err, "parse config %s", path)
		}
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendPebble, BackendRedis:
	default:
		return fault.Configuration(nil, "unknown backend %q; use pebble|redis", c.Backend)
	}
	if c.Stream == "" || strings.ContainsRune(c.Stream, '/') {
		return fault.Configuration(nil, "invalid stream name %q", c.Stream)
	}
	if _, err := pebblestore.ParseFsyncMode(c.Fsync); err != nil {
		return fault.Configuration(err, "fsync")
	}
	if c.ReadLimit < 0 {
		return fault.Configuration(nil, "read limit must not be negative")
	}
	return nil
}

// ResolvedDataDir returns DataDir or the OS default.
func (c Config) ResolvedDataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return DefaultDataDir()
}
