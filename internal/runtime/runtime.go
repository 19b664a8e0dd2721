package runtime

import (
	"context"

	cfgpkg "github.com/WholesumNet/block-feeder/internal/config"
	"github.com/WholesumNet/block-feeder/internal/eventlog"
	"github.com/WholesumNet/block-feeder/internal/fault"
	"github.com/WholesumNet/block-feeder/internal/logstore"
	"github.com/WholesumNet/block-feeder/internal/metrics"
	pebblestore "github.com/WholesumNet/block-feeder/internal/storage/pebble"
	logpkg "github.com/WholesumNet/block-feeder/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	Config  cfgpkg.Config
	Metrics *metrics.Registry
	Logger  logpkg.Logger
}

// Runtime wires storage, config, and metrics for a single run.
type Runtime struct {
	db      *pebblestore.DB
	config  cfgpkg.Config
	metrics *metrics.Registry
	logger  logpkg.Logger
}

// Open validates the config and, for the pebble backend, opens the embedded
// database. The redis backend connects lazily in OpenStore.
func Open(opts Options) (*Runtime, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	reg := opts.Metrics
	if reg == nil {
		reg = metrics.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	rt := &Runtime{config: cfg, metrics: reg, logger: logger.With(logpkg.Component("runtime"))}
	if cfg.Backend != cfgpkg.BackendPebble {
		return rt, nil
	}

	fsync, _ := pebblestore.ParseFsyncMode(cfg.Fsync)
	dir := cfg.ResolvedDataDir()
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir: dir,
		Fsync:   fsync,
		Metrics: reg.Storage(),
		Logger:  logger,
	})
	if err != nil {
		return nil, fault.Filesystem(err, "open data dir %s", dir)
	}
	rt.db = db
	rt.logger.Debug("opened embedded store", logpkg.Str("data_dir", dir))
	return rt, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// CheckHealth performs a simple health check of the embedded store.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.config.Backend != cfgpkg.BackendPebble {
		return nil
	}
	if r.db == nil {
		return fault.Filesystem(nil, "db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return fault.Filesystem(err, "health iterator")
	}
	return it.Close()
}

// OpenStore returns the log store for the configured backend and stream.
// Stores from the pebble backend share the runtime's database; closing them
// leaves the database open.
func (r *Runtime) OpenStore(ctx context.Context) (logstore.Store, error) {
	switch r.config.Backend {
	case cfgpkg.BackendRedis:
		r.logger.Debug("dialing redis", logpkg.Str("url", r.config.RedisURL))
		return logstore.DialRedis(ctx, r.config.RedisURL, r.config.Stream)
	default:
		l, err := r.OpenLog(r.config.Stream)
		if err != nil {
			return nil, err
		}
		return logstore.NewPebbleStore(l, nil), nil
	}
}

// OpenLog opens the event log for stream on the embedded database.
func (r *Runtime) OpenLog(stream string) (*eventlog.Log, error) {
	if r.db == nil {
		return nil, fault.Configuration(nil, "embedded store not open for backend %q", r.config.Backend)
	}
	l, err := eventlog.OpenLog(r.db, stream)
	if err != nil {
		return nil, fault.Filesystem(err, "open stream %s", stream)
	}
	return l, nil
}

// Metrics returns the registry shared by the storage layer and the feeder.
func (r *Runtime) Metrics() *metrics.Registry { return r.metrics }
