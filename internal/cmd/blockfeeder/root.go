package blockfeeder

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/WholesumNet/block-feeder/internal/blobsource"
	cfgpkg "github.com/WholesumNet/block-feeder/internal/config"
	"github.com/WholesumNet/block-feeder/internal/fault"
	"github.com/WholesumNet/block-feeder/internal/logstore"
	"github.com/WholesumNet/block-feeder/internal/runtime"
	logpkg "github.com/WholesumNet/block-feeder/pkg/log"
)

// app carries the state shared by the subcommands of one invocation.
type app struct {
	root       string
	size       blobsource.Size
	configPath string

	cfg    cfgpkg.Config
	logger logpkg.Logger
}

// NewRoot constructs the root command and registers `write` and `read`.
func NewRoot() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "blockfeeder",
		Short:         "Move block payloads into an ordered log and replay them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fault.Configuration(err, "flags")
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&a.root, "path", "p", "", "Root directory holding the {size}x block sets")
	pf.VarP(&a.size, "size", "s", "Block set to use: 2|6")
	_ = root.MarkPersistentFlagRequired("path")
	_ = root.MarkPersistentFlagRequired("size")
	pf.StringVar(&a.configPath, "config", "", "JSON config file")
	pf.String("backend", "", "Log backend: pebble|redis (default pebble)")
	pf.String("redis-url", "", "Redis URL for the redis backend (default "+logstore.DefaultRedisURL+")")
	pf.String("data-dir", "", "Data directory of the pebble backend (if not specified, uses OS-specific application data directory)")
	pf.String("stream", "", "Log identifier (default blocks)")
	pf.String("fsync", "", "Fsync mode of the pebble backend: always|interval|never")
	pf.String("log-level", "", "Log level: debug|info|warn|error")
	pf.String("log-format", "", "Log format: text|json (default text)")
	pf.String("metrics-textfile", "", "Write metrics in textfile format to this path after the run")

	root.AddCommand(newWriteCommand(a), newReadCommand(a))
	return root
}

// setup resolves the configuration (file, then env, then flags) and builds
// the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := cfgpkg.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfgpkg.FromEnv(&cfg); err != nil {
		return err
	}
	flags := cmd.Flags()
	for name, dst := range map[string]*string{
		"backend":          &cfg.Backend,
		"redis-url":        &cfg.RedisURL,
		"data-dir":         &cfg.DataDir,
		"stream":           &cfg.Stream,
		"fsync":            &cfg.Fsync,
		"log-level":        &cfg.Log.Level,
		"log-format":       &cfg.Log.Format,
		"metrics-textfile": &cfg.MetricsTextfile,
	} {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	if flags.Changed("limit") {
		cfg.ReadLimit, _ = flags.GetInt("limit")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logpkg.ApplyConfig(&cfg.Log)
	if err != nil {
		return fault.Configuration(err, "logger")
	}
	logpkg.RedirectStdLog(logger)
	a.cfg = cfg
	a.logger = logger.With(logpkg.Str("run_id", uuid.NewString()))
	a.logger.Debug("configured",
		logpkg.Str("backend", cfg.Backend),
		logpkg.Str("stream", cfg.Stream),
		logpkg.Str("path", a.root),
		logpkg.Str("size", a.size.String()))
	return nil
}

// withStore opens the runtime and store, runs fn and exports metrics.
func (a *app) withStore(ctx context.Context, fn func(*runtime.Runtime, logstore.Store) error) (err error) {
	rt, err := runtime.Open(runtime.Options{Config: a.cfg, Logger: a.logger})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil && err == nil {
			err = fault.Filesystem(cerr, "close data dir")
		}
	}()
	if err := rt.CheckHealth(ctx); err != nil {
		return err
	}
	store, err := rt.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	err = fn(rt, store)
	if path := a.cfg.MetricsTextfile; path != "" {
		if werr := rt.Metrics().WriteTextfile(path); werr != nil {
			a.logger.Warn("metrics export failed", logpkg.Str("path", path), logpkg.Err(werr))
		}
	}
	return err
}
