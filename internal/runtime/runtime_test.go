package runtime

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/cockroachdb/errors"

	cfgpkg "github.com/WholesumNet/block-feeder/internal/config"
	"github.com/WholesumNet/block-feeder/internal/fault"
	"github.com/WholesumNet/block-feeder/internal/logstore"
)

func pebbleConfig(t *testing.T) cfgpkg.Config {
	t.Helper()
	cfg := cfgpkg.Default()
	cfg.DataDir = t.TempDir()
	return cfg
}

func TestOpenCloseHealth(t *testing.T) {
	rt, err := Open(Options{Config: pebbleConfig(t)})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	defer rt.Close()
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := rt.CheckHealth(context.Background()); err == nil {
		t.Fatalf("expected health error after close")
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	cfg := pebbleConfig(t)
	cfg.Backend = "kafka"
	if _, err := Open(Options{Config: cfg}); !errors.Is(err, fault.ErrConfiguration) {
		t.Fatalf("want configuration error, got %v", err)
	}
}

func TestOpenStorePebble(t *testing.T) {
	ctx := context.Background()
	rt, err := Open(Options{Config: pebbleConfig(t)})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()
	store, err := rt.OpenStore(ctx)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if store.Name() != "blocks" {
		t.Fatalf("stream name: %q", store.Name())
	}
	if _, err := store.Append(ctx, logstore.Field{Name: "7-0", Value: []byte("abc")}); err != nil {
		t.Fatalf("append: %v", err)
	}
	n, err := store.Len(ctx)
	if err != nil || n != 1 {
		t.Fatalf("len: %d %v", n, err)
	}
	if got := rt.Metrics(); got == nil {
		t.Fatalf("metrics registry not set")
	}
}

func TestOpenStoreRedis(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)
	cfg := cfgpkg.Default()
	cfg.Backend = cfgpkg.BackendRedis
	cfg.RedisURL = "redis://" + srv.Addr() + "/"
	rt, err := Open(Options{Config: cfg})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()
	if rt.db != nil {
		t.Fatalf("redis backend should not open the embedded store")
	}
	if err := rt.CheckHealth(ctx); err != nil {
		t.Fatalf("health: %v", err)
	}
	store, err := rt.OpenStore(ctx)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	if _, err := store.Append(ctx, logstore.Field{Name: "7-0", Value: []byte("abc")}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := rt.OpenLog("blocks"); !errors.Is(err, fault.ErrConfiguration) {
		t.Fatalf("OpenLog on redis backend: want configuration error, got %v", err)
	}
}
