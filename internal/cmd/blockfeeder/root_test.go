package blockfeeder

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/WholesumNet/block-feeder/internal/fault"
)

func writeBlock(t *testing.T, root, size string, block int, subSizes []int, aggSize int) {
	t.Helper()
	dir := filepath.Join(root, size, strconv.Itoa(block))
	sub := filepath.Join(dir, "subblock_stdins")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	for i, n := range subSizes {
		require.NoError(t, os.WriteFile(filepath.Join(sub, strconv.Itoa(i)+".bin"), make([]byte, n), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "agg_stdin.bin"), make([]byte, aggSize), 0o644))
}

// run executes one CLI invocation and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRoot()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--log-level", "error"))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return buf.String(), err
}

func TestWriteThenRead(t *testing.T) {
	root := t.TempDir()
	data := t.TempDir()
	writeBlock(t, root, "2x", 7, []int{3, 5}, 2)

	out, err := run(t, "write", "-p", root, "-s", "2", "--data-dir", data)
	require.NoError(t, err)
	require.Equal(t, "block: 7: 3, 5, 2\n", out)

	out, err = run(t, "read", "--path", root, "--size", "2", "--data-dir", data)
	require.NoError(t, err)
	require.Equal(t, "\"7-0\": 3\n\"7-1\": 5\n\"7-2\": 2\n", out)
}

func TestInvalidSizeFailsBeforeIO(t *testing.T) {
	root := t.TempDir()
	data := filepath.Join(t.TempDir(), "never-created")
	for _, size := range []string{"3", "x", "0"} {
		_, err := run(t, "write", "-p", root, "-s", size, "--data-dir", data)
		require.Error(t, err)
		require.True(t, errors.Is(err, fault.ErrConfiguration), "size %s: got %v", size, err)
		require.Contains(t, err.Error(), "test size must be `2` or `6`")
	}
	_, statErr := os.Stat(data)
	require.True(t, os.IsNotExist(statErr), "data dir must not be created")
}

func TestRequiredFlags(t *testing.T) {
	_, err := run(t, "write", "-s", "2")
	require.Error(t, err)
	require.Contains(t, err.Error(), "required flag")
}

func TestUnknownBackend(t *testing.T) {
	_, err := run(t, "write", "-p", t.TempDir(), "-s", "6", "--backend", "kafka")
	require.True(t, errors.Is(err, fault.ErrConfiguration), "got %v", err)
}

func TestReadBadFilter(t *testing.T) {
	_, err := run(t, "read", "-p", t.TempDir(), "-s", "2", "--data-dir", t.TempDir(), "--filter", "size +")
	require.True(t, errors.Is(err, fault.ErrConfiguration), "got %v", err)
}

func TestWriteMissingBlockSet(t *testing.T) {
	_, err := run(t, "write", "-p", t.TempDir(), "-s", "6", "--data-dir", t.TempDir())
	require.True(t, errors.Is(err, fault.ErrFilesystem), "got %v", err)
}

func TestReadGroupFilterAndLimit(t *testing.T) {
	root := t.TempDir()
	data := t.TempDir()
	writeBlock(t, root, "6x", 1, []int{1, 2, 3}, 4)
	_, err := run(t, "write", "-p", root, "-s", "6", "--data-dir", data)
	require.NoError(t, err)

	out, err := run(t, "read", "-p", root, "-s", "6", "--data-dir", data, "--group", "g", "--limit", "2")
	require.NoError(t, err)
	require.Equal(t, "\"1-0\": 1\n\"1-1\": 2\n", out)

	out, err = run(t, "read", "-p", root, "-s", "6", "--data-dir", data, "--group", "g", "--filter", "index == 3")
	require.NoError(t, err)
	require.Equal(t, "\"1-3\": 4\n", out)
}

func TestRedisBackendAndMetrics(t *testing.T) {
	mr := miniredis.RunT(t)
	root := t.TempDir()
	writeBlock(t, root, "2x", 7, []int{3, 5}, 2)
	metricsPath := filepath.Join(t.TempDir(), "feeder.prom")
	url := "redis://" + mr.Addr() + "/"

	out, err := run(t, "write", "-p", root, "-s", "2", "--backend", "redis", "--redis-url", url, "--metrics-textfile", metricsPath)
	require.NoError(t, err)
	require.Equal(t, "block: 7: 3, 5, 2\n", out)

	entries, err := mr.Stream("blocks")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, []string{"7-0", string(make([]byte, 3))}, entries[0].Values)

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	require.Contains(t, string(prom), "blockfeeder_entries_appended_total 3")

	out, err = run(t, "read", "-p", root, "-s", "2", "--backend", "redis", "--redis-url", url)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "\"7-0\": 3\n"), out)
}

func TestConfigFileAndEnv(t *testing.T) {
	root := t.TempDir()
	writeBlock(t, root, "2x", 3, nil, 9)
	data := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "feeder.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"stream":"from-file","dataDir":"`+data+`"}`), 0o644))
	t.Setenv("BLOCKFEEDER_STREAM", "from-env")

	out, err := run(t, "write", "-p", root, "-s", "2", "--config", cfgPath)
	require.NoError(t, err)
	require.Equal(t, "block: 3: 9\n", out)

	// The flag wins over env; the other stream is empty so this read must
	// block until the deadline.
	cmd := NewRoot()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"read", "-p", root, "-s", "2", "--config", cfgPath, "--stream", "from-flag", "--log-level", "error"})
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, cmd.ExecuteContext(ctx), context.DeadlineExceeded)

	out, err = run(t, "read", "-p", root, "-s", "2", "--config", cfgPath)
	require.NoError(t, err)
	require.Equal(t, "\"3-0\": 9\n", out)
}
