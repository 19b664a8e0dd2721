package blobsource

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/WholesumNet/block-feeder/internal/blockkey"
	"github.com/WholesumNet/block-feeder/internal/fault"
)

// writeBlock lays out one block under root/{size}x with the given subblock
// payload sizes and aggregate size.
func writeBlock(t *testing.T, root string, size Size, block uint64, subSizes []int, aggSize int) {
	t.Helper()
	dir := filepath.Join(root, size.Dir(), strconv.FormatUint(block, 10))
	sub := filepath.Join(dir, "subblock_stdins")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	for i, n := range subSizes {
		require.NoError(t, os.WriteFile(filepath.Join(sub, strconv.Itoa(i)+".bin"), make([]byte, n), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "agg_stdin.bin"), make([]byte, aggSize), 0o644))
}

func collect(t *testing.T, l *Locator) ([]Item, error) {
	t.Helper()
	var items []Item
	err := l.Walk(context.Background(), func(it Item) error {
		items = append(items, it)
		return nil
	})
	return items, err
}

func TestWalkExample(t *testing.T) {
	root := t.TempDir()
	writeBlock(t, root, Size2x, 7, []int{3, 5}, 2)

	items, err := collect(t, New(root, Size2x))
	require.NoError(t, err)
	require.Len(t, items, 3)

	wantKeys := []string{"7-0", "7-1", "7-2"}
	wantLens := []int{3, 5, 2}
	for i, it := range items {
		require.Equal(t, wantKeys[i], it.Key.String())
		require.Len(t, it.Payload, wantLens[i])
	}
}

func TestWalkYieldsNPlusOnePerBlock(t *testing.T) {
	root := t.TempDir()
	writeBlock(t, root, Size6x, 3, []int{1, 1, 1, 1}, 9)
	writeBlock(t, root, Size6x, 4, nil, 4)

	items, err := collect(t, New(root, Size6x))
	require.NoError(t, err)
	require.Len(t, items, 5+1)

	for i := 0; i < 4; i++ {
		require.Equal(t, blockkey.Key{Block: 3, Index: uint64(i)}, items[i].Key)
	}
	require.Equal(t, blockkey.Key{Block: 3, Index: 4}, items[4].Key)
	require.Len(t, items[4].Payload, 9)
	// A block with no subblock files still yields its aggregate at index 0.
	require.Equal(t, blockkey.Key{Block: 4, Index: 0}, items[5].Key)
}

func TestBlocksSortedNumerically(t *testing.T) {
	root := t.TempDir()
	for _, b := range []uint64{10, 9, 100, 2} {
		writeBlock(t, root, Size2x, b, []int{1}, 1)
	}
	blocks, err := New(root, Size2x).Blocks()
	require.NoError(t, err)

	var got []uint64
	for _, b := range blocks {
		got = append(got, b.Number)
	}
	require.Equal(t, []uint64{2, 9, 10, 100}, got)
}

func TestSubblockDirFoundStructurally(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "2x", "5")
	sub := filepath.Join(dir, "any_name")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	// Files listed before the directory are skipped.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_notes.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "agg_stdin.bin"), []byte("ag"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "0.bin"), []byte("x"), 0o644))

	blocks, err := New(root, Size2x).Blocks()
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	require.Equal(t, sub, blocks[0].SubblockDir)
	require.Equal(t, 1, blocks[0].NumSubblocks)
}

func TestMissingSubblockDirAbortsWalk(t *testing.T) {
	root := t.TempDir()
	writeBlock(t, root, Size2x, 1, []int{1}, 1)
	bad := filepath.Join(root, "2x", "2")
	require.NoError(t, os.MkdirAll(bad, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bad, "agg_stdin.bin"), []byte("a"), 0o644))
	writeBlock(t, root, Size2x, 3, []int{1}, 1)

	items, err := collect(t, New(root, Size2x))
	require.Error(t, err)
	require.True(t, errors.Is(err, fault.ErrFilesystem))
	require.Empty(t, items)
}

func TestMissingNumberedFile(t *testing.T) {
	root := t.TempDir()
	writeBlock(t, root, Size2x, 1, []int{1, 1}, 1)
	// Two entries counted, but 1.bin is renamed away.
	sub := filepath.Join(root, "2x", "1", "subblock_stdins")
	require.NoError(t, os.Rename(filepath.Join(sub, "1.bin"), filepath.Join(sub, "x.bin")))

	_, err := collect(t, New(root, Size2x))
	require.True(t, errors.Is(err, fault.ErrFilesystem))
}

func TestMissingAggregate(t *testing.T) {
	root := t.TempDir()
	writeBlock(t, root, Size2x, 1, []int{1}, 1)
	require.NoError(t, os.Remove(filepath.Join(root, "2x", "1", "agg_stdin.bin")))

	_, err := collect(t, New(root, Size2x))
	require.True(t, errors.Is(err, fault.ErrFilesystem))
}

func TestMalformedBlockName(t *testing.T) {
	root := t.TempDir()
	writeBlock(t, root, Size2x, 1, []int{1}, 1)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "2x", "latest", "sub"), 0o755))

	_, err := New(root, Size2x).Blocks()
	require.True(t, errors.Is(err, fault.ErrFilesystem))
}

func TestMissingSizeDir(t *testing.T) {
	_, err := New(t.TempDir(), Size6x).Blocks()
	require.True(t, errors.Is(err, fault.ErrFilesystem))
}

func TestCallbackErrorStopsWalk(t *testing.T) {
	root := t.TempDir()
	writeBlock(t, root, Size2x, 1, []int{1, 1, 1}, 1)
	stop := errors.New("stop")
	calls := 0
	err := New(root, Size2x).Walk(context.Background(), func(Item) error {
		calls++
		return stop
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 1, calls)
}

func TestOnBlock(t *testing.T) {
	root := t.TempDir()
	writeBlock(t, root, Size2x, 8, []int{1}, 1)
	writeBlock(t, root, Size2x, 4, []int{1, 2}, 1)
	l := New(root, Size2x)
	var seen []uint64
	l.OnBlock = func(b Block) { seen = append(seen, b.Number) }
	_, err := collect(t, l)
	require.NoError(t, err)
	require.Equal(t, []uint64{4, 8}, seen)
}

func TestParseSize(t *testing.T) {
	s, err := ParseSize(2)
	require.NoError(t, err)
	require.Equal(t, "2x", s.Dir())
	s, err = ParseSize(6)
	require.NoError(t, err)
	require.Equal(t, Size6x, s)

	for _, n := range []int{0, 1, 3, 4, 5, 7, -2} {
		_, err := ParseSize(n)
		require.True(t, errors.Is(err, fault.ErrConfiguration), "size %d", n)
	}

	var v Size
	require.NoError(t, v.Set("6"))
	require.Equal(t, Size6x, v)
	require.True(t, errors.Is(v.Set("four"), fault.ErrConfiguration))
}
