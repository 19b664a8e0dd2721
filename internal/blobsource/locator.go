package blobsource

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/WholesumNet/block-feeder/internal/blockkey"
	"github.com/WholesumNet/block-feeder/internal/fault"
)

const (
	subblockExt   = ".bin"
	aggregateFile = "agg_stdin.bin"
)

// Block is one discovered block directory.
type Block struct {
	Number       uint64
	Dir          string
	SubblockDir  string
	NumSubblocks int
}

// AggregateKey is the key of the block's aggregate payload, one slot after
// the last subblock.
func (b Block) AggregateKey() blockkey.Key {
	return blockkey.Key{Block: b.Number, Index: uint64(b.NumSubblocks)}
}

// Item is one payload ready to be appended.
type Item struct {
	Key     blockkey.Key
	Payload []byte
}

// Locator reads blocks of one size under a root directory.
type Locator struct {
	root string
	size Size

	// OnBlock, when set, is called before the first item of each block.
	OnBlock func(Block)
}

// New returns a Locator for {root}/{size}x.
func New(root string, size Size) *Locator {
	return &Locator{root: root, size: size}
}

// BaseDir is the directory holding the block directories.
func (l *Locator) BaseDir() string {
	return filepath.Join(l.root, l.size.Dir())
}

// Blocks discovers all blocks, sorted by block number.
func (l *Locator) Blocks() ([]Block, error) {
	base := l.BaseDir()
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, fault.Filesystem(err, "read size directory %s", base)
	}
	blocks := make([]Block, 0, len(entries))
	for _, e := range entries {
		dir := filepath.Join(base, e.Name())
		if !e.IsDir() {
			return nil, fault.Filesystem(nil, "%s is not a block directory", dir)
		}
		num, err := strconv.ParseUint(e.Name(), 10, 64)
		if err != nil {
			return nil, fault.Filesystem(err, "block directory name %q", e.Name())
		}
		b, err := inspectBlock(num, dir)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Number < blocks[j].Number })
	return blocks, nil
}

// inspectBlock finds the subblock source (the first nested directory in
// listing order) and counts its entries.
func inspectBlock(num uint64, dir string) (Block, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Block{}, fault.Filesystem(err, "read block %d", num)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub := filepath.Join(dir, e.Name())
		files, err := os.ReadDir(sub)
		if err != nil {
			return Block{}, fault.Filesystem(err, "read subblocks of block %d", num)
		}
		return Block{Number: num, Dir: dir, SubblockDir: sub, NumSubblocks: len(files)}, nil
	}
	return Block{}, fault.Filesystem(nil, "block %d has no subblock directory", num)
}

// Walk discovers blocks and hands every item to fn in order. Discovery
// completes before the first item, so a malformed block anywhere aborts the
// walk before fn runs. The first error stops the walk.
func (l *Locator) Walk(ctx context.Context, fn func(Item) error) error {
	blocks, err := l.Blocks()
	if err != nil {
		return err
	}
	for _, b := range blocks {
		if err := l.WalkBlock(ctx, b, fn); err != nil {
			return err
		}
	}
	return nil
}

// WalkBlock yields the subblocks of b in index order followed by its
// aggregate.
func (l *Locator) WalkBlock(ctx context.Context, b Block, fn func(Item) error) error {
	if l.OnBlock != nil {
		l.OnBlock(b)
	}
	for i := 0; i < b.NumSubblocks; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(b.SubblockDir, strconv.Itoa(i)+subblockExt)
		payload, err := os.ReadFile(path)
		if err != nil {
			return fault.Filesystem(err, "read subblock %d of block %d", i, b.Number)
		}
		if err := fn(Item{Key: blockkey.Key{Block: b.Number, Index: uint64(i)}, Payload: payload}); err != nil {
			return err
		}
	}
	payload, err := os.ReadFile(filepath.Join(b.Dir, aggregateFile))
	if err != nil {
		return fault.Filesystem(err, "read aggregate of block %d", b.Number)
	}
	return fn(Item{Key: b.AggregateKey(), Payload: payload})
}
