// Package blobsource walks the on-disk layout of blocks and turns it into the
// ordered sequence of (composite key, payload) items written to the log.
//
// # Layout
//
//	{root}/{size}x/{block}/
//	    <subblock dir>/0.bin ... {N-1}.bin   the first nested directory
//	    agg_stdin.bin                          the aggregate payload
//
// Every entry directly under {root}/{size}x must be a directory named by an
// unsigned integer. For a block with N subblock files the locator yields keys
// {block}-0 ... {block}-{N-1}, then {block}-{N} for the aggregate.
//
// Blocks are emitted in ascending numeric order, independent of the order the
// filesystem lists them in.
package blobsource
