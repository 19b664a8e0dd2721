// Package eventlog implements the embedded append-only log that block passes
// are written to and replayed from.
//
// # Overview
//
// Each named stream is an ordered sequence of records persisted in Pebble.
// Keys are lexicographically ordered for efficient range scans:
//   - log/{stream}/m                 (stream metadata: lastSeq)
//   - log/{stream}/e/{seq_be8}       (entries)
//   - log/{stream}/c/{group}         (durable reader cursors)
//
// Records are stored as: varint headerLen | header | payload | crc32c(header|payload).
//
// API surface (internal)
//
//	l, _ := OpenLog(db, "blocks")
//	// Append a batch atomically; returns assigned seq numbers
//	seqs, _ := l.Append(ctx, []AppendRecord{{Header: h, Payload: p}})
//
//	// Read forward with an optional start token and limit; a corrupt
//	// record fails the read
//	items, next, _ := l.Read(ReadOptions{Start: TokenFromSeq(seqs[0]), Limit: 100})
//	_ = next // resume position
//
//	// Block until at least one record at or after Start exists
//	items, _, _ = l.ReadBlocking(ctx, ReadOptions{Start: TokenFromSeq(1)})
//
//	// Drop every entry; sequence numbers keep increasing afterwards
//	_ = l.Reset(ctx)
//
//	// Durable reader cursor commits (idempotent, no regression)
//	_ = l.CommitCursor("replay", TokenFromSeq(seqs[len(seqs)-1]))
package eventlog
