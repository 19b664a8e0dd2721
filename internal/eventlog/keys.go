package eventlog

import (
	"encoding/binary"
)

// Keyspace helpers for Pebble keys.
//
// Layout (byte-wise, lexicographically sortable):
// - log/{stream}/m
// - log/{stream}/e/{seq_be8}
// - log/{stream}/c/{group}

var (
	logPrefix  = []byte("log/")
	metaSuffix = []byte("/m")
	entrySeg   = []byte("/e/")
	cursorSeg  = []byte("/c/")
)

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

func streamKey(stream string, seg []byte, extra int) []byte {
	k := make([]byte, 0, len(logPrefix)+len(stream)+len(seg)+extra)
	k = append(k, logPrefix...)
	k = append(k, stream...)
	k = append(k, seg...)
	return k
}

// KeyLogMeta builds the stream metadata key.
func KeyLogMeta(stream string) []byte {
	return streamKey(stream, metaSuffix, 0)
}

// KeyLogEntry builds the entry key with a big-endian sequence for proper ordering.
func KeyLogEntry(stream string, seq uint64) []byte {
	return appendBE8(streamKey(stream, entrySeg, 8), seq)
}

// KeyCursor builds the durable cursor key for a reader group.
func KeyCursor(stream, group string) []byte {
	return append(streamKey(stream, cursorSeg, len(group)), group...)
}

// entryBounds returns [low, high) covering every entry key of stream.
func entryBounds(stream string) (low, high []byte) {
	low = KeyLogEntry(stream, 0)
	high = append(KeyLogEntry(stream, ^uint64(0)), 0x00)
	return low, high
}

// seqFromKey extracts the trailing sequence of an entry key.
func seqFromKey(k []byte) uint64 {
	return binary.BigEndian.Uint64(k[len(k)-8:])
}
