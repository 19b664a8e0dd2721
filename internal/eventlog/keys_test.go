package eventlog

import (
	"bytes"
	"testing"
)

func TestKeyOrderingEntries(t *testing.T) {
	a := KeyLogEntry("blocks", 10)
	b := KeyLogEntry("blocks", 11)
	if !bytes.HasPrefix(a, []byte("log/blocks/e/")) {
		t.Fatalf("unexpected entry layout: %q", a)
	}
	if bytes.Compare(a, b) >= 0 {
		t.Fatalf("expected seq 10 < seq 11")
	}
	if seqFromKey(b) != 11 {
		t.Fatalf("seqFromKey: got %d", seqFromKey(b))
	}
}

func TestEntryBoundsExcludeOtherKeys(t *testing.T) {
	low, high := entryBounds("blocks")
	for _, k := range [][]byte{
		KeyLogMeta("blocks"),
		KeyCursor("blocks", "g"),
		KeyLogEntry("blocks2", 1),
	} {
		if bytes.Compare(k, low) >= 0 && bytes.Compare(k, high) < 0 {
			t.Fatalf("key %q falls inside entry bounds", k)
		}
	}
	if bytes.Compare(KeyLogEntry("blocks", ^uint64(0)), high) >= 0 {
		t.Fatalf("max entry key must be below upper bound")
	}
}

func TestCursorKey(t *testing.T) {
	k := KeyCursor("blocks", "replay")
	if string(k) != "log/blocks/c/replay" {
		t.Fatalf("unexpected cursor layout: %q", string(k))
	}
}
