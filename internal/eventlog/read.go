package eventlog

import (
	"encoding/binary"

	"github.com/cockroachdb/pebble"

	"github.com/WholesumNet/block-feeder/internal/fault"
)

// Token encodes a position as seq (8 bytes big-endian). The zero Token means
// "from the first entry".
type Token [8]byte

// TokenFromSeq returns the token positioned at seq.
func TokenFromSeq(seq uint64) Token { var t Token; binary.BigEndian.PutUint64(t[:], seq); return t }
func (t Token) Seq() uint64         { return binary.BigEndian.Uint64(t[:]) }

type ReadOptions struct {
	Start Token // if zero, begin from the first entry
	Limit int
}

type Item struct {
	Seq     uint64
	Header  []byte
	Payload []byte
}

// Read returns up to Limit items starting at Start (inclusive), in sequence
// order. The returned token is the position of the next unread item, zero when
// the scan reached the end. A record failing its checksum is a protocol
// error; an iterator failure is a connection error.
func (l *Log) Read(opts ReadOptions) ([]Item, Token, error) {
	items := make([]Item, 0, max(1, opts.Limit))
	var next Token

	low, high := entryBounds(l.stream)
	iter, err := l.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: high})
	if err != nil {
		return nil, next, fault.Connection(err, "open iterator on stream %s", l.stream)
	}
	defer iter.Close()

	startSeq := opts.Start.Seq()
	var ok bool
	if startSeq == 0 {
		ok = iter.First()
	} else {
		ok = iter.SeekGE(KeyLogEntry(l.stream, startSeq))
	}
	for ; ok && (opts.Limit == 0 || len(items) < opts.Limit); ok = iter.Next() {
		seq := seqFromKey(iter.Key())
		dec, valid := DecodeRecord(iter.Value())
		if !valid {
			return nil, next, fault.Protocol(nil, "stream %s entry %d failed its checksum", l.stream, seq)
		}
		items = append(items, Item{Seq: seq, Header: dec.Header, Payload: dec.Payload})
	}
	if err := iter.Error(); err != nil {
		return nil, next, fault.Connection(err, "scan stream %s", l.stream)
	}
	if ok {
		next = TokenFromSeq(seqFromKey(iter.Key()))
	}
	return items, next, nil
}
