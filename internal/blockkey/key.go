// Package blockkey encodes and decodes the composite identity of a log entry,
// "{block}-{index}", used as the single field name of every entry.
package blockkey

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/WholesumNet/block-feeder/internal/fault"
)

const sep = '-'

// ErrMalformedKey is returned by Parse for anything that is not exactly two
// unsigned decimal integers joined by a single separator.
var ErrMalformedKey = errors.Mark(errors.New("malformed composite key"), fault.ErrProtocol)

// Key identifies one payload: a subblock of a block, or the block's aggregate
// when Index equals the block's subblock count.
type Key struct {
	Block uint64
	Index uint64
}

// String returns the canonical "{block}-{index}" form.
func (k Key) String() string {
	b := make([]byte, 0, 24)
	b = strconv.AppendUint(b, k.Block, 10)
	b = append(b, sep)
	b = strconv.AppendUint(b, k.Index, 10)
	return string(b)
}

// Parse decodes s produced by Key.String.
func Parse(s string) (Key, error) {
	i := strings.IndexByte(s, sep)
	if i < 0 || strings.IndexByte(s[i+1:], sep) >= 0 {
		return Key{}, errors.Wrapf(ErrMalformedKey, "%q", s)
	}
	block, err := parseUint(s[:i])
	if err != nil {
		return Key{}, errors.Wrapf(ErrMalformedKey, "%q: block", s)
	}
	index, err := parseUint(s[i+1:])
	if err != nil {
		return Key{}, errors.Wrapf(ErrMalformedKey, "%q: index", s)
	}
	return Key{Block: block, Index: index}, nil
}

// parseUint accepts plain decimal digits only; ParseUint alone would also
// accept a leading '+'.
func parseUint(s string) (uint64, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseUint(s, 10, 64)
}
