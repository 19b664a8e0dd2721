package blobsource

import (
	"strconv"

	"github.com/WholesumNet/block-feeder/internal/fault"
)

// Size selects which block set under the root is read.
type Size uint8

const (
	Size2x Size = 2
	Size6x Size = 6
)

// ParseSize accepts only the supported selectors.
func ParseSize(n int) (Size, error) {
	switch n {
	case 2:
		return Size2x, nil
	case 6:
		return Size6x, nil
	default:
		return 0, fault.Configuration(nil, "test size must be `2` or `6`, got %d", n)
	}
}

// Dir is the directory name for the size under the root, e.g. "2x".
func (s Size) Dir() string { return strconv.Itoa(int(s)) + "x" }

// String is the directory name, or empty for the unset value.
func (s Size) String() string {
	if s == 0 {
		return ""
	}
	return s.Dir()
}

// Set implements pflag.Value so a Size can be bound directly to a flag and
// rejected at parse time.
func (s *Size) Set(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fault.Configuration(err, "test size must be `2` or `6`, got %q", v)
	}
	parsed, err := ParseSize(n)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Type implements pflag.Value.
func (s *Size) Type() string { return "size" }
