package heap

import (
	"github.com/cockroachdb/errors"
)

// DefaultMaxSize is the cap used when an arena is created with max <= 0.
const DefaultMaxSize = 20 << 20

// Source is an extend-only byte arena.
type Source interface {
	// Extend grows the arena by n bytes and returns the previous break, which
	// is the offset of the first new byte. New bytes read as zero. On failure
	// the arena is unchanged.
	Extend(n int) (base int, err error)

	// Bytes returns the arena contents below the break.
	Bytes() []byte

	// Size returns the current break.
	Size() int
}

// Mapping is implemented by arenas backed by a file mapping so that modified
// ranges can be flushed.
type Mapping interface {
	Bytes() []byte
	FD() int
}

// checkIncrement validates an Extend request against the current break and cap.
func checkIncrement(brk, n, max int) error {
	if n < 0 {
		return errors.Wrapf(ErrExhausted, "negative increment %d", n)
	}
	if n > max-brk {
		return errors.Wrapf(ErrExhausted, "extend by %d at break %d exceeds cap %d", n, brk, max)
	}
	return nil
}

func capOrDefault(max int) int {
	if max <= 0 {
		return DefaultMaxSize
	}
	return max
}
