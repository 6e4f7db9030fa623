package heap

import "github.com/cockroachdb/errors"

var (
	// ErrExhausted indicates the arena cannot grow by the requested amount.
	ErrExhausted = errors.New("heap: arena exhausted")

	// ErrClosed indicates the arena has been closed.
	ErrClosed = errors.New("heap: arena closed")

	// ErrUnsupported indicates the arena kind is not available on this platform.
	ErrUnsupported = errors.New("heap: unsupported on this platform")
)
