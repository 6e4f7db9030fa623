package format

import "github.com/cockroachdb/errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a tag.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrMisaligned indicates a tag or payload offset off the double-word grid.
	ErrMisaligned = errors.New("format: misaligned offset")
)
