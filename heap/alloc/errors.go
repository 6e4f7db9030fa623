package alloc

import "github.com/cockroachdb/errors"

var (
	// ErrOutOfMemory indicates the arena could not grow to satisfy a request.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrInvalidPointer indicates a pointer that does not name a live block.
	ErrInvalidPointer = errors.New("alloc: invalid pointer")

	// ErrDoubleFree indicates a pointer to a block that is already free.
	ErrDoubleFree = errors.New("alloc: double free")

	// ErrCorrupt indicates the heap checker found a violated invariant.
	ErrCorrupt = errors.New("alloc: heap corrupt")

	// ErrNotEmpty indicates New was handed an arena that already holds data.
	ErrNotEmpty = errors.New("alloc: arena not empty")
)

// oomError is an arena failure reported as ErrOutOfMemory. errors.Is
// matches both ErrOutOfMemory and the arena's own cause (heap.ErrExhausted).
type oomError struct {
	cause error
}

func outOfMemory(cause error) error { return &oomError{cause: cause} }

func (e *oomError) Error() string { return ErrOutOfMemory.Error() + ": " + e.cause.Error() }

func (e *oomError) Unwrap() error { return e.cause }

func (e *oomError) Is(target error) bool { return target == ErrOutOfMemory }
