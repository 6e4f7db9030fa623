//go:build linux || darwin

package heap

import (
	"os"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// File is an arena backed by a shared mapping of a regular file. The file
// length is the break. Extend grows the file and remaps it, so the mapping
// may move; offsets stay valid but slices taken before an Extend do not.
type File struct {
	f    *os.File
	data []byte
	size int
	max  int
}

// CreateFile creates (or truncates) path and returns an empty arena over it.
func CreateFile(path string, max int) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return &File{f: f, max: capOrDefault(max)}, nil
}

// OpenFile maps an existing heap image read-write. The arena's break is the
// file length.
func OpenFile(path string, max int) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	sz := int(st.Size())
	max = capOrDefault(max)
	if sz > max {
		_ = f.Close()
		return nil, errors.Wrapf(ErrExhausted, "heap: image %s is %d bytes, cap %d", path, sz, max)
	}

	h := &File{f: f, size: sz, max: max}
	if sz == 0 {
		return h, nil
	}
	data, err := mapShared(f, sz)
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "heap: mmap failed")
	}
	h.data = data
	return h, nil
}

func mapShared(f *os.File, n int) ([]byte, error) {
	return unix.Mmap(int(f.Fd()), 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

// Extend implements Source. The new bytes are zero-initialized by the OS.
func (h *File) Extend(n int) (int, error) {
	if h == nil || h.f == nil {
		return 0, ErrClosed
	}
	brk := h.size
	if err := checkIncrement(brk, n, h.max); err != nil {
		return 0, err
	}
	if n == 0 {
		return brk, nil
	}

	newSize := brk + n

	// Grow the file and map it before dropping the old mapping, so a failure
	// leaves the arena exactly as it was.
	if err := h.f.Truncate(int64(newSize)); err != nil {
		return 0, errors.WithSecondaryError(errors.Wrap(ErrExhausted, "heap: failed to truncate file"), err)
	}

	data, err := mapShared(h.f, newSize)
	if err != nil {
		_ = h.f.Truncate(int64(brk))
		return 0, errors.WithSecondaryError(errors.Wrap(ErrExhausted, "heap: failed to remap after grow"), err)
	}

	if h.data != nil {
		_ = unix.Munmap(h.data)
	}
	h.data = data
	h.size = newSize
	return brk, nil
}

// Bytes implements Source.
func (h *File) Bytes() []byte { return h.data }

// Size implements Source.
func (h *File) Size() int { return h.size }

// FD returns the file descriptor, or -1 once closed.
func (h *File) FD() int {
	if h == nil || h.f == nil {
		return -1
	}
	return int(h.f.Fd())
}

// Close unmaps and closes the file.
func (h *File) Close() error {
	var err error
	if h.data != nil {
		_ = unix.Munmap(h.data)
		h.data = nil
	}
	if h.f != nil {
		err = h.f.Close()
		h.f = nil
	}
	return err
}
