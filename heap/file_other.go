//go:build !(linux || darwin)

package heap

import "github.com/cockroachdb/errors"

// File is only available where shared file mappings are supported.
type File struct{}

// CreateFile is not supported on this platform.
func CreateFile(path string, _ int) (*File, error) {
	return nil, errors.Wrapf(ErrUnsupported, "heap: file arena %s", path)
}

// OpenFile is not supported on this platform.
func OpenFile(path string, _ int) (*File, error) {
	return nil, errors.Wrapf(ErrUnsupported, "heap: file arena %s", path)
}

func (h *File) Extend(int) (int, error) { return 0, ErrClosed }
func (h *File) Bytes() []byte           { return nil }
func (h *File) Size() int               { return 0 }
func (h *File) FD() int                 { return -1 }
func (h *File) Close() error            { return nil }
