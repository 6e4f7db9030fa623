package format

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Tag is a packed header or footer word.
//
// Layout (little-endian uint32):
//
//	31                     3  2  1  0
//	 s  s  s  s  ...  s  s  s  0  0  a
//
// The s bits hold the total block size (a multiple of DoubleWordSize, so its
// low three bits are always zero) and a is set when the block is allocated.
type Tag uint32

// Pack combines a block size and an allocated flag into a Tag. Only the
// low bit is used for the flag; size bits below DoubleWordSize are dropped.
func Pack(size uint32, allocated bool) Tag {
	t := Tag(size &^ FlagMask)
	if allocated {
		t |= AllocatedBit
	}
	return t
}

// Size returns the block size recorded in the tag.
func (t Tag) Size() uint32 { return uint32(t) &^ FlagMask }

// Allocated reports whether the tag marks its block as in use.
func (t Tag) Allocated() bool { return t&AllocatedBit != 0 }

// String renders the tag the way heap diagrams draw it: "size:a" or "size:f".
func (t Tag) String() string {
	if t.Allocated() {
		return fmt.Sprintf("%d:a", t.Size())
	}
	return fmt.Sprintf("%d:f", t.Size())
}

// ReadTag returns the tag stored at off. The caller guarantees bounds.
func ReadTag(b []byte, off int) Tag {
	return Tag(ReadU32(b, off))
}

// PutTag writes t at off. The caller guarantees bounds.
func PutTag(b []byte, off int, t Tag) {
	PutU32(b, off, uint32(t))
}

// DecodeTag is the checked variant of ReadTag used when walking a heap image
// that has not been validated yet.
func DecodeTag(b []byte, off int) (Tag, error) {
	if off < 0 || off+WordSize > len(b) {
		return 0, errors.Wrapf(ErrTruncated, "tag at %d (buffer %d bytes)", off, len(b))
	}
	if off%WordSize != 0 {
		return 0, errors.Wrapf(ErrMisaligned, "tag at %d", off)
	}
	return ReadTag(b, off), nil
}
