package format

import "golang.org/x/exp/constraints"

// AlignUp returns n rounded up to the next multiple of alignment, which must
// be a power of two.
//
// Example:
//
//	AlignUp(1, 8)    = 8
//	AlignUp(8, 8)    = 8
//	AlignUp(9, 8)    = 16
//	AlignUp(1, 4096) = 4096
func AlignUp[T constraints.Integer](n, alignment T) T {
	return (n + alignment - 1) &^ (alignment - 1)
}

// AlignDown returns n rounded down to a multiple of alignment, which must be
// a power of two.
func AlignDown[T constraints.Integer](n, alignment T) T {
	return n &^ (alignment - 1)
}

// Align8 returns n aligned up to the next double-word boundary.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
//	Align8(16) = 16
func Align8[T constraints.Integer](n T) T {
	return AlignUp(n, T(DoubleWordSize))
}

// IsAligned8 reports whether n sits on a double-word boundary.
func IsAligned8[T constraints.Integer](n T) bool {
	return n&T(AlignmentMask) == 0
}
