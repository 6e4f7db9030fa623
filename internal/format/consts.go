// Package format holds the boundary-tag encoding shared by every block in a
// heapkit arena. It knows nothing about free lists or growth; it only says
// how a block's size and allocated bit are packed into a word and where those
// words live relative to the payload.
package format

const (
	// WordSize is the width of a header or footer tag in bytes.
	WordSize = 4

	// DoubleWordSize is the payload alignment unit. Every block size and every
	// payload offset is a multiple of it.
	DoubleWordSize = 8

	// Overhead is the number of metadata bytes carried by every block: one
	// header word and one footer word.
	Overhead = 2 * WordSize

	// AlignmentMask masks the low bits that must be zero in an aligned size.
	AlignmentMask = DoubleWordSize - 1

	// LinkSize is the width reserved for one free-index link.
	LinkSize = 8

	// MinPayload is the smallest payload ever handed out. Requests of
	// DoubleWordSize bytes or less are rounded up to it.
	MinPayload = 2 * DoubleWordSize

	// MinBlockSize is the smallest block the allocator will create. A free
	// block must be able to carry two index links on top of its tags, and a
	// split only happens when the remainder is at least this large.
	MinBlockSize = Overhead + 2*LinkSize

	// ChunkSize is the default number of bytes requested from the arena when
	// the free index cannot satisfy an allocation.
	ChunkSize = 1 << 12

	// SentinelReserve is the size of the initial reservation: one alignment
	// pad word, the prologue header and footer, and the epilogue header.
	SentinelReserve = 4 * WordSize

	// PrologueSize is the total size of the prologue block (tags only).
	PrologueSize = DoubleWordSize

	// FirstPayload is the payload offset of the prologue in a fresh arena.
	FirstPayload = 2 * WordSize

	// AllocatedBit is set in a tag when the block is in use.
	AllocatedBit = 0x1

	// FlagMask covers the low tag bits reserved for flags.
	FlagMask = 0x7

	// MaxBlockSize is the largest size representable in a tag.
	MaxBlockSize = 0xFFFFFFFF &^ FlagMask
)
