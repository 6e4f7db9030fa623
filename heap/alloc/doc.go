// Package alloc implements a boundary-tag allocator over a growable heap
// arena.
//
// # Overview
//
// The allocator manages one heap.Source as a sequence of variable-size
// blocks. Every block carries a header word before its payload and a footer
// word at its end; both record the block's total size and an allocated bit.
// Reading the previous block's footer lets the allocator find its left
// neighbour in O(1), which is what makes constant-time coalescing possible.
//
// # Heap Layout
//
//	offset 0      4        8        12              end-4
//	 | pad(0) | hdr(8:a) | ftr(8:a) | user blocks... | hdr(0:a) |
//	          |    prologue block   |                 | epilogue |
//
// The prologue and epilogue are allocated sentinels, so every real block has
// a well-formed neighbour on each side and no walk leaves the heap. Growth
// writes the new free block's header over the old epilogue and places a new
// epilogue at the new end.
//
// # Block Layout
//
//	bp-4        bp                       bp+size-8   bp+size-4
//	 | hdr(s:a) | payload ...            | ftr(s:a) | next hdr ...
//
// A block is identified by its payload offset (Ptr). Sizes are multiples of
// 8, every payload is 8-byte aligned, and the smallest block is 24 bytes.
//
// # Free-Block Index
//
// Free blocks are kept in an unordered doubly linked list whose nodes live in
// a registry keyed by Ptr, not in the freed payload bytes. A block is in the
// registry exactly when its allocated bit is clear. The fit selector scans
// the list, returning an exact match immediately and otherwise the smallest
// strictly larger block it saw.
//
// # Operations
//
//   - Alloc(n): normalize n through the size-class table, find a fit or grow
//     the arena by max(asize, ChunkSize), then place (splitting when the
//     remainder is at least 24 bytes).
//   - Free(p): tag the block free and coalesce with free neighbours.
//   - Realloc(p, n): keep the block if it already fits, absorb a free right
//     neighbour if that is enough, otherwise move.
//
// Misuse is reported: freeing a pointer the allocator never returned yields
// ErrInvalidPointer and freeing twice yields ErrDoubleFree. Arena exhaustion
// yields ErrOutOfMemory from every path, Realloc included.
//
// # Thread Safety
//
// An Allocator is not safe for concurrent use. Independent allocators over
// independent arenas may be used from different goroutines.
//
// # Debugging
//
// Building with -tags debug_heapkit turns on bounds assertions in the block
// descriptor and runs Check after every mutating operation. Setting
// HEAPKIT_LOG_ALLOC in the environment logs growth and relocation to stderr
// when no Logger is configured.
package alloc
