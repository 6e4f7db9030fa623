// Package trace replays allocation workloads against heapkit allocators.
//
// # Trace Format
//
// Traces use the malloc-lab text format: four header numbers followed by one
// operation per line.
//
//	20000        suggested heap size (informational)
//	2            number of distinct ids
//	5            number of operations
//	1            weight (informational)
//	a 0 512      allocate 512 bytes as id 0
//	a 1 128
//	r 0 640      reallocate id 0 to 640 bytes
//	f 1          free id 1
//	f 0
//
// Blank lines and lines starting with '#' are ignored.
//
// # Replay
//
// Replay runs a trace through a fresh allocator. Every payload is filled with
// a pattern derived from its id and its xxh3 checksum is recorded; the
// checksum is verified before the block is freed or reallocated, and a
// realloc must preserve the pattern up to the smaller of the two sizes. A
// mismatch is reported as ErrIntegrity. ReplayAll runs several traces
// concurrently with one allocator each.
package trace
