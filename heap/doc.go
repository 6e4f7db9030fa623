// Package heap provides the growable arenas that heapkit allocators manage.
//
// # Overview
//
// An arena is a single contiguous byte region with a break: bytes below the
// break belong to the allocator, bytes above it do not exist yet. The only way
// to grow an arena is Extend, which moves the break forward and returns the
// old break as the base of the new bytes. Arenas never shrink and never hand
// memory back to the operating system.
//
// Offsets are the stable currency. An offset returned by Extend names the same
// logical byte for the lifetime of the arena, even for implementations whose
// backing memory is remapped on growth.
//
// # Implementations
//
//   - Memory: a Go slice with its capacity reserved up front. Never moves.
//   - Mapped: an anonymous virtual reservation committed with mprotect as the
//     break advances. Never moves. Falls back to Memory where mmap is not
//     available.
//   - File: a shared file mapping grown with ftruncate and a remap. The heap
//     image survives process exit and can be re-attached later. Slices
//     obtained before an Extend are invalid after it.
//
// # Errors
//
// Extend returns an error wrapping ErrExhausted when the increment is
// negative or would carry the break past the arena's cap. Operations on a
// closed arena return ErrClosed.
package heap
