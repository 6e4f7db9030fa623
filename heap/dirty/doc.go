// Package dirty tracks the byte ranges an allocator writes into a file-backed
// arena and flushes them to disk.
//
// # Overview
//
// Every tag write, split and realloc copy performed by heap/alloc reports the
// range it touched through the DirtyTracker interface. The Tracker records
// those ranges cheaply and defers all work to flush time, where they are:
//
//   - rounded out to 4KB page boundaries
//   - sorted and merged when they overlap or touch
//   - handed to msync(MS_SYNC)
//
// Dirty pages: [0, 1, 2, 5, 6] → Ranges: [0x0-0x3000, 0x5000-0x7000]
//
// # Usage
//
//	arena, _ := heap.CreateFile(path, 0)
//	tracker := dirty.NewTracker(arena)
//	a, _ := alloc.New(arena, &alloc.Config{Dirty: tracker})
//	// ... Alloc / Free / Realloc ...
//	err := tracker.Flush(ctx, dirty.FlushAuto)
//
// Ranges are arena offsets, not addresses, so they remain meaningful when a
// File arena remaps itself on growth. The tracker reads the mapping only at
// flush time.
//
// # Thread Safety
//
// A Tracker is not safe for concurrent use. It shares the single-threaded
// contract of the allocator feeding it.
package dirty
