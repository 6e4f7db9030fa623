package alloc

import (
	"fmt"
	"io"
)

// Stats holds allocator counters. Heap-shape fields (HeapSize, FreeBlocks,
// FreeBytes) are computed when Stats is called.
type Stats struct {
	AllocCalls   int // Total Alloc() calls, zero-size included
	FreeCalls    int // Total Free() calls, Nil included
	ReallocCalls int // Realloc() calls with a non-Nil pointer
	ReallocKeep  int // Reallocs satisfied by the existing block
	ReallocGrow  int // Reallocs that absorbed a free right neighbour
	ReallocMove  int // Reallocs that allocated, copied and freed

	Splits       int // Placements that split off a free remainder
	CoalesceNone int // Frees with both neighbours allocated
	CoalesceNext int // Merges with the right neighbour only
	CoalescePrev int // Merges into the left neighbour only
	CoalesceBoth int // Three-way merges

	GrowCalls int   // Arena extensions, the initial chunk included
	GrowBytes int64 // Bytes added by those extensions

	LiveBlocks int   // Allocated blocks
	LiveBytes  int64 // Requested payload bytes of allocated blocks
	PeakBytes  int64 // High-water mark of LiveBytes

	HeapSize   int   // Arena size in bytes
	FreeBlocks int   // Blocks in the free index
	FreeBytes  int64 // Total size of those blocks
}

// Stats returns a snapshot of the allocator counters.
func (a *Allocator) Stats() Stats {
	s := a.stats
	s.HeapSize = len(a.mem)
	a.free.each(func(p Ptr) bool {
		s.FreeBlocks++
		s.FreeBytes += int64(a.block(p).size())
		return true
	})
	return s
}

// Utilization returns peak requested payload divided by heap size: the
// fraction of the arena that was ever doing useful work at once.
func (a *Allocator) Utilization() float64 {
	if len(a.mem) == 0 {
		return 0
	}
	return float64(a.stats.PeakBytes) / float64(len(a.mem))
}

// PrintStats writes a human-readable summary of the counters to w.
func (a *Allocator) PrintStats(w io.Writer) {
	s := a.Stats()
	fmt.Fprintf(w, "=== Allocator Statistics (%s) ===\n", a.classes)
	fmt.Fprintf(w, "Heap size:      %d bytes (%d grows, %d bytes)\n", s.HeapSize, s.GrowCalls, s.GrowBytes)
	fmt.Fprintf(w, "Live:           %d blocks, %d bytes (peak %d)\n", s.LiveBlocks, s.LiveBytes, s.PeakBytes)
	fmt.Fprintf(w, "Free:           %d blocks, %d bytes\n", s.FreeBlocks, s.FreeBytes)
	fmt.Fprintf(w, "Calls:          alloc=%d free=%d realloc=%d\n", s.AllocCalls, s.FreeCalls, s.ReallocCalls)
	fmt.Fprintf(w, "Realloc:        keep=%d grow=%d move=%d\n", s.ReallocKeep, s.ReallocGrow, s.ReallocMove)
	fmt.Fprintf(w, "Splits:         %d\n", s.Splits)
	fmt.Fprintf(w, "Coalesce:       none=%d next=%d prev=%d both=%d\n",
		s.CoalesceNone, s.CoalesceNext, s.CoalescePrev, s.CoalesceBoth)
	fmt.Fprintf(w, "Utilization:    %.1f%%\n", a.Utilization()*100)
}
