package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/format"
)

// ============================================================================
// Test Helpers
// ============================================================================

// initialHeapSize is the arena size right after New with the default chunk:
// pad, prologue and epilogue plus one chunk.
const initialHeapSize = format.SentinelReserve + format.ChunkSize

// newTestAllocator creates an allocator over a 1MB in-memory arena.
func newTestAllocator(t testing.TB, cfg *Config) *Allocator {
	t.Helper()
	return newTestAllocatorCap(t, 1<<20, cfg)
}

// newTestAllocatorCap creates an allocator over an in-memory arena capped at max bytes.
func newTestAllocatorCap(t testing.TB, max int, cfg *Config) *Allocator {
	t.Helper()
	a, err := New(heap.NewMemory(max), cfg)
	require.NoError(t, err)
	requireValid(t, a)
	return a
}

// requireValid fails the test if the heap checker finds a problem.
func requireValid(t testing.TB, a *Allocator) {
	t.Helper()
	require.NoError(t, a.Check())
}

// mustAlloc allocates size bytes and checks the basic contract.
func mustAlloc(t testing.TB, a *Allocator, size uint32) Ptr {
	t.Helper()
	p, buf, err := a.Alloc(size)
	require.NoError(t, err)
	require.NotEqual(t, Nil, p)
	require.Len(t, buf, int(size))
	require.Zero(t, uint32(p)%format.DoubleWordSize, "ptr %d not 8-byte aligned", p)
	requireValid(t, a)
	return p
}

// mustFree frees p and re-checks the heap.
func mustFree(t testing.TB, a *Allocator, p Ptr) {
	t.Helper()
	require.NoError(t, a.Free(p))
	requireValid(t, a)
}

// fillPattern writes a seed-derived byte pattern into the first n payload bytes.
func fillPattern(t testing.TB, a *Allocator, p Ptr, n int, seed byte) {
	t.Helper()
	buf, err := a.Payload(p)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(buf), n)
	for i := 0; i < n; i++ {
		buf[i] = seed + byte(i)
	}
}

// requirePattern verifies the pattern written by fillPattern.
func requirePattern(t testing.TB, a *Allocator, p Ptr, n int, seed byte) {
	t.Helper()
	buf, err := a.Payload(p)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(buf), n)
	for i := 0; i < n; i++ {
		if buf[i] != seed+byte(i) {
			require.Failf(t, "pattern mismatch", "ptr %d byte %d: got %#x want %#x", p, i, buf[i], seed+byte(i))
		}
	}
}

// blockSize returns the total size recorded in p's header.
func blockSize(a *Allocator, p Ptr) uint32 {
	return a.block(p).size()
}

// freeBlocks returns the indexed blocks in list order.
func freeBlocks(a *Allocator) []Ptr {
	var out []Ptr
	a.free.each(func(p Ptr) bool {
		out = append(out, p)
		return true
	})
	return out
}

// recordingTracker collects every dirty range reported to it.
type recordingTracker struct {
	ranges [][2]int
}

func (r *recordingTracker) Add(off, length int) {
	r.ranges = append(r.ranges, [2]int{off, length})
}

func (r *recordingTracker) covers(off, length int) bool {
	for _, rg := range r.ranges {
		if rg[0] <= off && off+length <= rg[0]+rg[1] {
			return true
		}
	}
	return false
}
