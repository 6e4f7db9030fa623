package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

// setupFourBlocks allocates four 24-byte blocks at 16, 40, 64 and 88 with the
// free remainder of the first chunk after them.
func setupFourBlocks(t *testing.T) (*Allocator, [4]Ptr) {
	t.Helper()
	a := newTestAllocator(t, nil)
	var ps [4]Ptr
	for i := range ps {
		ps[i] = mustAlloc(t, a, 16)
	}
	require.Equal(t, [4]Ptr{16, 40, 64, 88}, ps)
	return a, ps
}

func Test_Coalesce_BothNeighboursAllocated(t *testing.T) {
	a, ps := setupFourBlocks(t)
	before := a.Stats().CoalesceNone

	mustFree(t, a, ps[1])

	require.Equal(t, before+1, a.Stats().CoalesceNone)
	require.Equal(t, uint32(24), blockSize(a, ps[1]))
	require.True(t, a.free.contains(ps[1]))
}

func Test_Coalesce_NextFree(t *testing.T) {
	a, ps := setupFourBlocks(t)
	mustFree(t, a, ps[1])

	mustFree(t, a, ps[0])

	require.Equal(t, 1, a.Stats().CoalesceNext)
	require.Equal(t, uint32(48), blockSize(a, ps[0]))
	require.True(t, a.free.contains(ps[0]))
	require.False(t, a.free.contains(ps[1]))
}

func Test_Coalesce_PrevFreeStaysIndexed(t *testing.T) {
	a, ps := setupFourBlocks(t)
	mustFree(t, a, ps[1])
	node, ok := a.free.node(ps[1])
	require.True(t, ok)
	order := freeBlocks(a)

	mustFree(t, a, ps[2])

	require.Equal(t, 1, a.Stats().CoalescePrev)
	require.Equal(t, uint32(48), blockSize(a, ps[1]))
	require.False(t, a.free.contains(ps[2]))

	// The predecessor was neither removed nor reinserted.
	after, ok := a.free.node(ps[1])
	require.True(t, ok)
	require.Same(t, node, after)
	require.Equal(t, order, freeBlocks(a))
}

func Test_Coalesce_BothFree(t *testing.T) {
	a, ps := setupFourBlocks(t)
	mustFree(t, a, ps[0])
	mustFree(t, a, ps[2])

	mustFree(t, a, ps[1])

	require.Equal(t, 1, a.Stats().CoalesceBoth)
	require.Equal(t, uint32(72), blockSize(a, ps[0]))
	require.Len(t, freeBlocks(a), 2)
}

func Test_Coalesce_AllFourCollapseToOneBlock(t *testing.T) {
	a, ps := setupFourBlocks(t)

	mustFree(t, a, ps[1]) // none
	mustFree(t, a, ps[0]) // next
	mustFree(t, a, ps[2]) // prev
	mustFree(t, a, ps[3]) // both, with the tail

	s := a.Stats()
	require.Equal(t, 1, s.CoalesceNext)
	require.Equal(t, 1, s.CoalescePrev)
	require.Equal(t, 1, s.CoalesceBoth)

	require.Equal(t, []Ptr{16}, freeBlocks(a))
	require.Equal(t, uint32(format.ChunkSize), blockSize(a, 16))
}

func Test_Coalesce_NoAdjacentFreeAfterEveryFree(t *testing.T) {
	a := newTestAllocator(t, nil)

	var ps []Ptr
	for i := 0; i < 40; i++ {
		ps = append(ps, mustAlloc(t, a, uint32(8+i*13)))
	}
	// Free every third block, then the rest, checking adjacency each time.
	for start := 0; start < 3; start++ {
		for i := start; i < len(ps); i += 3 {
			mustFree(t, a, ps[i])
			requireNoAdjacentFree(t, a)
		}
	}
	require.Len(t, freeBlocks(a), 1)
}

func requireNoAdjacentFree(t *testing.T, a *Allocator) {
	t.Helper()
	prevFree := false
	require.NoError(t, a.Walk(func(b BlockInfo) error {
		require.False(t, prevFree && !b.Allocated, "adjacent free blocks at %d", b.Ptr)
		prevFree = !b.Allocated
		return nil
	}))
}
