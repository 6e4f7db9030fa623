package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_FindFit_EmptyIndex(t *testing.T) {
	a := newTestAllocator(t, nil)
	mustAlloc(t, a, 4088)

	require.Empty(t, freeBlocks(a))
	require.Equal(t, Nil, a.findFit(24))
}

func Test_FindFit_Policy(t *testing.T) {
	a := newTestAllocator(t, nil)

	x48 := mustAlloc(t, a, 40)
	mustAlloc(t, a, 16)
	x32 := mustAlloc(t, a, 24)
	mustAlloc(t, a, 16)
	x72 := mustAlloc(t, a, 64)
	mustAlloc(t, a, 16)

	mustFree(t, a, x48)
	mustFree(t, a, x32)
	mustFree(t, a, x72)

	// Exact matches win.
	require.Equal(t, x32, a.findFit(32))
	require.Equal(t, x48, a.findFit(48))
	require.Equal(t, x72, a.findFit(72))

	// Otherwise the smallest strictly larger block.
	require.Equal(t, x32, a.findFit(24))
	require.Equal(t, x48, a.findFit(40))
	require.Equal(t, x72, a.findFit(56))

	// Only the chunk remainder is large enough.
	tail := a.findFit(80)
	require.NotEqual(t, Nil, tail)
	require.NotContains(t, []Ptr{x32, x48, x72}, tail)

	require.Equal(t, Nil, a.findFit(8192))
}

func Test_FindFit_NeverReturnsAllocated(t *testing.T) {
	a := newTestAllocator(t, nil)
	for i := 0; i < 20; i++ {
		mustAlloc(t, a, uint32(16+i*8))
	}
	for _, asize := range []uint32{24, 64, 256, 1024} {
		p := a.findFit(asize)
		if p == Nil {
			continue
		}
		b := a.block(p)
		require.False(t, b.allocated())
		require.GreaterOrEqual(t, b.size(), asize)
	}
}
