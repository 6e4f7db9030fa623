package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSizeClasses_Exact(t *testing.T) {
	table := newSizeClassTable(ConfigExact)
	for _, n := range []uint32{1, 112, 448, 513, 20000} {
		require.Equal(t, n, table.round(n))
	}
	require.Zero(t, table.NumClasses())
}

func TestSizeClasses_BinaryPromotions(t *testing.T) {
	table := newSizeClassTable(ConfigBinary)

	require.Equal(t, uint32(128), table.round(112))
	require.Equal(t, uint32(512), table.round(448))
	require.Equal(t, uint32(111), table.round(111))
	require.Equal(t, uint32(113), table.round(113))
	require.Equal(t, "Binary", table.String())
}

func TestSizeClasses_BalancedBoundaries(t *testing.T) {
	table := newSizeClassTable(ConfigBalanced)

	require.Equal(t,
		[]uint32{768, 1152, 1728, 2592, 3888, 5832, 8752, 13128, 19696},
		table.boundaries)

	require.Equal(t, uint32(512), table.round(512), "small sizes are exact")
	require.Equal(t, uint32(768), table.round(513))
	require.Equal(t, uint32(768), table.round(768))
	require.Equal(t, uint32(1728), table.round(1153))
	require.Equal(t, uint32(19696), table.round(16384))
	require.Equal(t, uint32(16385), table.round(16385), "large sizes are exact")
}

func TestSizeClasses_IgnoresShrinkingPromotion(t *testing.T) {
	table := newSizeClassTable(SizeClassConfig{
		Name:       "Bad",
		Promotions: []Promotion{{From: 128, To: 64}},
	})
	require.Equal(t, uint32(128), table.round(128))
}

func Test_Alloc_UsesConfiguredClasses(t *testing.T) {
	exact := ConfigExact
	a := newTestAllocator(t, &Config{SizeClasses: &exact})
	p := mustAlloc(t, a, 112)
	got, err := a.UsableSize(p)
	require.NoError(t, err)
	require.Equal(t, 112, got)

	balanced := ConfigBalanced
	a = newTestAllocator(t, &Config{SizeClasses: &balanced})
	p = mustAlloc(t, a, 1000)
	got, err = a.UsableSize(p)
	require.NoError(t, err)
	require.Equal(t, 1152, got)
}
