package dirty

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeMapping is an in-memory stand-in for a file arena.
type fakeMapping struct {
	data []byte
}

func (f *fakeMapping) Bytes() []byte { return f.data }
func (f *fakeMapping) FD() int       { return -1 }

func newTestTracker(t testing.TB, size int) *Tracker {
	t.Helper()
	return NewTracker(&fakeMapping{data: make([]byte, size)})
}

func Test_DirtyTracker_PageAlignment(t *testing.T) {
	tracker := newTestTracker(t, 8192)

	tracker.Add(100, 200)

	coalesced := tracker.coalesce()
	require.Len(t, coalesced, 1)
	require.Equal(t, Range{Off: 0, Len: 4096}, coalesced[0])
}

func Test_DirtyTracker_Coalesce_Adjacent(t *testing.T) {
	tracker := newTestTracker(t, 16384)

	tracker.Add(4096, 4096)
	tracker.Add(8192, 4096)

	require.Equal(t, []Range{{Off: 4096, Len: 8192}}, tracker.coalesce())
}

func Test_DirtyTracker_Coalesce_Overlapping(t *testing.T) {
	tracker := newTestTracker(t, 16384)

	tracker.Add(0, 8192)
	tracker.Add(4096, 8192)

	require.Equal(t, []Range{{Off: 0, Len: 12288}}, tracker.coalesce())
}

func Test_DirtyTracker_Coalesce_Separate(t *testing.T) {
	tracker := newTestTracker(t, 32768)

	tracker.Add(20480, 4096)
	tracker.Add(0, 4096)

	require.Equal(t, []Range{{Off: 0, Len: 4096}, {Off: 20480, Len: 4096}}, tracker.coalesce())
}

func Test_DirtyTracker_Coalesce_Contained(t *testing.T) {
	tracker := newTestTracker(t, 32768)

	tracker.Add(0, 16384)
	tracker.Add(4100, 8)

	require.Equal(t, []Range{{Off: 0, Len: 16384}}, tracker.coalesce())
}

func Test_DirtyTracker_IgnoresEmptyRanges(t *testing.T) {
	tracker := newTestTracker(t, 4096)

	tracker.Add(64, 0)
	tracker.Add(64, -4)

	require.Zero(t, tracker.Len())
	require.Nil(t, tracker.DebugCoalescedRanges())
}

func Test_DirtyTracker_Reset(t *testing.T) {
	tracker := newTestTracker(t, 4096)

	tracker.Add(0, 16)
	tracker.Add(24, 16)
	require.Len(t, tracker.DebugRanges(), 2)

	tracker.Reset()
	require.Empty(t, tracker.DebugRanges())
}

func Test_DirtyTracker_DebugRangesIsCopy(t *testing.T) {
	tracker := newTestTracker(t, 4096)
	tracker.Add(8, 16)

	got := tracker.DebugRanges()
	got[0].Off = 999

	require.Equal(t, int64(8), tracker.DebugRanges()[0].Off)
}

func Test_DirtyTracker_FlushEmptyWithCancelled(t *testing.T) {
	tracker := newTestTracker(t, 4096)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Nothing to flush returns before looking at the context.
	require.NoError(t, tracker.FlushDataOnly(ctx))
}

func Test_DirtyTracker_FlushCancelledKeepsRanges(t *testing.T) {
	tracker := newTestTracker(t, 4096)
	tracker.Add(8, 16)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, tracker.Flush(ctx, FlushAuto), context.Canceled)
	require.Equal(t, 1, tracker.Len())
}
