package dirty

import (
	"context"
	"slices"

	"github.com/joshuapare/heapkit/heap"
)

const (
	// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
	defaultRangeCapacity = 64

	// standardPageSize is the typical OS page size (4KB).
	standardPageSize = 4096
)

// FlushMode controls durability guarantees for a flush.
type FlushMode int

const (
	// FlushAuto msyncs dirty pages, then fdatasyncs the file. On macOS it
	// uses fsync.
	FlushAuto FlushMode = iota

	// FlushDataOnly only msyncs dirty pages. The caller syncs later.
	FlushDataOnly

	// FlushFull msyncs dirty pages and fdatasyncs; on macOS it issues
	// F_FULLFSYNC so the drive cache is flushed too.
	FlushFull
)

// Range is a dirty byte range in arena offsets.
type Range struct {
	Off int64
	Len int64
}

// End returns the offset one past the range.
func (r Range) End() int64 { return r.Off + r.Len }

// Tracker accumulates dirty ranges and flushes them.
//
// NOT thread-safe.
type Tracker struct {
	m        heap.Mapping
	ranges   []Range // raw ranges, coalesced at flush time
	pageSize int64
}

// NewTracker creates a dirty tracker for the given mapping.
func NewTracker(m heap.Mapping) *Tracker {
	return &Tracker{
		m:        m,
		ranges:   make([]Range, 0, defaultRangeCapacity),
		pageSize: standardPageSize,
	}
}

// Add records a dirty range. Zero and negative lengths are ignored.
func (t *Tracker) Add(off, length int) {
	if length <= 0 {
		return
	}
	t.ranges = append(t.ranges, Range{
		Off: int64(off),
		Len: int64(length),
	})
}

// Len returns the number of raw ranges recorded since the last flush.
func (t *Tracker) Len() int { return len(t.ranges) }

// FlushDataOnly msyncs all dirty ranges and clears them.
//
// If ctx is cancelled mid-flush some ranges may have reached disk while
// others have not; the recorded ranges are kept so a retry covers them.
func (t *Tracker) FlushDataOnly(ctx context.Context) error {
	if len(t.ranges) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data := t.m.Bytes()
	if len(data) == 0 {
		return nil
	}
	if err := t.flushRanges(ctx, data); err != nil {
		return err
	}

	t.ranges = t.ranges[:0]
	return nil
}

// Flush msyncs all dirty ranges and then syncs the file descriptor according
// to mode.
func (t *Tracker) Flush(ctx context.Context, mode FlushMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.FlushDataOnly(ctx); err != nil {
		return err
	}
	if mode == FlushDataOnly {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fd := t.m.FD()
	if fd < 0 {
		return nil
	}
	return fdatasync(fd, mode == FlushFull)
}

// Reset clears all tracked ranges.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
}

// DebugRanges returns a copy of the raw, uncoalesced ranges.
func (t *Tracker) DebugRanges() []Range {
	return slices.Clone(t.ranges)
}

// DebugCoalescedRanges returns the page-aligned, merged ranges a flush would
// write.
func (t *Tracker) DebugCoalescedRanges() []Range {
	return t.coalesce()
}

// coalesce page-aligns all ranges, sorts them, and merges overlapping or
// adjacent ones.
func (t *Tracker) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		start := (r.Off / t.pageSize) * t.pageSize

		end := r.End()
		if end%t.pageSize != 0 {
			end = ((end / t.pageSize) + 1) * t.pageSize
		}

		aligned[i] = Range{Off: start, Len: end - start}
	}

	slices.SortFunc(aligned, func(a, b Range) int {
		switch {
		case a.Off < b.Off:
			return -1
		case a.Off > b.Off:
			return 1
		}
		return 0
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]
	for _, next := range aligned[1:] {
		if next.Off <= current.End() {
			if next.End() > current.End() {
				current.Len = next.End() - current.Off
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}
