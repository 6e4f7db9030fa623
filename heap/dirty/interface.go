package dirty

import "context"

// DirtyTracker is the minimal interface for tracking modified byte ranges.
//
// Allocators only notify about dirty regions; they never decide when to
// flush.
type DirtyTracker interface {
	// Add marks a byte range as dirty. off is an arena offset.
	Add(off, length int)
}

// FlushableTracker extends DirtyTracker with flushing, for callers that
// control durability (drivers, checkpoints).
type FlushableTracker interface {
	DirtyTracker

	// FlushDataOnly msyncs the recorded ranges without syncing the descriptor.
	FlushDataOnly(ctx context.Context) error

	// Flush msyncs the recorded ranges and syncs the descriptor per mode.
	Flush(ctx context.Context, mode FlushMode) error
}

var _ FlushableTracker = (*Tracker)(nil)
