//go:build !(linux || freebsd || darwin)

package dirty

import "context"

// File arenas are not available on this platform, so there is never a
// mapping to flush.
func (t *Tracker) flushRanges(ctx context.Context, _ []byte) error {
	return ctx.Err()
}

func fdatasync(int, bool) error { return nil }
