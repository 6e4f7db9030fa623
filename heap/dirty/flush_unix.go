//go:build linux || freebsd

package dirty

import (
	"context"

	"golang.org/x/sys/unix"
)

// flushRanges msyncs each coalesced range.
//
// On Linux and FreeBSD, msync() accepts sub-slices of a mapping.
func (t *Tracker) flushRanges(ctx context.Context, data []byte) error {
	for _, r := range t.coalesce() {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := int(r.Off)
		end := min(int(r.End()), len(data))
		if start >= end {
			continue
		}
		if err := unix.Msync(data[start:end], unix.MS_SYNC); err != nil {
			return err
		}
	}
	return nil
}

// fdatasync syncs file data. fullfsync has no meaning here.
func fdatasync(fd int, _ bool) error {
	return unix.Fdatasync(fd)
}
