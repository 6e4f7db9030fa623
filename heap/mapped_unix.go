//go:build linux || darwin || freebsd

package heap

import (
	"os"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"

	"github.com/joshuapare/heapkit/internal/format"
)

// Mapped is an arena carved out of an anonymous virtual reservation. The
// whole cap is reserved PROT_NONE up front and pages are made read-write as
// the break crosses them, so the base address is fixed for the arena's
// lifetime.
type Mapped struct {
	region    []byte // full reservation
	brk       int
	committed int // bytes with PROT_READ|PROT_WRITE, page aligned
	pageSize  int
}

// NewMapped reserves max bytes (DefaultMaxSize when max <= 0) of address
// space without committing any of it.
func NewMapped(max int) (*Mapped, error) {
	pageSize := os.Getpagesize()
	max = format.AlignUp(capOrDefault(max), pageSize)

	region, err := unix.Mmap(-1, 0, max, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, errors.Wrapf(err, "heap: reserve %d bytes", max)
	}
	return &Mapped{region: region, pageSize: pageSize}, nil
}

// Extend implements Source.
func (m *Mapped) Extend(n int) (int, error) {
	if m.region == nil {
		return 0, ErrClosed
	}
	brk := m.brk
	if err := checkIncrement(brk, n, len(m.region)); err != nil {
		return 0, err
	}

	need := format.AlignUp(brk+n, m.pageSize)
	if need > m.committed {
		if err := unix.Mprotect(m.region[m.committed:need], unix.PROT_READ|unix.PROT_WRITE); err != nil {
			return 0, errors.WithSecondaryError(errors.Wrapf(ErrExhausted, "heap: commit [%d, %d)", m.committed, need), err)
		}
		m.committed = need
	}
	m.brk = brk + n
	return brk, nil
}

// Bytes implements Source.
func (m *Mapped) Bytes() []byte {
	if m.region == nil {
		return nil
	}
	return m.region[:m.brk]
}

// Size implements Source.
func (m *Mapped) Size() int { return m.brk }

// Max returns the size of the reservation.
func (m *Mapped) Max() int { return len(m.region) }

// Close releases the reservation. The arena must not be used afterwards.
func (m *Mapped) Close() error {
	if m.region == nil {
		return nil
	}
	err := unix.Munmap(m.region)
	m.region = nil
	m.brk, m.committed = 0, 0
	return err
}
