//go:build linux || darwin || freebsd

package heap

import (
	"os"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestMapped_CommitsPagesOnDemand(t *testing.T) {
	m, err := NewMapped(1 << 20)
	require.NoError(t, err)
	defer m.Close()

	page := os.Getpagesize()

	base, err := m.Extend(16)
	require.NoError(t, err)
	require.Equal(t, 0, base)
	require.Equal(t, page, m.committed)

	// Writes within the break must not fault.
	m.Bytes()[15] = 0x7F

	base, err = m.Extend(page)
	require.NoError(t, err)
	require.Equal(t, 16, base)
	require.Equal(t, 2*page, m.committed)
	m.Bytes()[m.Size()-1] = 0x7F
}

func TestMapped_FixedBase(t *testing.T) {
	m, err := NewMapped(1 << 20)
	require.NoError(t, err)
	defer m.Close()

	_, err = m.Extend(8)
	require.NoError(t, err)
	first := &m.Bytes()[0]

	_, err = m.Extend(256 << 10)
	require.NoError(t, err)
	require.Same(t, first, &m.Bytes()[0])
}

func TestMapped_Exhausted(t *testing.T) {
	m, err := NewMapped(4096)
	require.NoError(t, err)
	defer m.Close()

	_, err = m.Extend(m.Max() + 1)
	require.True(t, errors.Is(err, ErrExhausted))
	require.Zero(t, m.Size())
}

func TestMapped_Closed(t *testing.T) {
	m, err := NewMapped(4096)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	_, err = m.Extend(8)
	require.True(t, errors.Is(err, ErrClosed))
	require.Nil(t, m.Bytes())
}
