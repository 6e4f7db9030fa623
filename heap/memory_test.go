package heap

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestMemory_ExtendReturnsOldBreak(t *testing.T) {
	m := NewMemory(1 << 16)

	base, err := m.Extend(16)
	require.NoError(t, err)
	require.Equal(t, 0, base)

	base, err = m.Extend(4096)
	require.NoError(t, err)
	require.Equal(t, 16, base)
	require.Equal(t, 4112, m.Size())
	require.Len(t, m.Bytes(), 4112)
}

func TestMemory_NewBytesAreZero(t *testing.T) {
	m := NewMemory(1 << 12)
	_, err := m.Extend(64)
	require.NoError(t, err)
	for i := range m.Bytes() {
		m.Bytes()[i] = 0xAA
	}
	m.Reset()

	_, err = m.Extend(64)
	require.NoError(t, err)
	for i, b := range m.Bytes() {
		require.Zero(t, b, "byte %d", i)
	}
}

func TestMemory_Exhausted(t *testing.T) {
	m := NewMemory(4096)

	_, err := m.Extend(4096)
	require.NoError(t, err)

	_, err = m.Extend(1)
	require.True(t, errors.Is(err, ErrExhausted))
	require.Equal(t, 4096, m.Size(), "failed extend must not move the break")

	_, err = m.Extend(-8)
	require.True(t, errors.Is(err, ErrExhausted))
}

func TestMemory_NeverMoves(t *testing.T) {
	m := NewMemory(1 << 20)
	_, err := m.Extend(8)
	require.NoError(t, err)
	first := &m.Bytes()[0]

	_, err = m.Extend(1 << 19)
	require.NoError(t, err)
	require.Same(t, first, &m.Bytes()[0])
}

func TestMemory_DefaultCap(t *testing.T) {
	require.Equal(t, DefaultMaxSize, NewMemory(0).Max())
}
