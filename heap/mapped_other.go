//go:build !(linux || darwin || freebsd)

package heap

// Mapped falls back to a slice-backed arena where anonymous mappings are not
// available. It keeps the fixed-base property.
type Mapped struct {
	*Memory
}

// NewMapped creates an arena that can grow to max bytes.
func NewMapped(max int) (*Mapped, error) {
	return &Mapped{Memory: NewMemory(max)}, nil
}

// Close releases the arena.
func (m *Mapped) Close() error {
	m.Memory = NewMemory(m.max)
	return nil
}
