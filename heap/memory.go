package heap

// Memory is a slice-backed arena. The full capacity is reserved when the
// arena is created, so the backing array never moves and payload slices stay
// valid across Extend.
type Memory struct {
	data []byte
	max  int
}

// NewMemory creates an empty arena that can grow to max bytes
// (DefaultMaxSize when max <= 0).
func NewMemory(max int) *Memory {
	max = capOrDefault(max)
	return &Memory{data: make([]byte, 0, max), max: max}
}

// Extend implements Source.
func (m *Memory) Extend(n int) (int, error) {
	brk := len(m.data)
	if err := checkIncrement(brk, n, m.max); err != nil {
		return 0, err
	}
	m.data = m.data[:brk+n]
	return brk, nil
}

// Bytes implements Source.
func (m *Memory) Bytes() []byte { return m.data }

// Size implements Source.
func (m *Memory) Size() int { return len(m.data) }

// Max returns the arena cap.
func (m *Memory) Max() int { return m.max }

// Reset moves the break back to zero and clears the bytes that were in use.
// It exists for drivers that replay many workloads through one arena.
func (m *Memory) Reset() {
	clear(m.data)
	m.data = m.data[:0]
}
