package alloc

import (
	"math"

	"github.com/joshuapare/heapkit/internal/format"
)

// Promotion rounds one exact request size up to a larger one.
type Promotion struct {
	From uint32
	To   uint32
}

// SizeClassConfig defines how request sizes are rounded before the
// double-word rounding every request gets.
type SizeClassConfig struct {
	// Name for this configuration (for reports and benchmarks)
	Name string

	// Exact request sizes that are bumped to a fixed bucket
	Promotions []Promotion

	// Geometric classes: requests in (SmallMax, MediumMax] round up to the
	// next class boundary. Disabled when GrowthFactor <= 1.
	SmallMax     uint32
	MediumMax    uint32
	GrowthFactor float64
}

// Predefined configurations.
var (
	// ConfigExact applies no rounding beyond double-word alignment.
	ConfigExact = SizeClassConfig{
		Name: "Exact",
	}

	// ConfigBinary bumps 112 to 128 and 448 to 512. Those two sizes
	// dominate the binary-tree malloc-lab traces, and the promotion lets a
	// freed node be reused by its larger sibling.
	ConfigBinary = SizeClassConfig{
		Name: "Binary",
		Promotions: []Promotion{
			{From: 112, To: 128},
			{From: 448, To: 512},
		},
	}

	// ConfigBalanced keeps small requests exact and rounds 512B-16KB
	// requests to 1.5x geometric classes.
	ConfigBalanced = SizeClassConfig{
		Name:         "Balanced",
		SmallMax:     512,
		MediumMax:    16384,
		GrowthFactor: 1.5,
	}

	// DefaultSizeClasses is used when Config.SizeClasses is nil.
	DefaultSizeClasses = ConfigBinary
)

// sizeClassTable holds the computed rounding rules.
type sizeClassTable struct {
	config     SizeClassConfig
	promote    map[uint32]uint32
	boundaries []uint32 // ascending geometric class sizes
}

// newSizeClassTable computes class boundaries from config.
func newSizeClassTable(config SizeClassConfig) *sizeClassTable {
	table := &sizeClassTable{
		config:  config,
		promote: make(map[uint32]uint32, len(config.Promotions)),
	}
	for _, p := range config.Promotions {
		if p.To > p.From {
			table.promote[p.From] = p.To
		}
	}

	if config.GrowthFactor > 1 && config.SmallMax < config.MediumMax {
		size := format.Align8(config.SmallMax)
		for size < config.MediumMax {
			next := format.Align8(uint32(math.Ceil(float64(size) * config.GrowthFactor)))
			if next <= size {
				next = size + format.DoubleWordSize
			}
			table.boundaries = append(table.boundaries, next)
			size = next
		}
	}
	return table
}

// round applies promotions and geometric classes to a request size.
func (t *sizeClassTable) round(size uint32) uint32 {
	if to, ok := t.promote[size]; ok {
		return to
	}
	if len(t.boundaries) == 0 || size <= t.config.SmallMax || size > t.config.MediumMax {
		return size
	}

	// Binary search for the smallest boundary >= size
	lo, hi := 0, len(t.boundaries)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if t.boundaries[mid] >= size {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return t.boundaries[lo]
}

// String returns the configuration name.
func (t *sizeClassTable) String() string {
	return t.config.Name
}

// NumClasses returns the number of geometric classes.
func (t *sizeClassTable) NumClasses() int {
	return len(t.boundaries)
}
