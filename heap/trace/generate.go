package trace

import (
	"github.com/brianvoe/gofakeit/v6"

	"github.com/joshuapare/heapkit/internal/format"
)

// GenConfig shapes a synthetic trace.
type GenConfig struct {
	Name    string
	Seed    int64
	NumIDs  int     // number of allocations (each id is allocated once)
	MinSize int     // smallest request
	MaxSize int     // largest request
	Realloc float64 // probability that a step reallocates a live id
	Free    float64 // probability that a step frees a live id
}

// DefaultGenConfig is a mixed workload of small and medium requests.
var DefaultGenConfig = GenConfig{
	Name:    "random",
	Seed:    1,
	NumIDs:  1000,
	MinSize: 1,
	MaxSize: 4096,
	Realloc: 0.15,
	Free:    0.35,
}

// Generate produces a random trace. Every id is allocated exactly once and
// freed by the end of the trace, so a correct allocator finishes with no live
// blocks.
func Generate(cfg GenConfig) *Trace {
	f := gofakeit.New(cfg.Seed)
	if cfg.MinSize < 1 {
		cfg.MinSize = 1
	}
	if cfg.MaxSize < cfg.MinSize {
		cfg.MaxSize = cfg.MinSize
	}

	tr := &Trace{Name: cfg.Name, NumIDs: cfg.NumIDs, Weight: 1}
	var live []int
	next := 0
	size := func() uint32 { return uint32(f.IntRange(cfg.MinSize, cfg.MaxSize)) }

	for next < cfg.NumIDs || len(live) > 0 {
		roll := f.Float64Range(0, 1)
		switch {
		case len(live) == 0 || (next < cfg.NumIDs && roll >= cfg.Realloc+cfg.Free):
			tr.Ops = append(tr.Ops, Op{Kind: OpAlloc, ID: next, Size: size()})
			live = append(live, next)
			next++

		case next < cfg.NumIDs && roll < cfg.Realloc:
			id := live[f.IntRange(0, len(live)-1)]
			tr.Ops = append(tr.Ops, Op{Kind: OpRealloc, ID: id, Size: size()})

		default:
			// Once every id is out, each step frees, draining the live set.
			i := f.IntRange(0, len(live)-1)
			tr.Ops = append(tr.Ops, Op{Kind: OpFree, ID: live[i]})
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
		}
	}

	tr.SuggestedHeap = suggestHeap(tr)
	return tr
}

// suggestHeap returns the trace's peak live request total, rounded up to a
// page, which is what the header's first field records.
func suggestHeap(tr *Trace) int {
	sizes := make(map[int]int, min(tr.NumIDs, maxPrealloc))
	live, peak := 0, 0
	for _, op := range tr.Ops {
		switch op.Kind {
		case OpAlloc, OpRealloc:
			live += int(op.Size) - sizes[op.ID]
			sizes[op.ID] = int(op.Size)
		case OpFree:
			live -= sizes[op.ID]
			delete(sizes, op.ID)
		}
		peak = max(peak, live)
	}
	return format.AlignUp(peak, 4096)
}
