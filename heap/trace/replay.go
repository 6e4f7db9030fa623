package trace

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"
	"github.com/tidwall/hashmap"
	"github.com/zeebo/xxh3"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
)

// Options controls a replay.
type Options struct {
	// NewSource returns the arena for one replay. Nil means a heap.Memory
	// with the default cap.
	NewSource func() (heap.Source, error)

	// Config is passed to alloc.New.
	Config *alloc.Config

	// Check runs the heap checker after every operation.
	Check bool

	// Logger receives one line per finished trace. Nil discards.
	Logger *slog.Logger

	// Upto, when positive, stops the replay after that many operations.
	Upto int

	// Inspect is called with the allocator after the last operation and
	// before the arena is closed.
	Inspect func(*alloc.Allocator) error
}

// Report summarizes one replay.
type Report struct {
	Name        string
	Ops         int
	Allocs      int
	Reallocs    int
	Frees       int
	PeakLive    int64 // peak total of requested payload bytes
	HeapSize    int
	Utilization float64
	Duration    time.Duration
	Stats       alloc.Stats
}

// Throughput returns operations per second.
func (r *Report) Throughput() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Ops) / r.Duration.Seconds()
}

// entry tracks one live id.
type entry struct {
	ptr  alloc.Ptr
	size uint32
	sum  uint64
}

// replayer holds the state of a single replay.
type replayer struct {
	a       *alloc.Allocator
	ids     *hashmap.Map[int, entry]
	scratch []byte
}

// Replay runs tr against a fresh allocator. ctx is checked between
// operations.
func Replay(ctx context.Context, tr *Trace, opts Options) (*Report, error) {
	src, err := newSource(opts)
	if err != nil {
		return nil, err
	}
	if c, ok := src.(interface{ Close() error }); ok {
		defer c.Close()
	}

	a, err := alloc.New(src, opts.Config)
	if err != nil {
		return nil, errors.Wrapf(err, "trace %s", tr.Name)
	}

	r := &replayer{a: a, ids: hashmap.New[int, entry](max(min(tr.NumIDs, maxPrealloc), 0))}
	rep := &Report{Name: tr.Name}
	start := time.Now()

	ops := tr.Ops
	if opts.Upto > 0 && opts.Upto < len(ops) {
		ops = ops[:opts.Upto]
	}

	for i, op := range ops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.apply(op); err != nil {
			return nil, errors.Wrapf(err, "trace %s op %d (%s id %d)", tr.Name, i, op.Kind, op.ID)
		}
		if opts.Check {
			if err := a.Check(); err != nil {
				return nil, errors.Wrapf(err, "trace %s op %d", tr.Name, i)
			}
		}

		switch op.Kind {
		case OpAlloc:
			rep.Allocs++
		case OpRealloc:
			rep.Reallocs++
		case OpFree:
			rep.Frees++
		}
	}

	rep.Duration = time.Since(start)
	rep.Ops = len(ops)
	rep.Stats = a.Stats()
	rep.PeakLive = rep.Stats.PeakBytes
	rep.HeapSize = a.HeapSize()
	rep.Utilization = a.Utilization()

	if opts.Inspect != nil {
		if err := opts.Inspect(a); err != nil {
			return nil, errors.Wrapf(err, "trace %s", tr.Name)
		}
	}

	if opts.Logger != nil {
		opts.Logger.Debug("trace replayed",
			"trace", tr.Name,
			"ops", rep.Ops,
			"heap_size", rep.HeapSize,
			"utilization", rep.Utilization,
			"duration", rep.Duration)
	}
	return rep, nil
}

func newSource(opts Options) (heap.Source, error) {
	if opts.NewSource == nil {
		return heap.NewMemory(heap.DefaultMaxSize), nil
	}
	return opts.NewSource()
}

func (r *replayer) apply(op Op) error {
	switch op.Kind {
	case OpAlloc:
		if _, ok := r.ids.Get(op.ID); ok {
			return errors.Wrapf(ErrSyntax, "id %d allocated twice", op.ID)
		}
		p, buf, err := r.a.Alloc(op.Size)
		if err != nil {
			return err
		}
		r.ids.Set(op.ID, entry{ptr: p, size: op.Size, sum: r.fill(buf, op.ID)})

	case OpRealloc:
		old, ok := r.ids.Get(op.ID)
		if !ok {
			// malloc-lab treats a realloc of an unknown id as an allocation.
			old = entry{}
		} else if err := r.verify(op.ID, old); err != nil {
			return err
		}

		p, buf, err := r.a.Realloc(old.ptr, op.Size)
		if err != nil {
			return err
		}
		keep := min(old.size, op.Size)
		if xxh3.Hash(buf[:keep]) != xxh3.Hash(r.pattern(op.ID, int(keep))) {
			return errors.Wrapf(ErrIntegrity, "id %d lost data across realloc (%d -> %d bytes)", op.ID, old.size, op.Size)
		}
		if p == alloc.Nil {
			r.ids.Delete(op.ID)
			return nil
		}
		r.ids.Set(op.ID, entry{ptr: p, size: op.Size, sum: r.fill(buf, op.ID)})

	case OpFree:
		e, ok := r.ids.Get(op.ID)
		if !ok {
			return errors.Wrapf(ErrSyntax, "free of unknown id %d", op.ID)
		}
		if err := r.verify(op.ID, e); err != nil {
			return err
		}
		if err := r.a.Free(e.ptr); err != nil {
			return err
		}
		r.ids.Delete(op.ID)
	}
	return nil
}

// pattern returns the expected first n payload bytes of id in a scratch
// buffer that is reused between calls.
func (r *replayer) pattern(id, n int) []byte {
	if cap(r.scratch) < n {
		r.scratch = make([]byte, n)
	}
	b := r.scratch[:n]
	seed := byte(id*131 + 7)
	for i := range b {
		b[i] = seed + byte(i)
	}
	return b
}

// fill writes id's pattern into buf and returns its checksum.
func (r *replayer) fill(buf []byte, id int) uint64 {
	copy(buf, r.pattern(id, len(buf)))
	return xxh3.Hash(buf)
}

// verify checks that a live block still holds the bytes written into it.
func (r *replayer) verify(id int, e entry) error {
	if e.ptr == alloc.Nil {
		return nil
	}
	buf, err := r.a.Payload(e.ptr)
	if err != nil {
		return err
	}
	if xxh3.Hash(buf[:e.size]) != e.sum {
		return errors.Wrapf(ErrIntegrity, "id %d at %d (%d bytes)", id, e.ptr, e.size)
	}
	return nil
}

// ReplayAll replays traces concurrently, one allocator per trace, with at
// most parallel replays in flight (parallel <= 0 means one per trace). The
// reports are returned in the order of traces. The first error cancels the
// remaining replays.
func ReplayAll(ctx context.Context, traces []*Trace, opts Options, parallel int) ([]*Report, error) {
	if parallel <= 0 {
		parallel = max(len(traces), 1)
	}

	reports := make([]*Report, len(traces))
	p := pool.New().WithMaxGoroutines(parallel).WithErrors().WithContext(ctx).WithCancelOnError()
	for i, tr := range traces {
		i, tr := i, tr
		p.Go(func(ctx context.Context) error {
			rep, err := Replay(ctx, tr, opts)
			if err != nil {
				return err
			}
			reports[i] = rep
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
