package alloc

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// WriteJSON writes a heap map into obj: totals, counters and one entry per
// block in address order. The caller owns obj and ends it.
func (a *Allocator) WriteJSON(obj *jwriter.ObjectState) {
	s := a.Stats()

	obj.Name("heapSize").Int(s.HeapSize)
	obj.Name("sizeClasses").String(a.classes.String())
	obj.Name("utilization").Float64(a.Utilization())

	live := obj.Name("live").Object()
	live.Name("blocks").Int(s.LiveBlocks)
	live.Name("bytes").Float64(float64(s.LiveBytes))
	live.Name("peakBytes").Float64(float64(s.PeakBytes))
	live.End()

	free := obj.Name("free").Object()
	free.Name("blocks").Int(s.FreeBlocks)
	free.Name("bytes").Float64(float64(s.FreeBytes))
	free.End()

	calls := obj.Name("calls").Object()
	calls.Name("alloc").Int(s.AllocCalls)
	calls.Name("free").Int(s.FreeCalls)
	calls.Name("realloc").Int(s.ReallocCalls)
	calls.Name("grow").Int(s.GrowCalls)
	calls.End()

	blocks := obj.Name("blocks").Array()
	_ = a.Walk(func(b BlockInfo) error {
		o := blocks.Object()
		o.Name("ptr").Int(int(b.Ptr))
		o.Name("size").Int(int(b.Size))
		o.Name("allocated").Bool(b.Allocated)
		if b.Allocated {
			o.Name("requested").Int(int(b.Requested))
		}
		o.End()
		return nil
	})
	blocks.End()
}

// MarshalJSON renders the heap map as a standalone JSON object.
func (a *Allocator) MarshalJSON() ([]byte, error) {
	w := jwriter.NewWriter()
	obj := w.Object()
	a.WriteJSON(&obj)
	obj.End()
	return w.Bytes(), w.Error()
}
