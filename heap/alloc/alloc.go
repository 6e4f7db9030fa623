package alloc

import (
	"log/slog"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/internal/format"
)

const (
	// maxRequest is the largest payload whose block size still fits a tag.
	maxRequest = format.MaxBlockSize - format.Overhead - format.DoubleWordSize

	// maxHeapSize is the largest arena a Ptr can address.
	maxHeapSize = math.MaxUint32

	// largeSplit is the block size above which splits are logged.
	largeSplit = 1 << 16
)

// Allocator is a boundary-tag allocator over one heap.Source.
//
// NOT thread-safe.
type Allocator struct {
	src     heap.Source
	dt      dirty.DirtyTracker
	log     *slog.Logger
	chunk   uint32
	classes *sizeClassTable

	// mem is src.Bytes(), refreshed after every Extend.
	mem []byte

	// first is the prologue's payload offset; walks start here.
	first Ptr

	free freeList

	// live maps every allocated block to the payload size its caller asked for.
	live *swiss.Map[Ptr, uint32]

	stats Stats
}

// New initializes an allocator over an empty arena: it writes the pad,
// prologue and epilogue, then grows the heap by one chunk.
func New(src heap.Source, cfg *Config) (*Allocator, error) {
	a := newAllocator(src, cfg)

	if n := src.Size(); n != 0 {
		return nil, errors.Wrapf(ErrNotEmpty, "%d bytes in use; use Attach", n)
	}

	base, err := src.Extend(format.SentinelReserve)
	if err != nil {
		return nil, outOfMemory(errors.Wrap(err, "alloc: reserve sentinels"))
	}
	a.mem = src.Bytes()

	a.putTag(base, 0)
	a.putTag(base+format.WordSize, format.Pack(format.PrologueSize, true))
	a.putTag(base+2*format.WordSize, format.Pack(format.PrologueSize, true))
	a.putTag(base+3*format.WordSize, format.Pack(0, true))
	a.first = Ptr(base + format.FirstPayload)

	if _, err := a.extendHeap(a.chunk); err != nil {
		return nil, errors.Wrap(err, "alloc: initial chunk")
	}

	a.log.Debug("allocator initialized",
		"chunk", a.chunk,
		"size_classes", a.classes.String(),
		"heap_size", len(a.mem))
	return a, nil
}

func newAllocator(src heap.Source, cfg *Config) *Allocator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Allocator{
		src:     src,
		dt:      cfg.Dirty,
		log:     cfg.logger(),
		chunk:   cfg.chunk(),
		classes: newSizeClassTable(cfg.classes()),
		free:    newFreeList(),
		live:    swiss.NewMap[Ptr, uint32](64),
	}
}

// extendHeap grows the arena by n bytes (rounded to 8), turns the new space
// into a free block that starts over the old epilogue, writes a new epilogue
// and coalesces the block with a free tail.
func (a *Allocator) extendHeap(n uint32) (block, error) {
	size := format.Align8(n)
	brk := a.src.Size()
	if uint64(brk)+uint64(size) > maxHeapSize {
		return block{}, errors.Wrapf(ErrOutOfMemory, "extend by %d at break %d exceeds addressable heap", size, brk)
	}

	base, err := a.src.Extend(int(size))
	if err != nil {
		// A failed grow may still have remapped the arena.
		a.mem = a.src.Bytes()
		return block{}, outOfMemory(errors.Wrapf(err, "alloc: extend by %d", size))
	}
	a.mem = a.src.Bytes()

	bp := Ptr(base)
	a.setTags(bp, size, false)
	a.putTag(base+int(size)-format.WordSize, format.Pack(0, true))

	a.stats.GrowCalls++
	a.stats.GrowBytes += int64(size)
	a.log.Debug("heap extended", "by", size, "heap_size", len(a.mem))

	return a.coalesce(a.block(bp)), nil
}

// adjust turns a request size into a block size.
func (a *Allocator) adjust(size uint32) (uint32, error) {
	if size > maxRequest {
		return 0, errors.Wrapf(ErrOutOfMemory, "request of %d bytes exceeds block limit", size)
	}
	size = a.classes.round(size)
	if size <= format.DoubleWordSize {
		size = format.MinPayload
	} else {
		size = format.Align8(size)
	}
	return size + format.Overhead, nil
}

// malloc finds or makes room for a block of size payload bytes and places
// it. It does not touch the live registry.
func (a *Allocator) malloc(size uint32) (Ptr, error) {
	asize, err := a.adjust(size)
	if err != nil {
		return Nil, err
	}

	bp := a.findFit(asize)
	if bp == Nil {
		b, err := a.extendHeap(max(asize, a.chunk))
		if err != nil {
			return Nil, err
		}
		bp = b.bp
	}

	a.place(bp, asize)
	return bp, nil
}

// place carves an asize block out of the free block at bp, splitting off
// the remainder when it is at least MinBlockSize.
func (a *Allocator) place(bp Ptr, asize uint32) {
	b := a.block(bp)
	csize := b.size()

	// Unlink while the original size is still recorded.
	a.listRemove(b)

	if csize-asize >= format.MinBlockSize {
		a.setTags(bp, asize, true)
		rest := bp + Ptr(asize)
		a.setTags(rest, csize-asize, false)
		a.listInsert(a.block(rest))
		a.stats.Splits++
		if csize >= largeSplit {
			a.log.Debug("split", "ptr", bp, "from", csize, "to", asize)
		}
		return
	}
	a.setTags(bp, csize, true)
}

// Alloc returns a block with at least size usable bytes. The returned slice
// has length size and capacity UsableSize. A zero size returns Nil and no
// error.
func (a *Allocator) Alloc(size uint32) (Ptr, []byte, error) {
	a.stats.AllocCalls++
	if size == 0 {
		return Nil, nil, nil
	}

	bp, err := a.malloc(size)
	if err != nil {
		return Nil, nil, err
	}
	a.track(bp, size)
	a.debugValidate("alloc")
	return bp, a.block(bp).payload()[:size], nil
}

// Free releases the block at p. Freeing Nil is a no-op.
func (a *Allocator) Free(p Ptr) error {
	a.stats.FreeCalls++
	if p == Nil {
		return nil
	}
	if _, err := a.liveBlock(p); err != nil {
		return errors.Wrap(err, "free")
	}
	a.release(p)
	a.debugValidate("free")
	return nil
}

// release tags a live block free, drops it from the live registry and
// coalesces it.
func (a *Allocator) release(p Ptr) {
	a.untrack(p)
	b := a.block(p)
	a.setTags(p, b.size(), false)
	a.coalesce(b)
}

// Realloc resizes the block at p, preserving the first min(size, old usable
// size) bytes.
//
//   - Realloc(Nil, n) behaves as Alloc(n).
//   - Realloc(p, 0) behaves as Free(p) and returns Nil.
//   - If the block already holds size+8 bytes it is returned unchanged.
//   - If the next block is free and the two together are large enough, the
//     block absorbs it in place.
//   - Otherwise a new block is allocated, the payload copied and the old
//     block freed. If that allocation fails, the old block is untouched and
//     the error wraps ErrOutOfMemory.
func (a *Allocator) Realloc(p Ptr, size uint32) (Ptr, []byte, error) {
	if p == Nil {
		return a.Alloc(size)
	}
	a.stats.ReallocCalls++
	if size == 0 {
		if err := a.Free(p); err != nil {
			return Nil, nil, err
		}
		return Nil, nil, nil
	}

	b, err := a.liveBlock(p)
	if err != nil {
		return Nil, nil, errors.Wrap(err, "realloc")
	}
	if size > maxRequest {
		return Nil, nil, errors.Wrapf(ErrOutOfMemory, "realloc to %d bytes exceeds block limit", size)
	}

	need := size + format.Overhead
	cur := b.size()

	if cur >= need {
		a.stats.ReallocKeep++
		a.track(p, size)
		return p, b.payload()[:size], nil
	}

	if next := b.next(); !next.allocated() && cur+next.size() >= need {
		a.stats.ReallocGrow++
		combined := cur + next.size()
		a.listRemove(next)
		a.setTags(p, combined, true)
		a.track(p, size)
		a.debugValidate("realloc")
		return p, a.block(p).payload()[:size], nil
	}

	np, err := a.malloc(size)
	if err != nil {
		return Nil, nil, errors.Wrapf(err, "realloc %d to %d bytes", p, size)
	}
	// malloc may have grown the arena; re-read both blocks.
	old := a.block(p).payload()
	dst := a.block(np).payload()
	n := min(int(size), len(old))
	copy(dst, old[:n])
	a.markDirty(int(np), n)

	a.stats.ReallocMove++
	a.log.Debug("realloc moved", "from", p, "to", np, "old_size", cur, "new_size", size)

	a.release(p)
	a.track(np, size)
	a.debugValidate("realloc")
	return np, dst[:size], nil
}

// Payload returns the usable bytes of the live block at p. For arenas that
// remap on growth the slice is only valid until the next Alloc or Realloc.
func (a *Allocator) Payload(p Ptr) ([]byte, error) {
	b, err := a.liveBlock(p)
	if err != nil {
		return nil, err
	}
	return b.payload(), nil
}

// UsableSize returns how many payload bytes the live block at p can hold.
func (a *Allocator) UsableSize(p Ptr) (int, error) {
	b, err := a.liveBlock(p)
	if err != nil {
		return 0, err
	}
	return int(b.size()) - format.Overhead, nil
}

// liveBlock resolves p to an allocated block handed out by this allocator.
func (a *Allocator) liveBlock(p Ptr) (block, error) {
	if a.live.Has(p) {
		return a.block(p), nil
	}
	if a.free.contains(p) {
		return block{}, errors.Wrapf(ErrDoubleFree, "ptr %d", p)
	}

	// A block merged into its predecessor keeps its stale free header and
	// now sits inside that free block. Bytes inside a live payload can look
	// like a free tag, so the containing block decides.
	if p > a.first && int(p) < len(a.mem) && format.IsAligned8(p) {
		if hdr, err := format.DecodeTag(a.mem, int(p)-format.WordSize); err == nil &&
			!hdr.Allocated() && hdr.Size() >= format.MinBlockSize {
			if c, ok := a.containing(p); ok && !c.allocated() {
				return block{}, errors.Wrapf(ErrDoubleFree, "ptr %d (stale %s inside free block %d)", p, hdr, c.bp)
			}
		}
	}
	return block{}, errors.Wrapf(ErrInvalidPointer, "ptr %d", p)
}

// containing walks the heap for the block whose span holds p.
func (a *Allocator) containing(p Ptr) (block, bool) {
	for b := a.block(a.first).next(); ; b = b.next() {
		tag, err := format.DecodeTag(a.mem, int(b.bp)-format.WordSize)
		if err != nil || tag.Size() == 0 || b.bp > p {
			return block{}, false
		}
		if p < b.bp+Ptr(tag.Size()) {
			return b, true
		}
	}
}

// track records p as live with the given requested size.
func (a *Allocator) track(p Ptr, size uint32) {
	if prev, ok := a.live.Get(p); ok {
		a.stats.LiveBytes -= int64(prev)
	} else {
		a.stats.LiveBlocks++
	}
	a.live.Put(p, size)
	a.stats.LiveBytes += int64(size)
	if a.stats.LiveBytes > a.stats.PeakBytes {
		a.stats.PeakBytes = a.stats.LiveBytes
	}
}

// untrack drops p from the live registry.
func (a *Allocator) untrack(p Ptr) {
	if size, ok := a.live.Get(p); ok {
		a.stats.LiveBlocks--
		a.stats.LiveBytes -= int64(size)
		a.live.Delete(p)
	}
}

// HeapSize returns the current size of the arena.
func (a *Allocator) HeapSize() int {
	return len(a.mem)
}

// Source returns the arena the allocator manages.
func (a *Allocator) Source() heap.Source {
	return a.src
}
