package alloc

import (
	"github.com/cockroachdb/errors"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/format"
)

// Attach builds an allocator over an arena that already holds a heap, such
// as a reopened heap.File. It validates the sentinels, indexes every free
// block and registers every allocated block as live with its full usable
// size (requested sizes are not stored in the heap).
//
// Adjacent free blocks are merged while scanning, so a heap image left
// behind by an interrupted writer still satisfies the allocator's
// invariants after attaching.
func Attach(src heap.Source, cfg *Config) (*Allocator, error) {
	a := newAllocator(src, cfg)
	a.mem = src.Bytes()
	a.first = format.FirstPayload

	if len(a.mem) < format.SentinelReserve {
		return nil, errors.Wrapf(ErrCorrupt, "arena of %d bytes holds no heap", len(a.mem))
	}
	if err := a.rebuildIndex(); err != nil {
		return nil, err
	}
	if err := a.Check(); err != nil {
		return nil, errors.Wrap(err, "attach")
	}

	a.log.Debug("allocator attached",
		"heap_size", len(a.mem),
		"live_blocks", a.live.Count(),
		"free_blocks", a.free.len())
	return a, nil
}

// rebuildIndex scans every block and repopulates the free index and the
// live registry.
func (a *Allocator) rebuildIndex() error {
	a.free.reset()

	pro := a.block(a.first)
	if pro.tag() != format.Pack(format.PrologueSize, true) {
		return errors.Wrapf(ErrCorrupt, "bad prologue header %s", pro.tag())
	}

	var lastFree block
	haveFree := false

	for b := pro.next(); ; b = b.next() {
		tag, err := format.DecodeTag(a.mem, int(b.bp)-format.WordSize)
		if err != nil {
			return errors.WithSecondaryError(errors.Wrapf(ErrCorrupt, "block %d", b.bp), err)
		}
		if tag.Size() == 0 {
			return nil
		}
		if tag.Size() < format.MinBlockSize || int(b.bp)+int(tag.Size()) > len(a.mem) {
			return errors.Wrapf(ErrCorrupt, "block %d has bad size %d", b.bp, tag.Size())
		}

		if tag.Allocated() {
			a.track(b.bp, tag.Size()-format.Overhead)
			haveFree = false
			continue
		}

		if haveFree {
			merged := lastFree.size() + tag.Size()
			a.setTags(lastFree.bp, merged, false)
			b = lastFree
			continue
		}
		a.listInsert(b)
		lastFree, haveFree = b, true
	}
}
