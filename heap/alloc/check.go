package alloc

import (
	"github.com/cockroachdb/errors"

	"github.com/joshuapare/heapkit/internal/format"
)

// BlockInfo describes one block seen by Walk.
type BlockInfo struct {
	Ptr       Ptr
	Size      uint32 // total block size including tags
	Allocated bool
	Requested uint32 // caller's requested payload size; 0 for free blocks
}

// Walk visits every block between the prologue and the epilogue in address
// order. It stops at the first error returned by fn, or at a malformed
// block, which yields ErrCorrupt.
func (a *Allocator) Walk(fn func(BlockInfo) error) error {
	for b := a.block(a.first).next(); ; b = b.next() {
		tag, err := format.DecodeTag(a.mem, int(b.bp)-format.WordSize)
		if err != nil {
			return errors.WithSecondaryError(errors.Wrapf(ErrCorrupt, "block %d", b.bp), err)
		}
		if tag.Size() == 0 {
			return nil
		}
		if int(b.bp)+int(tag.Size())-format.WordSize > len(a.mem) {
			return errors.Wrapf(ErrCorrupt, "block %d size %d runs past heap end %d", b.bp, tag.Size(), len(a.mem))
		}

		info := BlockInfo{Ptr: b.bp, Size: tag.Size(), Allocated: tag.Allocated()}
		if info.Allocated {
			info.Requested, _ = a.live.Get(b.bp)
		}
		if err := fn(info); err != nil {
			return err
		}
	}
}

// Check verifies the heap's structural invariants:
//
//   - the pad, prologue and epilogue are intact and the epilogue ends the heap
//   - every block is 8-byte aligned, at least MinBlockSize, and its header
//     matches its footer
//   - no two physically adjacent blocks are both free
//   - a block is in the free index if and only if it is free, and the
//     index links are symmetric
//   - every live pointer names an allocated block
//
// Violations are reported as errors wrapping ErrCorrupt.
func (a *Allocator) Check() error {
	mem := a.mem
	if len(mem) < format.SentinelReserve {
		return errors.Wrapf(ErrCorrupt, "heap of %d bytes has no room for sentinels", len(mem))
	}

	pro := a.block(a.first)
	if pro.tag() != format.Pack(format.PrologueSize, true) || pro.footer() != pro.tag() {
		return errors.Wrapf(ErrCorrupt, "bad prologue: header %s footer %s", pro.tag(), pro.footer())
	}

	var (
		total     = int(a.first) - format.WordSize + format.PrologueSize
		prevFree  bool
		freeCount int
		liveCount int
	)

	for b := pro.next(); ; b = b.next() {
		hdrOff := int(b.bp) - format.WordSize
		tag, err := format.DecodeTag(mem, hdrOff)
		if err != nil {
			return errors.WithSecondaryError(errors.Wrapf(ErrCorrupt, "block %d", b.bp), err)
		}

		if tag.Size() == 0 {
			if !tag.Allocated() {
				return errors.Wrapf(ErrCorrupt, "epilogue at %d not allocated", hdrOff)
			}
			if hdrOff+format.WordSize != len(mem) {
				return errors.Wrapf(ErrCorrupt, "epilogue at %d but heap ends at %d", hdrOff, len(mem))
			}
			break
		}

		if !format.IsAligned8(b.bp) {
			return errors.Wrapf(ErrCorrupt, "block %d misaligned", b.bp)
		}
		if tag.Size() < format.MinBlockSize {
			return errors.Wrapf(ErrCorrupt, "block %d size %d below minimum", b.bp, tag.Size())
		}
		if hdrOff+int(tag.Size()) > len(mem)-format.WordSize {
			return errors.Wrapf(ErrCorrupt, "block %d size %d runs past heap end %d", b.bp, tag.Size(), len(mem))
		}
		if ftr := b.footer(); ftr != tag {
			return errors.Wrapf(ErrCorrupt, "block %d header %s footer %s", b.bp, tag, ftr)
		}

		free := !tag.Allocated()
		indexed := a.free.contains(b.bp)
		switch {
		case free && prevFree:
			return errors.Wrapf(ErrCorrupt, "adjacent free blocks ending at %d", b.bp)
		case free && !indexed:
			return errors.Wrapf(ErrCorrupt, "free block %d missing from index", b.bp)
		case !free && indexed:
			return errors.Wrapf(ErrCorrupt, "allocated block %d present in index", b.bp)
		}
		if free {
			freeCount++
		} else if a.live.Has(b.bp) {
			liveCount++
		}

		prevFree = free
		total += int(tag.Size())
	}

	if total+format.WordSize != len(mem) {
		return errors.Wrapf(ErrCorrupt, "block sizes sum to %d, heap is %d", total+format.WordSize, len(mem))
	}
	if freeCount != a.free.len() {
		return errors.Wrapf(ErrCorrupt, "index holds %d blocks, heap has %d free", a.free.len(), freeCount)
	}
	if liveCount != a.live.Count() {
		return errors.Wrapf(ErrCorrupt, "%d live pointers, %d found in heap", a.live.Count(), liveCount)
	}
	return a.checkLinks()
}

// checkLinks walks the index from the head and verifies link symmetry.
func (a *Allocator) checkLinks() error {
	var (
		prev Ptr
		seen int
		err  error
	)
	a.free.each(func(p Ptr) bool {
		n, _ := a.free.node(p)
		if n.prev != prev {
			err = errors.Wrapf(ErrCorrupt, "index node %d prev %d, expected %d", p, n.prev, prev)
			return false
		}
		seen++
		if seen > a.free.len() {
			err = errors.Wrapf(ErrCorrupt, "index cycle at %d", p)
			return false
		}
		prev = p
		return true
	})
	if err != nil {
		return err
	}
	if seen != a.free.len() {
		return errors.Wrapf(ErrCorrupt, "index reaches %d of %d nodes", seen, a.free.len())
	}
	return nil
}
