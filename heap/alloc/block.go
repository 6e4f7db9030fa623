package alloc

import (
	"github.com/joshuapare/heapkit/internal/format"
)

// Ptr identifies a block by the arena offset of its payload.
type Ptr uint32

// Nil is the null pointer. Offset 0 is the alignment pad and never a payload.
const Nil Ptr = 0

// block is a read-only view of one block. All tag arithmetic lives here;
// writes go through the Allocator so they can be reported as dirty.
type block struct {
	mem []byte
	bp  Ptr
}

func (b block) hdrOff() int {
	debugAssert(int(b.bp) >= format.WordSize && int(b.bp) <= len(b.mem), "header of %d out of bounds (%d)", b.bp, len(b.mem))
	return int(b.bp) - format.WordSize
}

func (b block) tag() format.Tag { return format.ReadTag(b.mem, b.hdrOff()) }

func (b block) size() uint32 { return b.tag().Size() }

func (b block) allocated() bool { return b.tag().Allocated() }

func (b block) ftrOff() int {
	off := int(b.bp) + int(b.size()) - format.DoubleWordSize
	debugAssert(off >= 0 && off+format.WordSize <= len(b.mem), "footer of %d at %d out of bounds (%d)", b.bp, off, len(b.mem))
	return off
}

func (b block) footer() format.Tag { return format.ReadTag(b.mem, b.ftrOff()) }

// next returns the physically following block.
func (b block) next() block {
	return block{mem: b.mem, bp: b.bp + Ptr(b.size())}
}

// prevFooter reads the footer of the physically preceding block.
func (b block) prevFooter() format.Tag {
	off := int(b.bp) - format.DoubleWordSize
	debugAssert(off >= 0, "previous footer of %d out of bounds", b.bp)
	return format.ReadTag(b.mem, off)
}

func (b block) prevAllocated() bool { return b.prevFooter().Allocated() }

// prev returns the physically preceding block. Only valid when that block
// is free; allocated blocks keep their footer too, but callers only need it
// for coalescing.
func (b block) prev() block {
	return block{mem: b.mem, bp: b.bp - Ptr(b.prevFooter().Size())}
}

// payload returns the block's usable bytes.
func (b block) payload() []byte {
	end := int(b.bp) + int(b.size()) - format.Overhead
	debugAssert(end <= len(b.mem), "payload of %d ends past heap (%d > %d)", b.bp, end, len(b.mem))
	return b.mem[b.bp:end:end]
}

// block returns the descriptor for p over the current arena bytes.
func (a *Allocator) block(p Ptr) block {
	return block{mem: a.mem, bp: p}
}

// setTags writes matching header and footer tags for the block at p.
func (a *Allocator) setTags(p Ptr, size uint32, allocated bool) {
	t := format.Pack(size, allocated)
	hdr := int(p) - format.WordSize
	ftr := int(p) + int(size) - format.DoubleWordSize
	debugAssert(hdr >= 0 && ftr+format.WordSize <= len(a.mem), "tags of %d (size %d) out of bounds (%d)", p, size, len(a.mem))
	format.PutTag(a.mem, hdr, t)
	format.PutTag(a.mem, ftr, t)
	a.markDirty(hdr, format.WordSize)
	a.markDirty(ftr, format.WordSize)
}

// putTag writes a single tag word at off.
func (a *Allocator) putTag(off int, t format.Tag) {
	format.PutTag(a.mem, off, t)
	a.markDirty(off, format.WordSize)
}

func (a *Allocator) markDirty(off, length int) {
	if a.dt != nil {
		a.dt.Add(off, length)
	}
}
