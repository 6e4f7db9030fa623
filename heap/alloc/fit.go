package alloc

// findFit returns a free block of at least asize bytes, or Nil.
//
// An exact match ends the scan. Otherwise the whole index is scanned and the
// smallest block strictly larger than asize wins.
func (a *Allocator) findFit(asize uint32) Ptr {
	best := Nil
	var bestSize uint32

	a.free.each(func(p Ptr) bool {
		b := a.block(p)
		if b.allocated() {
			return true
		}
		size := b.size()
		if size == asize {
			best = p
			return false
		}
		if size > asize && (best == Nil || size < bestSize) {
			best, bestSize = p, size
		}
		return true
	})
	return best
}
