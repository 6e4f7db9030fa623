package alloc

// coalesce merges the free block b with any free physical neighbours and
// leaves the result indexed exactly once. b must already be tagged free and
// must not be indexed yet. It returns the merged block, whose Ptr is b's or
// its predecessor's.
func (a *Allocator) coalesce(b block) block {
	prevAlloc := b.prevAllocated()
	next := b.next()
	nextAlloc := next.allocated()
	size := b.size()

	switch {
	case prevAlloc && nextAlloc:
		a.stats.CoalesceNone++
		a.listInsert(b)
		return b

	case prevAlloc && !nextAlloc:
		a.stats.CoalesceNext++
		a.listRemove(next)
		size += next.size()
		a.setTags(b.bp, size, false)
		a.listInsert(b)
		return b

	case !prevAlloc && nextAlloc:
		// The predecessor is already indexed; only its tags change.
		a.stats.CoalescePrev++
		prev := b.prev()
		size += prev.size()
		a.setTags(prev.bp, size, false)
		return prev

	default:
		a.stats.CoalesceBoth++
		prev := b.prev()
		a.listRemove(prev)
		a.listRemove(next)
		size += prev.size() + next.size()
		a.setTags(prev.bp, size, false)
		a.listInsert(prev)
		return prev
	}
}
