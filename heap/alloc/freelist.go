package alloc

import (
	"github.com/dolthub/swiss"

	"github.com/joshuapare/heapkit/internal/format"
)

// freeNode holds the index links of one free block.
type freeNode struct {
	prev Ptr
	next Ptr
}

// freeList is an unordered doubly linked list of free blocks. Nodes are
// owned by the registry, keyed by block Ptr, and never overlay payload bytes.
type freeList struct {
	head  Ptr
	nodes *swiss.Map[Ptr, *freeNode]
}

func newFreeList() freeList {
	return freeList{nodes: swiss.NewMap[Ptr, *freeNode](64)}
}

// reset empties the list.
func (l *freeList) reset() {
	l.head = Nil
	l.nodes = swiss.NewMap[Ptr, *freeNode](64)
}

// contains reports whether p is indexed.
func (l *freeList) contains(p Ptr) bool {
	return l.nodes.Has(p)
}

// len returns the number of indexed blocks.
func (l *freeList) len() int {
	return l.nodes.Count()
}

// node returns the links of an indexed block.
func (l *freeList) node(p Ptr) (*freeNode, bool) {
	return l.nodes.Get(p)
}

// each calls fn for every indexed block from the head until fn returns false.
func (l *freeList) each(fn func(p Ptr) bool) {
	for p := l.head; p != Nil; {
		n, ok := l.nodes.Get(p)
		if !ok {
			return
		}
		if !fn(p) {
			return
		}
		p = n.next
	}
}

// listInsert pushes b to the front of the index. Allocated blocks and blocks
// already indexed are ignored.
func (a *Allocator) listInsert(b block) {
	if b.allocated() || a.free.contains(b.bp) {
		return
	}

	n := &freeNode{prev: Nil, next: a.free.head}
	if a.free.head != Nil {
		if head, ok := a.free.nodes.Get(a.free.head); ok {
			head.prev = b.bp
		}
	}
	a.free.head = b.bp
	a.free.nodes.Put(b.bp, n)
}

// listRemove unlinks b from the index. A zero-size block (only the epilogue
// can have one) is never indexed; its header is forced allocated instead.
func (a *Allocator) listRemove(b block) {
	if b.size() == 0 {
		a.putTag(b.hdrOff(), format.Pack(0, true))
		return
	}

	n, ok := a.free.nodes.Get(b.bp)
	if !ok {
		return
	}

	switch {
	case n.prev == Nil && n.next == Nil:
		// sole element
		a.free.head = Nil
	case n.prev == Nil:
		// head with successor
		a.free.head = n.next
		if succ, ok := a.free.nodes.Get(n.next); ok {
			succ.prev = Nil
		}
	case n.next == Nil:
		// tail with predecessor
		if pred, ok := a.free.nodes.Get(n.prev); ok {
			pred.next = Nil
		}
	default:
		pred, _ := a.free.nodes.Get(n.prev)
		succ, _ := a.free.nodes.Get(n.next)
		pred.next = n.next
		succ.prev = n.prev
	}
	a.free.nodes.Delete(b.bp)
}
