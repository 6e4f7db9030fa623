//go:build debug_heapkit

package alloc

import "fmt"

// debugAssert panics with the formatted message when cond is false.
// It only does anything when built with the debug_heapkit tag.
func debugAssert(cond bool, msg string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("alloc: "+msg, args...))
	}
}

// debugValidate runs the full heap checker and panics on failure.
// It only does anything when built with the debug_heapkit tag.
func (a *Allocator) debugValidate(op string) {
	if err := a.Check(); err != nil {
		panic(fmt.Sprintf("alloc: heap invalid after %s: %+v", op, err))
	}
}
