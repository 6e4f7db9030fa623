//go:build !debug_heapkit

package alloc

// debugAssert panics with the formatted message when cond is false.
// It only does anything when built with the debug_heapkit tag.
func debugAssert(bool, string, ...any) {}

// debugValidate runs the full heap checker and panics on failure.
// It only does anything when built with the debug_heapkit tag.
func (a *Allocator) debugValidate(string) {}
