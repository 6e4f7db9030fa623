package alloc

import (
	"testing"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/stretchr/testify/require"
)

func Test_MarshalJSON_HeapMap(t *testing.T) {
	a := newTestAllocator(t, nil)
	mustAlloc(t, a, 100)

	out, err := a.MarshalJSON()
	require.NoError(t, err)

	s := string(out)
	require.Contains(t, s, `"heapSize":4112`)
	require.Contains(t, s, `"sizeClasses":"Binary"`)
	require.Contains(t, s, `{"ptr":16,"size":112,"allocated":true,"requested":100}`)
	require.Contains(t, s, `{"ptr":128,"size":3984,"allocated":false}`)
}

func Test_WriteJSON_EmbedsInCallerObject(t *testing.T) {
	a := newTestAllocator(t, nil)

	w := jwriter.NewWriter()
	obj := w.Object()
	obj.Name("name").String("heap0")
	inner := obj.Name("heap").Object()
	a.WriteJSON(&inner)
	inner.End()
	obj.End()
	require.NoError(t, w.Error())

	require.Contains(t, string(w.Bytes()), `{"name":"heap0","heap":{"heapSize":4112`)
}
