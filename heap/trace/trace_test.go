package trace

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

const shortTrace = `20000
2
5
1
a 0 512
a 1 128
r 0 640
f 1
f 0
`

func TestParse_Short(t *testing.T) {
	tr, err := Parse(strings.NewReader(shortTrace))
	require.NoError(t, err)

	require.Equal(t, 20000, tr.SuggestedHeap)
	require.Equal(t, 2, tr.NumIDs)
	require.Equal(t, 1, tr.Weight)
	require.Equal(t, []Op{
		{Kind: OpAlloc, ID: 0, Size: 512},
		{Kind: OpAlloc, ID: 1, Size: 128},
		{Kind: OpRealloc, ID: 0, Size: 640},
		{Kind: OpFree, ID: 1},
		{Kind: OpFree, ID: 0},
	}, tr.Ops)
}

func TestParse_SkipsBlankAndComments(t *testing.T) {
	in := "# generated\n\n0\n1\n1\n1\n\n# op\na 0 8\n"
	tr, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, tr.Ops, 1)
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"truncated header": "1\n2\n",
		"bad header":       "1\nx\n1\n1\n",
		"unknown op":       "0\n1\n1\n1\nx 0 8\n",
		"missing size":     "0\n1\n1\n1\na 0\n",
		"extra field":      "0\n1\n1\n1\nf 0 8\n",
		"id out of range":  "0\n1\n1\n1\na 3 8\n",
		"bad size":         "0\n1\n1\n1\na 0 -8\n",
		"op count":         "0\n1\n2\n1\na 0 8\n",
	}
	for name, in := range cases {
		_, err := Parse(strings.NewReader(in))
		require.True(t, errors.Is(err, ErrSyntax), "%s: %v", name, err)
	}
}

func TestParse_OversizedHeader(t *testing.T) {
	in := "0\n1\n9000000000000000000\n1\na 0 8\n"

	var err error
	require.NotPanics(t, func() {
		_, err = Parse(strings.NewReader(in))
	})
	require.ErrorIs(t, err, ErrSyntax)

	// A huge id count is only a hint; the ops themselves still parse.
	tr, err := Parse(strings.NewReader("0\n9000000000000000000\n2\n1\na 0 8\nf 0\n"))
	require.NoError(t, err)
	require.Len(t, tr.Ops, 2)
}

func TestWriteTo_RoundTrip(t *testing.T) {
	tr, err := Parse(strings.NewReader(shortTrace))
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = tr.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, shortTrace, buf.String())
}

func TestGenerate_Balanced(t *testing.T) {
	tr := Generate(GenConfig{Name: "g", Seed: 9, NumIDs: 300, MinSize: 1, MaxSize: 2000, Realloc: 0.2, Free: 0.3})

	live := map[int]bool{}
	allocs := 0
	for _, op := range tr.Ops {
		switch op.Kind {
		case OpAlloc:
			require.False(t, live[op.ID], "id %d allocated twice", op.ID)
			live[op.ID] = true
			allocs++
			require.GreaterOrEqual(t, op.Size, uint32(1))
			require.LessOrEqual(t, op.Size, uint32(2000))
		case OpRealloc:
			require.True(t, live[op.ID])
		case OpFree:
			require.True(t, live[op.ID])
			delete(live, op.ID)
		}
	}
	require.Equal(t, 300, allocs)
	require.Empty(t, live, "every id is freed by the end")
	require.Positive(t, tr.SuggestedHeap)
	require.Zero(t, tr.SuggestedHeap%4096)
}

func TestGenerate_Deterministic(t *testing.T) {
	cfg := DefaultGenConfig
	cfg.NumIDs = 100
	require.Equal(t, Generate(cfg).Ops, Generate(cfg).Ops)
}

func TestGenerate_ParsesBack(t *testing.T) {
	cfg := DefaultGenConfig
	cfg.NumIDs = 50
	tr := Generate(cfg)

	var buf bytes.Buffer
	_, err := tr.WriteTo(&buf)
	require.NoError(t, err)

	back, err := Parse(&buf)
	require.NoError(t, err)
	require.Equal(t, tr.Ops, back.Ops)
}
