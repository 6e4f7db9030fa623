package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// maxPrealloc caps capacity hints taken from a trace header. Larger traces
// still load; the slice grows as lines are read.
const maxPrealloc = 1 << 16

// OpKind is the operation letter used in trace files.
type OpKind byte

const (
	OpAlloc   OpKind = 'a'
	OpRealloc OpKind = 'r'
	OpFree    OpKind = 'f'
)

func (k OpKind) String() string {
	switch k {
	case OpAlloc:
		return "alloc"
	case OpRealloc:
		return "realloc"
	case OpFree:
		return "free"
	}
	return fmt.Sprintf("OpKind(%q)", byte(k))
}

// Op is one trace operation. Size is zero for frees.
type Op struct {
	Kind OpKind
	ID   int
	Size uint32
}

// Trace is a parsed workload.
type Trace struct {
	Name          string
	SuggestedHeap int
	NumIDs        int
	Weight        int
	Ops           []Op
}

// ParseFile parses the trace at path, naming it after the file.
func ParseFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tr, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	tr.Name = filepath.Base(path)
	return tr, nil
}

// Parse reads a trace from r.
func Parse(r io.Reader) (*Trace, error) {
	sc := bufio.NewScanner(r)
	tr := &Trace{}

	var header []int
	numOps := 0
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '#' {
			continue
		}

		if len(header) < 4 {
			n, err := strconv.Atoi(text)
			if err != nil || n < 0 {
				return nil, errors.Wrapf(ErrSyntax, "line %d: bad header value %q", line, text)
			}
			header = append(header, n)
			if len(header) == 4 {
				tr.SuggestedHeap, tr.NumIDs, numOps, tr.Weight = header[0], header[1], header[2], header[3]
				tr.Ops = make([]Op, 0, min(numOps, maxPrealloc))
			}
			continue
		}

		op, err := parseOp(text)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		if op.ID >= tr.NumIDs {
			return nil, errors.Wrapf(ErrSyntax, "line %d: id %d out of range (%d ids)", line, op.ID, tr.NumIDs)
		}
		tr.Ops = append(tr.Ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if len(header) < 4 {
		return nil, errors.Wrapf(ErrSyntax, "truncated header (%d of 4 values)", len(header))
	}
	if len(tr.Ops) != numOps {
		return nil, errors.Wrapf(ErrSyntax, "header declares %d ops, found %d", numOps, len(tr.Ops))
	}
	return tr, nil
}

func parseOp(text string) (Op, error) {
	fields := strings.Fields(text)
	if len(fields[0]) != 1 {
		return Op{}, errors.Wrapf(ErrSyntax, "unknown op %q", fields[0])
	}

	op := Op{Kind: OpKind(fields[0][0])}
	want := 3
	switch op.Kind {
	case OpAlloc, OpRealloc:
	case OpFree:
		want = 2
	default:
		return Op{}, errors.Wrapf(ErrSyntax, "unknown op %q", fields[0])
	}
	if len(fields) != want {
		return Op{}, errors.Wrapf(ErrSyntax, "%s takes %d fields, got %d", op.Kind, want-1, len(fields)-1)
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil || id < 0 {
		return Op{}, errors.Wrapf(ErrSyntax, "bad id %q", fields[1])
	}
	op.ID = id

	if want == 3 {
		size, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			return Op{}, errors.Wrapf(ErrSyntax, "bad size %q", fields[2])
		}
		op.Size = uint32(size)
	}
	return op, nil
}

// WriteTo writes the trace in malloc-lab format.
func (tr *Trace) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	write := func(format string, args ...any) {
		c, _ := fmt.Fprintf(bw, format, args...)
		n += int64(c)
	}

	write("%d\n%d\n%d\n%d\n", tr.SuggestedHeap, tr.NumIDs, len(tr.Ops), tr.Weight)
	for _, op := range tr.Ops {
		if op.Kind == OpFree {
			write("%c %d\n", op.Kind, op.ID)
		} else {
			write("%c %d %d\n", op.Kind, op.ID, op.Size)
		}
	}
	return n, bw.Flush()
}
