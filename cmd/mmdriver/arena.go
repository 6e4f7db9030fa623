package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/dirty"
)

// arenaFlags selects and sizes the arena each replay runs on.
type arenaFlags struct {
	kind     string
	max      int
	heapFile string
	classes  string
	chunk    uint32
}

func (f *arenaFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kind, "arena", "memory", "Arena type: memory, mapped or file")
	cmd.Flags().IntVar(&f.max, "max-heap", heap.DefaultMaxSize, "Arena cap in bytes")
	cmd.Flags().StringVar(&f.heapFile, "heap-file", "", "Heap image path for --arena file")
	cmd.Flags().StringVar(&f.classes, "size-classes", "binary", "Size-class config: exact, binary or balanced")
	cmd.Flags().Uint32Var(&f.chunk, "chunk", 0, "Heap growth chunk in bytes (0 = default)")
}

// session is the arena wiring for one command run. For file arenas it also
// owns the dirty tracker, which is flushed once the replay finishes.
type session struct {
	flags   *arenaFlags
	cfg     *alloc.Config
	tracker *dirty.Tracker
}

func newSession(f *arenaFlags, traces int) (*session, error) {
	classes, err := sizeClasses(f.classes)
	if err != nil {
		return nil, err
	}
	switch f.kind {
	case "memory", "mapped":
	case "file":
		if f.heapFile == "" {
			return nil, fmt.Errorf("--arena file needs --heap-file")
		}
		if traces != 1 {
			return nil, fmt.Errorf("--arena file replays exactly one trace, got %d", traces)
		}
	default:
		return nil, fmt.Errorf("unknown arena %q (want memory, mapped or file)", f.kind)
	}

	cfg := &alloc.Config{
		ChunkSize:   f.chunk,
		SizeClasses: classes,
		Logger:      newLogger(),
	}
	return &session{flags: f, cfg: cfg}, nil
}

// newSource builds one arena. A file arena attaches a dirty tracker to the
// allocator config before the allocator is created.
func (s *session) newSource() (heap.Source, error) {
	switch s.flags.kind {
	case "mapped":
		return heap.NewMapped(s.flags.max)
	case "file":
		h, err := heap.CreateFile(s.flags.heapFile, s.flags.max)
		if err != nil {
			return nil, err
		}
		s.tracker = dirty.NewTracker(h)
		s.cfg.Dirty = s.tracker
		return h, nil
	default:
		return heap.NewMemory(s.flags.max), nil
	}
}

// flush writes the dirty pages of a file arena back to disk.
func (s *session) flush(ctx context.Context) error {
	if s.tracker == nil {
		return nil
	}
	printVerbose("Flushing %d dirty ranges to %s\n", s.tracker.Len(), s.flags.heapFile)
	return s.tracker.Flush(ctx, dirty.FlushAuto)
}
