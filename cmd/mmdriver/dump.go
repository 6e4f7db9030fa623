package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/trace"
)

var (
	dumpArena  arenaFlags
	dumpUpto   int
	dumpBlocks bool
)

func init() {
	cmd := newDumpCmd()
	dumpArena.register(cmd)
	cmd.Flags().IntVar(&dumpUpto, "upto", 0, "Dump the heap after this many operations (0 = end of trace)")
	cmd.Flags().BoolVar(&dumpBlocks, "blocks", false, "List every block, not only totals")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <trace>",
		Short: "Replay part of a trace and dump the heap map",
		Long: `The dump command replays a trace (or its first --upto operations) and
prints the allocator's counters and, with --blocks, every block in address
order. With --json the full heap map is written as one JSON object.

Example:
  mmdriver dump --upto 100 --blocks short1.rep
  mmdriver dump --upto 100 --json short1.rep`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd.Context(), args)
		},
	}
	return cmd
}

func runDump(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	tr, err := trace.ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read trace: %w", err)
	}

	s, err := newSession(&dumpArena, 1)
	if err != nil {
		return err
	}
	opts := trace.Options{
		NewSource: s.newSource,
		Config:    s.cfg,
		Upto:      dumpUpto,
		Inspect: func(a *alloc.Allocator) error {
			if err := s.flush(ctx); err != nil {
				return err
			}
			return printHeap(a)
		},
	}
	_, err = trace.Replay(ctx, tr, opts)
	return err
}

// printHeap writes the heap map of a as JSON or text.
func printHeap(a *alloc.Allocator) error {
	if jsonOut {
		b, err := a.MarshalJSON()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(append(b, '\n'))
		return err
	}

	if !quiet {
		a.PrintStats(os.Stdout)
	}
	if !dumpBlocks {
		return nil
	}

	printInfo("\n%10s %10s %6s %10s\n", "ptr", "size", "state", "requested")
	return a.Walk(func(b alloc.BlockInfo) error {
		state := "free"
		if b.Allocated {
			state = "alloc"
		}
		printInfo("%10d %10d %6s %10d\n", b.Ptr, b.Size, state, b.Requested)
		return nil
	})
}
