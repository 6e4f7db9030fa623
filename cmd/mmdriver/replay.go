package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/trace"
)

var (
	replayArena    arenaFlags
	replayCheck    bool
	replayParallel int
	replayUpto     int
)

func init() {
	cmd := newReplayCmd()
	replayArena.register(cmd)
	cmd.Flags().BoolVar(&replayCheck, "check", false, "Run the heap checker after every operation")
	cmd.Flags().IntVarP(&replayParallel, "parallel", "j", 1, "Traces replayed concurrently (0 = all)")
	cmd.Flags().IntVar(&replayUpto, "upto", 0, "Stop each replay after this many operations")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <trace>...",
		Short: "Replay traces and report utilization and throughput",
		Long: `The replay command runs each trace against a fresh allocator, verifies
that payload bytes survive every realloc and free, and prints the space
utilization (peak live payload / heap size) and throughput per trace.

Example:
  mmdriver replay traces/*.rep
  mmdriver replay --check --size-classes exact binary-bal.rep
  mmdriver replay --arena file --heap-file /tmp/heap.img --upto 500 amptjp.rep
  mmdriver replay -j 0 --json traces/*.rep`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), args)
		},
	}
	return cmd
}

// replayResult is the JSON form of one trace's report.
type replayResult struct {
	Trace       string  `json:"trace"`
	Ops         int     `json:"ops"`
	Allocs      int     `json:"allocs"`
	Reallocs    int     `json:"reallocs"`
	Frees       int     `json:"frees"`
	PeakLive    int64   `json:"peakLive"`
	HeapSize    int     `json:"heapSize"`
	Utilization float64 `json:"utilization"`
	Seconds     float64 `json:"seconds"`
	OpsPerSec   float64 `json:"opsPerSec"`
	Splits      int     `json:"splits"`
	Grows       int     `json:"grows"`
	Relocations int     `json:"relocations"`
}

func newReplayResult(r *trace.Report) replayResult {
	return replayResult{
		Trace:       r.Name,
		Ops:         r.Ops,
		Allocs:      r.Allocs,
		Reallocs:    r.Reallocs,
		Frees:       r.Frees,
		PeakLive:    r.PeakLive,
		HeapSize:    r.HeapSize,
		Utilization: r.Utilization,
		Seconds:     r.Duration.Seconds(),
		OpsPerSec:   r.Throughput(),
		Splits:      r.Stats.Splits,
		Grows:       r.Stats.GrowCalls,
		Relocations: r.Stats.ReallocMove,
	}
}

func runReplay(ctx context.Context, paths []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	traces := make([]*trace.Trace, 0, len(paths))
	for _, p := range paths {
		printVerbose("Reading trace: %s\n", p)
		tr, err := trace.ParseFile(p)
		if err != nil {
			return fmt.Errorf("failed to read trace: %w", err)
		}
		traces = append(traces, tr)
	}

	s, err := newSession(&replayArena, len(traces))
	if err != nil {
		return err
	}
	opts := trace.Options{
		NewSource: s.newSource,
		Config:    s.cfg,
		Check:     replayCheck,
		Logger:    s.cfg.Logger,
		Upto:      replayUpto,
		Inspect: func(*alloc.Allocator) error {
			return s.flush(ctx)
		},
	}

	start := time.Now()
	reports, err := trace.ReplayAll(ctx, traces, opts, replayParallel)
	if err != nil {
		return err
	}
	printVerbose("Replayed %d traces in %s\n", len(reports), time.Since(start).Round(time.Millisecond))

	if jsonOut {
		results := make([]replayResult, len(reports))
		for i, r := range reports {
			results[i] = newReplayResult(r)
		}
		return printJSON(results)
	}

	printReports(reports)
	return nil
}

func printReports(reports []*trace.Report) {
	printInfo("%-24s %9s %7s %10s %10s %12s\n", "trace", "ops", "util", "heap", "secs", "Kops/s")

	var ops int
	var util float64
	var secs float64
	for _, r := range reports {
		printInfo("%-24s %9d %6.1f%% %10d %10.6f %12.0f\n",
			r.Name, r.Ops, 100*r.Utilization, r.HeapSize, r.Duration.Seconds(), r.Throughput()/1000)
		ops += r.Ops
		util += r.Utilization
		secs += r.Duration.Seconds()
	}

	if len(reports) > 1 {
		kops := 0.0
		if secs > 0 {
			kops = float64(ops) / secs / 1000
		}
		printInfo("%-24s %9d %6.1f%% %10s %10.6f %12.0f\n",
			"total", ops, 100*util/float64(len(reports)), "", secs, kops)
	}
}
