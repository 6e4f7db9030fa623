package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/trace"
)

var genConfig = trace.DefaultGenConfig

func init() {
	cmd := newGenCmd()
	cmd.Flags().StringVar(&genConfig.Name, "name", genConfig.Name, "Trace name")
	cmd.Flags().Int64Var(&genConfig.Seed, "seed", genConfig.Seed, "Random seed")
	cmd.Flags().IntVar(&genConfig.NumIDs, "ids", genConfig.NumIDs, "Number of allocations")
	cmd.Flags().IntVar(&genConfig.MinSize, "min-size", genConfig.MinSize, "Smallest request in bytes")
	cmd.Flags().IntVar(&genConfig.MaxSize, "max-size", genConfig.MaxSize, "Largest request in bytes")
	cmd.Flags().Float64Var(&genConfig.Realloc, "realloc", genConfig.Realloc, "Probability of a realloc step")
	cmd.Flags().Float64Var(&genConfig.Free, "free", genConfig.Free, "Probability of a free step")
	rootCmd.AddCommand(cmd)
}

func newGenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen [output]",
		Short: "Generate a random allocation trace",
		Long: `The gen command writes a synthetic trace in malloc-lab format. Every id is
allocated once and freed before the end. With no output path the trace is
written to stdout.

Example:
  mmdriver gen random.rep
  mmdriver gen --seed 7 --ids 5000 --max-size 65536 big.rep`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(args)
		},
	}
	return cmd
}

func runGen(args []string) error {
	if genConfig.NumIDs <= 0 {
		return fmt.Errorf("--ids must be positive, got %d", genConfig.NumIDs)
	}
	if genConfig.Realloc < 0 || genConfig.Free < 0 || genConfig.Realloc+genConfig.Free >= 1 {
		return fmt.Errorf("--realloc and --free must be non-negative and sum below 1")
	}

	tr := trace.Generate(genConfig)

	var w io.Writer = os.Stdout
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("failed to create trace file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := tr.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write trace: %w", err)
	}
	printVerbose("Generated %d ops over %d ids (suggested heap %d bytes)\n", len(tr.Ops), tr.NumIDs, tr.SuggestedHeap)
	return nil
}
