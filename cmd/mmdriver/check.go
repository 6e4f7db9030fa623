package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
)

var (
	checkMax     int
	checkClasses string
)

func init() {
	cmd := newCheckCmd()
	cmd.Flags().IntVar(&checkMax, "max-heap", heap.DefaultMaxSize, "Arena cap in bytes")
	cmd.Flags().StringVar(&checkClasses, "size-classes", "binary", "Size-class config the image was built with")
	cmd.Flags().BoolVar(&dumpBlocks, "blocks", false, "List every block after a successful check")
	rootCmd.AddCommand(cmd)
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <heap-file>",
		Short: "Validate a heap image",
		Long: `The check command attaches to a heap image written with
"replay --arena file", rebuilds the free index and runs the heap checker:
sentinels, alignment, header/footer symmetry, coalescing and free index
consistency.

Example:
  mmdriver check /tmp/heap.img
  mmdriver check --blocks --json /tmp/heap.img`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args)
		},
	}
	return cmd
}

func runCheck(args []string) error {
	path := args[0]
	classes, err := sizeClasses(checkClasses)
	if err != nil {
		return err
	}

	printVerbose("Opening heap image: %s\n", path)
	h, err := heap.OpenFile(path, checkMax)
	if err != nil {
		return fmt.Errorf("failed to open heap image: %w", err)
	}
	defer h.Close()

	a, err := alloc.Attach(h, &alloc.Config{SizeClasses: classes, Logger: newLogger()})
	if err != nil {
		return fmt.Errorf("failed to attach: %w", err)
	}
	if err := a.Check(); err != nil {
		return err
	}

	if jsonOut {
		return printHeap(a)
	}
	printInfo("%s: OK (%d bytes)\n", path, a.HeapSize())
	if dumpBlocks {
		return printHeap(a)
	}
	return nil
}
