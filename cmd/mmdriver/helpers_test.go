package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/trace"
)

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	return string(<-done), fnErr
}

// writeTrace generates a small trace into dir and returns its path.
func writeTrace(t *testing.T, dir, name string, seed int64) string {
	t.Helper()

	cfg := trace.DefaultGenConfig
	cfg.Name = name
	cfg.Seed = seed
	cfg.NumIDs = 200
	cfg.MaxSize = 1024

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = trace.Generate(cfg).WriteTo(f)
	require.NoError(t, err)
	return path
}

// resetFlags restores global flag state between tests.
func resetFlags() {
	verbose = false
	quiet = false
	jsonOut = false
	replayCheck = false
	replayParallel = 1
	replayUpto = 0
	replayArena = arenaFlags{kind: "memory", max: 4 << 20, classes: "binary"}
	dumpArena = arenaFlags{kind: "memory", max: 4 << 20, classes: "binary"}
	dumpUpto = 0
	dumpBlocks = false
	checkMax = 4 << 20
	checkClasses = "binary"
}
