package alloc

import (
	"io"
	"log/slog"
	"os"

	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/internal/format"
)

// logAlloc turns on stderr debug logging when no Logger is configured.
var logAlloc = os.Getenv("HEAPKIT_LOG_ALLOC") != ""

// Config tunes an Allocator. A nil *Config means DefaultConfig().
type Config struct {
	// ChunkSize is the minimum number of bytes requested from the arena when
	// no free block fits. Zero means format.ChunkSize. Rounded up to 8.
	ChunkSize uint32

	// SizeClasses controls request rounding. Nil means DefaultSizeClasses.
	SizeClasses *SizeClassConfig

	// Logger receives debug events (growth, large splits, relocations).
	Logger *slog.Logger

	// Dirty, when set, is told about every byte range the allocator writes:
	// tags, and the destination of realloc copies.
	Dirty dirty.DirtyTracker
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() *Config {
	return &Config{
		ChunkSize:   format.ChunkSize,
		SizeClasses: &DefaultSizeClasses,
	}
}

// chunk returns the effective growth chunk.
func (c *Config) chunk() uint32 {
	if c.ChunkSize == 0 {
		return format.ChunkSize
	}
	return format.Align8(c.ChunkSize)
}

// classes returns the effective size-class configuration.
func (c *Config) classes() SizeClassConfig {
	if c.SizeClasses == nil {
		return DefaultSizeClasses
	}
	return *c.SizeClasses
}

// logger returns the configured logger, a stderr logger when
// HEAPKIT_LOG_ALLOC is set, or a discarding one.
func (c *Config) logger() *slog.Logger {
	switch {
	case c.Logger != nil:
		return c.Logger
	case logAlloc:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}
