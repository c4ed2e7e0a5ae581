// Package parallel runs independent per-item work across goroutines.
//
// The CPU backend uses it to spread batch elements of a stacked matrix
// operation over workers. Each item must write only to its own output slot,
// so results never depend on the worker count.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Upper bound on concurrently running goroutines.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 16,
	}
}

// Sequential returns a Config that never spawns goroutines.
func Sequential() Config {
	return Config{NumWorkers: 1, MinChunkSize: 1}
}

// For executes f(i) for i in [0, n).
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	ForChunks(n, func(start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	}, cfg)
}

// ForChunks splits [0, n) into contiguous ranges and calls f(start, end) for
// each, concurrently when cfg allows it.
func ForChunks(n int, f func(start, end int), cfg Config) {
	if n <= 0 {
		return
	}
	workers := max(cfg.NumWorkers, 1)
	if !cfg.Enabled || workers == 1 || n < 2*max(cfg.MinChunkSize, 1) {
		f(0, n)
		return
	}

	chunkSize := max((n+workers-1)/workers, cfg.MinChunkSize, 1)

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			f(start, end)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors
}
