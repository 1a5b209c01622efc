// Package worker runs bounded batches of independent tasks.
package worker

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/okian/gigmatch/pkg/logger"
	"github.com/okian/gigmatch/pkg/metrics"
)

const defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()

// Task processes item i of a batch.
type Task func(ctx context.Context, i int) error

// Pool bounds how many tasks of a batch run at once. A failing task never
// cancels its siblings; every outcome is reported per index.
type Pool struct {
	limit  int
	name   string
	logger logger.Logger
}

// NewPool creates a pool running at most limit tasks concurrently. A
// non-positive limit falls back to a multiple of the CPU count.
func NewPool(limit int, opts ...Option) *Pool {
	if limit < 1 {
		limit = runtime.NumCPU() * defaultWorkerMultiplier
	}
	p := &Pool{
		limit:  limit,
		name:   "worker-pool",
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Limit returns the concurrency bound.
func (p *Pool) Limit() int { return p.limit }

// Run executes task for every i in [0, n) and waits for all of them. The
// returned slice has one entry per index, nil on success. Indices not started
// because ctx ended report ErrStopped.
func (p *Pool) Run(ctx context.Context, n int, task Task) []error {
	errs := make([]error, n)
	if n == 0 {
		return errs
	}

	var g errgroup.Group
	g.SetLimit(p.limit)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			errs[i] = fmt.Errorf("%w: %w", ErrStopped, err)
			continue
		}
		i := i
		g.Go(func() error {
			errs[i] = p.runTask(ctx, i, task)
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

// runTask runs one task, turning a panic into ErrTaskPanic.
func (p *Pool) runTask(ctx context.Context, i int, task Task) (err error) {
	panicked := false
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
		if err != nil {
			p.logger.Debug(ctx, "task failed",
				logger.String("pool", p.name),
				logger.Int("index", i),
				logger.Bool("panicked", panicked),
				logger.Error(err),
			)
		}
		metrics.RecordWorkerTask(err != nil, panicked)
	}()
	return task(ctx, i)
}
