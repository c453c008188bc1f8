// Package workpool provides a bounded-concurrency executor for batches of
// independent work units.
package workpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Task is a single unit of work. Tasks record their own outcomes; the pool
// never interprets or propagates task failures.
type Task func(ctx context.Context)

// Pool runs batches of tasks with at most a fixed number in flight at once.
// A started task always runs to completion; the pool never preempts.
type Pool struct {
	limit int
}

// DefaultLimit is the default concurrency limit: twice the number of
// available processing units.
func DefaultLimit() int {
	return 2 * runtime.NumCPU()
}

// New creates a pool with the given concurrency limit. A limit of zero or
// less selects DefaultLimit.
func New(limit int) *Pool {
	if limit <= 0 {
		limit = DefaultLimit()
	}
	return &Pool{limit: limit}
}

// Limit returns the pool's concurrency limit.
func (p *Pool) Limit() int {
	return p.limit
}

// Run dispatches every task in the batch, running at most Limit of them
// simultaneously and queuing the remainder. It returns once the whole batch
// has completed. Tasks in one batch must not depend on each other.
func (p *Pool) Run(ctx context.Context, tasks []Task) {
	g := new(errgroup.Group)
	g.SetLimit(p.limit)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			task(ctx)
			return nil
		})
	}
	// Tasks never return errors through the group; failures are captured by
	// the tasks themselves.
	_ = g.Wait()
}
