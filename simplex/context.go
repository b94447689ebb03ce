package simplex

import (
	"context"
	"sync/atomic"
)

// SolverContext carries the state shared by every LP solved during one
// top-level solve: the abort flag and recovery counters. It is polled at
// the top of each simplex iteration and each branch-and-bound node; an
// abort never interrupts a pivot in progress.
type SolverContext struct {
	ctx   context.Context
	abort atomic.Bool

	// Reinversions counts re-inversions forced by numerical trouble.
	Reinversions int
	// Failures counts LPs that ended in StatusFailure.
	Failures int
}

func NewSolverContext(ctx context.Context) *SolverContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &SolverContext{ctx: ctx}
}

// Abort asks the solve to stop at the next check point. It is safe to call
// from another goroutine.
func (c *SolverContext) Abort() { c.abort.Store(true) }

func (c *SolverContext) Aborted() bool {
	return c.abort.Load() || c.ctx.Err() != nil
}
