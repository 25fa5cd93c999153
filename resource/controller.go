// Package resource bounds the cost a search imposes on the objective function.
//
// The admission gate for minimizations lives in the controller's work queue;
// this package limits what happens inside them: how many objective
// evaluations may run at once, and how many may start per second.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds evaluation limits.
type Config struct {
	// MaxConcurrentEvaluations caps objective evaluations in flight.
	// If 0, evaluations are not capped.
	MaxConcurrentEvaluations int64

	// EvaluationsPerSecond limits the evaluation start rate.
	// If 0, unlimited.
	EvaluationsPerSecond float64

	// Burst is the rate limiter burst size. If 0, defaults to 1.
	Burst int
}

// Controller manages evaluation resources. A nil *Controller imposes no limits.
type Controller struct {
	cfg Config

	evalSem *semaphore.Weighted // nil if uncapped
	limiter *rate.Limiter       // nil if unlimited

	total atomic.Int64
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MaxConcurrentEvaluations > 0 {
		c.evalSem = semaphore.NewWeighted(cfg.MaxConcurrentEvaluations)
	}

	if cfg.EvaluationsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.EvaluationsPerSecond), burst)
	}

	return c
}

// AcquireEvaluation blocks until an evaluation may start or ctx is done.
func (c *Controller) AcquireEvaluation(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if c.evalSem != nil {
		if err := c.evalSem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	c.total.Add(1)
	return nil
}

// ReleaseEvaluation marks an evaluation as done.
func (c *Controller) ReleaseEvaluation() {
	if c == nil {
		return
	}
	if c.evalSem != nil {
		c.evalSem.Release(1)
	}
}

// Evaluations returns the number of evaluations started so far.
func (c *Controller) Evaluations() int64 {
	if c == nil {
		return 0
	}
	return c.total.Load()
}
