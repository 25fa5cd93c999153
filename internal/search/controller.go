package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/nodefinder/coords"
	"github.com/hupe1980/nodefinder/internal/queue"
	"github.com/hupe1980/nodefinder/minimize"
	"github.com/hupe1980/nodefinder/model"
	"github.com/hupe1980/nodefinder/resource"
)

// DefaultSaveInterval is the checkpoint period used when none is configured.
const DefaultSaveInterval = 5 * time.Second

// Controller drives a node search.
type Controller struct {
	cfg        Config
	cs         *coords.System
	distCutoff float64
	objective  minimize.Func
	minimizer  minimize.Minimizer
	bias       *minimize.FakePotential
	stencil    []model.Simplex
	hooks      Hooks

	state       *State
	needsSaving bool
	inFlight    int
	loaded      bool
}

// outcome is the report of one minimization task.
type outcome struct {
	handle   queue.Handle
	simplex  model.Simplex
	result   model.Result
	duration time.Duration
	err      error
}

// New validates cfg, builds the coordinate system and creates or loads the
// initial state.
func New(ctx context.Context, objective minimize.Func, cfg Config) (*Controller, error) {
	if objective == nil {
		return nil, ErrNoObjective
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cs, err := coords.New(cfg.Limits, cfg.Periodic)
	if err != nil {
		return nil, err
	}
	if cfg.SaveInterval <= 0 {
		cfg.SaveInterval = DefaultSaveInterval
	}
	if cfg.Hooks == nil {
		cfg.Hooks = NoopHooks{}
	}
	if cfg.Resources == nil {
		cfg.Resources = resource.NewController(resource.Config{})
	}

	c := &Controller{
		cfg:        cfg,
		cs:         cs,
		distCutoff: cfg.DistCutoff(),
		minimizer:  cfg.minimizer(cs.Dim()),
		hooks:      cfg.Hooks,
	}
	c.objective = c.wrapObjective(objective)

	if err := c.initState(ctx); err != nil {
		return nil, err
	}
	if cfg.UseFakePotential {
		c.bias = minimize.NewFakePotential(c.state.Result, cs.Distance, c.distCutoff)
	}
	box := cfg.RefinementBoxSize
	if box == 0 {
		box = 5 * c.distCutoff
	}
	c.stencil = refinementStencil(cs.Dim(), box, cfg.RefinementMeshSize)
	return c, nil
}

func (c *Controller) initState(ctx context.Context) error {
	doc := c.cfg.InitialState
	if c.cfg.Load {
		loaded, err := c.load(ctx)
		switch {
		case err == nil:
			doc = loaded
			c.loaded = true
		case !c.cfg.LoadQuiet:
			return err
		}
	}

	if doc == nil {
		c.state = newState(c.cs, c.cfg.GapThreshold, c.distCutoff, c.initialSimplices())
		return nil
	}

	st, err := stateFromDocument(doc, c.cs, c.cfg.GapThreshold, c.distCutoff)
	if err != nil {
		return err
	}
	if c.cfg.ForceInitialMesh {
		if err := st.Simplices.Add(c.initialSimplices()...); err != nil {
			return err
		}
	}
	c.state = st
	return nil
}

func (c *Controller) initialSimplices() []model.Simplex {
	return generateSimplices(c.cs.Limits(), c.cfg.InitialMeshSize)
}

// State returns the run state. It must not be used while Run is executing.
func (c *Controller) State() *State { return c.state }

// CoordinateSystem returns the coordinate system of the run.
func (c *Controller) CoordinateSystem() *coords.System { return c.cs }

// DistCutoff returns the separation below which nodes are redundant.
func (c *Controller) DistCutoff() float64 { return c.distCutoff }

// Evaluations returns the number of objective evaluations started by this
// controller.
func (c *Controller) Evaluations() int64 { return c.cfg.Resources.Evaluations() }

// Loaded reports whether the initial state came from a checkpoint.
func (c *Controller) Loaded() bool { return c.loaded }

// wrapObjective adds resource admission and error attribution to f.
func (c *Controller) wrapObjective(f minimize.Func) minimize.Func {
	res := c.cfg.Resources
	return func(ctx context.Context, pos []float64) (float64, error) {
		if err := res.AcquireEvaluation(ctx); err != nil {
			return 0, err
		}
		v, err := f(ctx, pos)
		res.ReleaseEvaluation()
		if err != nil {
			return 0, &EvaluationError{Pos: slices.Clone(pos), Err: err}
		}
		return v, nil
	}
}

// Run executes the search until both queues are drained, the context is
// cancelled or a fatal error occurs. In-flight minimizations always finish
// and are processed, and a final checkpoint is written before returning.
func (c *Controller) Run(ctx context.Context) error {
	done := make(chan outcome, c.cfg.NumMinimizeParallel)
	var g errgroup.Group

	ticker := time.NewTicker(c.cfg.SaveInterval)
	defer ticker.Stop()

	var runErr error
	for runErr == nil && c.hasWork() {
		if err := c.schedule(ctx, &g, done); err != nil {
			runErr = err
			break
		}
		if c.inFlight == 0 {
			continue
		}

		select {
		case out := <-done:
			runErr = c.process(ctx, out)
		case <-ticker.C:
			runErr = c.save(ctx)
		case <-ctx.Done():
			runErr = ctx.Err()
		}
	}

	for c.inFlight > 0 {
		if err := c.process(ctx, <-done); err != nil && runErr == nil {
			runErr = err
		}
	}
	_ = g.Wait()

	return errors.Join(runErr, c.save(context.WithoutCancel(ctx)))
}

func (c *Controller) hasWork() bool {
	return !c.state.Simplices.Finished() || c.state.Positions.HasQueued()
}

// schedule fills the free minimization slots. Queued positions are expanded
// into refinement simplices only when no simplex is queued.
func (c *Controller) schedule(ctx context.Context, g *errgroup.Group, done chan<- outcome) error {
	st := c.state
	for st.Simplices.NumRunning() < c.cfg.NumMinimizeParallel {
		for !st.Simplices.HasQueued() && st.Positions.HasQueued() {
			_, pos, err := st.Positions.Pop()
			if err != nil {
				return err
			}
			c.needsSaving = true
			if err := c.expand(ctx, pos); err != nil {
				return err
			}
		}
		if !st.Simplices.HasQueued() {
			return nil
		}

		h, simplex, err := st.Simplices.Pop()
		if err != nil {
			return err
		}
		c.needsSaving = true
		c.inFlight++
		taskCtx := context.WithoutCancel(ctx)
		g.Go(func() error {
			done <- c.runMinimization(taskCtx, h, simplex)
			return nil
		})
	}
	return nil
}

// expand queues the refinement stencil around pos unless more than
// RecheckCountCutoff nodes already lie within the distance cutoff.
func (c *Controller) expand(ctx context.Context, pos []float64) error {
	scheduled := !c.cfg.RecheckPosDist || c.checkPosRefinement(pos, c.cfg.RecheckCountCutoff)
	c.hooks.OnRefinement(ctx, RefinementEvent{Pos: pos, Expanded: true, Scheduled: scheduled})
	if !scheduled {
		return nil
	}
	for _, s := range c.stencil {
		if err := c.state.Simplices.Add(s.Translate(pos)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) runMinimization(ctx context.Context, h queue.Handle, simplex model.Simplex) outcome {
	start := time.Now()
	out := outcome{handle: h, simplex: simplex}

	f := c.objective
	if c.bias != nil {
		f = c.bias.Wrap(f)
	}
	res, err := c.minimizer.Minimize(ctx, f, simplex)
	if err == nil && c.bias != nil {
		// Report the unbiased objective at the converged position.
		res.Value, err = c.objective(ctx, res.Pos)
	}
	out.result, out.err = res, err
	out.duration = time.Since(start)
	return out
}

// process ingests a finished minimization. A failed task leaves its simplex
// running, so it is retried when the run is resumed from a checkpoint.
func (c *Controller) process(ctx context.Context, out outcome) error {
	c.inFlight--
	if out.err != nil {
		c.hooks.OnMinimization(ctx, MinimizationEvent{Initial: out.simplex, Duration: out.duration, Err: out.err})
		return out.err
	}

	if err := c.state.Simplices.SetFinished(out.handle); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	stored, accepted := c.state.Result.Add(out.result)
	c.needsSaving = true
	c.hooks.OnMinimization(ctx, MinimizationEvent{
		Initial:  out.simplex,
		Result:   stored,
		Accepted: accepted,
		Duration: out.duration,
	})
	if !accepted {
		return nil
	}

	c.hooks.OnNodeFound(ctx, stored)
	if c.stencil == nil {
		return nil
	}
	refine := c.checkPosRefinement(stored.Pos, 0)
	c.hooks.OnRefinement(ctx, RefinementEvent{Pos: stored.Pos, Scheduled: refine})
	if !refine {
		return nil
	}
	return c.state.Positions.Add(stored.Pos)
}

// checkPosRefinement reports whether at most countCutoff accepted nodes
// other than pos itself lie closer than the distance cutoff.
func (c *Controller) checkPosRefinement(pos []float64, countCutoff int) bool {
	count := 0
	for d := range c.state.Result.NeighbourDistances(pos) {
		if d < c.distCutoff {
			count++
		}
		if count > countCutoff {
			return false
		}
	}
	return true
}
