package nodefinder

import (
	"context"

	"github.com/hupe1980/nodefinder/internal/search"
	"github.com/hupe1980/nodefinder/minimize"
)

// Objective maps a position in the search domain to a non-negative gap.
// It is called concurrently from all minimizations in flight. An error
// aborts the run.
type Objective func(ctx context.Context, pos []float64) (float64, error)

// Run searches the domain for positions where gap falls below the gap
// threshold and returns the nodes found.
//
// Cancelling ctx stops scheduling new minimizations; those in flight are
// completed and recorded, a final checkpoint is written and the error
// wraps context.Canceled. On a run error the returned Result still holds
// everything found up to that point, unless the run could not be set up.
func Run(ctx context.Context, gap Objective, optFns ...Option) (*Result, error) {
	if gap == nil {
		return nil, ErrNoObjective
	}
	o := applyOptions(optFns)
	logger := o.logger.WithRunID(o.runID).WithDimension(len(o.limits))
	obs := &observer{logger: logger, metrics: o.metricsCollector}

	cfg, err := o.searchConfig(obs)
	if err != nil {
		return nil, err
	}
	ctrl, err := search.New(ctx, minimize.Func(gap), cfg)
	if err != nil {
		return nil, err
	}
	obs.nodes = ctrl.State().Result.NumNodes()

	logger.InfoContext(ctx, "search started",
		"loaded", ctrl.Loaded(),
		"dist_cutoff", ctrl.DistCutoff(),
		"state", ctrl.State().String(),
	)
	runErr := ctrl.Run(ctx)

	res := resultFromContainer(ctrl.State().Result)
	res.evaluations = ctrl.Evaluations()
	logger.LogRun(ctx, len(res.nodes), len(res.rejected), res.evaluations, runErr)
	return res, runErr
}
