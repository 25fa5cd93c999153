package nodefinder

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hupe1980/nodefinder/coords"
	"github.com/hupe1980/nodefinder/model"
	"github.com/hupe1980/nodefinder/persistence"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var nodePosition = []float64{0.5, 0.5, 0.5}

func singleNodeGap(_ context.Context, x []float64) (float64, error) {
	var sum float64
	for i := range x {
		d := x[i] - nodePosition[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

func invalidGap(context.Context, []float64) (float64, error) {
	return 0, errors.New("invalid position")
}

func singleNodeOptions(extra ...Option) []Option {
	return append([]Option{
		WithPeriodic(false),
		WithInitialMeshSize(2, 2, 2),
		WithNumMinimizeParallel(1),
	}, extra...)
}

func checkSingleNode(t *testing.T, res *Result) {
	t.Helper()
	nodes := res.Nodes()
	require.Len(t, nodes, 1)
	assert.InDelta(t, 0, nodes[0].Value, 1e-6)
	assert.InDeltaSlice(t, nodePosition, nodes[0].Pos, 1e-6)
}

func TestRun_SingleNode(t *testing.T) {
	res, err := Run(context.Background(), singleNodeGap, singleNodeOptions()...)
	require.NoError(t, err)
	checkSingleNode(t, res)
	assert.NotEmpty(t, res.Rejected())
	assert.Positive(t, res.Evaluations())
	assert.InDelta(t, DefaultFeatureSize/3, res.DistCutoff(), 1e-15)
}

func TestRun_SaveAndRestart(t *testing.T) {
	saveFile := filepath.Join(t.TempDir(), "single.nfcp")

	res, err := Run(context.Background(), singleNodeGap, singleNodeOptions(WithSaveFile(saveFile))...)
	require.NoError(t, err)
	checkSingleNode(t, res)

	restarted, err := Run(context.Background(), invalidGap,
		singleNodeOptions(WithSaveFile(saveFile), WithLoad(false))...)
	require.NoError(t, err)
	checkSingleNode(t, restarted)
	assert.Equal(t, res.MinimizationResults(), restarted.MinimizationResults())
	assert.Zero(t, restarted.Evaluations())
}

func TestRun_NonFiniteValuesAreCheckpointed(t *testing.T) {
	saveFile := filepath.Join(t.TempDir(), "single.nfcp")
	wall := func(ctx context.Context, x []float64) (float64, error) {
		if x[0] > 0.9 {
			return math.Inf(1), nil
		}
		return singleNodeGap(ctx, x)
	}

	res, err := Run(context.Background(), wall, singleNodeOptions(WithSaveFile(saveFile))...)
	require.NoError(t, err)
	checkSingleNode(t, res)

	var infinite int
	for _, r := range res.Rejected() {
		if math.IsInf(r.Value, 1) {
			infinite++
		}
	}
	require.Positive(t, infinite)

	state, err := LoadState(saveFile)
	require.NoError(t, err)
	assert.Len(t, state.MinimizationResults, len(res.MinimizationResults()))

	loaded, err := LoadResult(saveFile)
	require.NoError(t, err)
	assert.Equal(t, res.Nodes(), loaded.Nodes())
	assert.Len(t, loaded.Rejected(), len(res.Rejected()))
}

func TestRun_EvaluationError(t *testing.T) {
	res, err := Run(context.Background(), invalidGap, singleNodeOptions()...)
	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.EqualError(t, evalErr.Err, "invalid position")
	require.NotNil(t, res)
	assert.Empty(t, res.Nodes())
}

func TestRun_ConfigurationErrors(t *testing.T) {
	t.Run("MeshDimension", func(t *testing.T) {
		_, err := Run(context.Background(), singleNodeGap, WithInitialMeshSize(2, 2))
		var dm *ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 3, dm.Limits)
		assert.Equal(t, 2, dm.InitialMeshSize)
		assert.Equal(t, 3, dm.RefinementMeshSize)
	})
	t.Run("Periodic", func(t *testing.T) {
		_, err := Run(context.Background(), singleNodeGap, WithPeriodic(true, false))
		require.ErrorIs(t, err, ErrInvalidLimits)
	})
	t.Run("LoadWithInitialState", func(t *testing.T) {
		_, err := Run(context.Background(), singleNodeGap,
			WithSaveFile(filepath.Join(t.TempDir(), "x.nfcp")),
			WithLoad(false),
			WithInitialState(&State{}),
		)
		require.ErrorIs(t, err, ErrLoadWithInitialState)
	})
	t.Run("NoObjective", func(t *testing.T) {
		_, err := Run(context.Background(), nil)
		require.ErrorIs(t, err, ErrNoObjective)
	})
	t.Run("LoadMissing", func(t *testing.T) {
		_, err := Run(context.Background(), singleNodeGap,
			WithSaveFile(filepath.Join(t.TempDir(), "missing.nfcp")),
			WithLoad(false),
		)
		var cpErr *CheckpointError
		require.ErrorAs(t, err, &cpErr)
	})
}

func TestRun_RecheckDiscardsRedundantRefinements(t *testing.T) {
	cs := &persistence.CoordinateSystem{
		Limits:   [][2]float64{{0, 1}, {0, 1}, {0, 1}},
		Periodic: []bool{false, false, false},
	}
	state := &State{
		CoordinateSystem:    cs,
		MinimizationResults: []model.Result{{Pos: []float64{0.5, 0.5, 0.5}, Value: 0, Success: true}},
		SimplexQueue:        &persistence.SimplexQueue{},
		PositionQueue: &persistence.PositionQueue{Objects: []persistence.PositionEntry{
			{Pos: []float64{0.501, 0.5, 0.5}, State: "queued"},
			{Pos: []float64{0.5, 0.501, 0.5}, State: "queued"},
		}},
	}
	metrics := &BasicMetricsCollector{}

	res, err := Run(context.Background(), invalidGap,
		WithPeriodic(false),
		WithInitialState(state),
		WithRecheck(true, 0),
		WithMetricsCollector(metrics),
	)
	require.NoError(t, err)
	assert.Len(t, res.Nodes(), 1)

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.RefinementsDiscarded)
	assert.Equal(t, int64(0), stats.RefinementsScheduled)
	assert.Equal(t, int64(0), stats.MinimizationCount)
}

func TestRun_ForceInitialMeshOnPreviousResult(t *testing.T) {
	res, err := Run(context.Background(), singleNodeGap, singleNodeOptions()...)
	require.NoError(t, err)

	metrics := &BasicMetricsCollector{}
	again, err := Run(context.Background(), singleNodeGap, singleNodeOptions(
		WithInitialState(res.State()),
		WithForceInitialMesh(true),
		WithMetricsCollector(metrics),
	)...)
	require.NoError(t, err)
	checkSingleNode(t, again)
	assert.Equal(t, int64(8), metrics.GetStats().MinimizationCount, "only the initial mesh is searched again")
}

func TestRun_LoggingAndMetrics(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	metrics := &BasicMetricsCollector{}
	saveFile := filepath.Join(t.TempDir(), "logged.nfcp")

	_, err := Run(context.Background(), singleNodeGap, singleNodeOptions(
		WithLogger(logger),
		WithMetricsCollector(metrics),
		WithSaveFile(saveFile),
	)...)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"node found"`)
	assert.Contains(t, out, `"msg":"search completed"`)
	assert.Contains(t, out, `"msg":"checkpoint saved"`)
	assert.Contains(t, out, `"run_id"`)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.NodesAccepted)
	assert.Equal(t, int64(35), stats.MinimizationCount)
	// Accepting the node queues its refinement, expanding it passes the recheck.
	assert.Equal(t, int64(2), stats.RefinementsScheduled)
	assert.Zero(t, stats.RefinementsDiscarded)
	assert.Positive(t, stats.CheckpointCount)
	assert.Zero(t, stats.CheckpointErrors)
	assert.Positive(t, stats.CheckpointBytes)
}

func TestResult_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	stateFile := filepath.Join(dir, "state.nfcp")

	res, err := Run(context.Background(), singleNodeGap, singleNodeOptions(WithSaveFile(stateFile))...)
	require.NoError(t, err)

	resultFile := filepath.Join(dir, "result.nfcp")
	require.NoError(t, res.Save(resultFile))

	loaded, err := LoadResult(resultFile)
	require.NoError(t, err)
	assert.Equal(t, res.Nodes(), loaded.Nodes())
	assert.Equal(t, res.Rejected(), loaded.Rejected())
	assert.True(t, res.CoordinateSystem().Equal(loaded.CoordinateSystem()))
	assert.Equal(t, res.GapThreshold(), loaded.GapThreshold())

	fromState, err := LoadResult(stateFile)
	require.NoError(t, err)
	assert.Equal(t, res.Nodes(), fromState.Nodes())

	var buf bytes.Buffer
	_, err = res.WriteTo(&buf)
	require.NoError(t, err)
	read, err := ReadResult(&buf)
	require.NoError(t, err)
	assert.Equal(t, res.Nodes(), read.Nodes())

	state, err := LoadState(stateFile)
	require.NoError(t, err)
	require.NotNil(t, state.SimplexQueue)
	assert.Len(t, state.SimplexQueue.Objects, 35)
}

func TestBroadcast(t *testing.T) {
	assert.Equal(t, []int{3, 3, 3}, broadcast([]int{3}, 3))
	assert.Equal(t, []int{1, 2}, broadcast([]int{1, 2}, 3))
	assert.Equal(t, []bool{true, true}, broadcast([]bool{true}, 2))
}

func TestApplyOptions_Defaults(t *testing.T) {
	o := applyOptions(nil)
	assert.Equal(t, []coords.Limit{{Lower: 0, Upper: 1}, {Lower: 0, Upper: 1}, {Lower: 0, Upper: 1}}, o.limits)
	assert.Equal(t, DefaultNumMinimizeParallel, o.numMinimizeParallel)
	assert.True(t, o.useFakePotential)
	assert.True(t, o.recheckPosDist)
	assert.Equal(t, DefaultRecheckCountCutoff, o.recheckCountCutoff)
	assert.Equal(t, persistence.CompressionZSTD, o.compression)
	assert.NotEqual(t, [16]byte{}, [16]byte(o.runID))

	cfg, err := o.searchConfig(&observer{logger: NoopLogger(), metrics: NoopMetricsCollector{}})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true}, cfg.Periodic)
	assert.Equal(t, []int{10, 10, 10}, cfg.InitialMeshSize)
	assert.Equal(t, []int{3, 3, 3}, cfg.RefinementMeshSize)
}
