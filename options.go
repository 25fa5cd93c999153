package nodefinder

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/nodefinder/blobstore"
	"github.com/hupe1980/nodefinder/codec"
	"github.com/hupe1980/nodefinder/coords"
	"github.com/hupe1980/nodefinder/internal/fs"
	"github.com/hupe1980/nodefinder/internal/search"
	"github.com/hupe1980/nodefinder/minimize"
	"github.com/hupe1980/nodefinder/persistence"
	"github.com/hupe1980/nodefinder/resource"
)

// Defaults of a run.
const (
	DefaultInitialMeshSize     = 10
	DefaultRefinementMeshSize  = 3
	DefaultGapThreshold        = 1e-6
	DefaultFeatureSize         = 2e-2
	DefaultNumMinimizeParallel = 50
	DefaultRecheckCountCutoff  = 3
	DefaultSaveInterval        = search.DefaultSaveInterval
)

type options struct {
	limits             []coords.Limit
	periodic           []bool
	initialMeshSize    []int
	refinementMeshSize []int

	gapThreshold      float64
	featureSize       float64
	refinementBoxSize float64

	numMinimizeParallel int
	useFakePotential    bool
	recheckPosDist      bool
	recheckCountCutoff  int

	saveFile         string
	saveInterval     time.Duration
	load             bool
	loadQuiet        bool
	initialState     *State
	forceInitialMesh bool

	minimizer minimize.Minimizer
	xtol      float64
	ftol      float64
	maxIter   int
	maxFev    int

	fs          fs.FileSystem
	store       blobstore.BlobStore
	storeKey    string
	compression persistence.Compression
	codec       codec.Codec

	runID            uuid.UUID
	resources        resource.Config
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a search run.
type Option func(*options)

// WithLimits sets the (lower, upper) interval of every axis. The number of
// limits is the dimension of the search domain.
func WithLimits(limits ...coords.Limit) Option {
	return func(o *options) {
		o.limits = limits
	}
}

// WithPeriodic sets the periodicity per axis. A single flag applies to
// every axis.
func WithPeriodic(periodic ...bool) Option {
	return func(o *options) {
		o.periodic = periodic
	}
}

// WithInitialMeshSize sets the number of initial grid points per axis.
// A single value applies to every axis.
func WithInitialMeshSize(sizes ...int) Option {
	return func(o *options) {
		o.initialMeshSize = sizes
	}
}

// WithRefinementMeshSize sets the number of refinement grid points per axis
// around every node found. A single value applies to every axis; a zero
// disables refinement.
func WithRefinementMeshSize(sizes ...int) Option {
	return func(o *options) {
		o.refinementMeshSize = sizes
	}
}

// WithGapThreshold sets the largest objective value accepted as a node.
func WithGapThreshold(threshold float64) Option {
	return func(o *options) {
		o.gapThreshold = threshold
	}
}

// WithFeatureSize sets the smallest feature the search resolves. Nodes
// closer than a third of it are considered the same.
func WithFeatureSize(size float64) Option {
	return func(o *options) {
		o.featureSize = size
	}
}

// WithRefinementBoxSize sets the edge length of the refinement box. It
// defaults to five times the node distance cutoff.
func WithRefinementBoxSize(size float64) Option {
	return func(o *options) {
		o.refinementBoxSize = size
	}
}

// WithNumMinimizeParallel bounds the number of minimizations in flight.
func WithNumMinimizeParallel(n int) Option {
	return func(o *options) {
		o.numMinimizeParallel = n
	}
}

// WithFakePotential enables or disables the repulsive bias around nodes
// that were already found.
func WithFakePotential(enabled bool) Option {
	return func(o *options) {
		o.useFakePotential = enabled
	}
}

// WithRecheck configures the distance check made before a queued refinement
// is expanded. The refinement is discarded when more than countCutoff nodes
// lie within the distance cutoff.
func WithRecheck(enabled bool, countCutoff int) Option {
	return func(o *options) {
		o.recheckPosDist = enabled
		o.recheckCountCutoff = countCutoff
	}
}

// WithSaveFile enables periodic checkpoints to path.
func WithSaveFile(path string) Option {
	return func(o *options) {
		o.saveFile = path
	}
}

// WithSaveInterval sets the checkpoint period.
func WithSaveInterval(d time.Duration) Option {
	return func(o *options) {
		o.saveInterval = d
	}
}

// WithLoad resumes from the checkpoint. When quiet, a missing or unreadable
// checkpoint starts a fresh run instead of failing.
func WithLoad(quiet bool) Option {
	return func(o *options) {
		o.load = true
		o.loadQuiet = quiet
	}
}

// WithInitialState starts the run from an explicit state, as returned by
// LoadState or Result.State.
func WithInitialState(state *State) Option {
	return func(o *options) {
		o.initialState = state
	}
}

// WithForceInitialMesh adds the initial mesh to a loaded or explicit state.
func WithForceInitialMesh(force bool) Option {
	return func(o *options) {
		o.forceInitialMesh = force
	}
}

// WithMinimizer replaces the default Nelder-Mead minimizer.
func WithMinimizer(m minimize.Minimizer) Option {
	return func(o *options) {
		o.minimizer = m
	}
}

// WithTolerances sets the position and value tolerances of the default
// minimizer. Zero keeps the defaults derived from the distance cutoff and
// the gap threshold.
func WithTolerances(xtol, ftol float64) Option {
	return func(o *options) {
		o.xtol = xtol
		o.ftol = ftol
	}
}

// WithMaxIterations bounds the iterations and objective evaluations of each
// minimization.
func WithMaxIterations(maxIter, maxFev int) Option {
	return func(o *options) {
		o.maxIter = maxIter
		o.maxFev = maxFev
	}
}

// WithCheckpointStore mirrors every checkpoint to store under key. When no
// save file is configured the store is the only checkpoint target. An empty
// key defaults to the base name of the save file.
func WithCheckpointStore(store blobstore.BlobStore, key string) Option {
	return func(o *options) {
		o.store = store
		o.storeKey = key
	}
}

// WithCompression sets the checkpoint body compression.
func WithCompression(c persistence.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithCodec configures the codec used for checkpoint bodies.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithFileSystem replaces the file system used for checkpoints.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithRunID sets the run ID recorded in logs and checkpoint headers.
func WithRunID(id uuid.UUID) Option {
	return func(o *options) {
		o.runID = id
	}
}

// WithMaxConcurrentEvaluations caps the objective evaluations in flight
// across all minimizations.
func WithMaxConcurrentEvaluations(n int64) Option {
	return func(o *options) {
		o.resources.MaxConcurrentEvaluations = n
	}
}

// WithEvaluationRateLimit limits how many objective evaluations may start
// per second.
func WithEvaluationRateLimit(perSecond float64, burst int) Option {
	return func(o *options) {
		o.resources.EvaluationsPerSecond = perSecond
		o.resources.Burst = burst
	}
}

// WithMetricsCollector configures a metrics collector for monitoring the run.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &nodefinder.BasicMetricsCollector{}
//	res, _ := nodefinder.Run(ctx, gap, nodefinder.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
//	fmt.Printf("Minimizations: %d, Nodes: %d\n", stats.MinimizationCount, stats.NodesAccepted)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for the run.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := nodefinder.NewJSONLogger(slog.LevelInfo)
//	res, _ := nodefinder.Run(ctx, gap, nodefinder.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		limits:              []coords.Limit{{Lower: 0, Upper: 1}, {Lower: 0, Upper: 1}, {Lower: 0, Upper: 1}},
		periodic:            []bool{true},
		initialMeshSize:     []int{DefaultInitialMeshSize},
		refinementMeshSize:  []int{DefaultRefinementMeshSize},
		gapThreshold:        DefaultGapThreshold,
		featureSize:         DefaultFeatureSize,
		numMinimizeParallel: DefaultNumMinimizeParallel,
		useFakePotential:    true,
		recheckPosDist:      true,
		recheckCountCutoff:  DefaultRecheckCountCutoff,
		saveInterval:        DefaultSaveInterval,
		compression:         persistence.CompressionZSTD,
		codec:               codec.Default,
		metricsCollector:    NoopMetricsCollector{},
		logger:              NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.runID == uuid.Nil {
		o.runID = uuid.New()
	}
	return o
}

// broadcast expands a single value to dim values. Other lengths are returned
// unchanged and rejected by the controller's dimension check.
func broadcast[T any](vals []T, dim int) []T {
	if len(vals) != 1 {
		return vals
	}
	out := make([]T, dim)
	for i := range out {
		out[i] = vals[0]
	}
	return out
}

func (o *options) searchConfig(hooks search.Hooks) (search.Config, error) {
	dim := len(o.limits)
	if dim == 0 || (len(o.periodic) != 1 && len(o.periodic) != dim) {
		return search.Config{}, fmt.Errorf("%w: %d limits, %d periodic flags", ErrInvalidLimits, dim, len(o.periodic))
	}
	return search.Config{
		Limits:              o.limits,
		Periodic:            broadcast(o.periodic, dim),
		InitialMeshSize:     broadcast(o.initialMeshSize, dim),
		RefinementMeshSize:  broadcast(o.refinementMeshSize, dim),
		GapThreshold:        o.gapThreshold,
		FeatureSize:         o.featureSize,
		RefinementBoxSize:   o.refinementBoxSize,
		NumMinimizeParallel: o.numMinimizeParallel,
		UseFakePotential:    o.useFakePotential,
		RecheckPosDist:      o.recheckPosDist,
		RecheckCountCutoff:  o.recheckCountCutoff,
		SaveFile:            o.saveFile,
		SaveInterval:        o.saveInterval,
		Load:                o.load,
		LoadQuiet:           o.loadQuiet,
		InitialState:        o.initialState,
		ForceInitialMesh:    o.forceInitialMesh,
		Minimizer:           o.minimizer,
		XTol:                o.xtol,
		FTol:                o.ftol,
		MaxIter:             o.maxIter,
		MaxFev:              o.maxFev,
		FS:                  o.fs,
		Store:               o.store,
		StoreKey:            o.storeKey,
		Compression:         o.compression,
		Codec:               o.codec,
		RunID:               o.runID,
		Resources:           resource.NewController(o.resources),
		Hooks:               hooks,
	}, nil
}
