package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/nodefinder"
	"github.com/hupe1980/nodefinder/codec"
	"github.com/hupe1980/nodefinder/coords"
	"github.com/hupe1980/nodefinder/persistence"
)

// RunConfig is the YAML run configuration. Unset fields keep the library
// defaults.
type RunConfig struct {
	Objective string      `yaml:"objective"`
	Nodes     [][]float64 `yaml:"nodes"`

	Limits             [][2]float64 `yaml:"limits"`
	Periodic           []bool       `yaml:"periodic"`
	InitialMeshSize    []int        `yaml:"initial_mesh_size"`
	RefinementMeshSize []int        `yaml:"refinement_mesh_size"`

	GapThreshold      *float64 `yaml:"gap_threshold"`
	FeatureSize       *float64 `yaml:"feature_size"`
	RefinementBoxSize float64  `yaml:"refinement_box_size"`

	NumMinimizeParallel int   `yaml:"num_minimize_parallel"`
	UseFakePotential    *bool `yaml:"use_fake_potential"`
	RecheckPosDist      *bool `yaml:"recheck_pos_dist"`
	RecheckCountCutoff  *int  `yaml:"recheck_count_cutoff"`

	SaveFile         string        `yaml:"save_file"`
	SaveInterval     time.Duration `yaml:"save_interval"`
	Load             bool          `yaml:"load"`
	LoadQuiet        bool          `yaml:"load_quiet"`
	ForceInitialMesh bool          `yaml:"force_initial_mesh"`

	XTol    float64 `yaml:"xtol"`
	FTol    float64 `yaml:"ftol"`
	MaxIter int     `yaml:"max_iter"`
	MaxFev  int     `yaml:"max_fev"`

	Compression string `yaml:"compression"`
	Codec       string `yaml:"codec"`

	MaxConcurrentEvaluations int64   `yaml:"max_concurrent_evaluations"`
	EvaluationsPerSecond     float64 `yaml:"evaluations_per_second"`
	EvaluationBurst          int     `yaml:"evaluation_burst"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	Store StoreConfig `yaml:"checkpoint_store"`
}

// StoreConfig selects the checkpoint mirror.
type StoreConfig struct {
	Type      string `yaml:"type"` // local, s3 or minio
	Dir       string `yaml:"dir"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Key       string `yaml:"key"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
}

func loadConfig(path string) (*RunConfig, error) {
	cfg := &RunConfig{Objective: "point"}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// options translates the configuration into run options.
func (c *RunConfig) options() ([]nodefinder.Option, error) {
	var opts []nodefinder.Option

	if len(c.Limits) > 0 {
		limits := make([]coords.Limit, len(c.Limits))
		for i, l := range c.Limits {
			limits[i] = coords.Limit{Lower: l[0], Upper: l[1]}
		}
		opts = append(opts, nodefinder.WithLimits(limits...))
	}
	if len(c.Periodic) > 0 {
		opts = append(opts, nodefinder.WithPeriodic(c.Periodic...))
	}
	if len(c.InitialMeshSize) > 0 {
		opts = append(opts, nodefinder.WithInitialMeshSize(c.InitialMeshSize...))
	}
	if len(c.RefinementMeshSize) > 0 {
		opts = append(opts, nodefinder.WithRefinementMeshSize(c.RefinementMeshSize...))
	}
	if c.GapThreshold != nil {
		opts = append(opts, nodefinder.WithGapThreshold(*c.GapThreshold))
	}
	if c.FeatureSize != nil {
		opts = append(opts, nodefinder.WithFeatureSize(*c.FeatureSize))
	}
	if c.RefinementBoxSize > 0 {
		opts = append(opts, nodefinder.WithRefinementBoxSize(c.RefinementBoxSize))
	}
	if c.NumMinimizeParallel > 0 {
		opts = append(opts, nodefinder.WithNumMinimizeParallel(c.NumMinimizeParallel))
	}
	if c.UseFakePotential != nil {
		opts = append(opts, nodefinder.WithFakePotential(*c.UseFakePotential))
	}
	if c.RecheckPosDist != nil || c.RecheckCountCutoff != nil {
		enabled, cutoff := true, nodefinder.DefaultRecheckCountCutoff
		if c.RecheckPosDist != nil {
			enabled = *c.RecheckPosDist
		}
		if c.RecheckCountCutoff != nil {
			cutoff = *c.RecheckCountCutoff
		}
		opts = append(opts, nodefinder.WithRecheck(enabled, cutoff))
	}
	if c.SaveFile != "" {
		opts = append(opts, nodefinder.WithSaveFile(c.SaveFile))
	}
	if c.SaveInterval > 0 {
		opts = append(opts, nodefinder.WithSaveInterval(c.SaveInterval))
	}
	if c.Load {
		opts = append(opts, nodefinder.WithLoad(c.LoadQuiet))
	}
	if c.ForceInitialMesh {
		opts = append(opts, nodefinder.WithForceInitialMesh(true))
	}
	if c.XTol > 0 || c.FTol > 0 {
		opts = append(opts, nodefinder.WithTolerances(c.XTol, c.FTol))
	}
	if c.MaxIter > 0 || c.MaxFev > 0 {
		opts = append(opts, nodefinder.WithMaxIterations(c.MaxIter, c.MaxFev))
	}
	if c.Compression != "" {
		comp, err := persistence.ParseCompression(c.Compression)
		if err != nil {
			return nil, err
		}
		opts = append(opts, nodefinder.WithCompression(comp))
	}
	if c.Codec != "" {
		cd, ok := codec.ByName(c.Codec)
		if !ok {
			return nil, fmt.Errorf("%w: %q", persistence.ErrUnknownCodec, c.Codec)
		}
		opts = append(opts, nodefinder.WithCodec(cd))
	}
	if c.MaxConcurrentEvaluations > 0 {
		opts = append(opts, nodefinder.WithMaxConcurrentEvaluations(c.MaxConcurrentEvaluations))
	}
	if c.EvaluationsPerSecond > 0 {
		opts = append(opts, nodefinder.WithEvaluationRateLimit(c.EvaluationsPerSecond, c.EvaluationBurst))
	}

	logger, err := c.logger()
	if err != nil {
		return nil, err
	}
	opts = append(opts, nodefinder.WithLogger(logger))
	return opts, nil
}

func (c *RunConfig) logger() (*nodefinder.Logger, error) {
	level := slog.LevelInfo
	if c.LogLevel != "" {
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}
	switch c.LogFormat {
	case "", "text":
		return nodefinder.NewTextLogger(level), nil
	case "json":
		return nodefinder.NewJSONLogger(level), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", c.LogFormat)
	}
}
