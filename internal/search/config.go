package search

import (
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/nodefinder/blobstore"
	"github.com/hupe1980/nodefinder/codec"
	"github.com/hupe1980/nodefinder/coords"
	"github.com/hupe1980/nodefinder/internal/fs"
	"github.com/hupe1980/nodefinder/minimize"
	"github.com/hupe1980/nodefinder/persistence"
	"github.com/hupe1980/nodefinder/resource"
)

// distCutoffFactor relates the feature size to the node separation cutoff.
const distCutoffFactor = 3

// Config holds the fully resolved settings of a search run. Per-axis slices
// must already be expanded to the domain dimension.
type Config struct {
	Limits             []coords.Limit
	Periodic           []bool
	InitialMeshSize    []int
	RefinementMeshSize []int

	GapThreshold float64
	FeatureSize  float64
	// RefinementBoxSize defaults to 5·dist_cutoff when zero.
	RefinementBoxSize float64

	NumMinimizeParallel int
	UseFakePotential    bool
	RecheckPosDist      bool
	RecheckCountCutoff  int

	SaveFile         string
	SaveInterval     time.Duration
	Load             bool
	LoadQuiet        bool
	InitialState     *persistence.Document
	ForceInitialMesh bool

	// Minimizer defaults to Nelder-Mead with XTol, FTol, MaxIter and MaxFev.
	// Zero tolerances default to 0.03·dist_cutoff and 0.05·gap_threshold.
	Minimizer minimize.Minimizer
	XTol      float64
	FTol      float64
	MaxIter   int
	MaxFev    int

	FS          fs.FileSystem
	Store       blobstore.BlobStore
	StoreKey    string
	Compression persistence.Compression
	Codec       codec.Codec

	RunID     uuid.UUID
	Resources *resource.Controller
	Hooks     Hooks
}

// DistCutoff returns the separation below which nodes are redundant.
func (c *Config) DistCutoff() float64 { return c.FeatureSize / distCutoffFactor }

func (c *Config) validate() error {
	dl, di, dr := len(c.Limits), len(c.InitialMeshSize), len(c.RefinementMeshSize)
	if dl != di || dl != dr {
		return &DimensionMismatchError{Limits: dl, InitialMeshSize: di, RefinementMeshSize: dr}
	}
	for _, m := range append(append([]int(nil), c.InitialMeshSize...), c.RefinementMeshSize...) {
		if m < 0 {
			return ErrInvalidMeshSize
		}
	}
	if c.NumMinimizeParallel <= 0 {
		return ErrInvalidParallelism
	}
	if c.FeatureSize < 0 {
		return ErrInvalidFeatureSize
	}
	if c.Load {
		if c.InitialState != nil {
			return ErrLoadWithInitialState
		}
		if c.SaveFile == "" && c.Store == nil {
			return ErrLoadWithoutSource
		}
	}
	return nil
}

func (c *Config) minimizer(dim int) minimize.Minimizer {
	if c.Minimizer != nil {
		return c.Minimizer
	}
	nm := minimize.NelderMead{
		XTol:    c.XTol,
		FTol:    c.FTol,
		MaxIter: c.MaxIter,
		MaxFev:  c.MaxFev,
	}
	if nm.XTol == 0 {
		nm.XTol = 0.03 * c.DistCutoff()
	}
	if nm.FTol == 0 {
		nm.FTol = 0.05 * c.GapThreshold
	}
	return nm
}

func (c *Config) storeKey() string {
	switch {
	case c.StoreKey != "":
		return c.StoreKey
	case c.SaveFile != "":
		return baseName(c.SaveFile)
	default:
		return "checkpoint.nfcp"
	}
}
