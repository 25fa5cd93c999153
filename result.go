package nodefinder

import (
	"io"
	"slices"

	"github.com/hupe1980/nodefinder/coords"
	"github.com/hupe1980/nodefinder/internal/fs"
	"github.com/hupe1980/nodefinder/internal/results"
	"github.com/hupe1980/nodefinder/internal/search"
	"github.com/hupe1980/nodefinder/model"
	"github.com/hupe1980/nodefinder/persistence"
)

// State is the persisted form of a run: results and work queues.
type State = persistence.Document

// Result is the outcome of a run.
type Result struct {
	cs           *coords.System
	gapThreshold float64
	distCutoff   float64
	nodes        []model.Result
	rejected     []model.Result
	evaluations  int64
}

func resultFromContainer(c *results.Container) *Result {
	return &Result{
		cs:           c.CoordinateSystem(),
		gapThreshold: c.GapThreshold(),
		distCutoff:   c.DistCutoff(),
		nodes:        c.Nodes(),
		rejected:     c.Rejected(),
	}
}

// Nodes returns the accepted results in the order they were found.
func (r *Result) Nodes() []model.Result { return slices.Clone(r.nodes) }

// Evaluations returns the number of objective evaluations made by the run
// that produced r. It is zero for results read from disk.
func (r *Result) Evaluations() int64 { return r.evaluations }

// Rejected returns the minimization results that did not become nodes.
func (r *Result) Rejected() []model.Result { return slices.Clone(r.rejected) }

// MinimizationResults returns all results, nodes first.
func (r *Result) MinimizationResults() []model.Result {
	return append(slices.Clone(r.nodes), r.rejected...)
}

// CoordinateSystem returns the coordinate system of the search domain.
func (r *Result) CoordinateSystem() *coords.System { return r.cs }

// GapThreshold returns the acceptance threshold of the run.
func (r *Result) GapThreshold() float64 { return r.gapThreshold }

// DistCutoff returns the separation below which nodes are redundant.
func (r *Result) DistCutoff() float64 { return r.distCutoff }

// State returns the results as a state without queued work. Passed to
// WithInitialState together with WithForceInitialMesh, it restarts a
// search on top of a previous result.
func (r *Result) State() *State {
	doc := r.document()
	doc.SimplexQueue = &persistence.SimplexQueue{Objects: []persistence.SimplexEntry{}}
	doc.PositionQueue = &persistence.PositionQueue{Objects: []persistence.PositionEntry{}}
	return doc
}

func (r *Result) document() *persistence.Document {
	return &persistence.Document{
		CoordinateSystem:    search.CoordinateSystemDocument(r.cs),
		GapThreshold:        model.Float(r.gapThreshold),
		DistCutoff:          model.Float(r.distCutoff),
		MinimizationResults: r.MinimizationResults(),
	}
}

// WriteTo writes the result as a checkpoint of kind result.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	return persistence.Encode(w, persistence.KindResult, r.document(), persistence.Options{
		Compression: persistence.CompressionZSTD,
	})
}

// Save atomically writes the result to path.
func (r *Result) Save(path string) error {
	_, err := persistence.Save(fs.Default, path, persistence.KindResult, r.document(), persistence.Options{
		Compression: persistence.CompressionZSTD,
	})
	return err
}

// LoadResult reads a result file. A full run checkpoint is accepted as
// well, in which case its queues are ignored.
func LoadResult(path string) (*Result, error) {
	_, doc, err := persistence.Load(fs.Default, path)
	if err != nil {
		return nil, err
	}
	return resultFromDocument(doc)
}

// ReadResult decodes a result from r.
func ReadResult(r io.Reader) (*Result, error) {
	_, doc, err := persistence.Decode(r)
	if err != nil {
		return nil, err
	}
	return resultFromDocument(doc)
}

func resultFromDocument(doc *persistence.Document) (*Result, error) {
	cs, err := search.CoordinateSystemFromDocument(doc.CoordinateSystem)
	if err != nil {
		return nil, err
	}
	for _, res := range doc.MinimizationResults {
		if len(res.Pos) != cs.Dim() {
			return nil, &coords.ErrDimensionMismatch{Expected: cs.Dim(), Actual: len(res.Pos)}
		}
	}
	return resultFromContainer(results.New(cs, float64(doc.GapThreshold), float64(doc.DistCutoff), doc.MinimizationResults...)), nil
}

// LoadState reads a checkpoint for use with WithInitialState. A result
// file loads as a state without queued work.
func LoadState(path string) (*State, error) {
	_, doc, err := persistence.Load(fs.Default, path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}
