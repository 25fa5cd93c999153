package persistence

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hupe1980/nodefinder/model"
)

const (
	// Magic identifies checkpoint files.
	Magic = "NFCP"
	// Version is the current container format version.
	Version uint16 = 1
)

// Kind distinguishes full controller checkpoints from result-only files.
type Kind uint8

const (
	// KindState is a resumable controller checkpoint including both queues.
	KindState Kind = 1
	// KindResult holds only the minimization results.
	KindResult Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindState:
		return "state"
	case KindResult:
		return "result"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

var (
	ErrInvalidMagic          = errors.New("persistence: invalid magic number")
	ErrUnsupportedVersion    = errors.New("persistence: unsupported version")
	ErrInvalidKind           = errors.New("persistence: invalid checkpoint kind")
	ErrUnknownCodec          = errors.New("persistence: unknown codec")
	ErrUnknownCompression    = errors.New("persistence: unknown compression")
	ErrCorruptBody           = errors.New("persistence: corrupt body")
	ErrMissingCoordinateData = errors.New("persistence: missing coordinate system")
)

// Header describes a checkpoint without its document.
type Header struct {
	Version     uint16
	Kind        Kind
	Compression Compression
	Codec       string
	RunID       uuid.UUID
	BodyLen     uint64
	Checksum    uint32
}

// CoordinateSystem is the persisted form of a coordinate system.
type CoordinateSystem struct {
	Limits   [][2]float64 `json:"limits"`
	Periodic []bool       `json:"periodic"`
}

// SimplexEntry is a simplex together with its queue state name.
type SimplexEntry struct {
	Simplex model.Simplex `json:"simplex"`
	State   string        `json:"state"`
}

// PositionEntry is a position together with its queue state name.
type PositionEntry struct {
	Pos   []float64 `json:"pos"`
	State string    `json:"state"`
}

// SimplexQueue is the persisted simplex queue.
type SimplexQueue struct {
	Objects []SimplexEntry `json:"objects"`
}

// PositionQueue is the persisted position queue.
type PositionQueue struct {
	Objects []PositionEntry `json:"objects"`
}

// Document is the body of a checkpoint. Queues are nil in result files.
type Document struct {
	CoordinateSystem    *CoordinateSystem `json:"coordinate_system"`
	GapThreshold        model.Float       `json:"gap_threshold"`
	DistCutoff          model.Float       `json:"dist_cutoff"`
	MinimizationResults []model.Result    `json:"minimization_results"`
	SimplexQueue        *SimplexQueue     `json:"simplex_queue,omitempty"`
	PositionQueue       *PositionQueue    `json:"position_queue,omitempty"`
}

// Validate checks that the document is usable for kind.
func (d *Document) Validate(kind Kind) error {
	if d.CoordinateSystem == nil {
		return ErrMissingCoordinateData
	}
	if len(d.CoordinateSystem.Limits) != len(d.CoordinateSystem.Periodic) {
		return fmt.Errorf("%w: %d limits, %d periodic flags", ErrCorruptBody,
			len(d.CoordinateSystem.Limits), len(d.CoordinateSystem.Periodic))
	}
	if kind == KindState && (d.SimplexQueue == nil || d.PositionQueue == nil) {
		return fmt.Errorf("%w: state checkpoint without queues", ErrCorruptBody)
	}
	return nil
}
