// Package obstacle aggregates safe sets into obstacles and obstacle scapes.
// An obstacle anchors a palette of avoidance sets at a spatial offset and
// carries a separate collision footprint; a scape unions many obstacles into
// one safety value with per-obstacle visibility flags.
package obstacle

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/DLMcPherson/reachsafe/safeset"
)

// Obstacle places a palette of avoidance sets at a fixed offset in the full
// state space. Queries translate global robot state into obstacle-relative
// state by subtracting the offset before delegating. The collision footprint
// is a distinct, typically tighter set used only to flag physical contact,
// never to trigger the safety override.
type Obstacle struct {
	offset    []float64
	sets      *safeset.Palette
	footprint safeset.SafeSet
}

// New creates an obstacle from an offset, an avoidance palette, and a
// collision footprint. The offset must span the full state dimension, with
// zeros in non-positional components.
func New(offset []float64, sets *safeset.Palette, footprint safeset.SafeSet) (*Obstacle, error) {
	var err error
	if len(offset) != sets.Dim() {
		err = multierr.Append(err, errors.Errorf("offset has dimension %d, palette expects %d", len(offset), sets.Dim()))
	}
	if footprint.Dim() != sets.Dim() {
		err = multierr.Append(err, errors.Errorf("collision footprint has dimension %d, palette expects %d", footprint.Dim(), sets.Dim()))
	}
	if err != nil {
		return nil, err
	}
	return &Obstacle{offset: offset, sets: sets, footprint: footprint}, nil
}

// Dim returns the full state dimension the obstacle operates in.
func (o *Obstacle) Dim() int {
	return o.sets.Dim()
}

// Offset returns the obstacle's position offset.
func (o *Obstacle) Offset() []float64 {
	return o.offset
}

func (o *Obstacle) relative(state []float64) ([]float64, error) {
	if len(state) != len(o.offset) {
		return nil, safeset.NewDimensionMismatchError(len(o.offset), len(state))
	}
	rel := make([]float64, len(state))
	for i := range state {
		rel[i] = state[i] - o.offset[i]
	}
	return rel, nil
}

// Value queries the identified avoidance set at the obstacle-relative state.
func (o *Obstacle) Value(setID int, state []float64) (float64, error) {
	rel, err := o.relative(state)
	if err != nil {
		return 0, err
	}
	return o.sets.Value(setID, rel)
}

// Gradient queries the identified avoidance set's gradient at the
// obstacle-relative state. Translation is a pure shift, so the gradient
// needs no correction.
func (o *Obstacle) Gradient(setID int, state []float64) ([]float64, error) {
	rel, err := o.relative(state)
	if err != nil {
		return nil, err
	}
	return o.sets.Gradient(setID, rel)
}

// CollisionValue queries the collision footprint, not the avoidance sets, at
// the obstacle-relative state.
func (o *Obstacle) CollisionValue(state []float64) (float64, error) {
	rel, err := o.relative(state)
	if err != nil {
		return 0, err
	}
	return o.footprint.Value(rel)
}
