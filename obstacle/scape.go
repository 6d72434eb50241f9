package obstacle

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// AlwaysSafeValue is the sentinel margin reported when no obstacle is
// eligible for a query. It is a stand-in for "nothing to avoid", not a
// domain-meaningful distance.
const AlwaysSafeValue = 1e9

// Scape is an ordered aggregate of obstacles with two visibility flags per
// obstacle: destroyed marks permanent removal, undetected marks transient
// exclusion from sensing. An obstacle contributes to the union safety value
// iff it is neither destroyed nor undetected; collision checks instead
// target obstacles that are undetected but not destroyed, the hazards the
// robot cannot currently see. Flags are mutated only between control ticks.
type Scape struct {
	obstacles  []*Obstacle
	destroyed  []bool
	undetected []bool
}

// NewScape aggregates obstacles of equal state dimension, all initially
// intact and detected.
func NewScape(obstacles ...*Obstacle) (*Scape, error) {
	if len(obstacles) == 0 {
		return nil, errors.New("scape needs at least one obstacle")
	}
	var err error
	dim := obstacles[0].Dim()
	for i, o := range obstacles {
		if o.Dim() != dim {
			err = multierr.Append(err, errors.Errorf("obstacle %d has dimension %d, expected %d", i, o.Dim(), dim))
		}
	}
	if err != nil {
		return nil, err
	}
	return &Scape{
		obstacles:  obstacles,
		destroyed:  make([]bool, len(obstacles)),
		undetected: make([]bool, len(obstacles)),
	}, nil
}

// Len returns the number of obstacles, including destroyed ones.
func (s *Scape) Len() int {
	return len(s.obstacles)
}

// Obstacle returns the obstacle at the given index.
func (s *Scape) Obstacle(i int) *Obstacle {
	return s.obstacles[i]
}

// Destroy permanently removes the obstacle at the given index from all
// queries.
func (s *Scape) Destroy(i int) {
	s.destroyed[i] = true
}

// Destroyed reports whether the obstacle at the given index is destroyed.
func (s *Scape) Destroyed(i int) bool {
	return s.destroyed[i]
}

// SetUndetected marks the obstacle at the given index as transiently outside
// sensor coverage (or back inside it).
func (s *Scape) SetUndetected(i int, undetected bool) {
	s.undetected[i] = undetected
}

// Undetected reports whether the obstacle at the given index is currently
// undetected.
func (s *Scape) Undetected(i int) bool {
	return s.undetected[i]
}

// dominant scans the eligible obstacles and returns the index and value of
// the one with the minimal margin. Ties keep the first obstacle in iteration
// order. A negative index means no obstacle was eligible.
func (s *Scape) dominant(setID int, state []float64) (int, float64, error) {
	best := -1
	bestValue := 0.0
	for i, o := range s.obstacles {
		if s.destroyed[i] || s.undetected[i] {
			continue
		}
		v, err := o.Value(setID, state)
		if err != nil {
			return -1, 0, errors.Wrapf(err, "obstacle %d", i)
		}
		if best < 0 || v < bestValue {
			best, bestValue = i, v
		}
	}
	return best, bestValue, nil
}

// Value returns the union safety margin: the minimum over all obstacles that
// are neither destroyed nor undetected. With no eligible obstacle it
// recovers locally by returning AlwaysSafeValue.
func (s *Scape) Value(setID int, state []float64) (float64, error) {
	best, v, err := s.dominant(setID, state)
	if err != nil {
		return 0, err
	}
	if best < 0 {
		return AlwaysSafeValue, nil
	}
	return v, nil
}

// Gradient returns the gradient of the dominant obstacle, the one Value
// would report as minimal under identical eligibility flags. With no
// eligible obstacle the margin is flat and a zero gradient is returned.
func (s *Scape) Gradient(setID int, state []float64) ([]float64, error) {
	best, _, err := s.dominant(setID, state)
	if err != nil {
		return nil, err
	}
	if best < 0 {
		return make([]float64, s.obstacles[0].Dim()), nil
	}
	return s.obstacles[best].Gradient(setID, state)
}

// CollisionValue returns the minimal collision footprint margin over
// obstacles that are undetected but not destroyed, together with the index
// of the obstacle attaining it. Collision checks deliberately target only
// unseen obstacles: a detected obstacle is the override controller's
// responsibility, an unseen one is a silent hazard. With no such obstacle it
// returns AlwaysSafeValue and index -1.
func (s *Scape) CollisionValue(state []float64) (float64, int, error) {
	best := -1
	bestValue := AlwaysSafeValue
	for i, o := range s.obstacles {
		if s.destroyed[i] || !s.undetected[i] {
			continue
		}
		v, err := o.CollisionValue(state)
		if err != nil {
			return 0, -1, errors.Wrapf(err, "obstacle %d", i)
		}
		if best < 0 || v < bestValue {
			best, bestValue = i, v
		}
	}
	if best < 0 {
		return AlwaysSafeValue, -1, nil
	}
	return bestValue, best, nil
}
