// Package dynamics provides the control-affine state-update abstraction the
// intervention controller drives: every robot kind supplies a drift term and
// a control-coefficient matrix, and a shared explicit Euler step integrates
// the state forward with orientation wraparound.
package dynamics

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ControlAffine models state evolution of the form
//
//	state' = Drift(state) + ControlMatrix(state) * u
//
// Robot kinds differ only in drift and coefficients; integration is shared.
type ControlAffine interface {
	// StateDim returns the state vector length.
	StateDim() int

	// ControlDim returns the control vector length.
	ControlDim() int

	// Drift returns the uncontrolled state derivative at the state.
	Drift(state []float64) []float64

	// ControlMatrix returns the StateDim x ControlDim coefficient matrix
	// multiplying the control input at the state.
	ControlMatrix(state []float64) *mat.Dense

	// OrientationIndices lists the state components that are angles and
	// must be wrapped after integration. May be empty.
	OrientationIndices() []int
}

// WrapAngle maps an angle into (-pi, pi].
func WrapAngle(theta float64) float64 {
	wrapped := math.Mod(theta, 2*math.Pi)
	if wrapped > math.Pi {
		wrapped -= 2 * math.Pi
	} else if wrapped <= -math.Pi {
		wrapped += 2 * math.Pi
	}
	return wrapped
}

// Step integrates the model forward by one explicit Euler step of length dt,
// returning the new state. Orientation components are wrapped into
// (-pi, pi] after the update.
func Step(model ControlAffine, state, u []float64, dt float64) ([]float64, error) {
	if len(state) != model.StateDim() {
		return nil, errors.Errorf("state has dimension %d, model expects %d", len(state), model.StateDim())
	}
	if len(u) != model.ControlDim() {
		return nil, errors.Errorf("control has dimension %d, model expects %d", len(u), model.ControlDim())
	}
	drift := model.Drift(state)
	b := model.ControlMatrix(state)
	next := make([]float64, len(state))
	for i := range state {
		dot := drift[i]
		for j := range u {
			dot += b.At(i, j) * u[j]
		}
		next[i] = state[i] + dot*dt
	}
	for _, idx := range model.OrientationIndices() {
		next[idx] = WrapAngle(next[idx])
	}
	return next, nil
}
