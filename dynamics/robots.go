package dynamics

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// PlanarDoubleIntegrator is a point mass on the plane driven by commanded
// acceleration. State layout is [x, vx, y, vy] so that each axis forms a
// contiguous position-velocity pair, matching the axis-decoupled safe set
// composition; control is [ax, ay].
type PlanarDoubleIntegrator struct{}

// StateDim returns 4.
func (PlanarDoubleIntegrator) StateDim() int { return 4 }

// ControlDim returns 2.
func (PlanarDoubleIntegrator) ControlDim() int { return 2 }

// Drift carries each position forward by its velocity.
func (PlanarDoubleIntegrator) Drift(state []float64) []float64 {
	return []float64{state[1], 0, state[3], 0}
}

// ControlMatrix maps acceleration commands onto the velocity components.
func (PlanarDoubleIntegrator) ControlMatrix(state []float64) *mat.Dense {
	b := mat.NewDense(4, 2, nil)
	b.Set(1, 0, 1)
	b.Set(3, 1, 1)
	return b
}

// OrientationIndices returns nil; no state component is an angle.
func (PlanarDoubleIntegrator) OrientationIndices() []int { return nil }

// DubinsCar moves at a fixed forward speed and is steered by a commanded
// turn rate. State layout is [x, y, theta]; control is [omega].
type DubinsCar struct {
	Speed float64
}

// StateDim returns 3.
func (DubinsCar) StateDim() int { return 3 }

// ControlDim returns 1.
func (DubinsCar) ControlDim() int { return 1 }

// Drift advances position along the current heading.
func (d DubinsCar) Drift(state []float64) []float64 {
	return []float64{d.Speed * math.Cos(state[2]), d.Speed * math.Sin(state[2]), 0}
}

// ControlMatrix maps the turn-rate command onto the heading component.
func (DubinsCar) ControlMatrix(state []float64) *mat.Dense {
	b := mat.NewDense(3, 1, nil)
	b.Set(2, 0, 1)
	return b
}

// OrientationIndices marks the heading component for wrapping.
func (DubinsCar) OrientationIndices() []int { return []int{2} }

// Integrator is a driftless kinematic model whose state is steered directly
// by the control, one axis per control component. Useful as the simplest
// robot kind and in tests.
type Integrator struct {
	Dims int
}

// StateDim returns the configured dimension.
func (m Integrator) StateDim() int { return m.Dims }

// ControlDim returns the configured dimension.
func (m Integrator) ControlDim() int { return m.Dims }

// Drift returns zeros.
func (m Integrator) Drift(state []float64) []float64 {
	return make([]float64, m.Dims)
}

// ControlMatrix returns the identity.
func (m Integrator) ControlMatrix(state []float64) *mat.Dense {
	b := mat.NewDense(m.Dims, m.Dims, nil)
	for i := 0; i < m.Dims; i++ {
		b.Set(i, i, 1)
	}
	return b
}

// OrientationIndices returns nil.
func (m Integrator) OrientationIndices() []int { return nil }
