package safeset

import (
	"math"

	"github.com/pkg/errors"
)

// Interval is a safe band along a single state axis: the margin is the
// distance from the axis coordinate to the nearer edge of the band.
type Interval struct {
	dim       int
	axis      int
	center    float64
	halfWidth float64
}

// NewInterval creates an Interval over a dim-dimensional state space,
// constraining the given axis to [center-halfWidth, center+halfWidth].
func NewInterval(dim, axis int, center, halfWidth float64) (*Interval, error) {
	if axis < 0 || axis >= dim {
		return nil, errors.Errorf("interval axis %d out of range for dimension %d", axis, dim)
	}
	if halfWidth <= 0 {
		return nil, errors.Errorf("interval half width must be positive, got %f", halfWidth)
	}
	return &Interval{dim: dim, axis: axis, center: center, halfWidth: halfWidth}, nil
}

// Dim returns the state-space dimension.
func (iv *Interval) Dim() int {
	return iv.dim
}

// Value returns the distance to the nearer band edge, negative outside.
func (iv *Interval) Value(state []float64) (float64, error) {
	if err := checkDim(iv.dim, state); err != nil {
		return 0, err
	}
	return iv.halfWidth - math.Abs(state[iv.axis]-iv.center), nil
}

// Gradient points from the nearer band edge back toward the center. Exactly
// at the center the margin is locally flat and the gradient is zero.
func (iv *Interval) Gradient(state []float64) ([]float64, error) {
	if err := checkDim(iv.dim, state); err != nil {
		return nil, err
	}
	grad := make([]float64, iv.dim)
	switch rel := state[iv.axis] - iv.center; {
	case rel > 0:
		grad[iv.axis] = -1
	case rel < 0:
		grad[iv.axis] = 1
	}
	return grad, nil
}

// Circle is the complement of a disc in two position axes: the margin is the
// distance from the origin of the (obstacle-relative) position plane minus
// the disc radius, so states inside the disc are violating.
type Circle struct {
	dim          int
	xAxis, yAxis int
	radius       float64
}

// NewCircle creates a Circle of the given radius over a dim-dimensional
// state space, using xAxis and yAxis as the position plane.
func NewCircle(dim, xAxis, yAxis int, radius float64) (*Circle, error) {
	if xAxis < 0 || xAxis >= dim || yAxis < 0 || yAxis >= dim || xAxis == yAxis {
		return nil, errors.Errorf("circle axes (%d,%d) invalid for dimension %d", xAxis, yAxis, dim)
	}
	if radius <= 0 {
		return nil, errors.Errorf("circle radius must be positive, got %f", radius)
	}
	return &Circle{dim: dim, xAxis: xAxis, yAxis: yAxis, radius: radius}, nil
}

// Dim returns the state-space dimension.
func (c *Circle) Dim() int {
	return c.dim
}

// Radius returns the disc radius.
func (c *Circle) Radius() float64 {
	return c.radius
}

// Value returns the planar distance to the origin minus the radius.
func (c *Circle) Value(state []float64) (float64, error) {
	if err := checkDim(c.dim, state); err != nil {
		return 0, err
	}
	return math.Hypot(state[c.xAxis], state[c.yAxis]) - c.radius, nil
}

// Gradient is the unit vector pointing radially away from the disc center.
// Exactly at the center the direction is singular; a fixed +x direction is
// returned so callers never see a non-finite gradient.
func (c *Circle) Gradient(state []float64) ([]float64, error) {
	if err := checkDim(c.dim, state); err != nil {
		return nil, err
	}
	grad := make([]float64, c.dim)
	dist := math.Hypot(state[c.xAxis], state[c.yAxis])
	if dist < 1e-12 {
		grad[c.xAxis] = 1
		return grad, nil
	}
	grad[c.xAxis] = state[c.xAxis] / dist
	grad[c.yAxis] = state[c.yAxis] / dist
	return grad, nil
}

// DoubleIntegratorAnalytic is the closed-form backward reachable safe set
// for a one-axis double integrator avoiding the slab |position| <= halfWidth
// with bounded acceleration: the margin is the distance to the slab, and
// while the state is moving toward the slab it is discounted by the
// worst-case stopping distance v^2/(2*maxAccel). State layout is
// [position, velocity], relative to the slab center.
type DoubleIntegratorAnalytic struct {
	halfWidth float64
	maxAccel  float64
}

// NewDoubleIntegratorAnalytic creates the analytic set avoiding the slab
// [-halfWidth, halfWidth] under acceleration bound maxAccel.
func NewDoubleIntegratorAnalytic(halfWidth, maxAccel float64) (*DoubleIntegratorAnalytic, error) {
	if halfWidth <= 0 || maxAccel <= 0 {
		return nil, errors.Errorf("half width and max acceleration must be positive, got %f and %f", halfWidth, maxAccel)
	}
	return &DoubleIntegratorAnalytic{halfWidth: halfWidth, maxAccel: maxAccel}, nil
}

// Dim returns 2 for the [position, velocity] pair.
func (d *DoubleIntegratorAnalytic) Dim() int {
	return 2
}

// approaching reports whether the velocity carries the state toward the
// slab. A state exactly at the slab center is not counted as approaching.
func approaching(pos, vel float64) bool {
	return pos*vel < 0
}

// Value returns the distance to the slab, less stopping distance when the
// state is moving toward it.
func (d *DoubleIntegratorAnalytic) Value(state []float64) (float64, error) {
	if err := checkDim(2, state); err != nil {
		return 0, err
	}
	pos, vel := state[0], state[1]
	margin := math.Abs(pos) - d.halfWidth
	if approaching(pos, vel) {
		margin -= vel * vel / (2 * d.maxAccel)
	}
	return margin, nil
}

// Gradient differentiates the margin. The position partial is the sign of
// the position; exactly at the slab center the direction is singular and the
// positive side is returned. The velocity partial is nonzero only while
// approaching.
func (d *DoubleIntegratorAnalytic) Gradient(state []float64) ([]float64, error) {
	if err := checkDim(2, state); err != nil {
		return nil, err
	}
	pos, vel := state[0], state[1]
	grad := make([]float64, 2)
	if pos >= 0 {
		grad[0] = 1
	} else {
		grad[0] = -1
	}
	if approaching(pos, vel) {
		grad[1] = -vel / d.maxAccel
	}
	return grad, nil
}
