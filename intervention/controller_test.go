package intervention

import (
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"github.com/DLMcPherson/reachsafe/dynamics"
)

// stubSafety reports a fixed margin and gradient regardless of state.
type stubSafety struct {
	value float64
	grad  []float64
}

func (s *stubSafety) Value(setID int, state []float64) (float64, error) {
	return s.value, nil
}

func (s *stubSafety) Gradient(setID int, state []float64) ([]float64, error) {
	return s.grad, nil
}

// stubTracker returns a recognizable constant control.
type stubTracker struct {
	out []float64
}

func (s *stubTracker) Control(state []float64, goal r2.Point) []float64 {
	return s.out
}

func TestControllerModeTransitions(t *testing.T) {
	logger := golog.NewTestLogger(t)
	safety := &stubSafety{value: 0.2, grad: []float64{1}}
	nominal := &stubTracker{out: []float64{0.123}}
	c, err := NewController(
		dynamics.Integrator{Dims: 1},
		safety,
		nominal,
		Config{SetID: 0, TriggerLevel: 0.1, MaxU: 1},
		logger,
	)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Mode(), test.ShouldEqual, ModeTracking)

	// Margin above the trigger: nominal control passes through.
	u, err := c.Control([]float64{0}, r2.Point{})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Mode(), test.ShouldEqual, ModeTracking)
	test.That(t, u, test.ShouldResemble, []float64{0.123})

	// Margin below the trigger: override engages.
	safety.value = 0.05
	u, err = c.Control([]float64{0}, r2.Point{})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Mode(), test.ShouldEqual, ModeOverride)
	test.That(t, u, test.ShouldResemble, []float64{1.0})

	// No hysteresis: recovering past the trigger returns to tracking
	// immediately.
	safety.value = 0.2
	_, err = c.Control([]float64{0}, r2.Point{})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Mode(), test.ShouldEqual, ModeTracking)
}

func TestBangBangSignLaw(t *testing.T) {
	logger := golog.NewTestLogger(t)
	safety := &stubSafety{value: -1, grad: []float64{0}}
	c, err := NewController(
		dynamics.Integrator{Dims: 1},
		safety,
		&stubTracker{out: []float64{0}},
		Config{TriggerLevel: 0, MaxU: 2.5},
		logger,
	)
	test.That(t, err, test.ShouldBeNil)

	// With a 1-D identity coefficient the output sign is the gradient's.
	for _, tc := range []struct {
		grad float64
		want float64
	}{
		{1e-9, 2.5},
		{3, 2.5},
		{-1e-9, -2.5},
		{-3, -2.5},
		{0, 0},
	} {
		safety.grad = []float64{tc.grad}
		u, err := c.Control([]float64{0}, r2.Point{})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, u[0], test.ShouldEqual, tc.want)
	}
}

func TestBangBangUsesControlMatrixColumns(t *testing.T) {
	logger := golog.NewTestLogger(t)
	// For the planar double integrator, control axis 0 couples to state
	// component 1 (vx) and axis 1 to component 3 (vy): position partials
	// must not influence the override.
	safety := &stubSafety{value: -1, grad: []float64{9, -0.5, -9, 0}}
	c, err := NewController(
		dynamics.PlanarDoubleIntegrator{},
		safety,
		&stubTracker{out: []float64{0, 0}},
		Config{TriggerLevel: 0, MaxU: 1},
		logger,
	)
	test.That(t, err, test.ShouldBeNil)

	u, err := c.Control([]float64{0, 0, 0, 0}, r2.Point{})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, u, test.ShouldResemble, []float64{-1, 0})
}

func TestControllerSelectSet(t *testing.T) {
	logger := golog.NewTestLogger(t)
	c, err := NewController(
		dynamics.Integrator{Dims: 1},
		&stubSafety{value: 1, grad: []float64{0}},
		&stubTracker{out: []float64{0}},
		Config{SetID: 0, TriggerLevel: 0, MaxU: 1},
		logger,
	)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.SetID(), test.ShouldEqual, 0)
	c.SelectSet(2)
	test.That(t, c.SetID(), test.ShouldEqual, 2)
}

func TestControllerRejectsNonPositiveBound(t *testing.T) {
	logger := golog.NewTestLogger(t)
	_, err := NewController(
		dynamics.Integrator{Dims: 1},
		&stubSafety{},
		&stubTracker{},
		Config{MaxU: 0},
		logger,
	)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPDTracker(t *testing.T) {
	tr := &PDTracker{Kp: 1, Kd: 0.5, PosX: 0, PosY: 1, VelX: 2, VelY: 3, MaxU: 10}

	u := tr.Control([]float64{0, 0, 0, 0}, r2.Point{X: 2, Y: -3})
	test.That(t, u[0], test.ShouldAlmostEqual, 2)
	test.That(t, u[1], test.ShouldAlmostEqual, -3)

	// Velocity damping opposes motion.
	u = tr.Control([]float64{2, -3, 4, 0}, r2.Point{X: 2, Y: -3})
	test.That(t, u[0], test.ShouldAlmostEqual, -2)
	test.That(t, u[1], test.ShouldAlmostEqual, 0)

	// Saturation at the control bound.
	tr.MaxU = 1
	u = tr.Control([]float64{0, 0, 0, 0}, r2.Point{X: 100, Y: -100})
	test.That(t, u, test.ShouldResemble, []float64{1, -1})
}

func TestHeadingTracker(t *testing.T) {
	tr := &HeadingTracker{Gain: 1, PosX: 0, PosY: 1, Heading: 2, MaxU: 2}

	// Goal straight ahead: no turn.
	u := tr.Control([]float64{0, 0, 0}, r2.Point{X: 5, Y: 0})
	test.That(t, u[0], test.ShouldAlmostEqual, 0)

	// Goal to the left: positive turn rate.
	u = tr.Control([]float64{0, 0, 0}, r2.Point{X: 0, Y: 5})
	test.That(t, u[0], test.ShouldAlmostEqual, 1.5707963, 1e-6)

	// Large error saturates.
	tr.Gain = 10
	u = tr.Control([]float64{0, 0, 0}, r2.Point{X: -5, Y: 0.001})
	test.That(t, u[0], test.ShouldEqual, 2.0)
}
