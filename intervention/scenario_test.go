package intervention

import (
	"math/rand"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"github.com/DLMcPherson/reachsafe/dynamics"
	"github.com/DLMcPherson/reachsafe/obstacle"
	"github.com/DLMcPherson/reachsafe/safeset"
)

type captureRecorder struct {
	events []Event
}

func (c *captureRecorder) Record(event Event) {
	c.events = append(c.events, event)
}

func testMaskedScape(t *testing.T, detectProb float64) *obstacle.MaskedScape {
	t.Helper()
	circle, err := safeset.NewCircle(4, 0, 2, 1.0)
	test.That(t, err, test.ShouldBeNil)
	palette, err := safeset.NewPalette(circle)
	test.That(t, err, test.ShouldBeNil)
	footprint, err := safeset.NewCircle(4, 0, 2, 0.5)
	test.That(t, err, test.ShouldBeNil)
	far, err := obstacle.New([]float64{50, 0, 50, 0}, palette, footprint)
	test.That(t, err, test.ShouldBeNil)
	scape, err := obstacle.NewScape(far)
	test.That(t, err, test.ShouldBeNil)
	//nolint:gosec
	return obstacle.NewMaskedScape(scape, detectProb, rand.New(rand.NewSource(3)))
}

func TestScenarioGoalReachedSideEffects(t *testing.T) {
	logger := golog.NewTestLogger(t)
	scape := testMaskedScape(t, 0)
	recorder := &captureRecorder{}
	mock := clock.NewMock()
	mock.Set(time.Unix(1000, 0))

	// Goal region collapsed to a single point so the scripted goal is
	// deterministic.
	cfg := ScenarioConfig{
		Config:  Config{SetID: 0, TriggerLevel: 0.1, MaxU: 1},
		GoalMin: r2.Point{X: 2, Y: 2},
		GoalMax: r2.Point{X: 2, Y: 2},
		PosX:    0,
		PosY:    2,
	}
	tracker := &PDTracker{Kp: 1, Kd: 1, PosX: 0, PosY: 2, VelX: 1, VelY: 3, MaxU: 1}
	sc, err := NewScenarioController(
		dynamics.PlanarDoubleIntegrator{}, scape, tracker, cfg, recorder, mock, nil, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sc.Goal(), test.ShouldResemble, r2.Point{X: 2, Y: 2})
	test.That(t, sc.RobotID(), test.ShouldNotEqual, "")

	// Far from the goal: no event.
	_, err = sc.Control([]float64{0, 0, 0, 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, recorder.events, test.ShouldHaveLength, 0)

	// Within tolerance of the goal: new goal drawn, mask resampled with
	// detection probability zero, event emitted.
	_, err = sc.Control([]float64{1.8, 0, 2.2, 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, recorder.events, test.ShouldHaveLength, 1)
	event := recorder.events[0]
	test.That(t, event.Kind, test.ShouldEqual, EventGoalChanged)
	test.That(t, event.RobotID, test.ShouldEqual, sc.RobotID())
	test.That(t, event.Goal, test.ShouldResemble, r2.Point{X: 2, Y: 2})
	test.That(t, event.UndetectionMask, test.ShouldResemble, []bool{true})
	test.That(t, event.Timestamp, test.ShouldEqual, time.Unix(1000, 0))
}

func TestScenarioTracksGoal(t *testing.T) {
	logger := golog.NewTestLogger(t)
	scape := testMaskedScape(t, 1)

	cfg := ScenarioConfig{
		Config:  Config{SetID: 0, TriggerLevel: 0.1, MaxU: 1},
		GoalMin: r2.Point{X: 5, Y: 0},
		GoalMax: r2.Point{X: 5, Y: 0},
		PosX:    0,
		PosY:    2,
	}
	tracker := &PDTracker{Kp: 1, Kd: 1, PosX: 0, PosY: 2, VelX: 1, VelY: 3, MaxU: 1}
	sc, err := NewScenarioController(
		dynamics.PlanarDoubleIntegrator{}, scape, tracker, cfg, nil, nil, nil, logger)
	test.That(t, err, test.ShouldBeNil)

	// Far from the distant obstacle the controller stays in tracking and
	// accelerates toward the goal.
	u, err := sc.Control([]float64{0, 0, 0, 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sc.Mode(), test.ShouldEqual, ModeTracking)
	test.That(t, u, test.ShouldResemble, []float64{1, 0})
}

func TestFixedGoalSource(t *testing.T) {
	logger := golog.NewTestLogger(t)
	c, err := NewController(
		dynamics.PlanarDoubleIntegrator{},
		&stubSafety{value: 1, grad: []float64{0, 0, 0, 0}},
		&PDTracker{Kp: 1, Kd: 0, PosX: 0, PosY: 2, VelX: 1, VelY: 3, MaxU: 1},
		Config{TriggerLevel: 0, MaxU: 1},
		logger,
	)
	test.That(t, err, test.ShouldBeNil)
	src := &FixedGoalSource{Controller: c, Goal: r2.Point{X: 1, Y: 0}}
	u, err := src.Control([]float64{0, 0, 0, 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, u, test.ShouldResemble, []float64{1, 0})
}
