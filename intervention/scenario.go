package intervention

import (
	"math"
	"math/rand"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/google/uuid"

	"github.com/DLMcPherson/reachsafe/dynamics"
	"github.com/DLMcPherson/reachsafe/obstacle"
)

// GoalTolerance is the per-axis distance within which a goal counts as
// reached.
const GoalTolerance = 0.5

// ScenarioConfig parametrizes a ScenarioController on top of the base
// controller config.
type ScenarioConfig struct {
	Config
	// GoalMin and GoalMax bound the region new random goals are drawn
	// from, uniformly per axis.
	GoalMin, GoalMax r2.Point
	// PosX and PosY index the planar position components of the state
	// used for the goal-reached check.
	PosX, PosY int
}

// ScenarioController runs the palette-driven scripted scenario: it behaves
// like a Controller, and whenever the tracked goal is reached it draws a new
// randomized goal, resamples the obstacle scape's detection mask, and emits
// a goal-changed event to the telemetry recorder.
type ScenarioController struct {
	*Controller
	scape    *obstacle.MaskedScape
	cfg      ScenarioConfig
	goal     r2.Point
	robotID  string
	r        *rand.Rand
	clk      clock.Clock
	recorder Recorder
}

// NewScenarioController wires the scenario behavior around a base
// controller. A nil rand source falls back to a fixed seed; a nil clock uses
// the wall clock; a nil recorder logs events.
func NewScenarioController(
	model dynamics.ControlAffine,
	scape *obstacle.MaskedScape,
	tracker Tracker,
	cfg ScenarioConfig,
	recorder Recorder,
	clk clock.Clock,
	r *rand.Rand,
	logger golog.Logger,
) (*ScenarioController, error) {
	base, err := NewController(model, scape, tracker, cfg.Config, logger)
	if err != nil {
		return nil, err
	}
	if r == nil {
		//nolint:gosec
		r = rand.New(rand.NewSource(1))
	}
	if clk == nil {
		clk = clock.New()
	}
	if recorder == nil {
		recorder = NewLogRecorder(logger)
	}
	sc := &ScenarioController{
		Controller: base,
		scape:      scape,
		cfg:        cfg,
		robotID:    uuid.NewString(),
		r:          r,
		clk:        clk,
		recorder:   recorder,
	}
	sc.goal = sc.randomGoal()
	return sc, nil
}

// RobotID returns the identifier stamped on emitted events.
func (sc *ScenarioController) RobotID() string {
	return sc.robotID
}

// Goal returns the current tracked goal.
func (sc *ScenarioController) Goal() r2.Point {
	return sc.goal
}

func (sc *ScenarioController) randomGoal() r2.Point {
	return r2.Point{
		X: sc.cfg.GoalMin.X + sc.r.Float64()*(sc.cfg.GoalMax.X-sc.cfg.GoalMin.X),
		Y: sc.cfg.GoalMin.Y + sc.r.Float64()*(sc.cfg.GoalMax.Y-sc.cfg.GoalMin.Y),
	}
}

func (sc *ScenarioController) goalReached(state []float64) bool {
	return math.Abs(state[sc.cfg.PosX]-sc.goal.X) < GoalTolerance &&
		math.Abs(state[sc.cfg.PosY]-sc.goal.Y) < GoalTolerance
}

// Control advances the scripted scenario and then delegates to the base
// intervention decision against the current goal.
func (sc *ScenarioController) Control(state []float64) ([]float64, error) {
	if sc.goalReached(state) {
		sc.goal = sc.randomGoal()
		sc.scape.ResampleMask()
		sc.recorder.Record(Event{
			Kind:            EventGoalChanged,
			RobotID:         sc.robotID,
			UndetectionMask: sc.scape.UndetectionMask(),
			Goal:            sc.goal,
			Timestamp:       sc.clk.Now(),
		})
	}
	return sc.Controller.Control(state, sc.goal)
}

// FixedGoalSource adapts a base controller to the single-method control
// surface the simulation loop drives, holding the goal constant.
type FixedGoalSource struct {
	Controller *Controller
	Goal       r2.Point
}

// Control delegates to the wrapped controller with the fixed goal.
func (f *FixedGoalSource) Control(state []float64) ([]float64, error) {
	return f.Controller.Control(state, f.Goal)
}
