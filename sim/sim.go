// Package sim owns the tick-driven simulation loop: one control decision
// and one integration step per tick, with collision detection against
// undetected obstacles in between. All state lives in an explicit Context
// rather than process-wide globals; a full tick is atomic with respect to
// obstacle flag mutation.
package sim

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/DLMcPherson/reachsafe/dynamics"
	"github.com/DLMcPherson/reachsafe/intervention"
)

// ControlSource yields the control vector for the current state. Both the
// scenario controller and a fixed-goal controller satisfy this.
type ControlSource interface {
	Control(state []float64) ([]float64, error)
}

// CollisionChecker reports the nearest collision footprint margin and which
// obstacle attains it. An obstacle scape satisfies this.
type CollisionChecker interface {
	CollisionValue(state []float64) (float64, int, error)
}

// Context carries the full mutable simulation state through the tick loop.
type Context struct {
	model     dynamics.ControlAffine
	state     []float64
	source    ControlSource
	collider  CollisionChecker
	recorder  intervention.Recorder
	clk       clock.Clock
	logger    golog.Logger
	robotID   string
	colliding bool
}

// New assembles a simulation context. A nil clock uses the wall clock; a
// nil recorder logs events; collider may be nil to skip contact detection.
func New(
	model dynamics.ControlAffine,
	initial []float64,
	source ControlSource,
	collider CollisionChecker,
	recorder intervention.Recorder,
	clk clock.Clock,
	robotID string,
	logger golog.Logger,
) (*Context, error) {
	if len(initial) != model.StateDim() {
		return nil, errors.Errorf("initial state has dimension %d, model expects %d", len(initial), model.StateDim())
	}
	if clk == nil {
		clk = clock.New()
	}
	if recorder == nil {
		recorder = intervention.NewLogRecorder(logger)
	}
	state := make([]float64, len(initial))
	copy(state, initial)
	return &Context{
		model:    model,
		state:    state,
		source:   source,
		collider: collider,
		recorder: recorder,
		clk:      clk,
		logger:   logger,
		robotID:  robotID,
	}, nil
}

// State returns a copy of the current robot state.
func (c *Context) State() []float64 {
	out := make([]float64, len(c.state))
	copy(out, c.state)
	return out
}

// Tick runs one control-compute-then-integrate pass with the supplied time
// step and returns the applied control vector. A collision event is emitted
// on the tick the robot first contacts an undetected obstacle's footprint.
func (c *Context) Tick(ctx context.Context, dt float64) ([]float64, error) {
	if dt <= 0 {
		return nil, errors.Errorf("tick requires a positive time step, got %f", dt)
	}
	u, err := c.source.Control(c.state)
	if err != nil {
		return nil, errors.Wrap(err, "control decision")
	}
	next, err := dynamics.Step(c.model, c.state, u, dt)
	if err != nil {
		return nil, errors.Wrap(err, "integration step")
	}
	c.state = next

	if c.collider != nil {
		v, idx, err := c.collider.CollisionValue(c.state)
		if err != nil {
			return nil, errors.Wrap(err, "collision check")
		}
		contact := v <= 0
		if contact && !c.colliding {
			c.logger.Infow("collision with undetected obstacle", "obstacle", idx, "margin", v)
			c.recorder.Record(intervention.Event{
				Kind:      intervention.EventCollision,
				RobotID:   c.robotID,
				Timestamp: c.clk.Now(),
			})
		}
		c.colliding = contact
	}
	return u, nil
}

// Run drives Tick at the given interval until the context is cancelled or
// the tick budget is exhausted. The integration step uses the measured time
// between clock reads rather than the nominal interval.
func (c *Context) Run(ctx context.Context, interval time.Duration, ticks int) error {
	last := c.clk.Now()
	for i := 0; ticks <= 0 || i < ticks; i++ {
		if !utils.SelectContextOrWait(ctx, interval) {
			return ctx.Err()
		}
		now := c.clk.Now()
		dt := now.Sub(last).Seconds()
		last = now
		if dt <= 0 {
			dt = interval.Seconds()
		}
		if _, err := c.Tick(ctx, dt); err != nil {
			return err
		}
	}
	return nil
}
