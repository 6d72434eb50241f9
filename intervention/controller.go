// Package intervention implements the least-restrictive safety override: a
// nominal tracking controller runs until the safety margin drops below a
// trigger level, at which point a worst-case-optimal bang-bang control
// computed from the safety gradient takes over.
package intervention

import (
	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/DLMcPherson/reachsafe/dynamics"
)

// Mode is the controller's current branch.
type Mode string

const (
	// ModeTracking passes the nominal controller's output through.
	ModeTracking Mode = "tracking"
	// ModeOverride replaces it with the worst-case-optimal safe control.
	ModeOverride Mode = "override"
)

// Safety is the query surface an obstacle scape exposes to the controller:
// the union safety margin and the dominant obstacle's gradient, both under a
// runtime-selectable palette entry.
type Safety interface {
	Value(setID int, state []float64) (float64, error)
	Gradient(setID int, state []float64) ([]float64, error)
}

// Tracker computes the nominal control steering the robot toward a goal.
type Tracker interface {
	Control(state []float64, goal r2.Point) []float64
}

// Config parametrizes a Controller.
type Config struct {
	// SetID selects the palette entry used for safety queries.
	SetID int
	// TriggerLevel is the margin below which the override engages. It is
	// set once, typically padded by the robot's physical half width.
	TriggerLevel float64
	// MaxU is the per-axis control bound the bang-bang law saturates at.
	MaxU float64
}

// Controller switches between tracking and override every control tick,
// with no hysteresis. It starts in tracking and never terminates.
type Controller struct {
	model   dynamics.ControlAffine
	safety  Safety
	tracker Tracker
	cfg     Config
	mode    Mode
	logger  golog.Logger
}

// NewController wires a dynamics model, a safety query surface, and a
// nominal tracker into an intervention controller.
func NewController(model dynamics.ControlAffine, safety Safety, tracker Tracker, cfg Config, logger golog.Logger) (*Controller, error) {
	if cfg.MaxU <= 0 {
		return nil, errors.Errorf("control bound must be positive, got %f", cfg.MaxU)
	}
	return &Controller{
		model:   model,
		safety:  safety,
		tracker: tracker,
		cfg:     cfg,
		mode:    ModeTracking,
		logger:  logger,
	}, nil
}

// Mode returns the branch taken on the most recent Control call.
func (c *Controller) Mode() Mode {
	return c.mode
}

// SetID returns the palette entry currently used for safety queries.
func (c *Controller) SetID() int {
	return c.cfg.SetID
}

// SelectSet switches safety queries to a different palette entry. Range
// errors surface on the next query, not here.
func (c *Controller) SelectSet(id int) {
	c.cfg.SetID = id
}

// Control evaluates the intervention decision at the state and returns the
// chosen control vector. Below the trigger level the override computes, per
// control axis, the input maximizing the Hamiltonian grad . (B u) over the
// box |u_i| <= MaxU: +MaxU where the gradient-column inner product is
// positive, -MaxU where negative, and zero exactly at zero.
func (c *Controller) Control(state []float64, goal r2.Point) ([]float64, error) {
	value, err := c.safety.Value(c.cfg.SetID, state)
	if err != nil {
		return nil, err
	}
	if value >= c.cfg.TriggerLevel {
		c.mode = ModeTracking
		return c.tracker.Control(state, goal), nil
	}
	if c.mode != ModeOverride {
		c.logger.Debugw("safety override engaged", "value", value, "trigger", c.cfg.TriggerLevel)
	}
	c.mode = ModeOverride
	grad, err := c.safety.Gradient(c.cfg.SetID, state)
	if err != nil {
		return nil, err
	}
	b := c.model.ControlMatrix(state)
	u := make([]float64, c.model.ControlDim())
	for j := range u {
		inner := 0.0
		for i := range grad {
			inner += b.At(i, j) * grad[i]
		}
		switch {
		case inner > 0:
			u[j] = c.cfg.MaxU
		case inner < 0:
			u[j] = -c.cfg.MaxU
		}
	}
	return u, nil
}
