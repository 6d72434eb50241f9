package intervention

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/DLMcPherson/reachsafe/dynamics"
)

// PDTracker is a proportional-derivative tracker for acceleration-driven
// planar robots: the commanded acceleration pulls toward the goal and damps
// velocity. Output is clamped per axis to MaxU.
type PDTracker struct {
	// Kp and Kd are the position and velocity gains.
	Kp, Kd float64
	// PosX, PosY, VelX, VelY index the planar components of the state.
	PosX, PosY, VelX, VelY int
	// MaxU bounds the per-axis command, matching the override's bound.
	MaxU float64
}

func clamp(v, bound float64) float64 {
	if v > bound {
		return bound
	}
	if v < -bound {
		return -bound
	}
	return v
}

// Control returns the clamped PD acceleration toward the goal.
func (p *PDTracker) Control(state []float64, goal r2.Point) []float64 {
	ax := p.Kp*(goal.X-state[p.PosX]) - p.Kd*state[p.VelX]
	ay := p.Kp*(goal.Y-state[p.PosY]) - p.Kd*state[p.VelY]
	return []float64{clamp(ax, p.MaxU), clamp(ay, p.MaxU)}
}

// HeadingTracker steers a fixed-speed vehicle by turning toward the goal
// bearing. Output is a single turn-rate command clamped to MaxU.
type HeadingTracker struct {
	// Gain scales the heading error into a turn rate.
	Gain float64
	// PosX, PosY, Heading index the pose components of the state.
	PosX, PosY, Heading int
	// MaxU bounds the turn-rate command.
	MaxU float64
}

// Control returns the clamped turn rate toward the goal bearing.
func (h *HeadingTracker) Control(state []float64, goal r2.Point) []float64 {
	bearing := math.Atan2(goal.Y-state[h.PosY], goal.X-state[h.PosX])
	errAngle := dynamics.WrapAngle(bearing - state[h.Heading])
	return []float64{clamp(h.Gain * errAngle, h.MaxU)}
}
