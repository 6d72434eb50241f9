package intervention

import (
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
)

// EventKind labels the discrete scenario events the core emits.
type EventKind string

const (
	// EventGoalChanged marks a goal being reached and replaced, together
	// with a detection mask resample.
	EventGoalChanged EventKind = "goal_changed"
	// EventCollision marks physical contact with an undetected obstacle.
	EventCollision EventKind = "collision"
)

// Event is the structured record handed to the telemetry collaborator.
// Persistence and transport are external concerns.
type Event struct {
	Kind            EventKind
	RobotID         string
	UndetectionMask []bool
	Goal            r2.Point
	Timestamp       time.Time
}

// A Recorder consumes scenario events.
type Recorder interface {
	Record(event Event)
}

type logRecorder struct {
	logger golog.Logger
}

// NewLogRecorder returns a Recorder that writes events to the logger, the
// default sink when no telemetry collaborator is wired in.
func NewLogRecorder(logger golog.Logger) Recorder {
	return &logRecorder{logger: logger}
}

func (lr *logRecorder) Record(event Event) {
	lr.logger.Infow("scenario event",
		"kind", event.Kind,
		"robot", event.RobotID,
		"undetected", event.UndetectionMask,
		"goal_x", event.Goal.X,
		"goal_y", event.Goal.Y,
		"time", event.Timestamp,
	)
}
