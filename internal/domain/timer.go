package domain

// TimerState describes where a timer sits in its lifecycle.
type TimerState string

const (
	TimerStateIdle      TimerState = "idle"  // no duration configured
	TimerStateReady     TimerState = "ready" // duration set, not running
	TimerStateRunning   TimerState = "running"
	TimerStateCompleted TimerState = "completed"
)

// TimerSnapshot is a read-only copy of one timer's state, handed to
// renderers. The engine owns the live timer; snapshots never alias it.
type TimerSnapshot struct {
	ID               int
	Label            string
	TotalSeconds     int
	RemainingSeconds int
	Running          bool
	Completed        bool
	Blinking         bool
}

// State derives the lifecycle state from the snapshot fields.
func (s TimerSnapshot) State() TimerState {
	switch {
	case s.Running:
		return TimerStateRunning
	case s.Completed:
		return TimerStateCompleted
	case s.TotalSeconds > 0:
		return TimerStateReady
	default:
		return TimerStateIdle
	}
}
