package engine

import "github.com/andy/multitimer/internal/domain"

// Display receives structured update notifications from the engine. A
// renderer owns the index-to-surface mapping; the engine never touches a
// rendering surface directly. Implementations must not call back into the
// engine from these methods.
type Display interface {
	// TimerUpdated reports a state change for the timer at index i.
	TimerUpdated(i int, snap domain.TimerSnapshot)

	// RunningCountChanged reports the number of running timers.
	RunningCountChanged(running, total int)

	// CollectionRebuilt reports a full board rebuild after a resize.
	CollectionRebuilt(snaps []domain.TimerSnapshot)
}

// Alert is invoked once per timer completion. Implementations absorb
// channel failures themselves and never return an error to the engine.
type Alert interface {
	Notify()
}

// NopDisplay discards all notifications. Used when the engine runs without
// a renderer attached (CLI operations, tests).
type NopDisplay struct{}

func (NopDisplay) TimerUpdated(int, domain.TimerSnapshot)   {}
func (NopDisplay) RunningCountChanged(int, int)             {}
func (NopDisplay) CollectionRebuilt([]domain.TimerSnapshot) {}

// NopAlert discards completion alerts.
type NopAlert struct{}

func (NopAlert) Notify() {}
