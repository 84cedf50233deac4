package tui

import "github.com/andy/multitimer/internal/domain"

// SwitchScreenMsg requests a screen change
type SwitchScreenMsg struct {
	Screen Screen
}

// TimerUpdatedMsg carries one timer's new state from the engine
type TimerUpdatedMsg struct {
	Index    int
	Snapshot domain.TimerSnapshot
}

// RunningCountMsg carries the engine's running-timer count
type RunningCountMsg struct {
	Running int
	Total   int
}

// BoardRebuiltMsg carries the full board after a resize
type BoardRebuiltMsg struct {
	Snapshots []domain.TimerSnapshot
}

// ToastMsg shows a transient status-line notification (the alert fallback
// channel lands here)
type ToastMsg struct {
	Text string
}

// ErrorMsg carries error information
type ErrorMsg struct {
	Err error
}

// prefsSavedMsg reports the outcome of a background preference save
type prefsSavedMsg struct {
	err error
}
