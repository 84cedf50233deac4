// Package engine implements the drift-corrected multi-timer core: a board
// of independent countdown timers with start/stop/complete transitions,
// sequential chaining, and structured display notifications.
package engine

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/andy/multitimer/internal/config"
	"github.com/andy/multitimer/internal/domain"
)

// ErrMaxTimeExceeded reports a requested duration above the configured cap.
// The operation is aborted with no state change so the caller can surface
// the validation message.
var ErrMaxTimeExceeded = errors.New("duration exceeds configured maximum")

const (
	// firstTickDelay defers the first tick so the display is not redrawn
	// immediately after start.
	firstTickDelay = 100 * time.Millisecond

	tickPeriod = time.Second

	// blinkDuration is how long the completion blink stays on before the
	// auto-clear one-shot fires.
	blinkDuration = 5 * time.Second
)

// timer is one board slot. All fields are guarded by Engine.mu.
type timer struct {
	id        int
	label     string
	total     int // configured duration, seconds; 0 means idle
	current   int // remaining seconds
	running   bool
	completed bool
	blinking  bool
	startedAt time.Time // captured at the most recent start
	deadline  time.Time // startedAt + current at start time
	tick      TimerHandle
	blink     TimerHandle

	// seq increments on every start. A tick callback already dispatched
	// when its timer is stopped cannot be cancelled via the handle; it
	// carries the seq of the run that scheduled it and drops when a
	// restart has bumped it since.
	seq uint64
}

// Engine owns the timer collection exclusively. All mutation funnels
// through its methods; renderers only ever see snapshots.
type Engine struct {
	mu      sync.Mutex
	cfg     config.EngineConfig
	clock   Clock
	display Display
	alert   Alert
	timers  []*timer

	// generation increments on every board rebuild so ticks scheduled
	// before a resize drop silently.
	generation uint64
}

// New creates an engine with a fresh, zeroed board. The configuration is
// validated up front; the engine never shares mutable state with another
// instance.
func New(cfg config.EngineConfig, clock Clock, display Display, alert Alert) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = NewClock()
	}
	if display == nil {
		display = NopDisplay{}
	}
	if alert == nil {
		alert = NopAlert{}
	}

	e := &Engine{
		cfg:     cfg,
		clock:   clock,
		display: display,
		alert:   alert,
	}
	e.timers = e.newBoard(cfg.TimerCount)
	return e, nil
}

func (e *Engine) newBoard(count int) []*timer {
	board := make([]*timer, count)
	for i := range board {
		board[i] = &timer{id: i, label: defaultLabel(i)}
	}
	return board
}

func defaultLabel(id int) string {
	return strconv.Itoa(id + 1)
}

// Config returns the engine's current configuration.
func (e *Engine) Config() config.EngineConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// SetTime configures timer i to seconds. A running timer is stopped first.
// Durations above the configured maximum are rejected with
// ErrMaxTimeExceeded and no state change; negative values clamp to zero.
// When auto-start is enabled and seconds is positive, the timer starts
// immediately.
func (e *Engine) SetTime(i, seconds int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.timerAt(i)
	if err != nil {
		return err
	}
	if seconds > e.cfg.MaxTime {
		return fmt.Errorf("%w: %ds (max %ds)", ErrMaxTimeExceeded, seconds, e.cfg.MaxTime)
	}
	if seconds < 0 {
		seconds = 0
	}

	wasRunning := t.running
	e.stopLocked(t)
	e.clearBlinkLocked(t)
	t.total = seconds
	t.current = seconds
	t.completed = false
	e.notifyTimerLocked(t)
	if wasRunning {
		e.notifyRunningCountLocked()
	}

	if seconds > 0 && e.cfg.AutoStartEnabled {
		e.startLocked(t)
	}
	return nil
}

// Start begins (or resumes) the countdown for timer i. Starting a timer
// with no duration is a silent no-op; starting a completed timer restarts
// it from its full duration. Resume re-bases the deadline against the
// remaining time, not the total.
func (e *Engine) Start(i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.timerAt(i)
	if err != nil {
		return err
	}
	e.startLocked(t)
	return nil
}

func (e *Engine) startLocked(t *timer) {
	if t.total == 0 || t.running {
		return
	}
	if t.completed {
		// Fresh start from full duration.
		t.current = t.total
		t.completed = false
		e.clearBlinkLocked(t)
	}

	t.running = true
	t.seq++
	t.startedAt = e.clock.Now()
	t.deadline = t.startedAt.Add(time.Duration(t.current) * time.Second)

	idx, gen, seq := t.id, e.generation, t.seq
	t.tick = e.clock.AfterFunc(firstTickDelay, func() { e.onTick(idx, gen, seq) })

	e.notifyTimerLocked(t)
	e.notifyRunningCountLocked()
}

// onTick is the drift-correction step. Remaining time is re-derived from
// the absolute deadline every tick, so scheduling jitter never accumulates;
// the next wake-up is aligned to the next whole-second boundary relative to
// the original start.
func (e *Engine) onTick(i int, gen, seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// A tick scheduled before a rebuild or a stop is obsolete. The seq
	// check catches the in-flight case: a callback the stop could no
	// longer cancel, arriving after the timer was started again.
	if gen != e.generation || i >= len(e.timers) {
		return
	}
	t := e.timers[i]
	if !t.running || seq != t.seq {
		return
	}

	now := e.clock.Now()
	remaining := t.deadline.Sub(now)
	t.current = ceilSeconds(remaining)

	if t.current <= 0 {
		t.current = 0
		e.completeLocked(t)
		return
	}

	e.notifyTimerLocked(t)

	elapsed := now.Sub(t.startedAt)
	next := tickPeriod - elapsed%tickPeriod
	if next < time.Millisecond {
		next = time.Millisecond
	}
	t.tick = e.clock.AfterFunc(next, func() { e.onTick(i, gen, seq) })
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	n := int(d / time.Second)
	if d%time.Second != 0 {
		n++
	}
	return n
}

// Stop halts timer i, keeping its remaining time. Idempotent.
func (e *Engine) Stop(i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.timerAt(i)
	if err != nil {
		return err
	}
	if !t.running {
		return nil
	}
	e.stopLocked(t)
	e.notifyTimerLocked(t)
	e.notifyRunningCountLocked()
	return nil
}

// stopLocked flips the running flag and cancels the pending tick. Both are
// needed: the flag guards an in-flight tick, the cancel guards a scheduled
// one.
func (e *Engine) stopLocked(t *timer) {
	t.running = false
	if t.tick != nil {
		t.tick.Stop()
		t.tick = nil
	}
	t.startedAt = time.Time{}
	t.deadline = time.Time{}
}

// completeLocked is the internal transition fired when a running timer
// reaches zero.
func (e *Engine) completeLocked(t *timer) {
	t.running = false
	if t.tick != nil {
		t.tick.Stop()
		t.tick = nil
	}
	t.completed = true
	t.current = 0
	t.startedAt = time.Time{}
	t.deadline = time.Time{}

	t.blinking = true
	idx, gen := t.id, e.generation
	t.blink = e.clock.AfterFunc(blinkDuration, func() { e.onBlinkExpired(idx, gen) })

	e.notifyTimerLocked(t)
	e.notifyRunningCountLocked()
	e.alert.Notify()

	if e.cfg.SequentialExecution {
		e.chainLocked(t.id)
	}
}

// chainLocked starts the next eligible timer after the just-completed
// index: one pass, ascending, no wraparound.
func (e *Engine) chainLocked(after int) {
	for j := after + 1; j < len(e.timers); j++ {
		next := e.timers[j]
		if next.total > 0 && !next.running && !next.completed {
			e.startLocked(next)
			return
		}
	}
}

func (e *Engine) onBlinkExpired(i int, gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation || i >= len(e.timers) {
		return
	}
	t := e.timers[i]
	if !t.blinking {
		return
	}
	t.blinking = false
	t.blink = nil
	e.notifyTimerLocked(t)
}

// clearBlinkLocked cancels the pending auto-clear one-shot along with the
// flag, so a stale one-shot never fires after the user has already acted.
func (e *Engine) clearBlinkLocked(t *timer) {
	t.blinking = false
	if t.blink != nil {
		t.blink.Stop()
		t.blink = nil
	}
}

// Reset returns timer i to idle: no duration, no completion state, no
// pending callbacks. Resetting an idle timer is a no-op state-wise.
func (e *Engine) Reset(i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.timerAt(i)
	if err != nil {
		return err
	}
	e.resetLocked(t)
	e.notifyTimerLocked(t)
	e.notifyRunningCountLocked()
	return nil
}

func (e *Engine) resetLocked(t *timer) {
	e.stopLocked(t)
	e.clearBlinkLocked(t)
	t.total = 0
	t.current = 0
	t.completed = false
}

// StartAll starts every ready timer, or only the first configured one when
// sequential execution is enabled.
func (e *Engine) StartAll() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cfg.SequentialExecution {
		for _, t := range e.timers {
			if t.total > 0 {
				e.startLocked(t)
				return
			}
		}
		return
	}
	for _, t := range e.timers {
		if t.total > 0 && !t.running {
			e.startLocked(t)
		}
	}
}

// StopAll stops every timer regardless of mode.
func (e *Engine) StopAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopAllLocked()
	e.notifyRunningCountLocked()
}

func (e *Engine) stopAllLocked() {
	for _, t := range e.timers {
		if t.running {
			e.stopLocked(t)
			e.notifyTimerLocked(t)
		}
	}
}

// ResetAll resets every timer regardless of mode.
func (e *Engine) ResetAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range e.timers {
		e.resetLocked(t)
		e.notifyTimerLocked(t)
	}
	e.notifyRunningCountLocked()
}

// ChangeTimerCount resizes the board to a preset size. Resizing never
// preserves in-flight state: every timer is stopped and zeroed.
func (e *Engine) ChangeTimerCount(count int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if count == len(e.timers) {
		return nil
	}
	if !config.ValidTimerCount(count) {
		return fmt.Errorf("%w: timer count %d (allowed %v)", config.ErrInvalidPreset, count, config.TimerCountPresets)
	}
	e.rebuildLocked(count, e.cfg.MaxTime)
	return nil
}

// ChangeMaxTime switches the duration cap to a preset value. Like a count
// change, this rebuilds the whole board.
func (e *Engine) ChangeMaxTime(seconds int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if seconds == e.cfg.MaxTime {
		return nil
	}
	if !config.ValidMaxTime(seconds) {
		return fmt.Errorf("%w: max time %d (allowed %v)", config.ErrInvalidPreset, seconds, config.MaxTimePresets)
	}
	e.rebuildLocked(len(e.timers), seconds)
	return nil
}

func (e *Engine) rebuildLocked(count, maxTime int) {
	for _, t := range e.timers {
		e.stopLocked(t)
		e.clearBlinkLocked(t)
	}
	e.generation++
	e.cfg.TimerCount = count
	e.cfg.MaxTime = maxTime
	e.timers = e.newBoard(count)
	e.display.CollectionRebuilt(e.snapshotsLocked())
	e.notifyRunningCountLocked()
}

// SetAutoStart toggles auto-start on SetTime.
func (e *Engine) SetAutoStart(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg.AutoStartEnabled = enabled
}

// SetSequential toggles sequential execution. Already-running timers are
// left alone; the mode applies from the next completion on.
func (e *Engine) SetSequential(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg.SequentialExecution = enabled
}

// SetLabel updates the display label for timer i. An empty label restores
// the default; labels beyond the configured limit are rejected.
func (e *Engine) SetLabel(i int, label string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.timerAt(i)
	if err != nil {
		return err
	}
	if label == "" {
		label = defaultLabel(t.id)
	}
	if utf8.RuneCountInString(label) > e.cfg.LabelLimit {
		return fmt.Errorf("%w: %q (max %d chars)", domain.ErrLabelTooLong, label, e.cfg.LabelLimit)
	}
	t.label = label
	e.notifyTimerLocked(t)
	return nil
}

// ApplyLabels restores persisted labels onto the current board. Extra
// entries and over-long labels are ignored rather than rejected; persisted
// data never aborts startup.
func (e *Engine) ApplyLabels(labels []string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, label := range labels {
		if i >= len(e.timers) || label == "" {
			continue
		}
		if utf8.RuneCountInString(label) > e.cfg.LabelLimit {
			continue
		}
		e.timers[i].label = label
		e.notifyTimerLocked(e.timers[i])
	}
}

// Labels returns the current labels, for persistence.
func (e *Engine) Labels() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	labels := make([]string, len(e.timers))
	for i, t := range e.timers {
		labels[i] = t.label
	}
	return labels
}

// RunningCount reports how many timers are currently running.
func (e *Engine) RunningCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runningCountLocked()
}

func (e *Engine) runningCountLocked() int {
	n := 0
	for _, t := range e.timers {
		if t.running {
			n++
		}
	}
	return n
}

// TimerCount reports the current board size.
func (e *Engine) TimerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.timers)
}

// Snapshot returns a read-only copy of timer i.
func (e *Engine) Snapshot(i int) (domain.TimerSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.timerAt(i)
	if err != nil {
		return domain.TimerSnapshot{}, err
	}
	return e.snapshotLocked(t), nil
}

// Snapshots returns read-only copies of the whole board.
func (e *Engine) Snapshots() []domain.TimerSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotsLocked()
}

func (e *Engine) snapshotsLocked() []domain.TimerSnapshot {
	snaps := make([]domain.TimerSnapshot, len(e.timers))
	for i, t := range e.timers {
		snaps[i] = e.snapshotLocked(t)
	}
	return snaps
}

func (e *Engine) snapshotLocked(t *timer) domain.TimerSnapshot {
	return domain.TimerSnapshot{
		ID:               t.id,
		Label:            t.label,
		TotalSeconds:     t.total,
		RemainingSeconds: t.current,
		Running:          t.running,
		Completed:        t.completed,
		Blinking:         t.blinking,
	}
}

// Close cancels all pending callbacks. The engine must not be used after.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range e.timers {
		e.stopLocked(t)
		e.clearBlinkLocked(t)
	}
	e.generation++
}

func (e *Engine) timerAt(i int) (*timer, error) {
	if i < 0 || i >= len(e.timers) {
		return nil, fmt.Errorf("%w: timer %d of %d", domain.ErrOutOfRange, i, len(e.timers))
	}
	return e.timers[i], nil
}

func (e *Engine) notifyTimerLocked(t *timer) {
	e.display.TimerUpdated(t.id, e.snapshotLocked(t))
}

func (e *Engine) notifyRunningCountLocked() {
	e.display.RunningCountChanged(e.runningCountLocked(), len(e.timers))
}
