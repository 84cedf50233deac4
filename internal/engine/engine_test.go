package engine

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/andy/multitimer/internal/config"
	"github.com/andy/multitimer/internal/domain"
)

// fakeClock drives the engine deterministically. Advance fires callbacks
// at their exact scheduled instants; Jump moves the clock first and then
// fires everything due, simulating a stalled event loop delivering late
// callbacks.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	when    time.Time
	fn      func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) TimerHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, when: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward by d, firing each due callback at its
// scheduled instant.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		next := c.nextDueLocked(target)
		if next == nil {
			break
		}
		c.now = next.when
		next.fired = true
		fn := next.fn
		c.mu.Unlock()
		fn()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// Jump moves the clock forward by d first, then fires everything that came
// due, at the (late) new instant.
func (c *fakeClock) Jump(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	target := c.now
	for {
		next := c.nextDueLocked(target)
		if next == nil {
			break
		}
		next.fired = true
		fn := next.fn
		c.mu.Unlock()
		fn()
		c.mu.Lock()
	}
	c.mu.Unlock()
}

// pending returns the callbacks still scheduled and not cancelled.
func (c *fakeClock) pending() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*fakeTimer
	for _, t := range c.timers {
		if !t.fired && !t.stopped {
			out = append(out, t)
		}
	}
	return out
}

func (c *fakeClock) nextDueLocked(target time.Time) *fakeTimer {
	var next *fakeTimer
	for _, t := range c.timers {
		if t.fired || t.stopped || t.when.After(target) {
			continue
		}
		if next == nil || t.when.Before(next.when) {
			next = t
		}
	}
	return next
}

// recordingDisplay counts notifications per timer index.
type recordingDisplay struct {
	mu       sync.Mutex
	updates  map[int]int
	rebuilds int
	running  int
	total    int
}

func newRecordingDisplay() *recordingDisplay {
	return &recordingDisplay{updates: map[int]int{}}
}

func (d *recordingDisplay) TimerUpdated(i int, snap domain.TimerSnapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.updates[i]++
}

func (d *recordingDisplay) RunningCountChanged(running, total int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = running
	d.total = total
}

func (d *recordingDisplay) CollectionRebuilt(snaps []domain.TimerSnapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rebuilds++
}

func (d *recordingDisplay) updateCount(i int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.updates[i]
}

// countingAlert counts completions.
type countingAlert struct {
	mu    sync.Mutex
	count int
}

func (a *countingAlert) Notify() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.count++
}

func (a *countingAlert) notifications() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

func testConfig() config.EngineConfig {
	return config.EngineConfig{
		TimerCount: 5,
		MaxTime:    3600,
		LabelLimit: 10,
	}
}

func newTestEngine(t *testing.T, cfg config.EngineConfig) (*Engine, *fakeClock, *recordingDisplay, *countingAlert) {
	t.Helper()
	clock := newFakeClock()
	display := newRecordingDisplay()
	notifier := &countingAlert{}
	eng, err := New(cfg, clock, display, notifier)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return eng, clock, display, notifier
}

func assertInvariants(t *testing.T, eng *Engine) {
	t.Helper()
	for _, snap := range eng.Snapshots() {
		if snap.RemainingSeconds < 0 || snap.RemainingSeconds > snap.TotalSeconds {
			t.Fatalf("timer %d: remaining %d outside [0, %d]", snap.ID, snap.RemainingSeconds, snap.TotalSeconds)
		}
		if snap.Running && snap.Completed {
			t.Fatalf("timer %d: running and completed simultaneously", snap.ID)
		}
		if snap.Running && snap.TotalSeconds == 0 {
			t.Fatalf("timer %d: running with no duration", snap.ID)
		}
		if snap.Completed && snap.RemainingSeconds != 0 {
			t.Fatalf("timer %d: completed with %d remaining", snap.ID, snap.RemainingSeconds)
		}
	}
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.TimerCount = 7
	if _, err := New(cfg, newFakeClock(), nil, nil); !errors.Is(err, config.ErrInvalidPreset) {
		t.Fatalf("expected ErrInvalidPreset, got %v", err)
	}
}

func TestSetTimeValidation(t *testing.T) {
	eng, _, _, _ := newTestEngine(t, testConfig())

	if err := eng.SetTime(-1, 10); !errors.Is(err, domain.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange for index -1, got %v", err)
	}
	if err := eng.SetTime(5, 10); !errors.Is(err, domain.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange for index 5, got %v", err)
	}

	// Exactly at the boundary succeeds.
	if err := eng.SetTime(0, 3600); err != nil {
		t.Fatalf("SetTime at max: %v", err)
	}
	snap, _ := eng.Snapshot(0)
	if snap.TotalSeconds != 3600 {
		t.Fatalf("expected total 3600, got %d", snap.TotalSeconds)
	}

	// One past the boundary is rejected with no state change.
	if err := eng.SetTime(0, 3601); !errors.Is(err, ErrMaxTimeExceeded) {
		t.Fatalf("expected ErrMaxTimeExceeded, got %v", err)
	}
	snap, _ = eng.Snapshot(0)
	if snap.TotalSeconds != 3600 {
		t.Fatalf("rejected SetTime changed state: total %d", snap.TotalSeconds)
	}

	// Negative input clamps to zero.
	if err := eng.SetTime(1, -5); err != nil {
		t.Fatalf("SetTime negative: %v", err)
	}
	snap, _ = eng.Snapshot(1)
	if snap.TotalSeconds != 0 || snap.State() != domain.TimerStateIdle {
		t.Fatalf("expected idle timer after negative SetTime, got %+v", snap)
	}
	assertInvariants(t, eng)
}

func TestStartWithoutDurationIsNoop(t *testing.T) {
	eng, clock, _, _ := newTestEngine(t, testConfig())

	if err := eng.Start(0); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clock.Advance(2 * time.Second)

	snap, _ := eng.Snapshot(0)
	if snap.Running || snap.State() != domain.TimerStateIdle {
		t.Fatalf("expected idle, got %+v", snap)
	}
	if eng.RunningCount() != 0 {
		t.Fatalf("running count = %d, want 0", eng.RunningCount())
	}
}

func TestCountdownCompletes(t *testing.T) {
	eng, clock, _, notifier := newTestEngine(t, testConfig())

	if err := eng.SetTime(0, 3); err != nil {
		t.Fatalf("SetTime: %v", err)
	}
	if err := eng.Start(0); err != nil {
		t.Fatalf("Start: %v", err)
	}
	assertInvariants(t, eng)

	clock.Advance(1500 * time.Millisecond)
	snap, _ := eng.Snapshot(0)
	if !snap.Running || snap.RemainingSeconds != 2 {
		t.Fatalf("after 1.5s: %+v", snap)
	}

	clock.Advance(2 * time.Second)
	snap, _ = eng.Snapshot(0)
	if !snap.Completed || snap.Running || snap.RemainingSeconds != 0 {
		t.Fatalf("expected completion, got %+v", snap)
	}
	if notifier.notifications() != 1 {
		t.Fatalf("alert fired %d times, want 1", notifier.notifications())
	}
	assertInvariants(t, eng)
}

func TestDriftCorrectionUnderIrregularTicks(t *testing.T) {
	eng, clock, display, _ := newTestEngine(t, testConfig())

	if err := eng.SetTime(0, 5); err != nil {
		t.Fatalf("SetTime: %v", err)
	}
	before := display.updateCount(0)
	if err := eng.Start(0); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Irregular chunks summing to exactly 5000ms. Each Jump delivers due
	// callbacks late, the way a busy event loop would.
	steps := []time.Duration{
		100 * time.Millisecond,
		950 * time.Millisecond,
		1080 * time.Millisecond,
		870 * time.Millisecond,
		1100 * time.Millisecond,
		900 * time.Millisecond,
	}
	want := []int{5, 4, 3, 2, 1, 0}
	for i, step := range steps {
		clock.Jump(step)
		snap, _ := eng.Snapshot(0)
		if snap.RemainingSeconds != want[i] {
			t.Fatalf("step %d: remaining %d, want %d", i, snap.RemainingSeconds, want[i])
		}
		assertInvariants(t, eng)
	}

	snap, _ := eng.Snapshot(0)
	if !snap.Completed {
		t.Fatalf("expected completion at the absolute deadline, got %+v", snap)
	}

	// One start notification, one per display tick, one completion. The
	// chunking of the callbacks must not change the tick count materially.
	ticks := display.updateCount(0) - before - 2
	if ticks < 4 || ticks > 6 {
		t.Fatalf("drift: %d display ticks for a 5s timer", ticks)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	eng, clock, _, _ := newTestEngine(t, testConfig())

	eng.SetTime(0, 10)
	eng.Start(0)
	clock.Advance(2 * time.Second)

	if err := eng.Stop(0); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	first, _ := eng.Snapshot(0)

	if err := eng.Stop(0); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	second, _ := eng.Snapshot(0)

	if first != second {
		t.Fatalf("second Stop changed state: %+v vs %+v", first, second)
	}
	if second.Running || second.RemainingSeconds != 8 {
		t.Fatalf("after stop: %+v", second)
	}
}

func TestResetOnIdleTimerIsNoop(t *testing.T) {
	eng, _, _, _ := newTestEngine(t, testConfig())

	before, _ := eng.Snapshot(2)
	if err := eng.Reset(2); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	after, _ := eng.Snapshot(2)
	if before != after {
		t.Fatalf("Reset changed an idle timer: %+v vs %+v", before, after)
	}
}

func TestResumeRebasesAgainstRemainingTime(t *testing.T) {
	eng, clock, _, _ := newTestEngine(t, testConfig())

	eng.SetTime(0, 10)
	eng.Start(0)
	clock.Advance(3 * time.Second)
	eng.Stop(0)

	snap, _ := eng.Snapshot(0)
	if snap.RemainingSeconds != 7 {
		t.Fatalf("paused at %d, want 7", snap.RemainingSeconds)
	}

	// While stopped, time passing must not drain the timer.
	clock.Advance(30 * time.Second)
	snap, _ = eng.Snapshot(0)
	if snap.RemainingSeconds != 7 {
		t.Fatalf("remaining drained while stopped: %d", snap.RemainingSeconds)
	}

	eng.Start(0)
	clock.Advance(6500 * time.Millisecond)
	snap, _ = eng.Snapshot(0)
	if !snap.Running || snap.Completed {
		t.Fatalf("expected still running after 6.5s of a 7s resume, got %+v", snap)
	}

	clock.Advance(time.Second)
	snap, _ = eng.Snapshot(0)
	if !snap.Completed {
		t.Fatalf("expected completion 7s after resume, got %+v", snap)
	}
}

func TestRestartFromCompletedRunsFullDuration(t *testing.T) {
	eng, clock, _, _ := newTestEngine(t, testConfig())

	eng.SetTime(0, 10)
	eng.Start(0)
	clock.Advance(11 * time.Second)

	snap, _ := eng.Snapshot(0)
	if !snap.Completed {
		t.Fatalf("expected completion, got %+v", snap)
	}

	if err := eng.Start(0); err != nil {
		t.Fatalf("restart: %v", err)
	}
	snap, _ = eng.Snapshot(0)
	if !snap.Running || snap.Completed || snap.RemainingSeconds != 10 {
		t.Fatalf("restart did not reset to full duration: %+v", snap)
	}
	if snap.Blinking {
		t.Fatal("restart left the completion blink on")
	}
}

func TestSequentialChaining(t *testing.T) {
	cfg := testConfig()
	cfg.SequentialExecution = true
	eng, clock, _, notifier := newTestEngine(t, cfg)

	eng.SetTime(0, 10)
	// index 1 left unset
	eng.SetTime(2, 5)
	eng.SetTime(3, 8)

	eng.StartAll()
	if eng.RunningCount() != 1 {
		t.Fatalf("sequential StartAll started %d timers, want 1", eng.RunningCount())
	}
	snap, _ := eng.Snapshot(0)
	if !snap.Running {
		t.Fatal("sequential StartAll should start the lowest configured index")
	}

	// Completing 0 skips the unset index 1 and starts 2.
	clock.Advance(11 * time.Second)
	snap, _ = eng.Snapshot(2)
	if !snap.Running {
		t.Fatalf("expected timer 2 running after chain, got %+v", snap)
	}
	if one, _ := eng.Snapshot(1); one.Running {
		t.Fatal("chain started an unset timer")
	}

	// Completing 2 starts 3.
	clock.Advance(6 * time.Second)
	snap, _ = eng.Snapshot(3)
	if !snap.Running {
		t.Fatalf("expected timer 3 running after chain, got %+v", snap)
	}

	// Completing 3 ends the chain: no wraparound to earlier indices.
	clock.Advance(9 * time.Second)
	if eng.RunningCount() != 0 {
		t.Fatalf("running count = %d after chain end, want 0", eng.RunningCount())
	}
	for _, i := range []int{0, 2, 3} {
		if snap, _ := eng.Snapshot(i); !snap.Completed {
			t.Fatalf("timer %d not completed: %+v", i, snap)
		}
	}
	if notifier.notifications() != 3 {
		t.Fatalf("alert fired %d times, want 3", notifier.notifications())
	}
	assertInvariants(t, eng)
}

func TestStartAllWithoutSequentialStartsEveryReadyTimer(t *testing.T) {
	eng, _, _, _ := newTestEngine(t, testConfig())

	eng.SetTime(0, 10)
	eng.SetTime(2, 5)
	eng.StartAll()

	if eng.RunningCount() != 2 {
		t.Fatalf("running count = %d, want 2", eng.RunningCount())
	}
}

func TestResizeClearsAllState(t *testing.T) {
	eng, clock, display, _ := newTestEngine(t, testConfig())

	eng.SetTime(0, 30)
	eng.SetTime(1, 40)
	eng.StartAll()
	clock.Advance(2 * time.Second)

	if err := eng.ChangeTimerCount(10); err != nil {
		t.Fatalf("ChangeTimerCount: %v", err)
	}

	if eng.RunningCount() != 0 {
		t.Fatalf("running count = %d after resize, want 0", eng.RunningCount())
	}
	if eng.TimerCount() != 10 {
		t.Fatalf("timer count = %d, want 10", eng.TimerCount())
	}
	for _, snap := range eng.Snapshots() {
		if snap.TotalSeconds != 0 || snap.RemainingSeconds != 0 || snap.Running || snap.Completed {
			t.Fatalf("resize preserved state: %+v", snap)
		}
	}
	if display.rebuilds != 1 {
		t.Fatalf("rebuild notifications = %d, want 1", display.rebuilds)
	}

	// Ticks scheduled before the rebuild are obsolete and must drop
	// silently.
	clock.Advance(time.Minute)
	for _, snap := range eng.Snapshots() {
		if snap.Running || snap.Completed || snap.RemainingSeconds != 0 {
			t.Fatalf("stale tick mutated rebuilt board: %+v", snap)
		}
	}
	assertInvariants(t, eng)
}

func TestChangeTimerCountValidation(t *testing.T) {
	eng, _, display, _ := newTestEngine(t, testConfig())

	if err := eng.ChangeTimerCount(7); !errors.Is(err, config.ErrInvalidPreset) {
		t.Fatalf("expected ErrInvalidPreset, got %v", err)
	}
	// Same size is a no-op, not a rebuild.
	if err := eng.ChangeTimerCount(5); err != nil {
		t.Fatalf("ChangeTimerCount same size: %v", err)
	}
	if display.rebuilds != 0 {
		t.Fatalf("no-op resize emitted %d rebuilds", display.rebuilds)
	}
}

func TestChangeMaxTimeRebuilds(t *testing.T) {
	eng, _, display, _ := newTestEngine(t, testConfig())

	eng.SetTime(0, 600)
	if err := eng.ChangeMaxTime(300); err != nil {
		t.Fatalf("ChangeMaxTime: %v", err)
	}
	if display.rebuilds != 1 {
		t.Fatalf("rebuild notifications = %d, want 1", display.rebuilds)
	}
	if err := eng.SetTime(0, 600); !errors.Is(err, ErrMaxTimeExceeded) {
		t.Fatalf("new cap not enforced: %v", err)
	}
	if err := eng.ChangeMaxTime(299); !errors.Is(err, config.ErrInvalidPreset) {
		t.Fatalf("expected ErrInvalidPreset, got %v", err)
	}
}

func TestAutoStart(t *testing.T) {
	cfg := testConfig()
	cfg.AutoStartEnabled = true
	eng, clock, _, _ := newTestEngine(t, cfg)

	if err := eng.SetTime(0, 5); err != nil {
		t.Fatalf("SetTime: %v", err)
	}
	snap, _ := eng.Snapshot(0)
	if !snap.Running {
		t.Fatalf("auto-start did not start the timer: %+v", snap)
	}

	// Zero duration must not auto-start.
	eng.SetTime(1, 0)
	if snap, _ := eng.Snapshot(1); snap.Running {
		t.Fatal("auto-start started a zero-duration timer")
	}

	clock.Advance(6 * time.Second)
	if snap, _ := eng.Snapshot(0); !snap.Completed {
		t.Fatalf("auto-started timer did not complete: %+v", snap)
	}
}

func TestBlinkAutoClears(t *testing.T) {
	eng, clock, _, _ := newTestEngine(t, testConfig())

	eng.SetTime(0, 2)
	eng.Start(0)
	clock.Advance(3 * time.Second)

	snap, _ := eng.Snapshot(0)
	if !snap.Blinking {
		t.Fatalf("completion did not start the blink: %+v", snap)
	}

	clock.Advance(5 * time.Second)
	snap, _ = eng.Snapshot(0)
	if snap.Blinking {
		t.Fatal("blink did not auto-clear")
	}
	if !snap.Completed {
		t.Fatalf("blink clear changed completion state: %+v", snap)
	}
}

func TestManualResetCancelsBlinkOneShot(t *testing.T) {
	eng, clock, _, _ := newTestEngine(t, testConfig())

	eng.SetTime(0, 2)
	eng.Start(0)
	clock.Advance(3 * time.Second)

	// Reset mid-blink, then immediately reuse the slot. The stale one-shot
	// must not fire into the new state.
	eng.Reset(0)
	eng.SetTime(0, 30)
	eng.Start(0)

	clock.Advance(5 * time.Second)
	snap, _ := eng.Snapshot(0)
	if snap.Blinking {
		t.Fatal("stale blink one-shot fired after manual reset")
	}
	if !snap.Running || snap.RemainingSeconds != 25 {
		t.Fatalf("reused timer disturbed: %+v", snap)
	}
}

// A tick callback can be dispatched to its goroutine just as the timer is
// stopped; the handle cancel misses it. If the timer is immediately started
// again, that callback must not revive the old chain next to the new one.
func TestStaleInFlightTickDroppedAfterRestart(t *testing.T) {
	eng, clock, _, _ := newTestEngine(t, testConfig())

	eng.SetTime(0, 10)
	eng.Start(0)
	clock.Advance(time.Second)

	pending := clock.pending()
	if len(pending) != 1 {
		t.Fatalf("pending chains = %d, want 1", len(pending))
	}
	inflight := pending[0].fn

	eng.Stop(0)
	eng.Start(0)
	// Replay the callback the stop could no longer cancel.
	inflight()

	if got := len(clock.pending()); got != 1 {
		t.Fatalf("stale tick rescheduled itself: %d pending chains for one timer", got)
	}

	// The surviving chain alone drives the countdown to completion.
	clock.Advance(11 * time.Second)
	snap, _ := eng.Snapshot(0)
	if !snap.Completed || snap.RemainingSeconds != 0 {
		t.Fatalf("expected completion, got %+v", snap)
	}
}

func TestSetTimeWhileRunningStopsFirst(t *testing.T) {
	eng, clock, _, _ := newTestEngine(t, testConfig())

	eng.SetTime(0, 20)
	eng.Start(0)
	clock.Advance(4 * time.Second)

	if err := eng.SetTime(0, 8); err != nil {
		t.Fatalf("SetTime on running timer: %v", err)
	}
	snap, _ := eng.Snapshot(0)
	if snap.Running {
		t.Fatal("SetTime left the timer running")
	}
	if snap.TotalSeconds != 8 || snap.RemainingSeconds != 8 {
		t.Fatalf("SetTime state: %+v", snap)
	}

	// The cancelled tick chain must not keep draining the new value.
	clock.Advance(10 * time.Second)
	snap, _ = eng.Snapshot(0)
	if snap.RemainingSeconds != 8 {
		t.Fatalf("stale chain drained stopped timer to %d", snap.RemainingSeconds)
	}
}

func TestLabels(t *testing.T) {
	eng, _, _, _ := newTestEngine(t, testConfig())

	if err := eng.SetLabel(0, "coffee"); err != nil {
		t.Fatalf("SetLabel: %v", err)
	}
	snap, _ := eng.Snapshot(0)
	if snap.Label != "coffee" {
		t.Fatalf("label = %q", snap.Label)
	}

	if err := eng.SetLabel(0, "much too long label"); !errors.Is(err, domain.ErrLabelTooLong) {
		t.Fatalf("expected ErrLabelTooLong, got %v", err)
	}

	// Empty restores the default.
	if err := eng.SetLabel(0, ""); err != nil {
		t.Fatalf("SetLabel empty: %v", err)
	}
	snap, _ = eng.Snapshot(0)
	if snap.Label != "1" {
		t.Fatalf("default label = %q, want 1", snap.Label)
	}

	// ApplyLabels skips overlong and extra entries instead of failing.
	eng.ApplyLabels([]string{"tea", "way too long to keep", "", "soup", "x", "extra", "extra2"})
	labels := eng.Labels()
	want := []string{"tea", "2", "3", "soup", "x"}
	for i, w := range want {
		if labels[i] != w {
			t.Fatalf("labels[%d] = %q, want %q", i, labels[i], w)
		}
	}
}
