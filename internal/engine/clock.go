package engine

import "time"

// Clock abstracts the time source so tests can drive the tick chains
// deterministically. The real implementation delegates to package time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc runs f in its own goroutine after at least d. The returned
	// handle cancels the call; Stop reports whether it fired first.
	AfterFunc(d time.Duration, f func()) TimerHandle
}

// TimerHandle is a cancellable pending callback.
type TimerHandle interface {
	// Stop prevents the callback from running. It returns false if the
	// callback already ran or was stopped.
	Stop() bool
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) TimerHandle {
	return time.AfterFunc(d, f)
}

// NewClock returns the wall-clock implementation.
func NewClock() Clock {
	return realClock{}
}
