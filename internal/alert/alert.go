// Package alert implements the completion alert with a cascading channel
// fallback: sound, then vibration, then a visual toast. A failed channel
// degrades to the next; nothing propagates back to the engine.
package alert

import (
	"errors"
	"io"
	"sync"
)

// ErrChannelUnavailable marks an alert channel that cannot deliver on this
// platform or with the current settings.
var ErrChannelUnavailable = errors.New("alert channel unavailable")

// Options mirror the user-facing alert preferences.
type Options struct {
	AudioEnabled     bool
	VibrationEnabled bool
	Sound            string
}

// Notifier delivers completion alerts. Safe for concurrent use; the engine
// calls Notify from its tick callbacks.
type Notifier struct {
	mu    sync.Mutex
	out   io.Writer
	toast func(message string)
	opts  Options
}

// New creates a Notifier writing the audio cue to out (the terminal) and
// falling back to toast for the visual channel. toast may be nil.
func New(out io.Writer, toast func(string)) *Notifier {
	return &Notifier{
		out:   out,
		toast: toast,
		opts: Options{
			AudioEnabled:     true,
			VibrationEnabled: true,
			Sound:            "beep",
		},
	}
}

// SetOptions replaces the alert preferences.
func (n *Notifier) SetOptions(opts Options) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.opts = opts
}

// Notify fires the alert, cascading through the channels until one
// delivers. The worst case is the visual toast; if even that is absent the
// alert is dropped silently.
func (n *Notifier) Notify() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.playSound(); err == nil {
		return
	}
	if err := n.vibrate(); err == nil {
		return
	}
	if n.toast != nil {
		n.toast("Timer finished")
	}
}

// playSound writes the terminal bell. In a real browser this was a short
// sine beep; BEL is the terminal equivalent.
func (n *Notifier) playSound() error {
	if !n.opts.AudioEnabled || n.opts.Sound == "none" || n.out == nil {
		return ErrChannelUnavailable
	}
	if _, err := n.out.Write([]byte{'\a'}); err != nil {
		return err
	}
	return nil
}

// vibrate is permanently unavailable in a terminal; the preference is kept
// so the blob round-trips intact.
func (n *Notifier) vibrate() error {
	return ErrChannelUnavailable
}
