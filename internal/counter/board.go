// Package counter implements the tally-counter board, the second app
// variant sharing presets and preference storage with the timer board but
// none of its state.
package counter

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/andy/multitimer/internal/config"
	"github.com/andy/multitimer/internal/domain"
)

// Counter is one tally slot. Values never go below zero.
type Counter struct {
	ID    int
	Label string
	Value int
}

// Board owns a fixed-size collection of counters. It is driven entirely
// from the UI event loop, so no locking is needed.
type Board struct {
	counters   []Counter
	labelLimit int
}

// NewBoard creates a board with count zeroed counters. Count must be an
// allowed preset.
func NewBoard(count, labelLimit int) (*Board, error) {
	if !config.ValidTimerCount(count) {
		return nil, fmt.Errorf("%w: counter count %d (allowed %v)", config.ErrInvalidPreset, count, config.TimerCountPresets)
	}
	if labelLimit <= 0 {
		labelLimit = config.DefaultLabelLimit
	}
	b := &Board{labelLimit: labelLimit}
	b.counters = newCounters(count)
	return b, nil
}

func newCounters(count int) []Counter {
	counters := make([]Counter, count)
	for i := range counters {
		counters[i] = Counter{ID: i, Label: strconv.Itoa(i + 1)}
	}
	return counters
}

// Increment adds one to counter i.
func (b *Board) Increment(i int) error {
	c, err := b.counterAt(i)
	if err != nil {
		return err
	}
	c.Value++
	return nil
}

// Decrement subtracts one from counter i, flooring at zero.
func (b *Board) Decrement(i int) error {
	c, err := b.counterAt(i)
	if err != nil {
		return err
	}
	if c.Value > 0 {
		c.Value--
	}
	return nil
}

// SetValue sets counter i directly. Negative values clamp to zero.
func (b *Board) SetValue(i, value int) error {
	c, err := b.counterAt(i)
	if err != nil {
		return err
	}
	if value < 0 {
		value = 0
	}
	c.Value = value
	return nil
}

// Reset zeroes counter i.
func (b *Board) Reset(i int) error {
	return b.SetValue(i, 0)
}

// ResetAll zeroes every counter.
func (b *Board) ResetAll() {
	for i := range b.counters {
		b.counters[i].Value = 0
	}
}

// ChangeCounterCount rebuilds the board at a preset size, zeroing all
// counters. A no-op when the size is unchanged.
func (b *Board) ChangeCounterCount(count int) error {
	if count == len(b.counters) {
		return nil
	}
	if !config.ValidTimerCount(count) {
		return fmt.Errorf("%w: counter count %d (allowed %v)", config.ErrInvalidPreset, count, config.TimerCountPresets)
	}
	b.counters = newCounters(count)
	return nil
}

// SetLabel updates counter i's label. Empty restores the default.
func (b *Board) SetLabel(i int, label string) error {
	c, err := b.counterAt(i)
	if err != nil {
		return err
	}
	if label == "" {
		label = strconv.Itoa(c.ID + 1)
	}
	if utf8.RuneCountInString(label) > b.labelLimit {
		return fmt.Errorf("%w: %q (max %d chars)", domain.ErrLabelTooLong, label, b.labelLimit)
	}
	c.Label = label
	return nil
}

// ApplyLabels restores persisted labels, ignoring extras and over-long
// entries.
func (b *Board) ApplyLabels(labels []string) {
	for i, label := range labels {
		if i >= len(b.counters) || label == "" {
			continue
		}
		if utf8.RuneCountInString(label) > b.labelLimit {
			continue
		}
		b.counters[i].Label = label
	}
}

// Labels returns the current labels, for persistence.
func (b *Board) Labels() []string {
	labels := make([]string, len(b.counters))
	for i := range b.counters {
		labels[i] = b.counters[i].Label
	}
	return labels
}

// Counters returns a copy of the board.
func (b *Board) Counters() []Counter {
	out := make([]Counter, len(b.counters))
	copy(out, b.counters)
	return out
}

// Size reports the current board size.
func (b *Board) Size() int {
	return len(b.counters)
}

func (b *Board) counterAt(i int) (*Counter, error) {
	if i < 0 || i >= len(b.counters) {
		return nil, fmt.Errorf("%w: counter %d of %d", domain.ErrOutOfRange, i, len(b.counters))
	}
	return &b.counters[i], nil
}
