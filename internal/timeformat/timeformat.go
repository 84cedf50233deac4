// Package timeformat holds the pure display-string helpers for whole-second
// countdown values.
package timeformat

import "fmt"

// Format renders a non-negative second count as M:SS, or H:MM:SS at one
// hour and above. Negative input is treated as zero.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Compose validates a minutes/seconds pair from the time entry form and
// returns the total in seconds. Seconds must be 0-59; minutes non-negative.
func Compose(minutes, seconds int) (int, error) {
	if minutes < 0 {
		return 0, fmt.Errorf("minutes must be non-negative, got %d", minutes)
	}
	if seconds < 0 || seconds > 59 {
		return 0, fmt.Errorf("seconds must be 0-59, got %d", seconds)
	}
	return minutes*60 + seconds, nil
}

// Split breaks a second count into minutes and seconds for form prefill.
func Split(total int) (minutes, seconds int) {
	if total < 0 {
		total = 0
	}
	return total / 60, total % 60
}
