package domain

import "errors"

var (
	// ErrOutOfRange reports a timer or counter index outside the collection.
	ErrOutOfRange = errors.New("index out of range")

	// ErrLabelTooLong reports a label exceeding the configured length limit.
	ErrLabelTooLong = errors.New("label too long")
)
