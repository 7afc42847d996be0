package alarm

import "errors"

var (
	// ErrAlreadyExists is returned when adding an alarm whose ID is taken.
	ErrAlreadyExists = errors.New("alarm already exists")
	// ErrNotFound is returned when removing an unknown alarm.
	ErrNotFound = errors.New("alarm not found")
)
