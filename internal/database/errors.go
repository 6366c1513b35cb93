package database

import "errors"

var (
	// ErrOverlappingAppointment is returned by the guarded create when the
	// staff member already has a non-cancelled appointment in the interval.
	ErrOverlappingAppointment = errors.New("overlapping appointment exists")

	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("record not found")
)
