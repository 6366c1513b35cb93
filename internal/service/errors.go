package service

import "errors"

// Validation errors are recoverable: the conversation flow catches them and
// reprompts, the admin API maps them to 4xx responses.
var (
	ErrClosed          = errors.New("shop is closed on the requested day")
	ErrOutsideHours    = errors.New("requested interval is outside working hours")
	ErrOverlap         = errors.New("staff member is already booked in this interval")
	ErrMissingCustomer = errors.New("customer id or new customer name and phone required")
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
)
