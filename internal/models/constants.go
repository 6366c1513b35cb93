package models

const (
	StatusPending   = "Pending"
	StatusConfirmed = "Confirmed"
	StatusCancelled = "Cancelled"
)

const (
	RoleBarber = "Barber"
	RoleOwner  = "Owner"
	RoleAdmin  = "Admin"
)

const (
	// SlotStepMinutes is the fixed walk step between candidate start times.
	// Independent of service duration.
	SlotStepMinutes = 30

	// LeadBufferMinutes is the minimum notice before a same-day slot can
	// still be offered.
	LeadBufferMinutes = 15

	// DefaultServiceDurationMinutes is assumed when the service cannot be
	// resolved during slot computation.
	DefaultServiceDurationMinutes = 30

	// DefaultOpenTime and DefaultCloseTime are substituted when a
	// working-hour record carries an unparseable time.
	DefaultOpenTime  = "09:00"
	DefaultCloseTime = "21:00"
)

const (
	// ReminderLookaheadMinutes is how far before the appointment start the
	// reminder fires, with ReminderToleranceMinutes slack on both sides.
	ReminderLookaheadMinutes = 60
	ReminderToleranceMinutes = 5

	// RateLimitMessages inbound messages per phone per RateLimitWindow.
	RateLimitMessages      = 20
	RateLimitWindowSeconds = 60

	// DedupTTL for inbound message ids, in seconds.
	MessageDedupTTLSeconds = 24 * 60 * 60

	// DefaultStatisticsDays is the dashboard range.
	DefaultStatisticsDays = 30
)
