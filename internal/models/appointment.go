package models

import "time"

// Appointment is a booked visit. StartTime and EndTime are UTC instants;
// EndTime is fixed at creation from the service duration and never re-derived.
type Appointment struct {
	ID           int64     `json:"id"`
	CustomerID   int64     `json:"customer_id"`
	StaffID      int64     `json:"staff_id"`
	ServiceID    int64     `json:"service_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Status       string    `json:"status"` // Pending, Confirmed, Cancelled
	ReminderSent bool      `json:"reminder_sent"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Active reports whether the appointment still occupies its time slot.
// Cancelled appointments are kept for history but never block bookings.
func (a *Appointment) Active() bool {
	return a.Status != StatusCancelled
}
