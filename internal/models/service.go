package models

// Service is a bookable treatment. DurationMinutes determines the end time
// of appointments created for it; edits do not touch existing appointments.
type Service struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"duration_minutes"`
	IsActive        bool    `json:"is_active"`
}
