package models

// WorkingHour is the shop schedule for one day of week (0=Sunday..6=Saturday).
// Open and close times are business-local wall clock, "HH:MM". A missing row
// or IsClosed means the shop does not take appointments that day.
type WorkingHour struct {
	DayOfWeek int    `json:"day_of_week"`
	IsClosed  bool   `json:"is_closed"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
}
