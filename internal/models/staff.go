package models

// StaffMember is a bookable employee. Only active barbers and owners that
// are not on leave are offered to customers.
type StaffMember struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"` // Barber, Owner, Admin
	IsActive  bool   `json:"is_active"`
	IsOnLeave bool   `json:"is_on_leave"`
}

// Bookable reports whether the staff member can be offered for appointments.
func (s *StaffMember) Bookable() bool {
	if s.Role != RoleBarber && s.Role != RoleOwner {
		return false
	}
	return s.IsActive && !s.IsOnLeave
}
