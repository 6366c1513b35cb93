package models

import "time"

// Customer is a WhatsApp contact keyed by phone number. The conversation
// fields are scratch state for the in-progress booking dialogue and are
// cleared whenever a flow completes, aborts or resets.
type Customer struct {
	ID          int64             `json:"id"`
	PhoneNumber string            `json:"phone_number"`
	Name        string            `json:"name"`
	State       ConversationState `json:"state"`
	Selection   Selection         `json:"selection"`
	StaffID     *int64            `json:"staff_id,omitempty"`
	Date        *time.Time        `json:"date,omitempty"` // business-local midnight
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ClearScratch drops all in-progress selections and returns the dialogue to
// the idle state.
func (c *Customer) ClearScratch() {
	c.State = StateNone
	c.Selection = Selection{}
	c.StaffID = nil
	c.Date = nil
}
