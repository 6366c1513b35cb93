package models

// ConversationState is the named step of the WhatsApp booking dialogue.
// Values are persisted on the customer row.
type ConversationState string

const (
	StateNone                   ConversationState = "None"
	StateEnteringName           ConversationState = "EnteringName"
	StateSelectingService       ConversationState = "SelectingService"
	StateSelectingBarber        ConversationState = "SelectingBarber"
	StateSelectingDate          ConversationState = "SelectingDate"
	StateSelectingTime          ConversationState = "SelectingTime"
	StateSelectingCancellation  ConversationState = "SelectingCancellation"
	StateConfirmingCancellation ConversationState = "ConfirmingCancellation"
)

// ParseConversationState maps a stored value to a known state. A value that
// is not part of the dialogue (corrupted row, removed state) reports ok=false
// so the caller can reset the conversation.
func ParseConversationState(s string) (ConversationState, bool) {
	switch ConversationState(s) {
	case StateNone, StateEnteringName, StateSelectingService, StateSelectingBarber,
		StateSelectingDate, StateSelectingTime, StateSelectingCancellation,
		StateConfirmingCancellation:
		return ConversationState(s), true
	}
	return StateNone, false
}

// SelectionKind tags what the customer's in-progress selection refers to.
type SelectionKind string

const (
	SelectionNone        SelectionKind = ""
	SelectionService     SelectionKind = "service"
	SelectionAppointment SelectionKind = "appointment"
)

// Selection is the tagged scratch slot carried between conversation turns:
// the picked service during booking, or the picked appointment during the
// cancellation sub-flow. Never both.
type Selection struct {
	Kind SelectionKind `json:"kind"`
	ID   int64         `json:"id"`
}

// ServiceID returns the selected service id, or 0 when the selection holds
// something else.
func (s Selection) ServiceID() int64 {
	if s.Kind == SelectionService {
		return s.ID
	}
	return 0
}

// AppointmentID returns the selected appointment id, or 0.
func (s Selection) AppointmentID() int64 {
	if s.Kind == SelectionAppointment {
		return s.ID
	}
	return 0
}
