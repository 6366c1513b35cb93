package domain

import (
	"context"
	"time"

	"github.com/emryildiz/barberbot/internal/models"
)

// AppointmentStore persists appointments and answers the range and overlap
// queries the scheduler and slot calculator rely on. All instants are UTC.
type AppointmentStore interface {
	GetAppointment(ctx context.Context, id int64) (*models.Appointment, error)
	// CreateAppointment runs the overlap check and the insert in one
	// transaction and fails with the store's overlap error when the staff
	// member is already booked in [StartTime, EndTime).
	CreateAppointment(ctx context.Context, a *models.Appointment) error
	UpdateAppointment(ctx context.Context, id int64, start, end time.Time, status string) error
	DeleteAppointment(ctx context.Context, id int64) error
	ListAppointments(ctx context.Context) ([]*models.Appointment, error)
	ListSince(ctx context.Context, since time.Time) ([]*models.Appointment, error)
	// FindOverlapping returns non-cancelled appointments of the staff member
	// whose [start,end) interval intersects the given one (half-open).
	FindOverlapping(ctx context.Context, staffID int64, start, end time.Time) ([]*models.Appointment, error)
	// ListForStaffOnBusinessDate returns non-cancelled appointments whose
	// UTC start falls on the given business-local date (local midnight).
	ListForStaffOnBusinessDate(ctx context.Context, staffID int64, localDate time.Time) ([]*models.Appointment, error)
	// ListUpcomingForCustomer returns the customer's future non-cancelled
	// appointments ordered by start time.
	ListUpcomingForCustomer(ctx context.Context, customerID int64, now time.Time) ([]*models.Appointment, error)
	// ListDueReminders returns confirmed, not yet reminded appointments
	// starting within [from, to].
	ListDueReminders(ctx context.Context, from, to time.Time) ([]*models.Appointment, error)
	MarkReminderSent(ctx context.Context, id int64) error
}

// CustomerStore persists customers and their conversation scratch state.
type CustomerStore interface {
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	GetOrCreateByPhone(ctx context.Context, phone string) (*models.Customer, error)
	CreateCustomer(ctx context.Context, c *models.Customer) error
	// SaveConversation writes name, state and scratch fields back.
	SaveConversation(ctx context.Context, c *models.Customer) error
	ListCustomers(ctx context.Context) ([]*models.Customer, error)
}

// CatalogStore reads the services and staff reference data.
type CatalogStore interface {
	ListActiveServices(ctx context.Context) ([]*models.Service, error)
	GetService(ctx context.Context, id int64) (*models.Service, error)
	ListBookableStaff(ctx context.Context) ([]*models.StaffMember, error)
	GetStaff(ctx context.Context, id int64) (*models.StaffMember, error)
}

// WorkingHoursStore reads and updates the per-weekday schedule.
type WorkingHoursStore interface {
	// GetByDayOfWeek returns nil without error when no row exists for the day.
	GetByDayOfWeek(ctx context.Context, day int) (*models.WorkingHour, error)
	ListWorkingHours(ctx context.Context) ([]*models.WorkingHour, error)
	UpsertWorkingHour(ctx context.Context, wh *models.WorkingHour) error
}

// Notifier delivers a text to a phone number. Best effort: callers log
// failures and move on, they never roll back state because a send failed.
type Notifier interface {
	Send(ctx context.Context, phone, text string) error
}

// MessageGuard protects the inbound webhook from floods and retries.
type MessageGuard interface {
	// AllowMessage rate-limits by phone number.
	AllowMessage(ctx context.Context, phone string) (bool, error)
	// SeenMessage records the provider message id and reports whether it
	// was already processed.
	SeenMessage(ctx context.Context, messageID string) (bool, error)
}

// EventPublisher fans out appointment lifecycle events in-process.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SlotService computes bookable start times for a barber, service and
// business-local date.
type SlotService interface {
	AvailableSlots(ctx context.Context, staffID, serviceID int64, date time.Time) ([]string, error)
}

// AppointmentService validates and commits bookings. The conversational flow
// and the admin API both go through it so scheduling decisions stay identical.
type AppointmentService interface {
	Create(ctx context.Context, in CreateAppointmentInput) (*models.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, start, end time.Time, status string) (*models.Appointment, error)
	Cancel(ctx context.Context, id int64) (*models.Appointment, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Appointment, error)
	List(ctx context.Context) ([]*models.Appointment, error)
}

// CreateAppointmentInput carries one booking request. Either CustomerID or
// both NewCustomerName and NewCustomerPhone must be set.
type CreateAppointmentInput struct {
	StaffID          int64
	ServiceID        int64
	StartUTC         time.Time
	EndUTC           time.Time
	CustomerID       int64
	NewCustomerName  string
	NewCustomerPhone string
}
