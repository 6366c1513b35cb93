package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/emryildiz/barberbot/internal/database"
	"github.com/emryildiz/barberbot/internal/domain"
	"github.com/emryildiz/barberbot/internal/events"
	"github.com/emryildiz/barberbot/internal/metrics"
	"github.com/emryildiz/barberbot/internal/models"
	"github.com/emryildiz/barberbot/internal/timeutil"
)

// AppointmentScheduler is the single booking path. The conversational flow
// and the admin API both call Create, so working-hour and overlap decisions
// cannot drift between the two surfaces.
type AppointmentScheduler struct {
	appointments domain.AppointmentStore
	customers    domain.CustomerStore
	catalog      domain.CatalogStore
	hours        domain.WorkingHoursStore
	notifier     domain.Notifier
	publisher    domain.EventPublisher
	logger       *zerolog.Logger
}

func NewAppointmentScheduler(
	appointments domain.AppointmentStore,
	customers domain.CustomerStore,
	catalog domain.CatalogStore,
	hours domain.WorkingHoursStore,
	notifier domain.Notifier,
	publisher domain.EventPublisher,
	logger *zerolog.Logger,
) *AppointmentScheduler {
	return &AppointmentScheduler{
		appointments: appointments,
		customers:    customers,
		catalog:      catalog,
		hours:        hours,
		notifier:     notifier,
		publisher:    publisher,
		logger:       logger,
	}
}

// Create validates the booking against the catalog, the working hours of the
// business-local day and existing bookings, then inserts it as Pending. The
// store re-checks the overlap inside its insert transaction, so the pre-check
// here only exists to classify the error before touching the customer row.
func (s *AppointmentScheduler) Create(ctx context.Context, in domain.CreateAppointmentInput) (*models.Appointment, error) {
	if !in.EndUTC.After(in.StartUTC) {
		return nil, fmt.Errorf("%w: end must be after start", ErrInvalidInput)
	}

	if _, err := s.catalog.GetStaff(ctx, in.StaffID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: staff %d", ErrNotFound, in.StaffID)
		}
		return nil, err
	}
	if _, err := s.catalog.GetService(ctx, in.ServiceID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: service %d", ErrNotFound, in.ServiceID)
		}
		return nil, err
	}

	if err := s.checkWithinHours(ctx, in.StartUTC, in.EndUTC); err != nil {
		return nil, err
	}

	overlapping, err := s.appointments.FindOverlapping(ctx, in.StaffID, in.StartUTC, in.EndUTC)
	if err != nil {
		return nil, err
	}
	if len(overlapping) > 0 {
		return nil, ErrOverlap
	}

	customerID, err := s.resolveCustomer(ctx, in)
	if err != nil {
		return nil, err
	}

	appointment := &models.Appointment{
		CustomerID: customerID,
		StaffID:    in.StaffID,
		ServiceID:  in.ServiceID,
		StartTime:  in.StartUTC.UTC(),
		EndTime:    in.EndUTC.UTC(),
		Status:     models.StatusPending,
	}
	if err := s.appointments.CreateAppointment(ctx, appointment); err != nil {
		if errors.Is(err, database.ErrOverlappingAppointment) {
			return nil, ErrOverlap
		}
		return nil, err
	}

	metrics.IncAppointment("created")
	s.publish(events.EventAppointmentCreated, appointment)
	s.logger.Info().
		Int64("appointment_id", appointment.ID).
		Int64("staff_id", appointment.StaffID).
		Time("start", appointment.StartTime).
		Msg("appointment created")
	return appointment, nil
}

// checkWithinHours verifies [start, end] against the working hours of the
// start's business-local day.
func (s *AppointmentScheduler) checkWithinHours(ctx context.Context, start, end time.Time) error {
	wh, err := s.hours.GetByDayOfWeek(ctx, timeutil.BusinessWeekday(start))
	if err != nil {
		return err
	}
	if wh == nil || wh.IsClosed {
		return ErrClosed
	}
	open, close := parseHoursOrDefault(wh, s.logger)
	if timeutil.TimeOfDayOf(start) < open || timeutil.TimeOfDayOf(end) > close {
		return ErrOutsideHours
	}
	return nil
}

func (s *AppointmentScheduler) resolveCustomer(ctx context.Context, in domain.CreateAppointmentInput) (int64, error) {
	if in.CustomerID != 0 {
		c, err := s.customers.GetCustomer(ctx, in.CustomerID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return 0, fmt.Errorf("%w: customer %d", ErrNotFound, in.CustomerID)
			}
			return 0, err
		}
		return c.ID, nil
	}
	if in.NewCustomerName == "" || in.NewCustomerPhone == "" {
		return 0, ErrMissingCustomer
	}
	c := &models.Customer{
		PhoneNumber: in.NewCustomerPhone,
		Name:        in.NewCustomerName,
		State:       models.StateNone,
	}
	if err := s.customers.CreateCustomer(ctx, c); err != nil {
		return 0, err
	}
	return c.ID, nil
}

// UpdateStatus rewrites an appointment's interval and status as given,
// without re-running the hour and overlap validation. It is the admin
// override path; the operator may deliberately move a booking outside the
// normal rules. A transition into Confirmed notifies the customer.
func (s *AppointmentScheduler) UpdateStatus(ctx context.Context, id int64, start, end time.Time, status string) (*models.Appointment, error) {
	existing, err := s.appointments.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	confirmed := status == models.StatusConfirmed && existing.Status != models.StatusConfirmed
	cancelled := status == models.StatusCancelled && existing.Status != models.StatusCancelled

	if err := s.appointments.UpdateAppointment(ctx, id, start.UTC(), end.UTC(), status); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	updated, err := s.appointments.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case confirmed:
		metrics.IncAppointment("confirmed")
		s.publish(events.EventAppointmentConfirmed, updated)
		s.notifyConfirmed(ctx, updated)
	case cancelled:
		metrics.IncAppointment("cancelled")
		s.publish(events.EventAppointmentCancelled, updated)
	}

	s.logger.Info().
		Int64("appointment_id", id).
		Str("status", status).
		Msg("appointment updated")
	return updated, nil
}

// Cancel keeps the interval and flips the status to Cancelled. The row stays
// for reporting; Delete is the destructive variant.
func (s *AppointmentScheduler) Cancel(ctx context.Context, id int64) (*models.Appointment, error) {
	existing, err := s.appointments.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.UpdateStatus(ctx, id, existing.StartTime, existing.EndTime, models.StatusCancelled)
}

func (s *AppointmentScheduler) Delete(ctx context.Context, id int64) error {
	existing, err := s.appointments.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.appointments.DeleteAppointment(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	metrics.IncAppointment("deleted")
	s.publish(events.EventAppointmentDeleted, existing)
	s.logger.Info().Int64("appointment_id", id).Msg("appointment deleted")
	return nil
}

func (s *AppointmentScheduler) Get(ctx context.Context, id int64) (*models.Appointment, error) {
	a, err := s.appointments.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *AppointmentScheduler) List(ctx context.Context) ([]*models.Appointment, error) {
	return s.appointments.ListAppointments(ctx)
}

// notifyConfirmed is best effort; a failed send never rolls back the status.
func (s *AppointmentScheduler) notifyConfirmed(ctx context.Context, a *models.Appointment) {
	customer, err := s.customers.GetCustomer(ctx, a.CustomerID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("customer_id", a.CustomerID).
			Msg("confirmation notify skipped, customer lookup failed")
		return
	}
	local := timeutil.ToBusiness(a.StartTime)
	text := fmt.Sprintf("Randevunuz onaylandı! %s tarihinde bekliyoruz.", local.Format("02.01.2006 15:04"))
	if err := s.notifier.Send(ctx, customer.PhoneNumber, text); err != nil {
		s.logger.Warn().Err(err).Str("phone", customer.PhoneNumber).
			Msg("confirmation notify failed")
	}
}

func (s *AppointmentScheduler) publish(eventType string, a *models.Appointment) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishJSON(eventType, events.AppointmentEventPayload{
		AppointmentID: a.ID,
		CustomerID:    a.CustomerID,
		StaffID:       a.StaffID,
		ServiceID:     a.ServiceID,
		StartTime:     a.StartTime,
		EndTime:       a.EndTime,
		Status:        a.Status,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("event publish failed")
	}
}
