// Package reminder runs the background loop that pings customers an hour
// before their confirmed appointment.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/emryildiz/barberbot/internal/domain"
	"github.com/emryildiz/barberbot/internal/events"
	"github.com/emryildiz/barberbot/internal/metrics"
	"github.com/emryildiz/barberbot/internal/models"
	"github.com/emryildiz/barberbot/internal/timeutil"
)

const pollInterval = time.Minute

// Worker polls for confirmed appointments starting in about an hour and
// sends each customer a single reminder.
type Worker struct {
	appointments domain.AppointmentStore
	customers    domain.CustomerStore
	notifier     domain.Notifier
	publisher    domain.EventPublisher
	clock        timeutil.Clock
	logger       *zerolog.Logger
}

func NewWorker(
	appointments domain.AppointmentStore,
	customers domain.CustomerStore,
	notifier domain.Notifier,
	publisher domain.EventPublisher,
	clock timeutil.Clock,
	logger *zerolog.Logger,
) *Worker {
	return &Worker{
		appointments: appointments,
		customers:    customers,
		notifier:     notifier,
		publisher:    publisher,
		clock:        clock,
		logger:       logger,
	}
}

// Run blocks until the context is cancelled, sweeping once per minute.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info().Msg("reminder worker started")
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("reminder worker stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep sends reminders for appointments starting within the tolerance
// window around one hour from now. The reminder is marked sent even when the
// delivery fails: a broken provider must not retry every minute and flood
// the customer once it recovers.
func (w *Worker) Sweep(ctx context.Context) {
	now := w.clock.Now()
	target := now.Add(models.ReminderLookaheadMinutes * time.Minute)
	from := target.Add(-models.ReminderToleranceMinutes * time.Minute)
	to := target.Add(models.ReminderToleranceMinutes * time.Minute)

	due, err := w.appointments.ListDueReminders(ctx, from, to)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to list due reminders")
		return
	}

	for _, a := range due {
		w.remind(ctx, a)
	}
}

func (w *Worker) remind(ctx context.Context, a *models.Appointment) {
	customer, err := w.customers.GetCustomer(ctx, a.CustomerID)
	if err != nil {
		w.logger.Error().Err(err).
			Int64("appointment_id", a.ID).
			Int64("customer_id", a.CustomerID).
			Msg("reminder skipped, customer lookup failed")
		return
	}

	local := timeutil.ToBusiness(a.StartTime)
	text := fmt.Sprintf("Hatırlatma: Randevunuz 1 saat sonra (%s) başlayacaktır. Lütfen zamanında geliniz.",
		local.Format("15:04"))

	if err := w.notifier.Send(ctx, customer.PhoneNumber, text); err != nil {
		w.logger.Error().Err(err).
			Int64("appointment_id", a.ID).
			Str("phone", customer.PhoneNumber).
			Msg("reminder send failed")
	} else {
		metrics.IncReminder()
	}

	if err := w.appointments.MarkReminderSent(ctx, a.ID); err != nil {
		w.logger.Error().Err(err).Int64("appointment_id", a.ID).Msg("failed to mark reminder sent")
		return
	}

	if w.publisher != nil {
		_ = w.publisher.PublishJSON(events.EventReminderSent, events.AppointmentEventPayload{
			AppointmentID: a.ID,
			CustomerID:    a.CustomerID,
			StaffID:       a.StaffID,
			ServiceID:     a.ServiceID,
			StartTime:     a.StartTime,
			EndTime:       a.EndTime,
			Status:        a.Status,
		})
	}

	w.logger.Info().
		Int64("appointment_id", a.ID).
		Time("start", a.StartTime).
		Msg("reminder processed")
}
