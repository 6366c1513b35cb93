package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emryildiz/barberbot/internal/domain"
	"github.com/emryildiz/barberbot/internal/models"
	"github.com/emryildiz/barberbot/internal/service"
	"github.com/emryildiz/barberbot/internal/timeutil"
)

// handleIdle is the entry point of every dialogue: greet unknown customers,
// start a booking on "randevu", start a cancellation on "iptal".
func (m *Machine) handleIdle(ctx context.Context, customer *models.Customer, text string) error {
	if customer.Name == "Guest" {
		customer.State = models.StateEnteringName
		if err := m.customers.SaveConversation(ctx, customer); err != nil {
			return err
		}
		return m.send(ctx, customer.PhoneNumber, msgAskName)
	}

	switch {
	case isKeyword(text, "randevu"):
		services, err := m.catalog.ListActiveServices(ctx)
		if err != nil {
			return err
		}
		customer.State = models.StateSelectingService
		if err := m.customers.SaveConversation(ctx, customer); err != nil {
			return err
		}
		return m.send(ctx, customer.PhoneNumber, msgServiceMenu(customer.Name, services))

	case isKeyword(text, "iptal"):
		upcoming, err := m.appointments.ListUpcomingForCustomer(ctx, customer.ID, m.clock.Now())
		if err != nil {
			return err
		}
		if len(upcoming) == 0 {
			return m.send(ctx, customer.PhoneNumber, msgNoCancellable)
		}
		customer.State = models.StateSelectingCancellation
		if err := m.customers.SaveConversation(ctx, customer); err != nil {
			return err
		}
		return m.send(ctx, customer.PhoneNumber, msgCancelMenu(m.cancelMenuItems(ctx, upcoming)))

	default:
		return m.send(ctx, customer.PhoneNumber, msgHelp(customer.Name))
	}
}

func (m *Machine) handleNameEntry(ctx context.Context, customer *models.Customer, text string) error {
	if text == "" {
		return m.send(ctx, customer.PhoneNumber, msgInvalidName)
	}
	customer.Name = text
	customer.State = models.StateNone
	if err := m.customers.SaveConversation(ctx, customer); err != nil {
		return err
	}
	return m.send(ctx, customer.PhoneNumber, msgNameSaved(customer.Name))
}

func (m *Machine) handleServiceSelection(ctx context.Context, customer *models.Customer, text string) error {
	idx, ok := parseIndex(text)
	if !ok {
		return m.send(ctx, customer.PhoneNumber, msgInvalidService)
	}
	services, err := m.catalog.ListActiveServices(ctx)
	if err != nil {
		return err
	}
	if idx > len(services) {
		return m.send(ctx, customer.PhoneNumber, msgInvalidService)
	}
	picked := services[idx-1]

	barbers, err := m.catalog.ListBookableStaff(ctx)
	if err != nil {
		return err
	}

	customer.Selection = models.Selection{Kind: models.SelectionService, ID: picked.ID}
	customer.State = models.StateSelectingBarber
	if err := m.customers.SaveConversation(ctx, customer); err != nil {
		return err
	}
	return m.send(ctx, customer.PhoneNumber, msgBarberMenu(picked.Name, barbers))
}

func (m *Machine) handleBarberSelection(ctx context.Context, customer *models.Customer, text string) error {
	idx, ok := parseIndex(text)
	if !ok {
		return m.send(ctx, customer.PhoneNumber, msgInvalidBarber)
	}
	barbers, err := m.catalog.ListBookableStaff(ctx)
	if err != nil {
		return err
	}
	if idx > len(barbers) {
		return m.send(ctx, customer.PhoneNumber, msgInvalidBarber)
	}
	picked := barbers[idx-1]

	customer.StaffID = &picked.ID
	customer.State = models.StateSelectingDate
	if err := m.customers.SaveConversation(ctx, customer); err != nil {
		return err
	}
	return m.send(ctx, customer.PhoneNumber, msgAskDate(picked.Username))
}

// handleDateSelection shows the free slots of the chosen day. On a closed day
// or a fully booked day the date is not persisted and the customer stays in
// this state to pick another one.
func (m *Machine) handleDateSelection(ctx context.Context, customer *models.Customer, text string) error {
	if customer.StaffID == nil || customer.Selection.Kind != models.SelectionService {
		return m.resetState(ctx, customer, msgReset)
	}

	now := m.clock.Now()
	date, ok := parseDate(text, now)
	if !ok {
		return m.send(ctx, customer.PhoneNumber, msgInvalidDate)
	}

	slots, err := m.slots.AvailableSlots(ctx, *customer.StaffID, customer.Selection.ServiceID(), date)
	if err != nil {
		if errors.Is(err, service.ErrClosed) {
			return m.send(ctx, customer.PhoneNumber, msgClosedDate(date, now))
		}
		return err
	}
	if len(slots) == 0 {
		return m.send(ctx, customer.PhoneNumber, msgNoSlots)
	}

	customer.Date = &date
	customer.State = models.StateSelectingTime
	if err := m.customers.SaveConversation(ctx, customer); err != nil {
		return err
	}
	return m.send(ctx, customer.PhoneNumber, msgSlotMenu(date, slots))
}

// handleTimeSelection books the appointment through the scheduler, which owns
// the working-hour and overlap rules, and maps its errors to reprompts.
func (m *Machine) handleTimeSelection(ctx context.Context, customer *models.Customer, text string) error {
	if customer.StaffID == nil || customer.Date == nil || customer.Selection.Kind != models.SelectionService {
		return m.resetState(ctx, customer, msgReset)
	}

	tod, ok := parseClock(text)
	if !ok {
		return m.send(ctx, customer.PhoneNumber, msgInvalidTime)
	}

	svc, err := m.catalog.GetService(ctx, customer.Selection.ServiceID())
	if err != nil {
		return m.resetState(ctx, customer, msgReset)
	}

	start := timeutil.At(*customer.Date, tod)
	end := start.Add(time.Duration(svc.DurationMinutes) * time.Minute)

	_, err = m.scheduler.Create(ctx, domain.CreateAppointmentInput{
		StaffID:    *customer.StaffID,
		ServiceID:  svc.ID,
		StartUTC:   start.UTC(),
		EndUTC:     end.UTC(),
		CustomerID: customer.ID,
	})
	switch {
	case err == nil:
	case errors.Is(err, service.ErrClosed):
		return m.send(ctx, customer.PhoneNumber, msgClosedForTime)
	case errors.Is(err, service.ErrOutsideHours):
		open, close := m.hoursFor(ctx, start)
		return m.send(ctx, customer.PhoneNumber, msgOutsideHours(open, close))
	case errors.Is(err, service.ErrOverlap):
		return m.send(ctx, customer.PhoneNumber, msgSlotTaken)
	case errors.Is(err, service.ErrNotFound):
		return m.resetState(ctx, customer, msgReset)
	default:
		return err
	}

	customer.ClearScratch()
	if err := m.customers.SaveConversation(ctx, customer); err != nil {
		return err
	}
	return m.send(ctx, customer.PhoneNumber, msgBooked(start))
}

func (m *Machine) handleCancellationSelection(ctx context.Context, customer *models.Customer, text string) error {
	idx, ok := parseIndex(text)
	if !ok {
		return m.send(ctx, customer.PhoneNumber, msgInvalidCancelIdx)
	}
	upcoming, err := m.appointments.ListUpcomingForCustomer(ctx, customer.ID, m.clock.Now())
	if err != nil {
		return err
	}
	if idx > len(upcoming) {
		return m.send(ctx, customer.PhoneNumber, msgInvalidCancelIdx)
	}
	picked := upcoming[idx-1]

	customer.Selection = models.Selection{Kind: models.SelectionAppointment, ID: picked.ID}
	customer.State = models.StateConfirmingCancellation
	if err := m.customers.SaveConversation(ctx, customer); err != nil {
		return err
	}
	return m.send(ctx, customer.PhoneNumber, msgConfirmCancel(picked.StartTime))
}

func (m *Machine) handleCancellationConfirmation(ctx context.Context, customer *models.Customer, text string) error {
	switch {
	case isKeyword(text, "evet"):
		if customer.Selection.Kind == models.SelectionAppointment {
			_, err := m.scheduler.Cancel(ctx, customer.Selection.AppointmentID())
			if err != nil {
				if errors.Is(err, service.ErrNotFound) {
					return m.resetState(ctx, customer, msgNotFound)
				}
				return err
			}
			return m.resetState(ctx, customer, msgCancelled)
		}
	case isKeyword(text, "hayır"), isKeyword(text, "vazgeç"):
		return m.resetState(ctx, customer, msgCancelAborted)
	}
	return m.send(ctx, customer.PhoneNumber, msgYesOrNo)
}

// cancelMenuItems renders "N. 02.01.2006 15:04 - service (barber)" lines.
// Lookup failures degrade to a dash rather than failing the whole menu.
func (m *Machine) cancelMenuItems(ctx context.Context, upcoming []*models.Appointment) []string {
	items := make([]string, 0, len(upcoming))
	for i, a := range upcoming {
		serviceName := "-"
		if svc, err := m.catalog.GetService(ctx, a.ServiceID); err == nil {
			serviceName = svc.Name
		}
		barberName := "-"
		if staff, err := m.catalog.GetStaff(ctx, a.StaffID); err == nil {
			barberName = staff.Username
		}
		items = append(items, fmt.Sprintf("%d. %s - %s (%s)",
			i+1, timeutil.ToBusiness(a.StartTime).Format(localDateTimeLayout), serviceName, barberName))
	}
	return items
}

// hoursFor resolves the open/close strings of the instant's business-local
// day for the outside-hours message.
func (m *Machine) hoursFor(ctx context.Context, t time.Time) (string, string) {
	wh, err := m.hours.GetByDayOfWeek(ctx, timeutil.BusinessWeekday(t))
	if err != nil || wh == nil {
		return models.DefaultOpenTime, models.DefaultCloseTime
	}
	return wh.OpenTime, wh.CloseTime
}
