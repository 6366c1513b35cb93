package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/emryildiz/barberbot/internal/domain"
	"github.com/emryildiz/barberbot/internal/metrics"
	"github.com/emryildiz/barberbot/internal/models"
	"github.com/emryildiz/barberbot/internal/timeutil"
)

// SlotService computes the bookable start times of a staff member for one
// business-local date. Candidates advance on a fixed grid regardless of the
// service duration; a longer service only removes candidates whose end would
// run past closing.
type SlotService struct {
	appointments domain.AppointmentStore
	catalog      domain.CatalogStore
	hours        domain.WorkingHoursStore
	clock        timeutil.Clock
	logger       *zerolog.Logger
}

func NewSlotService(appointments domain.AppointmentStore, catalog domain.CatalogStore,
	hours domain.WorkingHoursStore, clock timeutil.Clock, logger *zerolog.Logger) *SlotService {
	return &SlotService{
		appointments: appointments,
		catalog:      catalog,
		hours:        hours,
		clock:        clock,
		logger:       logger,
	}
}

// busyInterval is a booked [start, end) window in business-local wall clock.
type busyInterval struct {
	start timeutil.TimeOfDay
	end   timeutil.TimeOfDay
}

// AvailableSlots returns "HH:MM" start times for the given staff member,
// service and business-local date. It returns ErrClosed when the shop does
// not open that day and an empty slice when the day is open but fully booked.
func (s *SlotService) AvailableSlots(ctx context.Context, staffID, serviceID int64, date time.Time) ([]string, error) {
	metrics.IncSlotQuery()

	wh, err := s.hours.GetByDayOfWeek(ctx, timeutil.BusinessWeekday(date))
	if err != nil {
		return nil, err
	}
	if wh == nil || wh.IsClosed {
		return nil, ErrClosed
	}
	open, close := parseHoursOrDefault(wh, s.logger)

	duration := models.DefaultServiceDurationMinutes
	if svc, err := s.catalog.GetService(ctx, serviceID); err == nil {
		duration = svc.DurationMinutes
	} else {
		s.logger.Warn().Err(err).Int64("service_id", serviceID).
			Msg("service lookup failed, using default duration")
	}

	booked, err := s.appointments.ListForStaffOnBusinessDate(ctx, staffID, date)
	if err != nil {
		return nil, err
	}
	busy := make([]busyInterval, 0, len(booked))
	for _, a := range booked {
		busy = append(busy, busyInterval{
			start: timeutil.TimeOfDayOf(a.StartTime),
			end:   timeutil.TimeOfDayOf(a.EndTime),
		})
	}

	now := s.clock.Now()
	isToday := timeutil.SameBusinessDate(now, timeutil.Midnight(date))
	return computeSlots(open, close, duration, busy, isToday, timeutil.TimeOfDayOf(now)), nil
}

// parseHoursOrDefault falls back to the default schedule when a stored time
// string does not parse, rather than failing the whole query.
func parseHoursOrDefault(wh *models.WorkingHour, logger *zerolog.Logger) (open, close timeutil.TimeOfDay) {
	open, err := timeutil.ParseTimeOfDay(wh.OpenTime)
	if err != nil {
		logger.Warn().Str("open_time", wh.OpenTime).Int("day", wh.DayOfWeek).
			Msg("unparseable open time, using default")
		open, _ = timeutil.ParseTimeOfDay(models.DefaultOpenTime)
	}
	close, err = timeutil.ParseTimeOfDay(wh.CloseTime)
	if err != nil {
		logger.Warn().Str("close_time", wh.CloseTime).Int("day", wh.DayOfWeek).
			Msg("unparseable close time, using default")
		close, _ = timeutil.ParseTimeOfDay(models.DefaultCloseTime)
	}
	return open, close
}

// computeSlots walks the candidate grid from open to close. A candidate is
// dropped when it is in the past for today (with the lead buffer), when the
// service would end after closing, or when it overlaps a booked interval
// (half-open comparison).
func computeSlots(open, close timeutil.TimeOfDay, durationMinutes int,
	busy []busyInterval, isToday bool, nowTOD timeutil.TimeOfDay) []string {

	slots := []string{}
	for cur := open; cur < close; cur = cur.Add(models.SlotStepMinutes) {
		if isToday && cur <= nowTOD.Add(models.LeadBufferMinutes) {
			continue
		}
		end := cur.Add(durationMinutes)
		if end > close {
			continue
		}
		taken := false
		for _, b := range busy {
			if cur < b.end && end > b.start {
				taken = true
				break
			}
		}
		if taken {
			continue
		}
		slots = append(slots, cur.String())
	}
	return slots
}
