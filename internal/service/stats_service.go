package service

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/emryildiz/barberbot/internal/domain"
	"github.com/emryildiz/barberbot/internal/models"
	"github.com/emryildiz/barberbot/internal/timeutil"
)

// DashboardStats summarizes booking volume over a trailing window of
// business-local days. Cancelled appointments are excluded.
type DashboardStats struct {
	Days      int          `json:"days"`
	Total     int          `json:"total"`
	Pending   int          `json:"pending"`
	Confirmed int          `json:"confirmed"`
	Daily     []DailyCount `json:"daily"`
}

// DailyCount is one business-local day's booking count.
type DailyCount struct {
	Date  string `json:"date"` // "2006-01-02"
	Count int    `json:"count"`
}

// ServiceShare is one service's share of non-cancelled bookings.
type ServiceShare struct {
	ServiceID   int64   `json:"service_id"`
	ServiceName string  `json:"service_name"`
	Count       int     `json:"count"`
	Share       float64 `json:"share"`
}

// StatsService answers the admin dashboard queries.
type StatsService struct {
	appointments domain.AppointmentStore
	catalog      domain.CatalogStore
	clock        timeutil.Clock
	logger       *zerolog.Logger
}

func NewStatsService(appointments domain.AppointmentStore, catalog domain.CatalogStore,
	clock timeutil.Clock, logger *zerolog.Logger) *StatsService {
	return &StatsService{
		appointments: appointments,
		catalog:      catalog,
		clock:        clock,
		logger:       logger,
	}
}

// Dashboard counts non-cancelled appointments per business-local day over the
// trailing window, including days with zero bookings.
func (s *StatsService) Dashboard(ctx context.Context, days int) (*DashboardStats, error) {
	if days <= 0 {
		days = models.DefaultStatisticsDays
	}

	now := s.clock.Now()
	windowStart := timeutil.Midnight(now).AddDate(0, 0, -(days - 1))
	appointments, err := s.appointments.ListSince(ctx, windowStart.UTC())
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, days)
	stats := &DashboardStats{Days: days}
	for _, a := range appointments {
		if !a.Active() {
			continue
		}
		stats.Total++
		switch a.Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusConfirmed:
			stats.Confirmed++
		}
		counts[timeutil.ToBusiness(a.StartTime).Format("2006-01-02")]++
	}

	stats.Daily = make([]DailyCount, 0, days)
	for i := 0; i < days; i++ {
		day := windowStart.AddDate(0, 0, i).Format("2006-01-02")
		stats.Daily = append(stats.Daily, DailyCount{Date: day, Count: counts[day]})
	}
	return stats, nil
}

// ServiceBreakdown reports how non-cancelled bookings in the trailing window
// split across services. Shares sum to 1 when any bookings exist.
func (s *StatsService) ServiceBreakdown(ctx context.Context, days int) ([]ServiceShare, error) {
	if days <= 0 {
		days = models.DefaultStatisticsDays
	}

	now := s.clock.Now()
	windowStart := timeutil.Midnight(now).AddDate(0, 0, -(days - 1))
	appointments, err := s.appointments.ListSince(ctx, windowStart.UTC())
	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int)
	total := 0
	for _, a := range appointments {
		if !a.Active() {
			continue
		}
		counts[a.ServiceID]++
		total++
	}

	services, err := s.catalog.ListActiveServices(ctx)
	if err != nil {
		return nil, err
	}

	shares := make([]ServiceShare, 0, len(services))
	for _, svc := range services {
		count := counts[svc.ID]
		share := 0.0
		if total > 0 {
			share = float64(count) / float64(total)
		}
		shares = append(shares, ServiceShare{
			ServiceID:   svc.ID,
			ServiceName: svc.Name,
			Count:       count,
			Share:       share,
		})
		delete(counts, svc.ID)
	}

	// Bookings referencing since-deactivated services still count.
	for id, count := range counts {
		shares = append(shares, ServiceShare{
			ServiceID:   id,
			ServiceName: "(inactive)",
			Count:       count,
			Share:       float64(count) / float64(total),
		})
	}
	sort.Slice(shares, func(i, j int) bool { return shares[i].Count > shares[j].Count })
	return shares, nil
}
