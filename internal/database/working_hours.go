package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emryildiz/barberbot/internal/models"
)

// GetByDayOfWeek returns the schedule row for a day (0=Sunday..6=Saturday),
// or nil without error when no row exists. A missing row means closed.
func (db *DB) GetByDayOfWeek(ctx context.Context, day int) (*models.WorkingHour, error) {
	var wh models.WorkingHour
	err := db.QueryRowContext(ctx,
		`SELECT day_of_week, is_closed, open_time, close_time FROM working_hours WHERE day_of_week = ?`, day).
		Scan(&wh.DayOfWeek, &wh.IsClosed, &wh.OpenTime, &wh.CloseTime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get working hour: %w", err)
	}
	return &wh, nil
}

func (db *DB) ListWorkingHours(ctx context.Context) ([]*models.WorkingHour, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT day_of_week, is_closed, open_time, close_time FROM working_hours ORDER BY day_of_week`)
	if err != nil {
		return nil, fmt.Errorf("failed to list working hours: %w", err)
	}
	defer rows.Close()

	var hours []*models.WorkingHour
	for rows.Next() {
		var wh models.WorkingHour
		if err := rows.Scan(&wh.DayOfWeek, &wh.IsClosed, &wh.OpenTime, &wh.CloseTime); err != nil {
			return nil, fmt.Errorf("failed to scan working hour: %w", err)
		}
		hours = append(hours, &wh)
	}
	return hours, rows.Err()
}

func (db *DB) UpsertWorkingHour(ctx context.Context, wh *models.WorkingHour) error {
	if wh.DayOfWeek < 0 || wh.DayOfWeek > 6 {
		return fmt.Errorf("day_of_week %d out of range", wh.DayOfWeek)
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO working_hours (day_of_week, is_closed, open_time, close_time)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(day_of_week) DO UPDATE SET
             is_closed = excluded.is_closed,
             open_time = excluded.open_time,
             close_time = excluded.close_time`,
		wh.DayOfWeek, wh.IsClosed, wh.OpenTime, wh.CloseTime)
	if err != nil {
		return fmt.Errorf("failed to upsert working hour: %w", err)
	}
	return nil
}
