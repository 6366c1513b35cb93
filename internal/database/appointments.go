package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/emryildiz/barberbot/internal/models"
	"github.com/emryildiz/barberbot/internal/timeutil"
)

const appointmentColumns = `id, customer_id, staff_id, service_id, start_time, end_time, status, reminder_sent, created_at, updated_at`

func scanAppointment(row interface{ Scan(...any) error }) (*models.Appointment, error) {
	var a models.Appointment
	var start, end, created, updated string
	err := row.Scan(&a.ID, &a.CustomerID, &a.StaffID, &a.ServiceID,
		&start, &end, &a.Status, &a.ReminderSent, &created, &updated)
	if err != nil {
		return nil, err
	}
	if a.StartTime, err = parseTime(start); err != nil {
		return nil, fmt.Errorf("failed to parse start_time: %w", err)
	}
	if a.EndTime, err = parseTime(end); err != nil {
		return nil, fmt.Errorf("failed to parse end_time: %w", err)
	}
	if a.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if a.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &a, nil
}

func (db *DB) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = ?`, id)
	a, err := scanAppointment(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return a, nil
}

// CreateAppointment checks for an overlapping non-cancelled appointment of
// the same staff member and inserts the new row in a single transaction, so
// two concurrent booking attempts cannot both pass the overlap check.
func (db *DB) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var overlapping int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM appointments
         WHERE staff_id = ? AND start_time < ? AND end_time > ? AND status != ?`,
		a.StaffID, formatTime(a.EndTime), formatTime(a.StartTime), models.StatusCancelled,
	).Scan(&overlapping)
	if err != nil {
		return fmt.Errorf("failed to check overlap in tx: %w", err)
	}
	if overlapping > 0 {
		return ErrOverlappingAppointment
	}

	now := time.Now().UTC().Truncate(time.Second)
	result, err := tx.ExecContext(ctx,
		`INSERT INTO appointments (customer_id, staff_id, service_id, start_time, end_time, status, reminder_sent, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.CustomerID, a.StaffID, a.ServiceID,
		formatTime(a.StartTime), formatTime(a.EndTime),
		a.Status, a.ReminderSent, formatTime(now), formatTime(now))
	if err != nil {
		return fmt.Errorf("failed to insert appointment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit appointment: %w", err)
	}

	a.ID = id
	a.CreatedAt = now
	a.UpdatedAt = now
	return nil
}

func (db *DB) UpdateAppointment(ctx context.Context, id int64, start, end time.Time, status string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE appointments SET start_time = ?, end_time = ?, status = ?, updated_at = ? WHERE id = ?`,
		formatTime(start), formatTime(end), status, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) DeleteAppointment(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) ListAppointments(ctx context.Context) ([]*models.Appointment, error) {
	return db.queryAppointments(ctx,
		`SELECT `+appointmentColumns+` FROM appointments ORDER BY start_time`)
}

func (db *DB) ListSince(ctx context.Context, since time.Time) ([]*models.Appointment, error) {
	return db.queryAppointments(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE start_time >= ? ORDER BY start_time`,
		formatTime(since))
}

func (db *DB) FindOverlapping(ctx context.Context, staffID int64, start, end time.Time) ([]*models.Appointment, error) {
	return db.queryAppointments(ctx,
		`SELECT `+appointmentColumns+` FROM appointments
         WHERE staff_id = ? AND start_time < ? AND end_time > ? AND status != ?
         ORDER BY start_time`,
		staffID, formatTime(end), formatTime(start), models.StatusCancelled)
}

// ListForStaffOnBusinessDate matches appointments on the business-local date
// of their UTC start. localDate must be a business-local midnight; the UTC
// window [localDate, localDate+24h) covers exactly that local day.
func (db *DB) ListForStaffOnBusinessDate(ctx context.Context, staffID int64, localDate time.Time) ([]*models.Appointment, error) {
	dayStart := timeutil.Midnight(localDate)
	dayEnd := dayStart.AddDate(0, 0, 1)
	return db.queryAppointments(ctx,
		`SELECT `+appointmentColumns+` FROM appointments
         WHERE staff_id = ? AND start_time >= ? AND start_time < ? AND status != ?
         ORDER BY start_time`,
		staffID, formatTime(dayStart), formatTime(dayEnd), models.StatusCancelled)
}

func (db *DB) ListUpcomingForCustomer(ctx context.Context, customerID int64, now time.Time) ([]*models.Appointment, error) {
	return db.queryAppointments(ctx,
		`SELECT `+appointmentColumns+` FROM appointments
         WHERE customer_id = ? AND start_time > ? AND status != ?
         ORDER BY start_time`,
		customerID, formatTime(now), models.StatusCancelled)
}

func (db *DB) ListDueReminders(ctx context.Context, from, to time.Time) ([]*models.Appointment, error) {
	return db.queryAppointments(ctx,
		`SELECT `+appointmentColumns+` FROM appointments
         WHERE status = ? AND reminder_sent = 0 AND start_time >= ? AND start_time <= ?
         ORDER BY start_time`,
		models.StatusConfirmed, formatTime(from), formatTime(to))
}

func (db *DB) MarkReminderSent(ctx context.Context, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE appointments SET reminder_sent = 1, updated_at = ? WHERE id = ?`,
		formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return nil
}

func (db *DB) queryAppointments(ctx context.Context, query string, args ...any) ([]*models.Appointment, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()

	var appointments []*models.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}
