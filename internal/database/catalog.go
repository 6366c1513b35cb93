package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emryildiz/barberbot/internal/models"
)

func (db *DB) ListActiveServices(ctx context.Context) ([]*models.Service, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, price, duration_minutes, is_active
         FROM services WHERE is_active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	var services []*models.Service
	for rows.Next() {
		var s models.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Price, &s.DurationMinutes, &s.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, &s)
	}
	return services, rows.Err()
}

func (db *DB) GetService(ctx context.Context, id int64) (*models.Service, error) {
	var s models.Service
	err := db.QueryRowContext(ctx,
		`SELECT id, name, price, duration_minutes, is_active FROM services WHERE id = ?`, id).
		Scan(&s.ID, &s.Name, &s.Price, &s.DurationMinutes, &s.IsActive)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &s, nil
}

func (db *DB) CreateService(ctx context.Context, s *models.Service) error {
	result, err := db.ExecContext(ctx,
		`INSERT INTO services (name, price, duration_minutes, is_active) VALUES (?, ?, ?, ?)`,
		s.Name, s.Price, s.DurationMinutes, s.IsActive)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	s.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	return nil
}

// ListBookableStaff returns active barbers and owners that are not on leave,
// in id order. The order matters: the conversation flow offers them as a
// numbered list.
func (db *DB) ListBookableStaff(ctx context.Context) ([]*models.StaffMember, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, username, role, is_active, is_on_leave
         FROM staff
         WHERE role IN (?, ?) AND is_active = 1 AND is_on_leave = 0
         ORDER BY id`,
		models.RoleBarber, models.RoleOwner)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	defer rows.Close()

	var staff []*models.StaffMember
	for rows.Next() {
		var s models.StaffMember
		if err := rows.Scan(&s.ID, &s.Username, &s.Role, &s.IsActive, &s.IsOnLeave); err != nil {
			return nil, fmt.Errorf("failed to scan staff: %w", err)
		}
		staff = append(staff, &s)
	}
	return staff, rows.Err()
}

func (db *DB) GetStaff(ctx context.Context, id int64) (*models.StaffMember, error) {
	var s models.StaffMember
	err := db.QueryRowContext(ctx,
		`SELECT id, username, role, is_active, is_on_leave FROM staff WHERE id = ?`, id).
		Scan(&s.ID, &s.Username, &s.Role, &s.IsActive, &s.IsOnLeave)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	return &s, nil
}

func (db *DB) CreateStaff(ctx context.Context, s *models.StaffMember) error {
	result, err := db.ExecContext(ctx,
		`INSERT INTO staff (username, role, is_active, is_on_leave) VALUES (?, ?, ?, ?)`,
		s.Username, s.Role, s.IsActive, s.IsOnLeave)
	if err != nil {
		return fmt.Errorf("failed to create staff: %w", err)
	}
	s.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	return nil
}
