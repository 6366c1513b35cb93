package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/emryildiz/barberbot/internal/models"
	"github.com/emryildiz/barberbot/internal/timeutil"
)

const customerColumns = `id, phone_number, name, state, selection_kind, selection_id, selected_staff_id, selected_date, created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (*models.Customer, error) {
	var c models.Customer
	var state string
	var selectionKind string
	var selectionID, staffID sql.NullInt64
	var selectedDate sql.NullString
	var created, updated string

	err := row.Scan(&c.ID, &c.PhoneNumber, &c.Name, &state,
		&selectionKind, &selectionID, &staffID, &selectedDate, &created, &updated)
	if err != nil {
		return nil, err
	}

	// An unknown stored state is surfaced as-is; the conversation layer
	// decides to reset it.
	c.State = models.ConversationState(state)

	c.Selection = models.Selection{Kind: models.SelectionKind(selectionKind)}
	if selectionID.Valid {
		c.Selection.ID = selectionID.Int64
	}
	if staffID.Valid {
		v := staffID.Int64
		c.StaffID = &v
	}
	if selectedDate.Valid && selectedDate.String != "" {
		t, err := parseTime(selectedDate.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse selected_date: %w", err)
		}
		local := timeutil.Midnight(t)
		c.Date = &local
	}
	if c.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if c.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &c, nil
}

func (db *DB) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
	c, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return c, nil
}

// GetOrCreateByPhone looks up a customer by phone number and creates a fresh
// "Guest" record when none exists yet.
func (db *DB) GetOrCreateByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE phone_number = ?`, phone)
	c, err := scanCustomer(row)
	if err == nil {
		return c, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get customer by phone: %w", err)
	}

	created := &models.Customer{
		PhoneNumber: phone,
		Name:        "Guest",
		State:       models.StateNone,
	}
	if err := db.CreateCustomer(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (db *DB) CreateCustomer(ctx context.Context, c *models.Customer) error {
	now := time.Now().UTC().Truncate(time.Second)
	if c.Name == "" {
		c.Name = "Guest"
	}
	if c.State == "" {
		c.State = models.StateNone
	}
	result, err := db.ExecContext(ctx,
		`INSERT INTO customers (phone_number, name, state, selection_kind, selection_id, selected_staff_id, selected_date, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.PhoneNumber, c.Name, string(c.State),
		string(c.Selection.Kind), nullableID(c.Selection.ID), nullableIDPtr(c.StaffID),
		nullableDate(c.Date), formatTime(now), formatTime(now))
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	c.ID = id
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

// SaveConversation writes the customer's name, dialogue state and scratch
// selections back in one statement.
func (db *DB) SaveConversation(ctx context.Context, c *models.Customer) error {
	result, err := db.ExecContext(ctx,
		`UPDATE customers SET name = ?, state = ?, selection_kind = ?, selection_id = ?,
                selected_staff_id = ?, selected_date = ?, updated_at = ?
         WHERE id = ?`,
		c.Name, string(c.State), string(c.Selection.Kind), nullableID(c.Selection.ID),
		nullableIDPtr(c.StaffID), nullableDate(c.Date), formatTime(time.Now()), c.ID)
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
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

func (db *DB) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func nullableIDPtr(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func nullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
