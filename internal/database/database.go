package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/emryildiz/barberbot/internal/models"
)

// sqliteTimeLayout stores UTC instants at second precision. Fixed width, so
// lexicographic comparison in SQL matches chronological order.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// DB wraps the sqlite connection and implements the domain store interfaces.
type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return &DB{DB: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS customers (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            phone_number TEXT UNIQUE NOT NULL,
            name TEXT NOT NULL DEFAULT 'Guest',
            state TEXT NOT NULL DEFAULT 'None',
            selection_kind TEXT NOT NULL DEFAULT '',
            selection_id INTEGER,
            selected_staff_id INTEGER,
            selected_date TEXT,
            created_at TEXT NOT NULL,
            updated_at TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS staff (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT UNIQUE NOT NULL,
            role TEXT NOT NULL DEFAULT 'Barber',
            is_active INTEGER NOT NULL DEFAULT 1,
            is_on_leave INTEGER NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS services (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            price REAL NOT NULL DEFAULT 0,
            duration_minutes INTEGER NOT NULL DEFAULT 30,
            is_active INTEGER NOT NULL DEFAULT 1
        )`,
		`CREATE TABLE IF NOT EXISTS working_hours (
            day_of_week INTEGER PRIMARY KEY,
            is_closed INTEGER NOT NULL DEFAULT 0,
            open_time TEXT NOT NULL DEFAULT '09:00',
            close_time TEXT NOT NULL DEFAULT '21:00'
        )`,
		`CREATE TABLE IF NOT EXISTS appointments (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            customer_id INTEGER NOT NULL REFERENCES customers(id),
            staff_id INTEGER NOT NULL REFERENCES staff(id),
            service_id INTEGER NOT NULL REFERENCES services(id),
            start_time TEXT NOT NULL,
            end_time TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'Pending',
            reminder_sent INTEGER NOT NULL DEFAULT 0,
            created_at TEXT NOT NULL,
            updated_at TEXT NOT NULL
        )`,

		`CREATE INDEX IF NOT EXISTS idx_appointments_staff_start ON appointments(staff_id, start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_customer ON appointments(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_status ON appointments(status)`,
		`CREATE INDEX IF NOT EXISTS idx_customers_phone ON customers(phone_number)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// SeedDefaults inserts the default schedule and service catalog into an empty
// database: open 09:00-21:00 every day except Sunday, three basic services.
func (db *DB) SeedDefaults(ctx context.Context) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM working_hours`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count working hours: %w", err)
	}
	if count == 0 {
		for day := 0; day < 7; day++ {
			wh := &models.WorkingHour{
				DayOfWeek: day,
				IsClosed:  day == 0, // Sunday
				OpenTime:  models.DefaultOpenTime,
				CloseTime: models.DefaultCloseTime,
			}
			if err := db.UpsertWorkingHour(ctx, wh); err != nil {
				return err
			}
		}
	}

	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM services`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count services: %w", err)
	}
	if count == 0 {
		seed := []struct {
			name     string
			price    float64
			duration int
		}{
			{"Saç Kesimi", 150, 30},
			{"Sakal Kesimi", 100, 15},
			{"Saç + Sakal", 220, 45},
		}
		for _, s := range seed {
			_, err := db.ExecContext(ctx,
				`INSERT INTO services (name, price, duration_minutes, is_active) VALUES (?, ?, ?, 1)`,
				s.name, s.price, s.duration)
			if err != nil {
				return fmt.Errorf("failed to seed service %s: %w", s.name, err)
			}
		}
	}

	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(sqliteTimeLayout, s, time.UTC)
}
