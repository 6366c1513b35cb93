package export

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/emryildiz/barberbot/internal/database"
	"github.com/emryildiz/barberbot/internal/models"
)

func TestWriteReport(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	staff := &models.StaffMember{Username: "Ahmet", Role: models.RoleBarber, IsActive: true}
	require.NoError(t, db.CreateStaff(ctx, staff))

	svc := &models.Service{Name: "Saç Kesimi", Price: 150, DurationMinutes: 30, IsActive: true}
	require.NoError(t, db.CreateService(ctx, svc))

	customer := &models.Customer{PhoneNumber: "+905551112233", Name: "Ali Veli"}
	require.NoError(t, db.CreateCustomer(ctx, customer))

	// 10:30 business-local on March 3.
	start := time.Date(2026, 3, 3, 7, 30, 0, 0, time.UTC)
	appointment := &models.Appointment{
		CustomerID: customer.ID,
		StaffID:    staff.ID,
		ServiceID:  svc.ID,
		StartTime:  start,
		EndTime:    start.Add(30 * time.Minute),
		Status:     models.StatusConfirmed,
	}

	// A second row with dangling references renders dashes.
	orphan := &models.Appointment{
		CustomerID: 9999,
		StaffID:    9999,
		ServiceID:  9999,
		StartTime:  start.Add(time.Hour),
		EndTime:    start.Add(90 * time.Minute),
		Status:     models.StatusPending,
	}

	var buf bytes.Buffer
	exporter := NewExporter(db, db, &logger)
	require.NoError(t, exporter.WriteReport(ctx, &buf, []*models.Appointment{appointment, orphan}))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, headerRow, rows[0])
	assert.Equal(t, []string{"03.03.2026", "10:30", "Ali Veli", "+905551112233", "Ahmet", "Saç Kesimi", models.StatusConfirmed}, rows[1])
	assert.Equal(t, []string{"03.03.2026", "11:30", "-", "-", "-", "-", models.StatusPending}, rows[2])
}

func TestWriteReportEmpty(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var buf bytes.Buffer
	exporter := NewExporter(db, db, &logger)
	require.NoError(t, exporter.WriteReport(ctx, &buf, nil))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}
