package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emryildiz/barberbot/internal/models"
)

func TestConcurrentBookingSingleWinner(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	staffID, serviceID := seedCatalog(t, db)

	customer := &models.Customer{PhoneNumber: "+905551112233"}
	require.NoError(t, db.CreateCustomer(ctx, customer))

	start := time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)

	const numGoroutines = 10
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	results := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			a := &models.Appointment{
				CustomerID: customer.ID,
				StaffID:    staffID,
				ServiceID:  serviceID,
				StartTime:  start,
				EndTime:    end,
				Status:     models.StatusPending,
			}
			results <- db.CreateAppointment(ctx, a)
		}()
	}

	wg.Wait()
	close(results)

	successCount := 0
	failCount := 0
	for err := range results {
		if err == nil {
			successCount++
		} else {
			failCount++
		}
	}

	assert.Equal(t, 1, successCount, "exactly one racing booking should win the slot")
	assert.Equal(t, numGoroutines-1, failCount, "all other bookings should fail")

	// Verify only one row actually committed.
	stored, err := db.FindOverlapping(ctx, staffID, start, end)
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	all, err := db.ListAppointments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
