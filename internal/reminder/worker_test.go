package reminder

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emryildiz/barberbot/internal/database"
	"github.com/emryildiz/barberbot/internal/events"
	"github.com/emryildiz/barberbot/internal/models"
	"github.com/emryildiz/barberbot/internal/timeutil"
)

// Monday 2026-03-02, 12:00 business-local.
var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type stubNotifier struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (n *stubNotifier) Send(ctx context.Context, phone, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, text)
	return nil
}

func (n *stubNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent...)
}

type fixture struct {
	db         *database.DB
	notifier   *stubNotifier
	worker     *Worker
	customerID int64
	staffID    int64
	serviceID  int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := zerolog.Nop()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	staff := &models.StaffMember{Username: "Ahmet", Role: models.RoleBarber, IsActive: true}
	require.NoError(t, db.CreateStaff(ctx, staff))
	svc := &models.Service{Name: "Saç Kesimi", Price: 150, DurationMinutes: 30, IsActive: true}
	require.NoError(t, db.CreateService(ctx, svc))
	customer := &models.Customer{PhoneNumber: "+905551112233", Name: "Ali"}
	require.NoError(t, db.CreateCustomer(ctx, customer))

	notifier := &stubNotifier{}
	worker := NewWorker(db, db, notifier, events.NewEventBus(),
		timeutil.FixedClock{T: testNow}, &logger)

	return &fixture{
		db: db, notifier: notifier, worker: worker,
		customerID: customer.ID, staffID: staff.ID, serviceID: svc.ID,
	}
}

func (f *fixture) book(t *testing.T, start time.Time, status string) *models.Appointment {
	t.Helper()
	ctx := context.Background()
	a := &models.Appointment{
		CustomerID: f.customerID, StaffID: f.staffID, ServiceID: f.serviceID,
		StartTime: start, EndTime: start.Add(30 * time.Minute), Status: models.StatusPending,
	}
	require.NoError(t, f.db.CreateAppointment(ctx, a))
	if status != models.StatusPending {
		require.NoError(t, f.db.UpdateAppointment(ctx, a.ID, a.StartTime, a.EndTime, status))
	}
	return a
}

func TestSweep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	due := f.book(t, testNow.Add(time.Hour), models.StatusConfirmed)
	f.book(t, testNow.Add(3*time.Hour), models.StatusConfirmed) // too far out
	f.book(t, testNow.Add(time.Hour), models.StatusPending)     // not confirmed

	f.worker.Sweep(ctx)

	messages := f.notifier.messages()
	require.Len(t, messages, 1)
	// Start is 10:00 UTC, 13:00 business-local.
	assert.Equal(t, "Hatırlatma: Randevunuz 1 saat sonra (13:00) başlayacaktır. Lütfen zamanında geliniz.", messages[0])

	got, err := f.db.GetAppointment(ctx, due.ID)
	require.NoError(t, err)
	assert.True(t, got.ReminderSent)
}

func TestSweepRemindsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.book(t, testNow.Add(time.Hour), models.StatusConfirmed)

	f.worker.Sweep(ctx)
	f.worker.Sweep(ctx)

	assert.Len(t, f.notifier.messages(), 1)
}

func TestSweepMarksSentOnDeliveryFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.book(t, testNow.Add(time.Hour), models.StatusConfirmed)
	f.notifier.err = errors.New("provider down")

	f.worker.Sweep(ctx)

	// Marked sent anyway so the next sweep does not retry forever.
	got, err := f.db.GetAppointment(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.ReminderSent)
	assert.Empty(t, f.notifier.messages())
}

func TestSweepPublishesEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	logger := zerolog.Nop()

	bus := events.NewEventBus()
	var fired int
	bus.Subscribe(events.EventReminderSent, func(e *events.Event) error {
		fired++
		return nil
	})

	worker := NewWorker(f.db, f.db, f.notifier, bus, timeutil.FixedClock{T: testNow}, &logger)
	f.book(t, testNow.Add(time.Hour), models.StatusConfirmed)

	worker.Sweep(ctx)
	assert.Equal(t, 1, fired)
}
