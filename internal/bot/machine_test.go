package bot

import (
	"context"
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
	"github.com/emryildiz/barberbot/internal/service"
	"github.com/emryildiz/barberbot/internal/timeutil"
)

const testPhone = "whatsapp:+905551112233"

// testNow is Monday 2026-03-02, 12:00 business-local.
var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type captureNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *captureNotifier) Send(ctx context.Context, phone, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, text)
	return nil
}

func (n *captureNotifier) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return ""
	}
	return n.sent[len(n.sent)-1]
}

type testBot struct {
	machine  *Machine
	db       *database.DB
	notifier *captureNotifier
}

func newTestBot(t *testing.T) *testBot {
	t.Helper()
	ctx := context.Background()
	logger := zerolog.Nop()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.SeedDefaults(ctx))

	for _, name := range []string{"Ahmet", "Mehmet"} {
		require.NoError(t, db.CreateStaff(ctx, &models.StaffMember{
			Username: name, Role: models.RoleBarber, IsActive: true,
		}))
	}

	notifier := &captureNotifier{}
	clock := timeutil.FixedClock{T: testNow}
	slots := service.NewSlotService(db, db, db, clock, &logger)
	scheduler := service.NewAppointmentScheduler(db, db, db, db, notifier, events.NewEventBus(), &logger)
	machine := NewMachine(db, db, db, slots, scheduler, db, notifier, clock, &logger)

	return &testBot{machine: machine, db: db, notifier: notifier}
}

func (b *testBot) say(t *testing.T, text string) string {
	t.Helper()
	require.NoError(t, b.machine.HandleIncoming(context.Background(), testPhone, text))
	return b.notifier.last()
}

func (b *testBot) customer(t *testing.T) *models.Customer {
	t.Helper()
	c, err := b.db.GetOrCreateByPhone(context.Background(), "+905551112233")
	require.NoError(t, err)
	return c
}

// register walks a fresh contact through the name dialogue.
func (b *testBot) register(t *testing.T, name string) {
	t.Helper()
	b.say(t, "merhaba")
	b.say(t, name)
}

func TestMachine_NameDialogue(t *testing.T) {
	b := newTestBot(t)

	reply := b.say(t, "merhaba")
	assert.Equal(t, msgAskName, reply)
	assert.Equal(t, models.StateEnteringName, b.customer(t).State)

	reply = b.say(t, "Ali Veli")
	assert.Contains(t, reply, "Memnun oldum Ali Veli!")
	c := b.customer(t)
	assert.Equal(t, "Ali Veli", c.Name)
	assert.Equal(t, models.StateNone, c.State)
}

func TestMachine_HelpOnUnknownText(t *testing.T) {
	b := newTestBot(t)
	b.register(t, "Ali")

	reply := b.say(t, "nasılsın")
	assert.Contains(t, reply, "Merhaba Ali!")
	assert.Contains(t, reply, "'Randevu'")
}

func TestMachine_BookingFlow(t *testing.T) {
	b := newTestBot(t)
	b.register(t, "Ali")

	reply := b.say(t, "Randevu")
	assert.Contains(t, reply, "Hoş geldiniz Ali!")
	assert.Contains(t, reply, "1. Saç Kesimi (150 TL)")
	assert.Equal(t, models.StateSelectingService, b.customer(t).State)

	reply = b.say(t, "1")
	assert.Contains(t, reply, "Harika! Saç Kesimi seçtiniz.")
	assert.Contains(t, reply, "1. Ahmet")
	assert.Contains(t, reply, "2. Mehmet")

	reply = b.say(t, "2")
	assert.Contains(t, reply, "Mehmet seçildi.")
	assert.Equal(t, models.StateSelectingDate, b.customer(t).State)

	reply = b.say(t, "Yarın")
	assert.Contains(t, reply, "Tarih: 03.03.2026.")
	assert.Contains(t, reply, "09:00")
	assert.Equal(t, models.StateSelectingTime, b.customer(t).State)

	// Dot-separated clock input must work.
	reply = b.say(t, "14.30")
	assert.Contains(t, reply, "Randevu talebiniz alındı! 03.03.2026 14:30")

	c := b.customer(t)
	assert.Equal(t, models.StateNone, c.State)
	assert.Equal(t, models.SelectionNone, c.Selection.Kind)
	assert.Nil(t, c.StaffID)
	assert.Nil(t, c.Date)

	appointments, err := b.db.ListAppointments(context.Background())
	require.NoError(t, err)
	require.Len(t, appointments, 1)
	assert.Equal(t, models.StatusPending, appointments[0].Status)
	// 14:30 local is 11:30 UTC.
	assert.Equal(t, time.Date(2026, 3, 3, 11, 30, 0, 0, time.UTC), appointments[0].StartTime)
}

func TestMachine_InvalidMenuChoices(t *testing.T) {
	b := newTestBot(t)
	b.register(t, "Ali")
	b.say(t, "randevu")

	assert.Equal(t, msgInvalidService, b.say(t, "99"))
	assert.Equal(t, msgInvalidService, b.say(t, "abc"))
	assert.Equal(t, models.StateSelectingService, b.customer(t).State)

	b.say(t, "1")
	assert.Equal(t, msgInvalidBarber, b.say(t, "0"))
	assert.Equal(t, models.StateSelectingBarber, b.customer(t).State)
}

func TestMachine_DateSelection(t *testing.T) {
	b := newTestBot(t)
	b.register(t, "Ali")
	b.say(t, "randevu")
	b.say(t, "1")
	b.say(t, "1")

	t.Run("invalid format reprompts", func(t *testing.T) {
		assert.Equal(t, msgInvalidDate, b.say(t, "pazartesi"))
		assert.Equal(t, models.StateSelectingDate, b.customer(t).State)
	})

	t.Run("closed day keeps state and date unset", func(t *testing.T) {
		reply := b.say(t, "08.03.2026") // Sunday
		assert.Contains(t, reply, "işletmemiz kapalıdır")
		c := b.customer(t)
		assert.Equal(t, models.StateSelectingDate, c.State)
		assert.Nil(t, c.Date)
	})

	t.Run("today filters past slots", func(t *testing.T) {
		reply := b.say(t, "bugün")
		// 12:00 local now: the first offerable slot is 12:30.
		assert.Contains(t, reply, "12:30")
		assert.NotContains(t, reply, "12:00")
		assert.NotContains(t, reply, "09:00")
	})
}

func TestMachine_SlotTakenReprompts(t *testing.T) {
	b := newTestBot(t)
	b.register(t, "Ali")

	book := func(clock string) string {
		b.say(t, "randevu")
		b.say(t, "1")
		b.say(t, "1")
		b.say(t, "yarın")
		return b.say(t, clock)
	}

	reply := book("10:00")
	assert.Contains(t, reply, "Randevu talebiniz alındı!")

	// Same barber, same window, now from the menu again.
	b.say(t, "randevu")
	b.say(t, "1")
	b.say(t, "1")
	reply = b.say(t, "yarın")
	assert.NotContains(t, reply, "10:00\n")

	reply = b.say(t, "10:00")
	assert.Equal(t, msgSlotTaken, reply)
	assert.Equal(t, models.StateSelectingTime, b.customer(t).State)

	reply = b.say(t, "10:30")
	assert.Contains(t, reply, "Randevu talebiniz alındı!")
}

func TestMachine_OutsideHoursReprompts(t *testing.T) {
	b := newTestBot(t)
	b.register(t, "Ali")
	b.say(t, "randevu")
	b.say(t, "1")
	b.say(t, "1")
	b.say(t, "yarın")

	reply := b.say(t, "08:00")
	assert.Contains(t, reply, "çalışma saatlerimiz 09:00 - 21:00")
	assert.Equal(t, models.StateSelectingTime, b.customer(t).State)

	assert.Equal(t, msgInvalidTime, b.say(t, "sabah"))
}

func TestMachine_CancellationFlow(t *testing.T) {
	b := newTestBot(t)
	b.register(t, "Ali")

	t.Run("nothing to cancel", func(t *testing.T) {
		assert.Equal(t, msgNoCancellable, b.say(t, "iptal"))
		assert.Equal(t, models.StateNone, b.customer(t).State)
	})

	// Book 10:00 tomorrow.
	b.say(t, "randevu")
	b.say(t, "1")
	b.say(t, "1")
	b.say(t, "yarın")
	b.say(t, "10:00")

	t.Run("menu and confirmation", func(t *testing.T) {
		reply := b.say(t, "İptal")
		assert.Contains(t, reply, "1. 03.03.2026 10:00 - Saç Kesimi (Ahmet)")
		assert.Equal(t, models.StateSelectingCancellation, b.customer(t).State)

		assert.Equal(t, msgInvalidCancelIdx, b.say(t, "5"))

		reply = b.say(t, "1")
		assert.Contains(t, reply, "03.03.2026 10:00 tarihli randevunuzu iptal etmek")
		assert.Equal(t, models.StateConfirmingCancellation, b.customer(t).State)

		assert.Equal(t, msgYesOrNo, b.say(t, "belki"))

		assert.Equal(t, msgCancelled, b.say(t, "Evet"))
		c := b.customer(t)
		assert.Equal(t, models.StateNone, c.State)
		assert.Equal(t, models.SelectionNone, c.Selection.Kind)
	})

	t.Run("slot is free again", func(t *testing.T) {
		b.say(t, "randevu")
		b.say(t, "1")
		b.say(t, "1")
		reply := b.say(t, "yarın")
		assert.Contains(t, reply, "10:00")
	})
}

func TestMachine_CancellationAborted(t *testing.T) {
	b := newTestBot(t)
	b.register(t, "Ali")
	b.say(t, "randevu")
	b.say(t, "1")
	b.say(t, "1")
	b.say(t, "yarın")
	b.say(t, "10:00")

	b.say(t, "iptal")
	b.say(t, "1")
	assert.Equal(t, msgCancelAborted, b.say(t, "Hayır"))

	appointments, err := b.db.ListAppointments(context.Background())
	require.NoError(t, err)
	require.Len(t, appointments, 1)
	assert.Equal(t, models.StatusPending, appointments[0].Status)
}

func TestMachine_UnknownStateResets(t *testing.T) {
	b := newTestBot(t)
	b.register(t, "Ali")

	c := b.customer(t)
	c.State = "SomethingOld"
	require.NoError(t, b.db.SaveConversation(context.Background(), c))

	assert.Equal(t, msgReset, b.say(t, "merhaba"))
	assert.Equal(t, models.StateNone, b.customer(t).State)
}
