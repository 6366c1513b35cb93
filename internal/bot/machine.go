package bot

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/emryildiz/barberbot/internal/domain"
	"github.com/emryildiz/barberbot/internal/metrics"
	"github.com/emryildiz/barberbot/internal/models"
	"github.com/emryildiz/barberbot/internal/timeutil"
)

// Machine drives the WhatsApp conversation. Each inbound message is handled
// against the customer's persisted state, so the dialogue survives restarts
// and scales across processes.
//
// State is persisted before the outbound reply goes out: a crash between the
// two leaves the customer one reply short, never in a stale state that
// contradicts what they were just told.
type Machine struct {
	customers    domain.CustomerStore
	catalog      domain.CatalogStore
	appointments domain.AppointmentStore
	slots        domain.SlotService
	scheduler    domain.AppointmentService
	hours        domain.WorkingHoursStore
	notifier     domain.Notifier
	clock        timeutil.Clock
	logger       *zerolog.Logger
}

func NewMachine(
	customers domain.CustomerStore,
	catalog domain.CatalogStore,
	appointments domain.AppointmentStore,
	slots domain.SlotService,
	scheduler domain.AppointmentService,
	hours domain.WorkingHoursStore,
	notifier domain.Notifier,
	clock timeutil.Clock,
	logger *zerolog.Logger,
) *Machine {
	return &Machine{
		customers:    customers,
		catalog:      catalog,
		appointments: appointments,
		slots:        slots,
		scheduler:    scheduler,
		hours:        hours,
		notifier:     notifier,
		clock:        clock,
		logger:       logger,
	}
}

// HandleIncoming processes one inbound WhatsApp message. The sender address
// may carry the provider's "whatsapp:" prefix.
func (m *Machine) HandleIncoming(ctx context.Context, from, body string) error {
	phone := strings.TrimPrefix(from, "whatsapp:")

	customer, err := m.customers.GetOrCreateByPhone(ctx, phone)
	if err != nil {
		return err
	}

	text := strings.TrimSpace(body)
	m.logger.Debug().
		Str("phone", phone).
		Str("state", string(customer.State)).
		Msg("handling inbound message")

	state, ok := models.ParseConversationState(string(customer.State))
	if !ok {
		// Unknown stored state, e.g. left over from an older build.
		return m.resetState(ctx, customer, msgReset)
	}

	switch state {
	case models.StateEnteringName:
		return m.handleNameEntry(ctx, customer, text)
	case models.StateNone:
		return m.handleIdle(ctx, customer, text)
	case models.StateSelectingService:
		return m.handleServiceSelection(ctx, customer, text)
	case models.StateSelectingBarber:
		return m.handleBarberSelection(ctx, customer, text)
	case models.StateSelectingDate:
		return m.handleDateSelection(ctx, customer, text)
	case models.StateSelectingTime:
		return m.handleTimeSelection(ctx, customer, text)
	case models.StateSelectingCancellation:
		return m.handleCancellationSelection(ctx, customer, text)
	case models.StateConfirmingCancellation:
		return m.handleCancellationConfirmation(ctx, customer, text)
	default:
		return m.resetState(ctx, customer, msgReset)
	}
}

// send delivers a reply. Best effort: a failed send is logged, not retried,
// because the customer's state is already saved and they can message again.
func (m *Machine) send(ctx context.Context, phone, text string) error {
	if err := m.notifier.Send(ctx, phone, text); err != nil {
		m.logger.Error().Err(err).Str("phone", phone).Msg("failed to send reply")
		return nil
	}
	metrics.IncMessage("out")
	return nil
}

// resetState clears the dialogue back to idle and tells the customer why.
func (m *Machine) resetState(ctx context.Context, customer *models.Customer, text string) error {
	customer.State = models.StateNone
	customer.ClearScratch()
	if err := m.customers.SaveConversation(ctx, customer); err != nil {
		return err
	}
	return m.send(ctx, customer.PhoneNumber, text)
}
