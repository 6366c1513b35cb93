// Package notify delivers outbound WhatsApp messages via Twilio.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/emryildiz/barberbot/internal/config"
)

// TwilioNotifier sends messages through the Twilio WhatsApp API.
type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
	logger *zerolog.Logger
}

func NewTwilioNotifier(cfg config.TwilioConfig, logger *zerolog.Logger) *TwilioNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioNotifier{
		client: client,
		from:   cfg.FromNumber,
		logger: logger,
	}
}

// Send delivers one message. Addresses on the WhatsApp channel carry the
// "whatsapp:" prefix; it is added when missing.
func (n *TwilioNotifier) Send(ctx context.Context, phone, text string) error {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(withWhatsAppPrefix(phone))
	params.SetFrom(withWhatsAppPrefix(n.from))
	params.SetBody(text)

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send whatsapp message: %w", err)
	}
	if resp.Sid != nil {
		n.logger.Debug().Str("message_sid", *resp.Sid).Str("to", phone).Msg("message sent")
	}
	return nil
}

func withWhatsAppPrefix(phone string) string {
	if strings.HasPrefix(phone, "whatsapp:") {
		return phone
	}
	return "whatsapp:" + phone
}

// LogNotifier writes messages to the log instead of sending them. Used when
// Twilio credentials are not configured, e.g. local development.
type LogNotifier struct {
	logger *zerolog.Logger
}

func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, phone, text string) error {
	n.logger.Info().Str("to", phone).Str("text", text).Msg("outbound message (log only)")
	return nil
}
