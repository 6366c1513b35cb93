package api

import (
	"net/http"
	"strings"

	"github.com/emryildiz/barberbot/internal/metrics"
)

// handleWebhook receives Twilio's form-encoded WhatsApp callback. It always
// answers 200: Twilio retries non-2xx responses, and a retry of a message we
// failed on would just fail again while spamming the customer with resets.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.logger.Warn().Err(err).Msg("webhook: bad form payload")
		w.WriteHeader(http.StatusOK)
		return
	}

	from := strings.TrimSpace(r.PostFormValue("From"))
	body := r.PostFormValue("Body")
	messageSid := strings.TrimSpace(r.PostFormValue("MessageSid"))

	if from == "" {
		s.logger.Warn().Msg("webhook: missing From field")
		w.WriteHeader(http.StatusOK)
		return
	}

	phone := strings.TrimPrefix(from, "whatsapp:")

	if messageSid != "" {
		seen, err := s.guard.SeenMessage(r.Context(), messageSid)
		if err != nil {
			s.logger.Error().Err(err).Msg("webhook: dedup check failed")
		} else if seen {
			s.logger.Debug().Str("message_sid", messageSid).Msg("webhook: duplicate delivery dropped")
			w.WriteHeader(http.StatusOK)
			return
		}
	}

	allowed, err := s.guard.AllowMessage(r.Context(), phone)
	if err != nil {
		s.logger.Error().Err(err).Msg("webhook: rate limit check failed")
	} else if !allowed {
		s.logger.Warn().Str("phone", phone).Msg("webhook: rate limited")
		w.WriteHeader(http.StatusOK)
		return
	}

	metrics.IncMessage("in")
	if err := s.machine.HandleIncoming(r.Context(), from, body); err != nil {
		s.logger.Error().Err(err).Str("phone", phone).Msg("webhook: message handling failed")
	}
	w.WriteHeader(http.StatusOK)
}
