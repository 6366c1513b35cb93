// Package api exposes the admin REST surface and the WhatsApp webhook.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/emryildiz/barberbot/internal/bot"
	"github.com/emryildiz/barberbot/internal/config"
	"github.com/emryildiz/barberbot/internal/domain"
	"github.com/emryildiz/barberbot/internal/export"
	"github.com/emryildiz/barberbot/internal/service"
)

// Server wires the admin endpoints, the webhook and the operational
// endpoints into one HTTP server. Admin routes sit behind API-key auth; the
// webhook, health and metrics endpoints do not.
type Server struct {
	cfg       config.Config
	scheduler domain.AppointmentService
	slots     domain.SlotService
	stats     *service.StatsService
	catalog   domain.CatalogStore
	hours     domain.WorkingHoursStore
	machine   *bot.Machine
	guard     domain.MessageGuard
	exporter  *export.Exporter
	logger    *zerolog.Logger
	server    *http.Server
}

func NewServer(
	cfg config.Config,
	scheduler domain.AppointmentService,
	slots domain.SlotService,
	stats *service.StatsService,
	catalog domain.CatalogStore,
	hours domain.WorkingHoursStore,
	machine *bot.Machine,
	guard domain.MessageGuard,
	exporter *export.Exporter,
	logger *zerolog.Logger,
) *Server {
	s := &Server{
		cfg:       cfg,
		scheduler: scheduler,
		slots:     slots,
		stats:     stats,
		catalog:   catalog,
		hours:     hours,
		machine:   machine,
		guard:     guard,
		exporter:  exporter,
		logger:    logger,
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s
}

// Routes builds the full handler tree. Exposed for httptest.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/webhook/whatsapp", s.handleWebhook).Methods(http.MethodPost)

	admin := r.PathPrefix("/api/v1").Subrouter()
	admin.Use(newAuthMiddleware(s.cfg.API).wrap)

	admin.HandleFunc("/appointments", s.handleListAppointments).Methods(http.MethodGet)
	admin.HandleFunc("/appointments", s.handleCreateAppointment).Methods(http.MethodPost)
	admin.HandleFunc("/appointments/{id:[0-9]+}", s.handleGetAppointment).Methods(http.MethodGet)
	admin.HandleFunc("/appointments/{id:[0-9]+}", s.handleUpdateAppointment).Methods(http.MethodPut)
	admin.HandleFunc("/appointments/{id:[0-9]+}", s.handleDeleteAppointment).Methods(http.MethodDelete)
	admin.HandleFunc("/available-slots", s.handleAvailableSlots).Methods(http.MethodGet)
	admin.HandleFunc("/services", s.handleListServices).Methods(http.MethodGet)
	admin.HandleFunc("/barbers", s.handleListBarbers).Methods(http.MethodGet)
	admin.HandleFunc("/working-hours", s.handleListWorkingHours).Methods(http.MethodGet)
	admin.HandleFunc("/working-hours/{day:[0-6]}", s.handleUpsertWorkingHour).Methods(http.MethodPut)
	admin.HandleFunc("/statistics/dashboard", s.handleDashboard).Methods(http.MethodGet)
	admin.HandleFunc("/statistics/services", s.handleServiceBreakdown).Methods(http.MethodGet)
	admin.HandleFunc("/export/appointments", s.handleExportAppointments).Methods(http.MethodGet)

	return requestMiddleware(s.logger)(r)
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
