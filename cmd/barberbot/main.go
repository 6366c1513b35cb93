package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/emryildiz/barberbot/internal/api"
	"github.com/emryildiz/barberbot/internal/bot"
	"github.com/emryildiz/barberbot/internal/config"
	"github.com/emryildiz/barberbot/internal/database"
	"github.com/emryildiz/barberbot/internal/domain"
	"github.com/emryildiz/barberbot/internal/events"
	"github.com/emryildiz/barberbot/internal/export"
	"github.com/emryildiz/barberbot/internal/logging"
	"github.com/emryildiz/barberbot/internal/metrics"
	"github.com/emryildiz/barberbot/internal/notify"
	"github.com/emryildiz/barberbot/internal/reminder"
	"github.com/emryildiz/barberbot/internal/repository"
	"github.com/emryildiz/barberbot/internal/service"
	"github.com/emryildiz/barberbot/internal/timeutil"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	metrics.Register()

	db, err := initDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, guard := initMessageGuard(ctx, cfg, logger)
	defer func() {
		_ = repository.Close(redisClient)
	}()

	eventBus := events.NewEventBus()
	subscribeAppointmentEvents(eventBus, logger)

	notifier := initNotifier(cfg, logger)
	clock := timeutil.SystemClock()

	slotService := service.NewSlotService(db, db, db, clock, logger)
	scheduler := service.NewAppointmentScheduler(db, db, db, db, notifier, eventBus, logger)
	statsService := service.NewStatsService(db, db, clock, logger)
	exporter := export.NewExporter(db, db, logger)

	machine := bot.NewMachine(db, db, db, slotService, scheduler, db, notifier, clock, logger)

	reminderWorker := reminder.NewWorker(db, db, notifier, eventBus, clock, logger)
	go reminderWorker.Run(ctx)

	server := api.NewServer(*cfg, scheduler, slotService, statsService, db, db, machine, guard, exporter, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("HTTP server error")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error().Err(err).Msg("HTTP shutdown error")
	}
	logger.Info().Msg("Shutdown complete.")
	return nil
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App, "main")
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, closer, nil
}

func initDatabase(cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize database")
		return nil, err
	}
	if err := db.SeedDefaults(context.Background()); err != nil {
		logger.Error().Err(err).Msg("failed to seed defaults")
		return nil, err
	}
	return db, nil
}

func initMessageGuard(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, domain.MessageGuard) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
	}

	primary := repository.NewRedisMessageGuard(redisClient)
	fallback := repository.NewMemoryMessageGuard()
	return redisClient, repository.NewFailoverMessageGuard(primary, fallback, logger)
}

func initNotifier(cfg *config.Config, logger *zerolog.Logger) domain.Notifier {
	if cfg.Twilio.AccountSID == "" || cfg.Twilio.AuthToken == "" {
		logger.Warn().Msg("Twilio not configured, outbound messages go to the log")
		return notify.NewLogNotifier(logger)
	}
	return notify.NewTwilioNotifier(cfg.Twilio, logger)
}

// subscribeAppointmentEvents keeps an audit trail of lifecycle events in the
// log. More consumers can hook in here later.
func subscribeAppointmentEvents(bus *events.EventBus, logger *zerolog.Logger) {
	handler := func(ev *events.Event) error {
		var payload events.AppointmentEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		logger.Info().
			Str("event", ev.Type).
			Int64("appointment_id", payload.AppointmentID).
			Int64("staff_id", payload.StaffID).
			Str("status", payload.Status).
			Msg("appointment event")
		return nil
	}

	bus.Subscribe(events.EventAppointmentCreated, handler)
	bus.Subscribe(events.EventAppointmentConfirmed, handler)
	bus.Subscribe(events.EventAppointmentCancelled, handler)
	bus.Subscribe(events.EventAppointmentDeleted, handler)
	bus.Subscribe(events.EventReminderSent, handler)
}
