package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/Deijai/clinic-scheduling-backend/internal/api"
	"github.com/Deijai/clinic-scheduling-backend/internal/auth"
	"github.com/Deijai/clinic-scheduling-backend/internal/booking"
	"github.com/Deijai/clinic-scheduling-backend/internal/cache"
	"github.com/Deijai/clinic-scheduling-backend/internal/config"
	"github.com/Deijai/clinic-scheduling-backend/internal/events"
	"github.com/Deijai/clinic-scheduling-backend/internal/metrics"
)

// Container holds the initialized components that outlive a request.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager

	closers []func() error
}

// Close releases broker and cache connections in reverse init order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i]()
	}
}

// NewContainer wires all modules from configuration.
func NewContainer(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, log zerolog.Logger) (*Container, error) {
	settings, err := settingsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, 24*time.Hour)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	schedulingMetrics := metrics.NewSchedulingMetrics(reg)

	container := &Container{JWTManager: jwtManager}

	var agendaCache cache.Cache = cache.Noop{}
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		agendaCache = redisCache
		container.closers = append(container.closers, redisCache.Close)
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, fmt.Errorf("amqp: %w", err)
		}
		publisher = amqpPublisher
		container.closers = append(container.closers, amqpPublisher.Close)
	}

	repo := booking.NewPgxRepository(pool, settings.Buffer)
	bookingService := booking.NewService(booking.ServiceParams{
		Repo:      repo,
		Settings:  settings,
		Logger:    log.With().Str("component", "scheduling").Logger(),
		Metrics:   schedulingMetrics,
		Cache:     agendaCache,
		CacheTTL:  cfg.AgendaCacheTTL,
		Publisher: publisher,
	})

	container.Router = api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    splitOrigins(cfg.ProdOrigins),
		Logger:         log,
		BookingService: bookingService,
		JWTManager:     jwtManager,
		DBPool:         pool,
		MetricsReg:     reg,
	})

	return container, nil
}

// settingsFromConfig converts env-level config into engine settings.
func settingsFromConfig(cfg *config.Config) (booking.Settings, error) {
	settings := booking.DefaultSettings()

	settings.Buffer = time.Duration(cfg.BufferMinutes) * time.Minute
	settings.SlotWidth = time.Duration(cfg.SlotMinutes) * time.Minute
	settings.CancelCutoff = cfg.CancelCutoff
	settings.ReminderLookAhead = cfg.ReminderLookAhead

	dayStart, err := booking.ParseTimeOfDay(cfg.WorkdayStart)
	if err != nil {
		return booking.Settings{}, fmt.Errorf("WORKDAY_START: %w", err)
	}
	dayEnd, err := booking.ParseTimeOfDay(cfg.WorkdayEnd)
	if err != nil {
		return booking.Settings{}, fmt.Errorf("WORKDAY_END: %w", err)
	}
	if dayStart >= dayEnd {
		return booking.Settings{}, fmt.Errorf("working window is empty")
	}
	settings.DayStart = dayStart
	settings.DayEnd = dayEnd

	settings.WorkDays = make(map[time.Weekday]bool, len(cfg.WorkDays))
	for _, d := range cfg.WorkDays {
		settings.WorkDays[d] = true
	}

	loc, err := time.LoadLocation(cfg.ClinicTimezone)
	if err != nil {
		return booking.Settings{}, fmt.Errorf("CLINIC_TIMEZONE: %w", err)
	}
	settings.Location = loc

	return settings, nil
}

func splitOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
