// Package bootstrap assembles the booking assistant from configuration. The
// HTTP server and the Lambda entry point share it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/salon-booking-assistant/internal/api/router"
	"github.com/wolfman30/salon-booking-assistant/internal/bookings"
	appconfig "github.com/wolfman30/salon-booking-assistant/internal/config"
	"github.com/wolfman30/salon-booking-assistant/internal/conversation"
	"github.com/wolfman30/salon-booking-assistant/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/salon-booking-assistant/internal/http/middleware"
	"github.com/wolfman30/salon-booking-assistant/internal/observability/metrics"
	"github.com/wolfman30/salon-booking-assistant/internal/scheduling"
	"github.com/wolfman30/salon-booking-assistant/internal/webchat"
	"github.com/wolfman30/salon-booking-assistant/pkg/logging"
)

// App is the wired application.
type App struct {
	Handler    http.Handler
	Controller *conversation.Controller
	Metrics    *metrics.BookingMetrics

	limiter *httpmiddleware.RateLimiter
	closers []func() error
	logger  *logging.Logger
}

// Option customises Build.
type Option func(*buildOptions)

type buildOptions struct {
	loadAWS  AWSConfigLoader
	registry *prometheus.Registry
	now      func() time.Time
}

// WithAWSConfigLoader supplies AWS configuration for Bedrock and SES.
func WithAWSConfigLoader(loader AWSConfigLoader) Option {
	return func(o *buildOptions) { o.loadAWS = loader }
}

// WithRegistry registers metrics on reg instead of the default registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *buildOptions) { o.registry = reg }
}

// WithClock drives date parsing and turn timing from now instead of time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *buildOptions) { o.now = now }
}

// Build wires every component named by cfg.
func Build(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	o := buildOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.now == nil {
		o.now = time.Now
	}

	loc, err := time.LoadLocation(cfg.BusinessTimezone)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load BUSINESS_TIMEZONE: %w", err)
	}
	hours, err := scheduling.NewHours(cfg.BusinessOpenHour, cfg.BusinessCloseHour, loc)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	var (
		registerer     prometheus.Registerer = prometheus.DefaultRegisterer
		metricsHandler                       = promhttp.Handler()
	)
	if o.registry != nil {
		registerer = o.registry
		metricsHandler = promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
	}
	app := &App{Metrics: metrics.NewBookingMetrics(registerer), logger: logger}

	cal, err := BuildCalendar(ctx, cfg, app.Metrics, logger)
	if err != nil {
		return nil, err
	}

	rdb := BuildRedisClient(ctx, cfg, logger, true)
	if rdb != nil {
		app.closers = append(app.closers, rdb.Close)
	}
	fallback, closers, err := BuildFallbackReplier(ctx, cfg, hours, rdb, o.loadAWS, logger)
	app.closers = append(app.closers, closers...)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	var (
		observers []conversation.BookingObserver
		ledger    handlers.AppointmentLister
	)
	pool, err := BuildPool(ctx, cfg, logger)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	if pool != nil {
		app.closers = append(app.closers, func() error { pool.Close(); return nil })
		svc := bookings.NewService(bookings.NewRepository(pool), logger)
		observers = append(observers, svc)
		ledger = svc
	}
	notifier, err := BuildNotifier(ctx, cfg, loc, app.Metrics, o.loadAWS, logger)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	observers = append(observers, notifier)

	app.Controller = conversation.NewController(conversation.Dependencies{
		Extractor:  conversation.NewRuleExtractor(nil, loc, conversation.WithExtractorClock(o.now)),
		Normalizer: scheduling.NewNormalizer(nil, hours, cfg.AppointmentLength),
		Engine: scheduling.NewEngine(cal, hours,
			scheduling.WithMaxRounds(cfg.SlotSearchMaxRounds),
			scheduling.WithWindow(cfg.SlotSearchWindow),
			scheduling.WithLogger(logger),
		),
		Calendar: cal,
		Fallback: fallback,
	},
		conversation.WithObservers(observers...),
		conversation.WithTurnObserver(app.Metrics),
		conversation.WithControllerLogger(logger),
		conversation.WithTimezoneLabel(cfg.BusinessTZLabel),
		conversation.WithClock(o.now),
	)

	if cfg.RateLimitRPS > 0 {
		app.limiter = httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	app.Handler = router.New(&router.Config{
		Logger:             logger,
		Chat:               webchat.NewHandler(app.Controller, logger),
		AdminSchedule:      handlers.NewAdminScheduleHandler(cal, ledger, logger),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        app.limiter,
	})
	return app, nil
}

// Start runs background maintenance until ctx is done.
func (a *App) Start(ctx context.Context) {
	if a.limiter != nil {
		go a.limiter.Run(ctx, 5*time.Minute, 10*time.Minute)
	}
}

// Close releases clients opened by Build.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
