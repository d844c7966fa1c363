package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/salon-booking-assistant/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/salon-booking-assistant/internal/http/middleware"
	"github.com/wolfman30/salon-booking-assistant/internal/webchat"
	"github.com/wolfman30/salon-booking-assistant/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Chat               *webchat.Handler
	AdminSchedule      *handlers.AdminScheduleHandler
	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	// RateLimiter guards the chat endpoints when set.
	RateLimiter *httpmiddleware.RateLimiter
	// ChatTimeout bounds a single POST /chat turn. Zero means 30s.
	ChatTimeout time.Duration
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	if cfg.Chat == nil {
		panic("router: chat handler required")
	}
	timeout := cfg.ChatTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}

	r.Get("/health", health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/chat", func(chat chi.Router) {
		if cfg.RateLimiter != nil {
			chat.Use(cfg.RateLimiter.Middleware)
		}
		chat.With(middleware.Timeout(timeout)).Post("/", cfg.Chat.HandleChat)
		chat.Get("/ws", cfg.Chat.HandleWebSocket)
	})

	if cfg.AdminSchedule != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/calendar.ics", cfg.AdminSchedule.CalendarICS)
			admin.Get("/appointments", cfg.AdminSchedule.Appointments)
		})
	}

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
