package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/salon-booking-assistant/internal/calendar"
	"github.com/wolfman30/salon-booking-assistant/internal/conversation"
	"github.com/wolfman30/salon-booking-assistant/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/salon-booking-assistant/internal/http/middleware"
	"github.com/wolfman30/salon-booking-assistant/internal/observability/metrics"
	"github.com/wolfman30/salon-booking-assistant/internal/scheduling"
	"github.com/wolfman30/salon-booking-assistant/internal/webchat"
	"github.com/wolfman30/salon-booking-assistant/pkg/logging"
)

const adminSecret = "router-test-secret"

func newTestRouter(t *testing.T, mutate func(*Config)) http.Handler {
	t.Helper()

	logger := logging.NewWithWriter("error", &bytes.Buffer{})
	loc := time.FixedZone("GST", 4*3600)
	hours := scheduling.DefaultHours(loc)
	cal := calendar.NewMemoryCalendar()
	reg := prometheus.NewRegistry()
	m := metrics.NewBookingMetrics(reg)

	controller := conversation.NewController(conversation.Dependencies{
		Extractor:  conversation.NewRuleExtractor(nil, loc),
		Normalizer: scheduling.NewNormalizer(nil, hours, time.Hour),
		Engine:     scheduling.NewEngine(cal, hours),
		Calendar:   cal,
		Fallback:   conversation.CannedReplier{Text: "We are a full-service salon."},
	}, conversation.WithTurnObserver(m), conversation.WithControllerLogger(logger))

	cfg := &Config{
		Logger:             logger,
		Chat:               webchat.NewHandler(controller, logger),
		AdminSchedule:      handlers.NewAdminScheduleHandler(cal, nil, logger),
		AdminAuthSecret:    adminSecret,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: []string{"https://salon.example"},
	}
	if mutate != nil {
		mutate(cfg)
	}
	return New(cfg)
}

func TestRouterHealthEndpoint(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(t, nil).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterChatEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hello there"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	var resp webchat.ChatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(resp.Reply, "We are a full-service salon.") {
		t.Fatalf("expected fallback reply, got %q", resp.Reply)
	}
	if len(resp.State.Messages) != 2 || resp.State.Phase != conversation.PhaseIdle {
		t.Fatalf("unexpected state %+v", resp.State)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), `salon_booking_turns_total{outcome="ok",phase="idle"} 1`) {
		t.Fatalf("expected turn metric, got:\n%s", rr.Body.String())
	}
}

func TestRouterChatRejectsEmptyMessage(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":""}`))
	rr := httptest.NewRecorder()
	newTestRouter(t, nil).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if strings.TrimSpace(rr.Body.String()) != `{"error":"Invalid request"}` {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
}

func TestRouterChatRateLimited(t *testing.T) {
	router := newTestRouter(t, func(cfg *Config) {
		cfg.RateLimiter = httpmiddleware.NewRateLimiter(0.001, 1)
	})
	codes := []int{}
	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "https://salon.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	newTestRouter(t, nil).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
}

func TestRouterAdminRequiresToken(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/calendar.ics", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}

	claims := httpmiddleware.StaffClaims{
		Role: "staff",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "front-desk",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(adminSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/admin/calendar.ics", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "BEGIN:VCALENDAR") {
		t.Fatalf("expected ics body, got %q", rr.Body.String())
	}
}

func TestRouterAdminAbsentWithoutHandler(t *testing.T) {
	router := newTestRouter(t, func(cfg *Config) { cfg.AdminSchedule = nil })
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/calendar.ics", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
