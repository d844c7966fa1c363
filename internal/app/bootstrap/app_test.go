package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"

	appconfig "github.com/wolfman30/salon-booking-assistant/internal/config"
	"github.com/wolfman30/salon-booking-assistant/internal/conversation"
	"github.com/wolfman30/salon-booking-assistant/internal/scheduling"
	"github.com/wolfman30/salon-booking-assistant/pkg/logging"
)

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		BusinessTimezone:  "UTC",
		BusinessTZLabel:   "UTC",
		BusinessOpenHour:  9,
		BusinessCloseHour: 18,
		AppointmentLength: time.Hour,
		CalendarProvider:  "memory",
		LLMProvider:       "stub",
		EmailProvider:     "stub",
		ReplyCacheTTL:     time.Minute,
		RateLimitRPS:      100,
		RateLimitBurst:    100,
	}
}

func quietLogger() *logging.Logger { return logging.NewWithWriter("error", &bytes.Buffer{}) }

func staticAWS(ctx context.Context) (aws.Config, error) {
	return aws.Config{Region: "us-east-1"}, nil
}

func TestBuildRequiresConfig(t *testing.T) {
	if _, err := Build(context.Background(), nil, quietLogger()); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestBuildRejectsBadSettings(t *testing.T) {
	tests := map[string]func(*appconfig.Config){
		"timezone":        func(c *appconfig.Config) { c.BusinessTimezone = "Mars/Olympus" },
		"hours":           func(c *appconfig.Config) { c.BusinessOpenHour, c.BusinessCloseHour = 18, 9 },
		"calendar":        func(c *appconfig.Config) { c.CalendarProvider = "outlook" },
		"google no creds": func(c *appconfig.Config) { c.CalendarProvider = "google"; c.GoogleCalendarID = "cal" },
		"llm":             func(c *appconfig.Config) { c.LLMProvider = "parrot" },
		"email":           func(c *appconfig.Config) { c.EmailProvider = "pigeon" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			mutate(cfg)
			if _, err := Build(context.Background(), cfg, quietLogger(), WithRegistry(prometheus.NewRegistry())); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestBuildServesChat(t *testing.T) {
	app, err := Build(context.Background(), testConfig(), quietLogger(), WithRegistry(prometheus.NewRegistry()))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app.Start(ctx)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"I want to book an appointment"}`))
	rec := httptest.NewRecorder()
	app.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Reply string                   `json:"reply"`
		State conversation.DialogState `json:"state"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.State.Phase != conversation.PhaseCollectingService {
		t.Fatalf("expected collecting_service, got %q", resp.State.Phase)
	}
	if !strings.Contains(resp.Reply, "<br>1. Classic Manicure<br>") {
		t.Fatalf("expected formatted catalog, got %q", resp.Reply)
	}
}

func TestBuildClockDrivesDateParsing(t *testing.T) {
	fixed := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	app, err := Build(context.Background(), testConfig(), quietLogger(),
		WithRegistry(prometheus.NewRegistry()),
		WithClock(func() time.Time { return fixed }),
	)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()

	out, err := app.Controller.ProcessTurn(context.Background(), "book a classic manicure tomorrow at 2pm", conversation.DialogState{})
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if out.State.Phase != conversation.PhaseCollectingName {
		t.Fatalf("expected collecting_name, got %q: %s", out.State.Phase, out.Reply)
	}
	if want := time.Date(2026, 3, 3, 14, 0, 0, 0, time.UTC); !out.State.Draft.Slot.Start.Equal(want) {
		t.Fatalf("expected slot at %s, got %s", want, out.State.Draft.Slot.Start)
	}
}

func TestBuildFallbackReplier(t *testing.T) {
	hours := scheduling.DefaultHours(time.UTC)
	logger := quietLogger()

	t.Run("stub", func(t *testing.T) {
		r, _, err := BuildFallbackReplier(context.Background(), testConfig(), hours, nil, nil, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := r.(conversation.CannedReplier); !ok {
			t.Fatalf("expected CannedReplier, got %T", r)
		}
	})

	t.Run("openai without key", func(t *testing.T) {
		cfg := testConfig()
		cfg.LLMProvider = "openai"
		if _, _, err := BuildFallbackReplier(context.Background(), cfg, hours, nil, nil, logger); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("openai guarded without cache", func(t *testing.T) {
		cfg := testConfig()
		cfg.LLMProvider = "openai"
		cfg.OpenAIAPIKey = "sk-test"
		r, _, err := BuildFallbackReplier(context.Background(), cfg, hours, nil, nil, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := r.(*conversation.GuardedReplier); !ok {
			t.Fatalf("expected GuardedReplier, got %T", r)
		}
	})

	t.Run("bedrock needs model", func(t *testing.T) {
		cfg := testConfig()
		cfg.LLMProvider = "bedrock"
		if _, _, err := BuildFallbackReplier(context.Background(), cfg, hours, nil, staticAWS, logger); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("openai with bedrock fallback and cache", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := testConfig()
		cfg.RedisAddr = mr.Addr()
		cfg.LLMProvider = "openai"
		cfg.OpenAIAPIKey = "sk-test"
		cfg.LLMFallbackProvider = "bedrock"
		cfg.BedrockModelID = "anthropic.claude-3-haiku"
		rdb := BuildRedisClient(context.Background(), cfg, logger, true)
		if rdb == nil {
			t.Fatalf("expected redis client")
		}
		defer rdb.Close()

		r, _, err := BuildFallbackReplier(context.Background(), cfg, hours, rdb, staticAWS, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := r.(*conversation.CachedReplier); !ok {
			t.Fatalf("expected CachedReplier, got %T", r)
		}
	})
}

func TestBuildRedisClientDisabled(t *testing.T) {
	if BuildRedisClient(context.Background(), testConfig(), quietLogger(), true) != nil {
		t.Fatalf("expected nil client without REDIS_ADDR")
	}
}

func TestBuildNotifier(t *testing.T) {
	logger := quietLogger()
	cfg := testConfig()
	cfg.EmailProvider = "sendgrid"
	if _, err := BuildNotifier(context.Background(), cfg, time.UTC, nil, nil, logger); err == nil {
		t.Fatalf("expected error without sendgrid key")
	}

	cfg.EmailProvider = "ses"
	cfg.SESFromEmail = "bookings@salon.example"
	cfg.StaffNotifyEmail = "front@salon.example, owner@salon.example"
	svc, err := BuildNotifier(context.Background(), cfg, time.UTC, nil, staticAWS, logger)
	if err != nil || svc == nil {
		t.Fatalf("expected ses notifier, got %v", err)
	}
}

func TestBuildPoolDisabled(t *testing.T) {
	pool, err := BuildPool(context.Background(), testConfig(), quietLogger())
	if err != nil || pool != nil {
		t.Fatalf("expected no pool without DATABASE_URL, got %v %v", pool, err)
	}
}
