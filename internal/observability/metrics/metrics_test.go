package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if matchLabels(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matchLabels(m *dto.Metric, labels map[string]string) bool {
	if len(m.GetLabel()) != len(labels) {
		return false
	}
	for _, lp := range m.GetLabel() {
		if labels[lp.GetName()] != lp.GetValue() {
			return false
		}
	}
	return true
}

func TestBookingMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveTurn("idle", "ok", 0.2)
	m.ObserveTurn("idle", "ok", 0.1)
	m.ObserveCommit("booked")
	m.ObserveCalendarRequest("list_events", nil, 0.05)
	m.ObserveCalendarRequest("list_events", errors.New("timeout"), 1.5)
	m.ObserveNotification("sendgrid", nil)

	if got := counterValue(t, reg, "salon_booking_turns_total", map[string]string{"phase": "idle", "outcome": "ok"}); got != 2 {
		t.Fatalf("expected 2 turns, got %v", got)
	}
	if got := counterValue(t, reg, "salon_booking_commits_total", map[string]string{"result": "booked"}); got != 1 {
		t.Fatalf("expected 1 commit, got %v", got)
	}
	if got := counterValue(t, reg, "salon_calendar_requests_total", map[string]string{"operation": "list_events", "status": "error"}); got != 1 {
		t.Fatalf("expected 1 failed calendar request, got %v", got)
	}
	if got := counterValue(t, reg, "salon_notify_emails_total", map[string]string{"provider": "sendgrid", "status": "sent"}); got != 1 {
		t.Fatalf("expected 1 notification, got %v", got)
	}
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveTurn("idle", "ok", 0.1)
	m.ObserveCommit("booked")
	m.ObserveCalendarRequest("insert_event", nil, 0.1)
	m.ObserveNotification("ses", errors.New("boom"))
}
