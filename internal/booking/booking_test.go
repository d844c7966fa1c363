package booking

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wolfman30/salon-booking-assistant/internal/scheduling"
)

func TestMatchService(t *testing.T) {
	cases := []struct {
		text string
		want string
		ok   bool
	}{
		{"I'd like a Classic Manicure tomorrow", "Classic Manicure", true},
		{"can I get waxing done?", "Waxing (Full Body)", true},
		{"massage therapy please", "Massage Therapy (1 hour)", true},
		{"a haircut", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		svc, ok := MatchService(tc.text)
		if ok != tc.ok || svc.Name != tc.want {
			t.Fatalf("MatchService(%q) = %q,%v want %q,%v", tc.text, svc.Name, ok, tc.want, tc.ok)
		}
	}
}

func TestNumberedCatalog(t *testing.T) {
	lines := strings.Split(NumberedCatalog(), "\n")
	if len(lines) != 12 {
		t.Fatalf("expected 12 services, got %d", len(lines))
	}
	if lines[0] != "1. Classic Manicure" || lines[11] != "12. Hair Spa Treatment" {
		t.Fatalf("unexpected catalog rendering: %q ... %q", lines[0], lines[11])
	}
}

func TestDraftComplete(t *testing.T) {
	slot := scheduling.Interval{Start: time.Date(2026, 3, 3, 14, 0, 0, 0, time.UTC), End: time.Date(2026, 3, 3, 15, 0, 0, 0, time.UTC)}
	var nilDraft *Draft
	if nilDraft.Complete() {
		t.Fatalf("nil draft cannot be complete")
	}
	d := &Draft{Service: "Facial Treatment", Slot: &slot, CustomerName: "Jane Doe"}
	if d.Complete() {
		t.Fatalf("draft without phone should be incomplete")
	}
	d.CustomerPhone = "0501234567"
	if !d.Complete() {
		t.Fatalf("expected complete draft")
	}
}

func TestDraftCloneIsDeep(t *testing.T) {
	slot := scheduling.Interval{Start: time.Date(2026, 3, 3, 14, 0, 0, 0, time.UTC), End: time.Date(2026, 3, 3, 15, 0, 0, 0, time.UTC)}
	d := &Draft{Service: "Chemical Peel", Slot: &slot}
	c := d.Clone()
	c.Slot.Start = c.Slot.Start.Add(time.Hour)
	c.Service = "Bridal Makeup"
	if !d.Slot.Start.Equal(slot.Start) || d.Service != "Chemical Peel" {
		t.Fatalf("clone mutated original: %+v", d)
	}
}

func TestValidators(t *testing.T) {
	if !ValidName("Jane Doe") || ValidName("Jane") || ValidName("   ") {
		t.Fatalf("unexpected ValidName results")
	}
	for _, phone := range []string{"0501234567", "+971501234567", "+15551234567"} {
		if !ValidPhone(phone) {
			t.Fatalf("expected %q to be valid", phone)
		}
	}
	for _, phone := range []string{"12345", "050-123-4567", "call me", "+1234567890123456789"} {
		if ValidPhone(phone) {
			t.Fatalf("expected %q to be invalid", phone)
		}
	}
}

func TestDraftValidate(t *testing.T) {
	d := &Draft{CustomerName: "Jane", CustomerPhone: "12"}
	err := d.Validate()
	if !errors.Is(err, ErrInvalidDraftField) {
		t.Fatalf("expected ErrInvalidDraftField, got %v", err)
	}
	if !strings.Contains(err.Error(), "name") || !strings.Contains(err.Error(), "phone") {
		t.Fatalf("expected both fields reported, got %v", err)
	}
	if err := (&Draft{Service: "Waxing"}).Validate(); err != nil {
		t.Fatalf("unset fields should not fail validation: %v", err)
	}
}

func TestDraftEventText(t *testing.T) {
	d := &Draft{Service: "classic MANICURE", CustomerName: "Jane Doe", CustomerPhone: "0501234567"}
	if got := d.EventSummary(); got != "Classic manicure Appointment" {
		t.Fatalf("unexpected summary %q", got)
	}
	want := "Service: classic MANICURE\nName: Jane Doe\nPhone: 0501234567"
	if got := d.EventDescription(); got != want {
		t.Fatalf("unexpected description %q", got)
	}
}
