package conversation

import (
	"context"
	"testing"
	"time"
)

func newFixedExtractor() *RuleExtractor {
	return NewRuleExtractor(nil, gst, WithExtractorClock(func() time.Time { return day(0, 10, 0) }))
}

func TestRuleExtractorDateTime(t *testing.T) {
	e := newFixedExtractor()
	ents, err := e.Extract(context.Background(), "could I come in tomorrow at 2pm?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ents.DateTimePhrase == "" {
		t.Fatalf("expected a date/time phrase")
	}
	if !tomorrowWordRE.MatchString(ents.DateTimePhrase) {
		t.Fatalf("expected phrase to keep tomorrow, got %q", ents.DateTimePhrase)
	}
}

func TestRuleExtractorNoDate(t *testing.T) {
	e := newFixedExtractor()
	ents, err := e.Extract(context.Background(), "what services do you have")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ents.DateTimePhrase != "" {
		t.Fatalf("expected no phrase, got %q", ents.DateTimePhrase)
	}
}

func TestRuleExtractorNameAndNumber(t *testing.T) {
	e := newFixedExtractor()
	ents, err := e.Extract(context.Background(), "Hi, my name is Jane Doe and my number is 050 123 4567")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ents.PersonName != "Jane Doe" {
		t.Fatalf("unexpected name %q", ents.PersonName)
	}
	if ents.CardinalNumber != "0501234567" {
		t.Fatalf("unexpected number %q", ents.CardinalNumber)
	}
}

func TestRuleExtractorIgnoresShortNumbers(t *testing.T) {
	e := newFixedExtractor()
	ents, err := e.Extract(context.Background(), "table for 12 please")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ents.CardinalNumber != "" {
		t.Fatalf("expected no cardinal, got %q", ents.CardinalNumber)
	}
}

func TestRuleExtractorHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newFixedExtractor().Extract(ctx, "tomorrow"); err == nil {
		t.Fatalf("expected context error")
	}
}
