package scheduling

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/salon-booking-assistant/internal/calendar"
	"github.com/wolfman30/salon-booking-assistant/pkg/logging"
)

var availabilityTracer = otel.Tracer("salon.internal.scheduling")

const (
	defaultMaxRounds = 10
	defaultWindow    = 7 * 24 * time.Hour
)

// Engine answers availability questions against a calendar backend while
// keeping every answer inside business hours.
type Engine struct {
	calendar  calendar.Backend
	hours     Hours
	maxRounds int
	window    time.Duration
	logger    *logging.Logger
}

// EngineOption customises an Engine.
type EngineOption func(*Engine)

// WithMaxRounds bounds how many windows FindNextSlot queries.
func WithMaxRounds(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxRounds = n
		}
	}
}

// WithWindow sets the span of each FindNextSlot query.
func WithWindow(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.window = d
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *logging.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine wires an availability engine to a calendar backend.
func NewEngine(backend calendar.Backend, hours Hours, opts ...EngineOption) *Engine {
	if backend == nil {
		panic("scheduling: calendar backend cannot be nil")
	}
	e := &Engine{
		calendar:  backend,
		hours:     hours,
		maxRounds: defaultMaxRounds,
		window:    defaultWindow,
		logger:    logging.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Hours exposes the business window the engine enforces.
func (e *Engine) Hours() Hours {
	return e.hours
}

// IsAvailable reports whether iv lies inside business hours and overlaps no
// calendar event. Out-of-hours intervals are rejected without a backend call.
func (e *Engine) IsAvailable(ctx context.Context, iv Interval) (bool, error) {
	if !e.hours.Contains(iv) {
		return false, nil
	}
	ctx, span := availabilityTracer.Start(ctx, "scheduling.is_available")
	defer span.End()
	span.SetAttributes(
		attribute.String("salon.slot.start", iv.Start.Format(time.RFC3339)),
		attribute.String("salon.slot.end", iv.End.Format(time.RFC3339)),
	)

	events, err := e.calendar.ListEvents(ctx, iv.Start, iv.End)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("scheduling: list events: %w", err)
	}
	for _, ev := range events {
		if ev.Start.Before(iv.End) && ev.End.After(iv.Start) {
			span.SetAttributes(attribute.Bool("salon.slot.available", false))
			return false, nil
		}
	}
	span.SetAttributes(attribute.Bool("salon.slot.available", true))
	return true, nil
}

// FindNextSlot searches forward from `from` for the first free interval of
// length d inside business hours. It queries at most maxRounds windows and
// returns ok=false when none of them has room.
func (e *Engine) FindNextSlot(ctx context.Context, from time.Time, d time.Duration) (Interval, bool, error) {
	if d <= 0 {
		return Interval{}, false, fmt.Errorf("scheduling: slot length must be positive, got %s", d)
	}
	if d > time.Duration(e.hours.Close-e.hours.Open)*time.Hour {
		return Interval{}, false, nil
	}

	ctx, span := availabilityTracer.Start(ctx, "scheduling.find_next_slot")
	defer span.End()

	cand := from.In(e.hours.Location)
	for round := 0; round < e.maxRounds; round++ {
		cand = e.hours.Snap(cand)
		windowEnd := cand.Add(e.window)
		events, err := e.calendar.ListEvents(ctx, cand, windowEnd)
		if err != nil {
			span.RecordError(err)
			return Interval{}, false, fmt.Errorf("scheduling: list events: %w", err)
		}

		var (
			iv Interval
			ok bool
		)
		iv, cand, ok = e.scanWindow(cand, windowEnd, d, events)
		if ok {
			span.SetAttributes(attribute.Int("salon.search.rounds", round+1))
			return iv, true, nil
		}
	}

	span.SetAttributes(attribute.Int("salon.search.rounds", e.maxRounds))
	e.logger.Info("no free slot found", "from", from.Format(time.RFC3339), "rounds", e.maxRounds)
	return Interval{}, false, nil
}

// scanWindow walks the start-ordered events of one window looking for a gap.
// It returns the candidate reached so the next round resumes from there.
func (e *Engine) scanWindow(cand, windowEnd time.Time, d time.Duration, events []calendar.Event) (Interval, time.Time, bool) {
	for i := 0; i < len(events); {
		if !cand.Before(windowEnd) {
			return Interval{}, cand, false
		}
		ev := events[i]
		if !ev.End.After(cand) {
			i++
			continue
		}
		end := cand.Add(d)
		if end.After(e.hours.ClosingOn(cand)) {
			cand = e.hours.NextOpening(cand)
			continue
		}
		if !end.After(ev.Start) {
			return Interval{Start: cand, End: end}, cand, true
		}
		cand = e.hours.Snap(ev.End)
		i++
	}

	for cand.Before(windowEnd) {
		end := cand.Add(d)
		if end.After(windowEnd) {
			break
		}
		if !end.After(e.hours.ClosingOn(cand)) {
			return Interval{Start: cand, End: end}, cand, true
		}
		cand = e.hours.NextOpening(cand)
	}
	return Interval{}, cand, false
}
