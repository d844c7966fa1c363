package calendar

import (
	"context"
	"time"

	"github.com/wolfman30/salon-booking-assistant/pkg/logging"
)

// RequestObserver records one backend call.
type RequestObserver interface {
	ObserveCalendarRequest(operation string, err error, seconds float64)
}

// Instrumented wraps a Backend with request metrics and error logging.
type Instrumented struct {
	next     Backend
	observer RequestObserver
	logger   *logging.Logger
}

// NewInstrumented decorates next. A nil observer only logs.
func NewInstrumented(next Backend, observer RequestObserver, logger *logging.Logger) *Instrumented {
	if next == nil {
		panic("calendar: backend cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Instrumented{next: next, observer: observer, logger: logger}
}

func (i *Instrumented) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]Event, error) {
	started := time.Now()
	events, err := i.next.ListEvents(ctx, timeMin, timeMax)
	i.record(ctx, "list_events", err, started)
	return events, err
}

func (i *Instrumented) InsertEvent(ctx context.Context, ev NewEvent) (string, error) {
	started := time.Now()
	link, err := i.next.InsertEvent(ctx, ev)
	i.record(ctx, "insert_event", err, started)
	return link, err
}

func (i *Instrumented) record(ctx context.Context, op string, err error, started time.Time) {
	elapsed := time.Since(started)
	if i.observer != nil {
		i.observer.ObserveCalendarRequest(op, err, elapsed.Seconds())
	}
	if err != nil {
		i.logger.ErrorContext(ctx, "calendar request failed", "operation", op, "error", err, "duration_ms", elapsed.Milliseconds())
	}
}
