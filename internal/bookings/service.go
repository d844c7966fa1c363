// Package bookings keeps a Postgres ledger of appointments committed to the calendar.
package bookings

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/salon-booking-assistant/internal/booking"
	"github.com/wolfman30/salon-booking-assistant/pkg/logging"
)

// Service records confirmed appointments in the ledger.
type Service struct {
	repo   *Repository
	logger *logging.Logger
	tracer trace.Tracer
}

// Option customizes a Service.
type Option func(*Service)

// WithTracer overrides the global tracer, mostly for tests.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// NewService constructs a bookings service.
func NewService(repo *Repository, logger *logging.Logger, opts ...Option) *Service {
	if repo == nil {
		panic("bookings: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{repo: repo, logger: logger, tracer: otel.Tracer("salon.internal.bookings")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AppointmentBooked writes the ledger row for a committed appointment.
func (s *Service) AppointmentBooked(ctx context.Context, c booking.Confirmed) error {
	ctx, span := s.tracer.Start(ctx, "bookings.record")
	defer span.End()
	span.SetAttributes(
		attribute.String("salon.service", c.Service),
		attribute.String("salon.slot.start", c.Start.Format(time.RFC3339)),
	)

	appt := &Appointment{
		Service:       c.Service,
		CustomerName:  c.CustomerName,
		CustomerPhone: c.CustomerPhone,
		StartsAt:      c.Start,
		EndsAt:        c.End,
		EventLink:     c.EventLink,
		BookedAt:      c.BookedAt,
	}
	if err := s.repo.Insert(ctx, appt); err != nil {
		span.RecordError(err)
		return err
	}
	s.logger.Info("appointment recorded", "appointment_id", appt.ID, "service", c.Service)
	return nil
}

// Upcoming lists ledger rows from now on.
func (s *Service) Upcoming(ctx context.Context, from time.Time, limit int) ([]Appointment, error) {
	return s.repo.ListUpcoming(ctx, from, limit)
}
