// Package notify tells salon staff about new appointments by e-mail.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/wolfman30/salon-booking-assistant/internal/booking"
	"github.com/wolfman30/salon-booking-assistant/pkg/logging"
)

// DeliveryObserver records the outcome of each send.
type DeliveryObserver interface {
	ObserveNotification(provider string, err error)
}

// Service e-mails staff when the assistant books an appointment.
type Service struct {
	email      EmailSender
	provider   string
	recipients []string
	loc        *time.Location
	tzLabel    string
	observer   DeliveryObserver
	logger     *logging.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLocation renders appointment times in loc, labelled with label.
func WithLocation(loc *time.Location, label string) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
		s.tzLabel = label
	}
}

func WithDeliveryObserver(obs DeliveryObserver) Option {
	return func(s *Service) { s.observer = obs }
}

// NewService creates a notification service. provider names the sender in logs and metrics.
func NewService(email EmailSender, provider string, recipients []string, logger *logging.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		email:    email,
		provider: provider,
		loc:      time.UTC,
		logger:   logger,
	}
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			s.recipients = append(s.recipients, r)
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AppointmentBooked sends the booking summary to every staff recipient.
func (s *Service) AppointmentBooked(ctx context.Context, c booking.Confirmed) error {
	if s.email == nil || len(s.recipients) == 0 {
		s.logger.Debug("notify: no staff recipients configured, skipping notification")
		return nil
	}

	msg := s.render(c)
	var errs []error
	for _, recipient := range s.recipients {
		msg.To = recipient
		err := s.email.Send(ctx, msg)
		if s.observer != nil {
			s.observer.ObserveNotification(s.provider, err)
		}
		if err != nil {
			s.logger.Error("notify: failed to send email", "error", err, "to", recipient)
			errs = append(errs, err)
			continue
		}
		s.logger.Info("notify: booking email sent", "to", recipient, "service", c.Service)
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify: %w", errors.Join(errs...))
	}
	return nil
}

func (s *Service) render(c booking.Confirmed) EmailMessage {
	start := c.Start.In(s.loc)
	when := start.Format("Monday, January 2 at 3:04 PM")
	if s.tzLabel != "" {
		when += " (" + s.tzLabel + " time)"
	}

	body := fmt.Sprintf(`New appointment booked.

Service: %s
When: %s
Customer: %s
Phone: %s
Calendar: %s`, c.Service, when, c.CustomerName, c.CustomerPhone, c.EventLink)

	var b strings.Builder
	b.WriteString(`<div style="font-family: sans-serif; max-width: 600px;">`)
	b.WriteString(`<h2>New appointment booked</h2><table style="border-collapse: collapse;">`)
	row := func(label, value string) {
		fmt.Fprintf(&b, `<tr><td style="padding: 6px;"><strong>%s:</strong></td><td style="padding: 6px;">%s</td></tr>`, label, html.EscapeString(value))
	}
	row("Service", c.Service)
	row("When", when)
	row("Customer", c.CustomerName)
	row("Phone", c.CustomerPhone)
	b.WriteString(`</table>`)
	if c.EventLink != "" {
		fmt.Fprintf(&b, `<p><a href="%s">Open in calendar</a></p>`, html.EscapeString(c.EventLink))
	}
	b.WriteString(`</div>`)

	return EmailMessage{
		Subject: fmt.Sprintf("New booking: %s with %s", c.Service, c.CustomerName),
		Body:    body,
		HTML:    b.String(),
	}
}
