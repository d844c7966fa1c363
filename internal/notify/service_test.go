package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/salon-booking-assistant/internal/booking"
)

type recordingSender struct {
	sent []EmailMessage
	fail map[string]error
}

func (r *recordingSender) Send(ctx context.Context, msg EmailMessage) error {
	r.sent = append(r.sent, msg)
	return r.fail[msg.To]
}

type recordingDeliveries struct {
	ok, failed int
}

func (r *recordingDeliveries) ObserveNotification(provider string, err error) {
	if err != nil {
		r.failed++
		return
	}
	r.ok++
}

func confirmedFixture() booking.Confirmed {
	start := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
	return booking.Confirmed{
		Service:       "Deluxe Pedicure",
		CustomerName:  "Jane <Doe>",
		CustomerPhone: "0501234567",
		Start:         start,
		End:           start.Add(time.Hour),
		EventLink:     "https://calendar.example/event/1",
	}
}

func TestAppointmentBookedSendsToEachRecipient(t *testing.T) {
	sender := &recordingSender{}
	obs := &recordingDeliveries{}
	dubai := time.FixedZone("GST", 4*3600)
	svc := NewService(sender, "stub", []string{"front@salon.example", " ", "owner@salon.example"}, nil,
		WithLocation(dubai, "UAE"), WithDeliveryObserver(obs))

	require.NoError(t, svc.AppointmentBooked(context.Background(), confirmedFixture()))
	require.Len(t, sender.sent, 2)
	assert.Equal(t, "front@salon.example", sender.sent[0].To)
	assert.Equal(t, "owner@salon.example", sender.sent[1].To)
	assert.Equal(t, 2, obs.ok)

	msg := sender.sent[0]
	assert.Equal(t, "New booking: Deluxe Pedicure with Jane <Doe>", msg.Subject)
	assert.Contains(t, msg.Body, "When: Tuesday, March 3 at 2:00 PM (UAE time)")
	assert.Contains(t, msg.Body, "Phone: 0501234567")
	assert.Contains(t, msg.HTML, "Jane &lt;Doe&gt;")
	assert.False(t, strings.Contains(msg.HTML, "<Doe>"))
}

func TestAppointmentBookedJoinsFailures(t *testing.T) {
	sender := &recordingSender{fail: map[string]error{"owner@salon.example": errors.New("bounced")}}
	obs := &recordingDeliveries{}
	svc := NewService(sender, "sendgrid", []string{"front@salon.example", "owner@salon.example"}, nil, WithDeliveryObserver(obs))

	err := svc.AppointmentBooked(context.Background(), confirmedFixture())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bounced")
	assert.Len(t, sender.sent, 2)
	assert.Equal(t, 1, obs.ok)
	assert.Equal(t, 1, obs.failed)
}

func TestAppointmentBookedWithoutRecipientsIsNoop(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, "stub", nil, nil)
	require.NoError(t, svc.AppointmentBooked(context.Background(), confirmedFixture()))
	assert.Empty(t, sender.sent)
}
