package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/wolfman30/salon-booking-assistant/internal/calendar"
)

var gst = time.FixedZone("GST", 4*60*60)

// monday returns a time on Monday 2026-03-02 plus dayOffset days.
func monday(dayOffset, hour, minute int) time.Time {
	return time.Date(2026, 3, 2+dayOffset, hour, minute, 0, 0, gst)
}

type countingBackend struct {
	inner calendar.Backend
	calls int
	err   error
}

func (c *countingBackend) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]calendar.Event, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.inner.ListEvents(ctx, timeMin, timeMax)
}

func (c *countingBackend) InsertEvent(ctx context.Context, ev calendar.NewEvent) (string, error) {
	return c.inner.InsertEvent(ctx, ev)
}

var errBackendDown = errors.New("backend down")

type stubParser struct {
	result ParsedTime
	ok     bool
	err    error
}

func (s stubParser) Parse(string, time.Time) (ParsedTime, bool, error) {
	return s.result, s.ok, s.err
}
