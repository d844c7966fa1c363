package scheduling

import (
	"fmt"
	"time"
)

// Interval is a half-open [Start, End) span in the business timezone.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewInterval builds an interval, rejecting empty or inverted spans.
func NewInterval(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, fmt.Errorf("%w: %s >= %s", ErrInvalidInterval, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Interval{Start: start, End: end}, nil
}

// Duration is End - Start.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// In converts both boundaries to loc.
func (i Interval) In(loc *time.Location) Interval {
	return Interval{Start: i.Start.In(loc), End: i.End.In(loc)}
}

// Hours is the daily business window [Open, Close) in a single timezone.
type Hours struct {
	Open     int
	Close    int
	Location *time.Location
}

// NewHours validates the window. Open must precede Close on the same day.
func NewHours(open, close int, loc *time.Location) (Hours, error) {
	if open < 0 || close > 24 || open >= close {
		return Hours{}, fmt.Errorf("scheduling: invalid business hours %d-%d", open, close)
	}
	if loc == nil {
		loc = time.UTC
	}
	return Hours{Open: open, Close: close, Location: loc}, nil
}

// DefaultHours is 09:00-18:00 in loc.
func DefaultHours(loc *time.Location) Hours {
	h, _ := NewHours(9, 18, loc)
	return h
}

// OpeningOn returns the opening time on t's calendar day.
func (h Hours) OpeningOn(t time.Time) time.Time {
	t = t.In(h.Location)
	return time.Date(t.Year(), t.Month(), t.Day(), h.Open, 0, 0, 0, h.Location)
}

// ClosingOn returns the closing time on t's calendar day.
func (h Hours) ClosingOn(t time.Time) time.Time {
	t = t.In(h.Location)
	return time.Date(t.Year(), t.Month(), t.Day(), h.Close, 0, 0, 0, h.Location)
}

// NextOpening returns the opening time on the day after t.
func (h Hours) NextOpening(t time.Time) time.Time {
	return h.OpeningOn(t).AddDate(0, 0, 1)
}

// Snap moves t into the window: before opening goes to opening the same day,
// at or after closing goes to opening the next day.
func (h Hours) Snap(t time.Time) time.Time {
	t = t.In(h.Location)
	if t.Before(h.OpeningOn(t)) {
		return h.OpeningOn(t)
	}
	if !t.Before(h.ClosingOn(t)) {
		return h.NextOpening(t)
	}
	return t
}

// Contains reports whether iv starts at or after opening and ends no later
// than closing of its start day. Closing itself is a valid end.
func (h Hours) Contains(iv Interval) bool {
	start := iv.Start.In(h.Location)
	if start.Before(h.OpeningOn(start)) {
		return false
	}
	return !iv.End.After(h.ClosingOn(start))
}

// Label renders the window for customer-facing text, e.g. "9 AM to 6 PM".
func (h Hours) Label() string {
	return fmt.Sprintf("%s to %s", clockLabel(h.Open), clockLabel(h.Close))
}

func clockLabel(hour int) string {
	switch {
	case hour == 0 || hour == 24:
		return "12 AM"
	case hour == 12:
		return "12 PM"
	case hour > 12:
		return fmt.Sprintf("%d PM", hour-12)
	default:
		return fmt.Sprintf("%d AM", hour)
	}
}
