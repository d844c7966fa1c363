// Package calendar holds the calendar backends the booking assistant reads
// availability from and commits appointments to.
package calendar

import (
	"context"
	"time"
)

// Event is an existing calendar entry. The booking core only uses it for
// conflict testing and never mutates it.
type Event struct {
	ID      string
	Summary string
	Start   time.Time
	End     time.Time
	Link    string
}

// NewEvent describes an appointment to persist.
type NewEvent struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
}

// Backend is the narrow contract the availability engine and the dialog
// controller need from a calendar.
type Backend interface {
	// ListEvents returns events overlapping [timeMin, timeMax), ordered by
	// start time, with recurring events expanded into single instances.
	ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]Event, error)
	// InsertEvent persists the event and returns a link to it.
	InsertEvent(ctx context.Context, ev NewEvent) (string, error)
}
