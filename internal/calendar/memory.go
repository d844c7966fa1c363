package calendar

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryCalendar is an in-process Backend used for local development and tests.
type MemoryCalendar struct {
	mu     sync.RWMutex
	events []Event
}

// NewMemoryCalendar returns an empty calendar seeded with the given events.
func NewMemoryCalendar(seed ...Event) *MemoryCalendar {
	c := &MemoryCalendar{}
	for _, ev := range seed {
		c.Add(ev)
	}
	return c
}

// Add stores an event as-is, assigning an ID when missing.
func (c *MemoryCalendar) Add(ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	sort.SliceStable(c.events, func(i, j int) bool {
		return c.events[i].Start.Before(c.events[j].Start)
	})
}

// ListEvents returns events overlapping the range, ordered by start.
func (c *MemoryCalendar) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []Event
	for _, ev := range c.events {
		if ev.Start.Before(timeMax) && ev.End.After(timeMin) {
			out = append(out, ev)
		}
	}
	return out, nil
}

// InsertEvent stores the event and returns a memory:// link.
func (c *MemoryCalendar) InsertEvent(ctx context.Context, ev NewEvent) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !ev.Start.Before(ev.End) {
		return "", errors.New("calendar: event start must be before end")
	}
	id := uuid.NewString()
	link := "memory://events/" + id
	c.Add(Event{
		ID:      id,
		Summary: ev.Summary,
		Start:   ev.Start,
		End:     ev.End,
		Link:    link,
	})
	return link, nil
}

// Len reports how many events are stored.
func (c *MemoryCalendar) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.events)
}

var _ Backend = (*MemoryCalendar)(nil)
