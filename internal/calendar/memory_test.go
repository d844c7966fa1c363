package calendar

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
}

func TestMemoryCalendarListOverlapOrdered(t *testing.T) {
	cal := NewMemoryCalendar(
		Event{ID: "late", Start: at(15, 0), End: at(16, 0)},
		Event{ID: "early", Start: at(10, 0), End: at(11, 0)},
		Event{ID: "outside", Start: at(17, 0), End: at(18, 0)},
	)

	events, err := cal.ListEvents(context.Background(), at(10, 30), at(15, 30))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "early", events[0].ID)
	assert.Equal(t, "late", events[1].ID)
}

func TestMemoryCalendarTouchingBoundariesDoNotOverlap(t *testing.T) {
	cal := NewMemoryCalendar(Event{ID: "a", Start: at(10, 0), End: at(11, 0)})

	events, err := cal.ListEvents(context.Background(), at(11, 0), at(12, 0))
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = cal.ListEvents(context.Background(), at(9, 0), at(10, 0))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestMemoryCalendarInsertThenList(t *testing.T) {
	cal := NewMemoryCalendar()
	link, err := cal.InsertEvent(context.Background(), NewEvent{
		Summary: "Waxing Appointment",
		Start:   at(12, 0),
		End:     at(13, 0),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "memory://events/"))
	assert.Equal(t, 1, cal.Len())

	events, err := cal.ListEvents(context.Background(), at(12, 30), at(12, 45))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Waxing Appointment", events[0].Summary)
	assert.Equal(t, link, events[0].Link)
}

func TestMemoryCalendarRejectsInvertedEvent(t *testing.T) {
	cal := NewMemoryCalendar()
	_, err := cal.InsertEvent(context.Background(), NewEvent{Start: at(13, 0), End: at(12, 0)})
	assert.Error(t, err)
	assert.Zero(t, cal.Len())
}

func TestMemoryCalendarHonorsCancelledContext(t *testing.T) {
	cal := NewMemoryCalendar()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := cal.ListEvents(ctx, at(9, 0), at(18, 0))
	assert.ErrorIs(t, err, context.Canceled)
}
