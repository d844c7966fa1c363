package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

var calendarTracer = otel.Tracer("salon.internal.calendar")

// GoogleCalendar reads and writes a single Google Calendar.
type GoogleCalendar struct {
	svc        *gcal.Service
	calendarID string
	timezone   string
	loc        *time.Location
}

// NewGoogleCalendarFromServiceAccount authenticates with a service account key
// file scoped to the calendar API.
func NewGoogleCalendarFromServiceAccount(ctx context.Context, credentialsFile, calendarID, timezone string) (*GoogleCalendar, error) {
	if strings.TrimSpace(credentialsFile) == "" {
		return nil, errors.New("calendar: service account file is required")
	}
	return NewGoogleCalendar(ctx, calendarID, timezone,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gcal.CalendarScope),
	)
}

// NewGoogleCalendar builds a client from arbitrary client options. Tests point
// it at an httptest server with option.WithEndpoint.
func NewGoogleCalendar(ctx context.Context, calendarID, timezone string, opts ...option.ClientOption) (*GoogleCalendar, error) {
	if strings.TrimSpace(calendarID) == "" {
		return nil, errors.New("calendar: calendar id is required")
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("calendar: invalid timezone %q: %w", timezone, err)
	}
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar: create google service: %w", err)
	}
	return &GoogleCalendar{
		svc:        svc,
		calendarID: calendarID,
		timezone:   timezone,
		loc:        loc,
	}, nil
}

// ListEvents lists single (expanded) events ordered by start time, following
// every result page.
func (c *GoogleCalendar) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]Event, error) {
	ctx, span := calendarTracer.Start(ctx, "calendar.google.list_events")
	defer span.End()
	span.SetAttributes(
		attribute.String("calendar.time_min", timeMin.Format(time.RFC3339)),
		attribute.String("calendar.time_max", timeMax.Format(time.RFC3339)),
	)

	call := c.svc.Events.List(c.calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")

	var out []Event
	err := call.Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			if item == nil || item.Status == "cancelled" {
				continue
			}
			ev, err := c.toEvent(item)
			if err != nil {
				return err
			}
			out = append(out, ev)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("calendar: list events: %w", err)
	}
	span.SetAttributes(attribute.Int("calendar.event_count", len(out)))
	return out, nil
}

// InsertEvent creates the event and returns its HTML link.
func (c *GoogleCalendar) InsertEvent(ctx context.Context, ev NewEvent) (string, error) {
	ctx, span := calendarTracer.Start(ctx, "calendar.google.insert_event")
	defer span.End()

	tz := ev.TimeZone
	if tz == "" {
		tz = c.timezone
	}
	body := &gcal.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start: &gcal.EventDateTime{
			DateTime: ev.Start.In(c.loc).Format(time.RFC3339),
			TimeZone: tz,
		},
		End: &gcal.EventDateTime{
			DateTime: ev.End.In(c.loc).Format(time.RFC3339),
			TimeZone: tz,
		},
	}
	created, err := c.svc.Events.Insert(c.calendarID, body).Context(ctx).Do()
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("calendar: insert event: %w", err)
	}
	return created.HtmlLink, nil
}

func (c *GoogleCalendar) toEvent(item *gcal.Event) (Event, error) {
	start, err := parseEventTime(item.Start, c.loc)
	if err != nil {
		return Event{}, fmt.Errorf("calendar: event %s start: %w", item.Id, err)
	}
	end, err := parseEventTime(item.End, c.loc)
	if err != nil {
		return Event{}, fmt.Errorf("calendar: event %s end: %w", item.Id, err)
	}
	return Event{
		ID:      item.Id,
		Summary: item.Summary,
		Start:   start,
		End:     end,
		Link:    item.HtmlLink,
	}, nil
}

// parseEventTime reads either a timed (dateTime) or all-day (date) boundary.
func parseEventTime(edt *gcal.EventDateTime, loc *time.Location) (time.Time, error) {
	if edt == nil {
		return time.Time{}, errors.New("missing boundary")
	}
	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return time.Time{}, err
		}
		return t.In(loc), nil
	}
	if edt.Date != "" {
		return time.ParseInLocation("2006-01-02", edt.Date, loc)
	}
	return time.Time{}, errors.New("boundary has neither dateTime nor date")
}

var _ Backend = (*GoogleCalendar)(nil)
