package bootstrap

import (
	"context"
	"fmt"

	"github.com/wolfman30/salon-booking-assistant/internal/calendar"
	appconfig "github.com/wolfman30/salon-booking-assistant/internal/config"
	"github.com/wolfman30/salon-booking-assistant/pkg/logging"
)

// BuildCalendar selects the calendar backend and wraps it with request metrics.
func BuildCalendar(ctx context.Context, cfg *appconfig.Config, observer calendar.RequestObserver, logger *logging.Logger) (calendar.Backend, error) {
	var backend calendar.Backend
	switch cfg.CalendarProvider {
	case "google":
		gc, err := calendar.NewGoogleCalendarFromServiceAccount(ctx, cfg.GoogleServiceAccount, cfg.GoogleCalendarID, cfg.BusinessTimezone)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: google calendar: %w", err)
		}
		logger.Info("using google calendar", "calendar_id", cfg.GoogleCalendarID)
		backend = gc
	case "", "memory":
		logger.Warn("using in-memory calendar; bookings are lost on restart")
		backend = calendar.NewMemoryCalendar()
	default:
		return nil, fmt.Errorf("bootstrap: unknown CALENDAR_PROVIDER %q", cfg.CalendarProvider)
	}
	return calendar.NewInstrumented(backend, observer, logger), nil
}
