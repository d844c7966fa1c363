// Package handlers holds the staff-facing admin endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/wolfman30/salon-booking-assistant/internal/bookings"
	"github.com/wolfman30/salon-booking-assistant/internal/calendar"
	"github.com/wolfman30/salon-booking-assistant/pkg/logging"
)

// AppointmentLister reads the appointment ledger.
type AppointmentLister interface {
	Upcoming(ctx context.Context, from time.Time, limit int) ([]bookings.Appointment, error)
}

const (
	defaultExportDays = 7
	maxExportDays     = 31
)

// AdminScheduleHandler lets staff see what the assistant has booked.
type AdminScheduleHandler struct {
	calendar calendar.Backend
	ledger   AppointmentLister
	now      func() time.Time
	logger   *logging.Logger
}

// NewAdminScheduleHandler creates the handler. ledger may be nil when no database is configured.
func NewAdminScheduleHandler(cal calendar.Backend, ledger AppointmentLister, logger *logging.Logger) *AdminScheduleHandler {
	if cal == nil {
		panic("handlers: calendar backend required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminScheduleHandler{calendar: cal, ledger: ledger, now: time.Now, logger: logger}
}

// CalendarICS exports upcoming calendar events as iCalendar.
// GET /admin/calendar.ics?days=7
func (h *AdminScheduleHandler) CalendarICS(w http.ResponseWriter, r *http.Request) {
	days := defaultExportDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxExportDays {
			jsonError(w, "days must be between 1 and 31", http.StatusBadRequest)
			return
		}
		days = n
	}

	now := h.now()
	events, err := h.calendar.ListEvents(r.Context(), now, now.AddDate(0, 0, days))
	if err != nil {
		h.logger.Error("admin: list calendar events failed", "error", err)
		jsonError(w, "calendar unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="appointments.ics"`)
	_, _ = w.Write([]byte(calendar.EncodeICS(events, now.UTC())))
}

// Appointments lists ledger rows from now on.
// GET /admin/appointments?limit=50
func (h *AdminScheduleHandler) Appointments(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		jsonError(w, "appointment ledger not configured", http.StatusServiceUnavailable)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	appts, err := h.ledger.Upcoming(r.Context(), h.now(), limit)
	if err != nil {
		h.logger.Error("admin: list appointments failed", "error", err)
		jsonError(w, "failed to load appointments", http.StatusInternalServerError)
		return
	}
	if appts == nil {
		appts = []bookings.Appointment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": appts})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
