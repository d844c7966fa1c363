// Package booking models the appointment under construction and the salon's
// service catalog.
package booking

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/wolfman30/salon-booking-assistant/internal/scheduling"
)

var phonePattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)

// Draft accumulates an appointment across turns. Empty strings and a nil Slot
// mean the field has not been collected yet.
type Draft struct {
	Service       string               `json:"service,omitempty"`
	Slot          *scheduling.Interval `json:"slot,omitempty"`
	CustomerName  string               `json:"customer_name,omitempty"`
	CustomerPhone string               `json:"customer_phone,omitempty"`
}

// Complete reports whether all four fields are set.
func (d *Draft) Complete() bool {
	return d != nil && d.Service != "" && d.Slot != nil && d.CustomerName != "" && d.CustomerPhone != ""
}

// Clone returns a deep copy so callers can mutate without touching the original.
func (d *Draft) Clone() *Draft {
	if d == nil {
		return nil
	}
	out := *d
	if d.Slot != nil {
		slot := *d.Slot
		out.Slot = &slot
	}
	return &out
}

// Validate runs the name and phone checks on whichever of them are set.
func (d *Draft) Validate() error {
	if d == nil {
		return nil
	}
	var problems []string
	if d.CustomerName != "" && !ValidName(d.CustomerName) {
		problems = append(problems, "customer name needs first and last name")
	}
	if d.CustomerPhone != "" && !ValidPhone(d.CustomerPhone) {
		problems = append(problems, "customer phone must be 9-15 digits")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDraftField, strings.Join(problems, "; "))
	}
	return nil
}

// EventSummary is the calendar title, e.g. "Classic manicure Appointment".
func (d *Draft) EventSummary() string {
	return capitalize(d.Service) + " Appointment"
}

// EventDescription lists the booking details for the calendar entry.
func (d *Draft) EventDescription() string {
	return fmt.Sprintf("Service: %s\nName: %s\nPhone: %s", d.Service, d.CustomerName, d.CustomerPhone)
}

// ValidName requires at least two whitespace-separated tokens.
func ValidName(name string) bool {
	return len(strings.Fields(name)) >= 2
}

// ValidPhone accepts 9-15 digits with an optional leading + and country code 1.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
