package booking

import "time"

// Confirmed is emitted once a draft has been written to the calendar.
type Confirmed struct {
	Service       string
	CustomerName  string
	CustomerPhone string
	Start         time.Time
	End           time.Time
	EventLink     string
	BookedAt      time.Time
}

// NewConfirmed builds the event from a complete draft.
func NewConfirmed(d *Draft, link string, bookedAt time.Time) Confirmed {
	c := Confirmed{
		Service:       d.Service,
		CustomerName:  d.CustomerName,
		CustomerPhone: d.CustomerPhone,
		EventLink:     link,
		BookedAt:      bookedAt.UTC(),
	}
	if d.Slot != nil {
		c.Start = d.Slot.Start
		c.End = d.Slot.End
	}
	return c
}
