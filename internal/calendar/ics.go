package calendar

import (
	"time"

	ical "github.com/arran4/golang-ical"
)

const icsProductID = "-//Salon Booking Assistant//Appointments//EN"

// EncodeICS renders events as a PUBLISH iCalendar feed. stamp is used as
// DTSTAMP for every entry.
func EncodeICS(events []Event, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(icsProductID)

	for _, ev := range events {
		vevent := cal.AddEvent(ev.ID)
		vevent.SetDtStampTime(stamp)
		vevent.SetStartAt(ev.Start)
		vevent.SetEndAt(ev.End)
		if ev.Summary != "" {
			vevent.SetSummary(ev.Summary)
		}
		if ev.Link != "" {
			vevent.SetURL(ev.Link)
		}
	}
	return cal.Serialize()
}
