package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/salon-booking-assistant/internal/booking"
)

const slotLayout = "2006-01-02 03:04 PM"

const (
	replyConfirmPrompt     = "Is this information correct? Please respond with 'Yes' to confirm or 'No' to cancel."
	replyAskPhone          = "Thank you. Now, could you please provide your phone number?"
	replyCancelled         = "I understand. The appointment has not been booked. Is there anything else I can help you with?"
	replyAwaitConfirmation = "I'm waiting for your confirmation about the pending appointment. Please respond with 'Yes' to confirm or 'No' to cancel."
	replySuggestDeclined   = "I understand. Would you like to choose a different time for your appointment?"
	replySuggestReprompt   = "I'm sorry, I didn't understand your response. Please respond with 'Yes' to confirm the suggested time slot, or 'No' to choose a different time."
	replyRaceLost          = "I apologize, but it seems the time slot is no longer available. Would you like to choose a different time?"
	replyNotUnderstood     = "I'm sorry, I couldn't understand the date and time. Could you please specify it more clearly? (e.g., 'next Monday at 2 PM')"
	replyGenericFailure    = "I'm sorry, something went wrong on our side while handling your request. Please try again in a moment."
	fallbackSuffix         = "\n\nIs there anything specific you'd like to know about our services or booking an appointment?"
)

// replies renders customer-facing text with the salon's timezone label and hours.
type replies struct {
	loc        *time.Location
	tzLabel    string
	hoursLabel string
}

func (r replies) clock(t time.Time) string {
	return t.In(r.loc).Format(slotLayout)
}

func (r replies) when(t time.Time) string {
	return fmt.Sprintf("%s %s time", r.clock(t), r.tzLabel)
}

func (r replies) askServiceWithCatalog() string {
	return "I understand you want to book an appointment. What service would you like to book? We offer:\n\n" + booking.NumberedCatalog()
}

func (r replies) askServiceForSlot() string {
	return "I understand you want to book an appointment, what service would you like to book? (e.g., " + booking.ExampleServices + ")"
}

func (r replies) askDateTimeForService(service string) string {
	return fmt.Sprintf("I understand you want to book a %s appointment. What date and time would you prefer? Please note that our business hours are from %s.", service, r.hoursLabel)
}

func (r replies) serviceSelected(service string) string {
	return fmt.Sprintf("Thank you. You've selected %s as your service. Now, could you please provide your preferred date and time for the appointment? (e.g., 'next Monday at 2 PM')", service)
}

func (r replies) missingDateTime() string {
	return fmt.Sprintf("I didn't catch a date and time in your message. Could you please specify when you'd like to schedule the appointment? Remember, our business hours are from %s.", r.hoursLabel)
}

func (r replies) slotFound(d *booking.Draft, next Phase) string {
	prefix := fmt.Sprintf("Great! I've found an available slot for your %s appointment on %s. ", d.Service, r.when(d.Slot.Start))
	switch next {
	case PhaseCollectingService:
		return fmt.Sprintf("Great! I've found an available slot for your appointment on %s. What service would you like to book? (e.g., %s)", r.when(d.Slot.Start), booking.ExampleServices)
	case PhaseCollectingName:
		return prefix + "Could you please provide your full name?"
	case PhaseCollectingPhone:
		return prefix + "Could you please provide your phone number?"
	default:
		return r.summary(d)
	}
}

func (r replies) slotTakenWithSuggestion(requested, suggested time.Time) string {
	return fmt.Sprintf("I'm sorry, but the time slot you requested (%s) is not available. The next available slot is on %s. Would you like to book this slot instead? Please respond with 'Yes' to confirm or 'No' to choose a different time.",
		r.clock(requested), r.when(suggested))
}

func (r replies) slotTakenNoSuggestion(requested time.Time) string {
	return fmt.Sprintf("I'm sorry, but the time slot you requested (%s) is not available, and I couldn't find an available slot in the near future. Would you like to choose a different time?",
		r.clock(requested))
}

func (r replies) suggestionAccepted(start time.Time) string {
	return fmt.Sprintf("Great! I've found an available slot for your appointment on %s. \n\nWhat service would you like to book? (e.g., %s)", r.when(start), booking.ExampleServices)
}

func (r replies) summary(d *booking.Draft) string {
	var b strings.Builder
	b.WriteString("Great! I have the following details for your appointment:\n\n")
	fmt.Fprintf(&b, "Service: %s\n", d.Service)
	fmt.Fprintf(&b, "Date and Time: %s\n", r.when(d.Slot.Start))
	fmt.Fprintf(&b, "Name: %s\n", d.CustomerName)
	fmt.Fprintf(&b, "Phone: %s\n\n", d.CustomerPhone)
	b.WriteString(replyConfirmPrompt)
	return b.String()
}

func (r replies) booked(d *booking.Draft, link string) string {
	return fmt.Sprintf("Great! I've booked your %s appointment for %s. You can view it here: %s\n\nIs there anything else I can help you with?",
		d.Service, r.when(d.Slot.Start), link)
}
