package conversation

import (
	"errors"
	"fmt"

	"github.com/wolfman30/salon-booking-assistant/internal/booking"
	"github.com/wolfman30/salon-booking-assistant/internal/scheduling"
)

// Phase is the controller's position in the booking dialog. The zero value is Idle.
type Phase string

const (
	PhaseIdle                 Phase = ""
	PhaseCollectingService    Phase = "collecting_service"
	PhaseCollectingDateTime   Phase = "collecting_date_time"
	PhaseCollectingName       Phase = "collecting_name"
	PhaseCollectingPhone      Phase = "collecting_phone"
	PhaseAwaitingNewTime      Phase = "awaiting_new_time"
	PhasePromptNewTime        Phase = "prompt_new_time"
	PhaseSuggestNewTime       Phase = "suggest_new_time"
	PhaseAwaitingConfirmation Phase = "awaiting_confirmation"
)

// ErrInvalidState means a caller-supplied state is internally inconsistent.
var ErrInvalidState = errors.New("conversation: invalid dialog state")

// Known reports whether p is one of the defined phases.
func (p Phase) Known() bool {
	switch p {
	case PhaseIdle, PhaseCollectingService, PhaseCollectingDateTime, PhaseCollectingName,
		PhaseCollectingPhone, PhaseAwaitingNewTime, PhasePromptNewTime, PhaseSuggestNewTime,
		PhaseAwaitingConfirmation:
		return true
	}
	return false
}

// String returns "idle" for the zero phase, for logs and metric labels.
func (p Phase) String() string {
	if p == PhaseIdle {
		return "idle"
	}
	return string(p)
}

// DialogState is the envelope the caller stores and sends back on every turn.
type DialogState struct {
	Messages      []ChatMessage        `json:"messages"`
	Phase         Phase                `json:"phase,omitempty"`
	Draft         *booking.Draft       `json:"draft,omitempty"`
	SuggestedSlot *scheduling.Interval `json:"suggested_slot,omitempty"`
}

// Clone deep-copies the state so a turn never aliases the caller's value.
func (s DialogState) Clone() DialogState {
	out := DialogState{
		Messages: make([]ChatMessage, len(s.Messages)),
		Phase:    s.Phase,
		Draft:    s.Draft.Clone(),
	}
	copy(out.Messages, s.Messages)
	if s.SuggestedSlot != nil {
		slot := *s.SuggestedSlot
		out.SuggestedSlot = &slot
	}
	return out
}

// Validate checks that the phase has the companion fields it needs.
func (s DialogState) Validate() error {
	if !s.Phase.Known() {
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidState, s.Phase)
	}
	switch s.Phase {
	case PhaseCollectingDateTime, PhaseCollectingName, PhaseCollectingPhone:
		if s.Draft == nil {
			return fmt.Errorf("%w: phase %s requires a draft", ErrInvalidState, s.Phase)
		}
	case PhaseAwaitingConfirmation:
		if !s.Draft.Complete() {
			return fmt.Errorf("%w: confirmation requires a complete draft", ErrInvalidState)
		}
	case PhaseSuggestNewTime:
		if s.SuggestedSlot == nil {
			return fmt.Errorf("%w: suggest_new_time requires a suggested slot", ErrInvalidState)
		}
	}
	for _, iv := range []*scheduling.Interval{draftSlot(s.Draft), s.SuggestedSlot} {
		if iv != nil && !iv.Start.Before(iv.End) {
			return fmt.Errorf("%w: slot start must precede end", ErrInvalidState)
		}
	}
	return nil
}

func draftSlot(d *booking.Draft) *scheduling.Interval {
	if d == nil {
		return nil
	}
	return d.Slot
}

// Turn is the outcome of one processed message.
type Turn struct {
	Reply string      `json:"reply"`
	State DialogState `json:"state"`
}
