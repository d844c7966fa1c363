package conversation

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/salon-booking-assistant/internal/booking"
	"github.com/wolfman30/salon-booking-assistant/internal/calendar"
	"github.com/wolfman30/salon-booking-assistant/internal/scheduling"
	"github.com/wolfman30/salon-booking-assistant/pkg/logging"
)

var controllerTracer = otel.Tracer("salon.internal.conversation.controller")

var bookingIntentRE = regexp.MustCompile(`(?i)\b(book|schedule|appointment)\b`)

// ErrEmptyMessage is returned for blank input; nothing is recorded.
var ErrEmptyMessage = errors.New("conversation: message is empty")

// BookingObserver is told about every committed appointment. Its errors are
// logged and never undo the calendar write.
type BookingObserver interface {
	AppointmentBooked(ctx context.Context, confirmed booking.Confirmed) error
}

// TurnObserver records per-turn metrics.
type TurnObserver interface {
	ObserveTurn(phase, outcome string, seconds float64)
	ObserveCommit(result string)
}

// Dependencies are the collaborators the controller needs.
type Dependencies struct {
	Extractor  EntityExtractor
	Normalizer *scheduling.Normalizer
	Engine     *scheduling.Engine
	Calendar   calendar.Backend
	Fallback   FallbackReplier
}

// ControllerOption customises a Controller.
type ControllerOption func(*Controller)

// WithObservers registers commit observers, notified in order.
func WithObservers(observers ...BookingObserver) ControllerOption {
	return func(c *Controller) {
		for _, o := range observers {
			if o != nil {
				c.observers = append(c.observers, o)
			}
		}
	}
}

// WithTurnObserver attaches turn metrics.
func WithTurnObserver(o TurnObserver) ControllerOption {
	return func(c *Controller) { c.metrics = o }
}

// WithControllerLogger attaches a logger.
func WithControllerLogger(logger *logging.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithTimezoneLabel sets the label appended to times in replies, e.g. "UAE".
func WithTimezoneLabel(label string) ControllerOption {
	return func(c *Controller) {
		if strings.TrimSpace(label) != "" {
			c.text.tzLabel = label
		}
	}
}

// Controller runs the slot-filling booking dialog. It holds no per-caller
// state: everything lives in the DialogState passed to ProcessTurn.
type Controller struct {
	extractor  EntityExtractor
	normalizer *scheduling.Normalizer
	engine     *scheduling.Engine
	calendar   calendar.Backend
	fallback   FallbackReplier
	observers  []BookingObserver
	metrics    TurnObserver
	logger     *logging.Logger
	now        func() time.Time
	text       replies
}

// NewController wires the dialog controller.
func NewController(deps Dependencies, opts ...ControllerOption) *Controller {
	if deps.Extractor == nil || deps.Normalizer == nil || deps.Engine == nil || deps.Calendar == nil || deps.Fallback == nil {
		panic("conversation: controller dependencies cannot be nil")
	}
	c := &Controller{
		extractor:  deps.Extractor,
		normalizer: deps.Normalizer,
		engine:     deps.Engine,
		calendar:   deps.Calendar,
		fallback:   deps.Fallback,
		logger:     logging.Default(),
		now:        time.Now,
		text: replies{
			loc:        deps.Engine.Hours().Location,
			tzLabel:    "local",
			hoursLabel: deps.Engine.Hours().Label(),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProcessTurn handles one customer message against the caller-held state and
// returns the reply plus the state to hand back next time. Backend failures
// become a generic apology; the returned state then only gains the two
// history entries. An error is returned only for blank messages or an
// inconsistent state.
func (c *Controller) ProcessTurn(ctx context.Context, message string, state DialogState) (Turn, error) {
	started := time.Now()
	message = strings.TrimSpace(message)
	if message == "" {
		return Turn{}, ErrEmptyMessage
	}
	if err := state.Validate(); err != nil {
		return Turn{}, err
	}

	ctx, span := controllerTracer.Start(ctx, "conversation.process_turn")
	defer span.End()
	span.SetAttributes(attribute.String("salon.phase.before", state.Phase.String()))

	next := state.Clone()
	next.Messages = append(next.Messages, ChatMessage{Role: ChatRoleUser, Content: message})

	outcome := "ok"
	reply, err := c.step(ctx, message, &next)
	if err != nil {
		span.RecordError(err)
		c.logger.Error("booking turn failed", "error", err, "phase", state.Phase.String())
		outcome = "error"
		next = state.Clone()
		next.Messages = append(next.Messages, ChatMessage{Role: ChatRoleUser, Content: message})
		reply = replyGenericFailure
	}
	next.Messages = append(next.Messages, ChatMessage{Role: ChatRoleAssistant, Content: reply})

	span.SetAttributes(attribute.String("salon.phase.after", next.Phase.String()))
	if c.metrics != nil {
		c.metrics.ObserveTurn(state.Phase.String(), outcome, time.Since(started).Seconds())
	}
	return Turn{Reply: reply, State: next}, nil
}

func (c *Controller) step(ctx context.Context, message string, st *DialogState) (string, error) {
	switch st.Phase {
	case PhaseCollectingService:
		return c.collectService(message, st), nil
	case PhaseCollectingDateTime, PhaseAwaitingNewTime, PhasePromptNewTime:
		return c.collectDateTime(ctx, message, st)
	case PhaseSuggestNewTime:
		return c.answerSuggestion(message, st), nil
	case PhaseCollectingName:
		return c.collectName(message, st), nil
	case PhaseCollectingPhone:
		return c.collectPhone(message, st), nil
	case PhaseAwaitingConfirmation:
		return c.confirm(ctx, message, st)
	default:
		return c.idle(ctx, message, st)
	}
}

func (c *Controller) idle(ctx context.Context, message string, st *DialogState) (string, error) {
	ents, err := c.extractor.Extract(ctx, message)
	if err != nil {
		return "", fmt.Errorf("conversation: extract entities: %w", err)
	}
	svc, hasService := booking.MatchService(message)

	var slot *scheduling.Interval
	if ents.DateTimePhrase != "" {
		if iv, err := c.normalizer.Normalize(ents.DateTimePhrase, c.now()); err == nil {
			slot = &iv
		}
	}

	if !bookingIntentRE.MatchString(message) && !hasService && slot == nil {
		reply, err := c.fallback.Reply(ctx, st.Messages)
		if err != nil {
			return "", fmt.Errorf("conversation: fallback reply: %w", err)
		}
		return reply + fallbackSuffix, nil
	}

	draft := &booking.Draft{}
	if ents.PersonName != "" && booking.ValidName(ents.PersonName) {
		draft.CustomerName = ents.PersonName
	}
	if ents.CardinalNumber != "" && booking.ValidPhone(ents.CardinalNumber) {
		draft.CustomerPhone = ents.CardinalNumber
	}
	st.Draft = draft
	st.SuggestedSlot = nil

	switch {
	case !hasService && slot == nil:
		st.Phase = PhaseCollectingService
		return c.text.askServiceWithCatalog(), nil
	case !hasService:
		draft.Slot = slot
		st.Phase = PhaseCollectingService
		return c.text.askServiceForSlot(), nil
	case slot == nil:
		draft.Service = svc.Name
		st.Phase = PhaseCollectingDateTime
		return c.text.askDateTimeForService(svc.Name), nil
	default:
		draft.Service = svc.Name
		return c.offerSlot(ctx, *slot, st)
	}
}

func (c *Controller) collectService(message string, st *DialogState) string {
	if st.Draft == nil {
		st.Draft = &booking.Draft{}
	}
	st.Draft.Service = message
	st.Phase = PhaseCollectingDateTime
	return c.text.serviceSelected(message)
}

func (c *Controller) collectDateTime(ctx context.Context, message string, st *DialogState) (string, error) {
	ents, err := c.extractor.Extract(ctx, message)
	if err != nil {
		return "", fmt.Errorf("conversation: extract entities: %w", err)
	}
	if ents.DateTimePhrase == "" {
		return c.text.missingDateTime(), nil
	}
	iv, err := c.normalizer.Normalize(ents.DateTimePhrase, c.now())
	if err != nil {
		if errors.Is(err, scheduling.ErrNotUnderstood) {
			return replyNotUnderstood, nil
		}
		return "", err
	}
	if st.Draft == nil {
		st.Draft = &booking.Draft{}
	}
	return c.offerSlot(ctx, iv, st)
}

// offerSlot checks iv and either stores it and moves to the next missing
// field, or proposes the next free slot.
func (c *Controller) offerSlot(ctx context.Context, iv scheduling.Interval, st *DialogState) (string, error) {
	ok, err := c.engine.IsAvailable(ctx, iv)
	if err != nil {
		return "", err
	}
	if ok {
		st.Draft.Slot = &iv
		st.SuggestedSlot = nil
		st.Phase = nextMissing(st.Draft)
		return c.text.slotFound(st.Draft, st.Phase), nil
	}

	c.logger.Info("requested slot unavailable", "error", scheduling.ErrSlotUnavailable, "start", iv.Start.Format(time.RFC3339))
	suggestion, found, err := c.engine.FindNextSlot(ctx, iv.Start, c.normalizer.Length())
	if err != nil {
		return "", err
	}
	if !found {
		c.logger.Info("forward search exhausted", "error", scheduling.ErrNoSlotFound, "start", iv.Start.Format(time.RFC3339))
		st.SuggestedSlot = nil
		st.Phase = PhaseAwaitingNewTime
		return c.text.slotTakenNoSuggestion(iv.Start), nil
	}
	st.SuggestedSlot = &suggestion
	st.Phase = PhaseSuggestNewTime
	return c.text.slotTakenWithSuggestion(iv.Start, suggestion.Start), nil
}

func (c *Controller) answerSuggestion(message string, st *DialogState) string {
	switch yesNo(message) {
	case answerYes:
		if st.Draft == nil {
			st.Draft = &booking.Draft{}
		}
		slot := *st.SuggestedSlot
		st.Draft.Slot = &slot
		st.SuggestedSlot = nil
		st.Phase = PhaseCollectingService
		return c.text.suggestionAccepted(slot.Start)
	case answerNo:
		st.SuggestedSlot = nil
		st.Phase = PhaseAwaitingNewTime
		return replySuggestDeclined
	default:
		return replySuggestReprompt
	}
}

func (c *Controller) collectName(message string, st *DialogState) string {
	st.Draft.CustomerName = message
	if !booking.ValidName(message) {
		c.logger.Debug("customer name failed validation", "error", booking.ErrInvalidDraftField)
	}
	st.Phase = PhaseCollectingPhone
	return replyAskPhone
}

func (c *Controller) collectPhone(message string, st *DialogState) string {
	st.Draft.CustomerPhone = message
	if err := st.Draft.Validate(); err != nil {
		c.logger.Debug("draft accepted with invalid fields", "error", err)
	}
	st.Phase = nextMissing(st.Draft)
	switch st.Phase {
	case PhaseAwaitingConfirmation:
		return c.text.summary(st.Draft)
	case PhaseCollectingService:
		return c.text.askServiceForSlot()
	case PhaseCollectingDateTime:
		return c.text.missingDateTime()
	default:
		return "Could you please provide your full name?"
	}
}

func (c *Controller) confirm(ctx context.Context, message string, st *DialogState) (string, error) {
	switch yesNo(message) {
	case answerYes:
		return c.commit(ctx, st)
	case answerNo:
		st.Draft = nil
		st.SuggestedSlot = nil
		st.Phase = PhaseIdle
		if c.metrics != nil {
			c.metrics.ObserveCommit("cancelled")
		}
		return replyCancelled, nil
	default:
		return replyAwaitConfirmation, nil
	}
}

// commit re-checks the slot immediately before the calendar write.
func (c *Controller) commit(ctx context.Context, st *DialogState) (string, error) {
	ctx, span := controllerTracer.Start(ctx, "conversation.commit")
	defer span.End()

	draft := st.Draft
	loc := c.engine.Hours().Location
	slot := draft.Slot.In(loc)
	ok, err := c.engine.IsAvailable(ctx, slot)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	if !ok {
		c.logger.Warn("slot taken before confirmation", "error", booking.ErrCommitRaceLost, "start", slot.Start.Format(time.RFC3339))
		span.RecordError(booking.ErrCommitRaceLost)
		if c.metrics != nil {
			c.metrics.ObserveCommit("race_lost")
		}
		st.Phase = PhaseAwaitingNewTime
		return replyRaceLost, nil
	}

	link, err := c.calendar.InsertEvent(ctx, calendar.NewEvent{
		Summary:     draft.EventSummary(),
		Description: draft.EventDescription(),
		Start:       slot.Start,
		End:         slot.End,
		TimeZone:    loc.String(),
	})
	if err != nil {
		span.RecordError(err)
		if c.metrics != nil {
			c.metrics.ObserveCommit("error")
		}
		return "", fmt.Errorf("conversation: insert event: %w", err)
	}
	if c.metrics != nil {
		c.metrics.ObserveCommit("booked")
	}
	c.logger.Info("appointment booked", "service", draft.Service, "start", slot.Start.Format(time.RFC3339), "link", link)

	confirmed := booking.NewConfirmed(draft, link, c.now())
	for _, o := range c.observers {
		if err := o.AppointmentBooked(ctx, confirmed); err != nil {
			c.logger.Error("booking observer failed", "error", err, "link", link)
		}
	}

	reply := c.text.booked(draft, link)
	st.Draft = nil
	st.SuggestedSlot = nil
	st.Phase = PhaseIdle
	return reply, nil
}

// nextMissing returns the phase that collects the first unset draft field.
func nextMissing(d *booking.Draft) Phase {
	switch {
	case d.Service == "":
		return PhaseCollectingService
	case d.Slot == nil:
		return PhaseCollectingDateTime
	case d.CustomerName == "":
		return PhaseCollectingName
	case d.CustomerPhone == "":
		return PhaseCollectingPhone
	default:
		return PhaseAwaitingConfirmation
	}
}

type answer int

const (
	answerOther answer = iota
	answerYes
	answerNo
)

func yesNo(message string) answer {
	switch strings.ToLower(strings.Trim(strings.TrimSpace(message), ".!")) {
	case "yes":
		return answerYes
	case "no":
		return answerNo
	}
	return answerOther
}
