package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfman30/salon-booking-assistant/internal/booking"
	"github.com/wolfman30/salon-booking-assistant/internal/scheduling"
)

// FallbackReplier answers free-form messages that no booking step handles.
type FallbackReplier interface {
	Reply(ctx context.Context, history []ChatMessage) (string, error)
}

// FallbackReplierFunc adapts a function to FallbackReplier.
type FallbackReplierFunc func(ctx context.Context, history []ChatMessage) (string, error)

func (f FallbackReplierFunc) Reply(ctx context.Context, history []ChatMessage) (string, error) {
	return f(ctx, history)
}

const (
	assistantMaxTokens   = 400
	assistantTemperature = 0.4
	// assistantHistoryTurns caps how much history is sent to the provider.
	assistantHistoryTurns = 20
)

// LLMReplier answers with an LLM primed with the salon's catalog and hours.
type LLMReplier struct {
	client LLMClient
	model  string
	system string
}

// NewLLMReplier builds a replier. model may be empty when the client carries its own.
func NewLLMReplier(client LLMClient, model string, hours scheduling.Hours, tzLabel string) *LLMReplier {
	if client == nil {
		panic("conversation: llm client cannot be nil")
	}
	return &LLMReplier{client: client, model: model, system: salonSystemPrompt(hours, tzLabel)}
}

func (r *LLMReplier) Reply(ctx context.Context, history []ChatMessage) (string, error) {
	if len(history) > assistantHistoryTurns {
		history = history[len(history)-assistantHistoryTurns:]
	}
	resp, err := r.client.Complete(ctx, LLMRequest{
		Model:       r.model,
		System:      []string{r.system},
		Messages:    history,
		MaxTokens:   assistantMaxTokens,
		Temperature: assistantTemperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func salonSystemPrompt(hours scheduling.Hours, tzLabel string) string {
	var b strings.Builder
	b.WriteString("You are the front-desk assistant of a beauty salon. Answer questions briefly and warmly.\n")
	fmt.Fprintf(&b, "Opening hours are %s %s time, every day.\n", hours.Label(), tzLabel)
	b.WriteString("Services offered:\n")
	for _, svc := range booking.Catalog {
		fmt.Fprintf(&b, "* %s\n", svc.Name)
	}
	b.WriteString("Never confirm a booking yourself. If the customer wants an appointment, ask them to say \"book\" followed by the service and time.")
	return b.String()
}

// CannedReplier returns a fixed answer. It is the "stub" provider for local runs.
type CannedReplier struct {
	Text string
}

const defaultCannedReply = "Thanks for reaching out to our salon! I can help you book manicures, pedicures, facials, hair, waxing, lashes, massages and more."

func (r CannedReplier) Reply(context.Context, []ChatMessage) (string, error) {
	if strings.TrimSpace(r.Text) == "" {
		return defaultCannedReply, nil
	}
	return r.Text, nil
}
