package conversation

import (
	"context"
	"errors"
	"strings"
)

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one entry of the dialog history. The same shape is sent to
// the LLM providers, which also accept system prompts.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

type LLMRequest struct {
	Model       string
	System      []string
	Messages    []ChatMessage
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

type LLMResponse struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

// LLMClient is the provider-neutral completion call used by the fallback replier.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

var errNoMessages = errors.New("conversation: completion requires at least one message")

// splitSystem pulls system-role messages out of the history and appends them
// to the explicit system blocks. Empty turns are dropped.
func splitSystem(req LLMRequest) (system []string, turns []ChatMessage) {
	for _, block := range req.System {
		if strings.TrimSpace(block) != "" {
			system = append(system, block)
		}
	}
	for _, msg := range req.Messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		if msg.Role == ChatRoleSystem {
			system = append(system, content)
			continue
		}
		turns = append(turns, ChatMessage{Role: msg.Role, Content: content})
	}
	return system, turns
}
