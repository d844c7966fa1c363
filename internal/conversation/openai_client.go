package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var llmTracer = otel.Tracer("salon.internal.conversation.llm")

type openAIChatAPI interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAILLMClient implements LLMClient with the OpenAI chat completions API.
type OpenAILLMClient struct {
	api   openAIChatAPI
	model string
}

// NewOpenAILLMClient builds a client from an API key.
func NewOpenAILLMClient(apiKey, model string) (*OpenAILLMClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("conversation: openai api key is required")
	}
	return newOpenAILLMClient(openai.NewClient(apiKey), model), nil
}

func newOpenAILLMClient(api openAIChatAPI, model string) *OpenAILLMClient {
	if strings.TrimSpace(model) == "" {
		model = openai.GPT4oMini
	}
	return &OpenAILLMClient{api: api, model: model}
}

// Complete maps the request onto a chat completion and returns the first choice.
func (c *OpenAILLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	ctx, span := llmTracer.Start(ctx, "conversation.openai")
	defer span.End()

	system, turns := splitSystem(req)
	if len(turns) == 0 {
		return LLMResponse{}, errNoMessages
	}
	history := make([]openai.ChatCompletionMessage, 0, len(system)+len(turns))
	if len(system) > 0 {
		history = append(history, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: strings.Join(system, "\n\n"),
		})
	}
	for _, msg := range turns {
		role := openai.ChatMessageRoleUser
		if msg.Role == ChatRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		history = append(history, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}

	model := c.model
	if strings.TrimSpace(req.Model) != "" {
		model = req.Model
	}
	chatReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: history,
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = int(req.MaxTokens)
	}
	if req.Temperature > 0 {
		chatReq.Temperature = req.Temperature
	}
	if req.TopP > 0 {
		chatReq.TopP = req.TopP
	}

	resp, err := c.api.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		span.RecordError(err)
		return LLMResponse{}, fmt.Errorf("conversation: openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		err := errors.New("conversation: openai returned no choices")
		span.RecordError(err)
		return LLMResponse{}, err
	}
	span.SetAttributes(attribute.Int("salon.llm.total_tokens", resp.Usage.TotalTokens))

	choice := resp.Choices[0]
	return LLMResponse{
		Text:       strings.TrimSpace(choice.Message.Content),
		StopReason: string(choice.FinishReason),
		Usage: TokenUsage{
			InputTokens:  int32(resp.Usage.PromptTokens),
			OutputTokens: int32(resp.Usage.CompletionTokens),
			TotalTokens:  int32(resp.Usage.TotalTokens),
		},
	}, nil
}
