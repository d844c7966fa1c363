package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/salon-booking-assistant/internal/config"
	"github.com/wolfman30/salon-booking-assistant/internal/conversation"
	"github.com/wolfman30/salon-booking-assistant/internal/scheduling"
	"github.com/wolfman30/salon-booking-assistant/pkg/logging"
)

// BuildFallbackReplier wires the assistant used for off-script messages:
// LLM_PROVIDER, optionally backed by LLM_FALLBACK_PROVIDER, screened by the
// prompt guard and cached in Redis when a client is given. The returned closers release provider clients.
func BuildFallbackReplier(ctx context.Context, cfg *appconfig.Config, hours scheduling.Hours, rdb *redis.Client, loadAWS AWSConfigLoader, logger *logging.Logger) (conversation.FallbackReplier, []func() error, error) {
	var closers []func() error

	primary, closer, err := buildLLMClient(ctx, cfg.LLMProvider, cfg, loadAWS)
	if err != nil {
		return nil, nil, err
	}
	if closer != nil {
		closers = append(closers, closer)
	}
	if primary == nil {
		logger.Warn("no LLM provider configured; using canned assistant replies")
		return conversation.CannedReplier{}, closers, nil
	}

	client := primary
	if fb := cfg.LLMFallbackProvider; fb != "" && fb != cfg.LLMProvider {
		secondary, closer, err := buildLLMClient(ctx, fb, cfg, loadAWS)
		if err != nil {
			return nil, closers, err
		}
		if closer != nil {
			closers = append(closers, closer)
		}
		if secondary != nil {
			client = conversation.NewFallbackLLMClient(primary, secondary, logger)
			logger.Info("llm fallback enabled", "primary", cfg.LLMProvider, "fallback", fb)
		}
	}

	var replier conversation.FallbackReplier = conversation.NewGuardedReplier(
		conversation.NewLLMReplier(client, "", hours, cfg.BusinessTZLabel), logger)
	if rdb != nil {
		replier = conversation.NewCachedReplier(replier, rdb, cfg.ReplyCacheTTL, logger)
	}
	logger.Info("using llm assistant", "provider", cfg.LLMProvider, "reply_cache", rdb != nil)
	return replier, closers, nil
}

// buildLLMClient returns nil for the stub provider.
func buildLLMClient(ctx context.Context, provider string, cfg *appconfig.Config, loadAWS AWSConfigLoader) (conversation.LLMClient, func() error, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "stub":
		return nil, nil, nil
	case "openai":
		c, err := conversation.NewOpenAILLMClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: openai: %w", err)
		}
		return c, nil, nil
	case "gemini":
		c, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: gemini: %w", err)
		}
		return c, c.Close, nil
	case "bedrock":
		if strings.TrimSpace(cfg.BedrockModelID) == "" {
			return nil, nil, fmt.Errorf("bootstrap: bedrock: BEDROCK_MODEL_ID is required")
		}
		if loadAWS == nil {
			return nil, nil, fmt.Errorf("bootstrap: bedrock: no AWS config loader")
		}
		awsCfg, err := loadAWS(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		return conversation.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID), nil, nil
	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown LLM provider %q", provider)
	}
}
