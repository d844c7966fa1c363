package conversation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/salon-booking-assistant/pkg/logging"
)

const replyCachePrefix = "salon:fallback-reply:"

// CachedReplier memoizes fallback replies in Redis keyed by the exact history,
// so replaying a turn returns the same text without another LLM call.
type CachedReplier struct {
	inner  FallbackReplier
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedReplier wraps inner. A nil redis client disables caching.
func NewCachedReplier(inner FallbackReplier, client *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedReplier {
	if inner == nil {
		panic("conversation: fallback replier cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedReplier{inner: inner, redis: client, ttl: ttl, logger: logger}
}

func (c *CachedReplier) Reply(ctx context.Context, history []ChatMessage) (string, error) {
	if c.redis == nil {
		return c.inner.Reply(ctx, history)
	}
	key, err := replyCacheKey(history)
	if err != nil {
		return c.inner.Reply(ctx, history)
	}

	cached, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		return cached, nil
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("reply cache read failed", "error", err)
	}

	reply, err := c.inner.Reply(ctx, history)
	if err != nil {
		return "", err
	}
	if err := c.redis.Set(ctx, key, reply, c.ttl).Err(); err != nil {
		c.logger.Warn("reply cache write failed", "error", err)
	}
	return reply, nil
}

func replyCacheKey(history []ChatMessage) (string, error) {
	raw, err := json.Marshal(history)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return replyCachePrefix + hex.EncodeToString(sum[:]), nil
}
