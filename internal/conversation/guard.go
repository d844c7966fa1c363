package conversation

import (
	"context"
	"regexp"
	"strings"

	"github.com/wolfman30/salon-booking-assistant/pkg/logging"
)

const (
	guardBlockScore = 0.7
	// guardDeflection is sent instead of calling the model, or instead of a leaky answer.
	guardDeflection = "I can help with our salon services, opening hours and booking appointments. What would you like to do?"
)

type guardRule struct {
	re     *regexp.Regexp
	weight float64
	reason string
}

var inboundRules = []guardRule{
	{regexp.MustCompile(`(?i)\b(ignore|disregard|forget)\b.{0,30}\b(previous|prior|above|earlier)\b.{0,20}\b(instructions?|rules|prompts?)`), 0.9, "override_instructions"},
	{regexp.MustCompile(`(?i)\byou are now\b|\bact as (an? )?(unrestricted|different|new)\b|\bpretend (to be|you are)\b`), 0.75, "role_change"},
	{regexp.MustCompile(`(?i)\b(reveal|show|print|repeat|output)\b.{0,20}\b(system prompt|instructions|hidden rules)\b`), 0.85, "prompt_exfiltration"},
	{regexp.MustCompile(`(?i)\[/?INST\]|<\|im_(start|end)\|>|<\|system\|>|###\s*system\s*:`), 0.8, "token_markers"},
	{regexp.MustCompile(`(?i)\b(developer|debug|god|jailbreak|DAN) mode\b`), 0.8, "mode_switch"},
	{regexp.MustCompile(`(?i)\bbase64\b|\brot13\b`), 0.3, "encoding_hint"},
}

var outboundRules = []guardRule{
	{regexp.MustCompile(`(?i)my (system )?(prompt|instructions?)\s+(is|are|says?|tells?)`), 1, "instructions_disclosure"},
	{regexp.MustCompile(`(?i)(api[_\s]?key|secret|access[_\s]?token)\s*[:=]\s*\S+`), 1, "credential"},
	{regexp.MustCompile(`AKIA[A-Z0-9]{16}`), 1, "aws_key"},
	{regexp.MustCompile(`(?i)(postgres|redis)://\S+`), 1, "connection_string"},
	{regexp.MustCompile(`(?i)\byour (appointment|booking) (is|has been) (confirmed|booked)\b`), 1, "false_confirmation"},
}

// guardVerdict is the outcome of scoring one piece of text against a rule set.
type guardVerdict struct {
	Score   float64
	Reasons []string
}

func (v guardVerdict) blocked() bool { return v.Score >= guardBlockScore }

func scoreText(text string, rules []guardRule) guardVerdict {
	var v guardVerdict
	if strings.TrimSpace(text) == "" {
		return v
	}
	for _, r := range rules {
		if !r.re.MatchString(text) {
			continue
		}
		v.Reasons = append(v.Reasons, r.reason)
		if r.weight > v.Score {
			v.Score = r.weight
		}
	}
	// each extra signal adds a little on top of the strongest one
	if n := len(v.Reasons); n > 1 {
		v.Score += float64(n-1) * 0.1
	}
	if v.Score > 1 {
		v.Score = 1
	}
	return v
}

// GuardedReplier screens the latest customer message before it reaches the
// model and screens the model's answer before it reaches the customer.
// The model never books anything, so answers that claim a confirmation are
// replaced too.
type GuardedReplier struct {
	inner  FallbackReplier
	logger *logging.Logger
}

func NewGuardedReplier(inner FallbackReplier, logger *logging.Logger) *GuardedReplier {
	if inner == nil {
		panic("conversation: fallback replier cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &GuardedReplier{inner: inner, logger: logger}
}

func (g *GuardedReplier) Reply(ctx context.Context, history []ChatMessage) (string, error) {
	if in := scoreText(lastUserMessage(history), inboundRules); in.blocked() {
		g.logger.Warn("fallback message blocked", "score", in.Score, "reasons", in.Reasons)
		return guardDeflection, nil
	}

	reply, err := g.inner.Reply(ctx, history)
	if err != nil {
		return "", err
	}
	if out := scoreText(reply, outboundRules); out.blocked() {
		g.logger.Warn("fallback reply withheld", "reasons", out.Reasons)
		return guardDeflection, nil
	}
	return reply, nil
}

func lastUserMessage(history []ChatMessage) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == ChatRoleUser {
			return history[i].Content
		}
	}
	return ""
}
