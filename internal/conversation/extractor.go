package conversation

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/wolfman30/salon-booking-assistant/internal/scheduling"
)

// Entities are the spans pulled out of one message. Empty means absent.
type Entities struct {
	DateTimePhrase string
	PersonName     string
	CardinalNumber string
}

// EntityExtractor tags date/time phrases, person names and long numbers.
type EntityExtractor interface {
	Extract(ctx context.Context, text string) (Entities, error)
}

var (
	tomorrowWordRE = regexp.MustCompile(`(?i)\btomorrow\b`)
	personNameRE   = regexp.MustCompile(`(?i)\b(?:my name is|my name's|name:)\s+([A-Za-z][A-Za-z'-]+(?:\s+[A-Za-z][A-Za-z'-]+)?)`)
	cardinalRE     = regexp.MustCompile(`\+?\d[\d\s-]{5,}\d`)
)

// RuleExtractor is the in-process EntityExtractor: dates come from the
// natural-language date parser, names and numbers from patterns.
type RuleExtractor struct {
	parser scheduling.PhraseParser
	loc    *time.Location
	now    func() time.Time
}

// ExtractorOption customizes a RuleExtractor.
type ExtractorOption func(*RuleExtractor)

// WithExtractorClock sets the reference time for relative dates. Pass the
// same function given to WithClock so both resolve against one "now".
func WithExtractorClock(now func() time.Time) ExtractorOption {
	return func(e *RuleExtractor) {
		if now != nil {
			e.now = now
		}
	}
}

// NewRuleExtractor builds an extractor resolving relative dates in loc.
func NewRuleExtractor(parser scheduling.PhraseParser, loc *time.Location, opts ...ExtractorOption) *RuleExtractor {
	if parser == nil {
		parser = scheduling.NewWhenParser()
	}
	if loc == nil {
		loc = time.UTC
	}
	e := &RuleExtractor{parser: parser, loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *RuleExtractor) Extract(ctx context.Context, text string) (Entities, error) {
	if err := ctx.Err(); err != nil {
		return Entities{}, err
	}
	var ents Entities

	parsed, ok, err := e.parser.Parse(text, e.now().In(e.loc))
	if err != nil {
		return Entities{}, err
	}
	if ok {
		phrase := strings.TrimSpace(parsed.Text)
		if tomorrowWordRE.MatchString(text) && !tomorrowWordRE.MatchString(phrase) {
			phrase = "tomorrow " + phrase
		}
		ents.DateTimePhrase = phrase
	}

	if m := personNameRE.FindStringSubmatch(text); m != nil {
		ents.PersonName = strings.TrimSpace(m[1])
	}
	for _, m := range cardinalRE.FindAllString(text, -1) {
		digits := strings.NewReplacer(" ", "", "-", "").Replace(m)
		if len(strings.TrimPrefix(digits, "+")) >= 7 {
			ents.CardinalNumber = digits
			break
		}
	}
	return ents, nil
}
