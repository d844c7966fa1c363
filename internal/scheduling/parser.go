package scheduling

import (
	"fmt"
	"regexp"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var (
	dateWordRE    = regexp.MustCompile(`(?i)\b(today|tonight|tomorrow|yesterday|mon(day)?|tue(s|sday)?|wed(nesday)?|thu(r|rs|rsday)?|fri(day)?|sat(urday)?|sun(day)?|next|last|this|week|month|jan(uary)?|feb(ruary)?|mar(ch)?|apr(il)?|may|june?|july?|aug(ust)?|sep(t|tember)?|oct(ober)?|nov(ember)?|dec(ember)?)\b|\d{1,2}[/.-]\d{1,2}`)
	relativeRE    = regexp.MustCompile(`(?i)\bin\s+(\d+|an?|one|two|three|few)\s+(minutes?|hours?|days?|weeks?)\b`)
	// a bare hour or day number right after or before the match that the rules did not consume
	strayAfterRE  = regexp.MustCompile(`(?i)^\s*(?:at\s+|@\s*|on\s+(?:the\s+)?)?\d{1,2}(?::\d{2})?(?:st|nd|rd|th)?\b`)
	strayBeforeRE = regexp.MustCompile(`(?i)\b\d{1,2}(?::\d{2})?(?:st|nd|rd|th)?\s*(?:at\s*|@\s*|on\s*)?$`)
	clockRE       = regexp.MustCompile(`(?i)\d{1,2}\s*(:\d{2})?\s*(a\.?m\.?|p\.?m\.?)|\b\d{1,2}:\d{2}\b|\b(noon|midday|midnight|morning|afternoon|evening|night)\b|\bin\s+\S+\s+(minutes?|hours?)\b`)
)

// ParsedTime is one timestamp found in free text plus what the text pinned down.
type ParsedTime struct {
	Time     time.Time
	Text     string
	HasDate  bool
	HasClock bool
}

// PhraseParser finds a timestamp in free text relative to base.
type PhraseParser interface {
	Parse(text string, base time.Time) (ParsedTime, bool, error)
}

// WhenParser is the PhraseParser backed by olebedev/when English rules.
type WhenParser struct {
	w *when.Parser
}

// NewWhenParser builds a parser with the English and common rule sets.
func NewWhenParser() *WhenParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &WhenParser{w: w}
}

// Parse returns ok=false when the text holds no date or time, or when a
// number next to the match was left out of it ("tomorrow at 10", "the 5th
// at 4pm"): guessing would book the wrong time, so the caller re-asks.
func (p *WhenParser) Parse(text string, base time.Time) (ParsedTime, bool, error) {
	r, err := p.w.Parse(text, base)
	if err != nil {
		return ParsedTime{}, false, fmt.Errorf("scheduling: parse %q: %w", text, err)
	}
	if r == nil {
		return ParsedTime{}, false, nil
	}
	if hasStrayNumber(text, r.Index, len(r.Text)) {
		return ParsedTime{}, false, nil
	}
	return ParsedTime{
		Time:     r.Time,
		Text:     r.Text,
		HasDate:  dateWordRE.MatchString(r.Text) || relativeRE.MatchString(r.Text),
		HasClock: clockRE.MatchString(r.Text),
	}, true, nil
}

func hasStrayNumber(text string, index, length int) bool {
	if index < 0 || index+length > len(text) {
		return false
	}
	return strayAfterRE.MatchString(text[index+length:]) || strayBeforeRE.MatchString(text[:index])
}
