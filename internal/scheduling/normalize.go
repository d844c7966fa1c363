package scheduling

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var tomorrowRE = regexp.MustCompile(`(?i)\btomorrow\b`)

// Normalizer turns a date/time phrase into a business-hours appointment interval.
type Normalizer struct {
	parser PhraseParser
	hours  Hours
	length time.Duration
}

// NewNormalizer builds a normalizer producing intervals of the given length.
// A nil parser uses NewWhenParser.
func NewNormalizer(parser PhraseParser, hours Hours, length time.Duration) *Normalizer {
	if parser == nil {
		parser = NewWhenParser()
	}
	if length <= 0 {
		length = time.Hour
	}
	return &Normalizer{parser: parser, hours: hours, length: length}
}

// Normalize resolves phrase against now:
//   - a clock time without a date lands on now's date, and on the next day if
//     that time has already passed during business hours or the business day
//     is over;
//   - a date without a clock time starts at opening;
//   - "tomorrow" adds a day unless the parser already moved off today;
//   - the start snaps into business hours and the end never passes closing.
func (n *Normalizer) Normalize(phrase string, now time.Time) (Interval, error) {
	loc := n.hours.Location
	now = now.In(loc)
	if strings.TrimSpace(phrase) == "" {
		return Interval{}, ErrNotUnderstood
	}

	parsed, ok, err := n.parser.Parse(phrase, now)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: %v", ErrNotUnderstood, err)
	}
	if !ok {
		return Interval{}, ErrNotUnderstood
	}

	t := parsed.Time.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc)
	if !parsed.HasClock {
		start = n.hours.OpeningOn(start)
	}
	if !parsed.HasDate {
		start = time.Date(now.Year(), now.Month(), now.Day(), start.Hour(), start.Minute(), 0, 0, loc)
		// a pre-opening time keeps today's opening while today is still bookable
		dayOpen := now.Before(n.hours.ClosingOn(now))
		if start.Before(now) && (!dayOpen || !start.Before(n.hours.OpeningOn(start))) {
			start = start.AddDate(0, 0, 1)
		}
	}
	if tomorrowRE.MatchString(phrase) && sameDay(start, now) {
		start = start.AddDate(0, 0, 1)
	}

	start = n.hours.Snap(start)
	end := start.Add(n.length)
	if closing := n.hours.ClosingOn(start); end.After(closing) {
		end = closing
	}
	return NewInterval(start, end)
}

// Length is the default appointment length.
func (n *Normalizer) Length() time.Duration {
	return n.length
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
