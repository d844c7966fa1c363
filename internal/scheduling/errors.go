package scheduling

import "errors"

var (
	// ErrNotUnderstood means no timestamp could be extracted from a phrase.
	ErrNotUnderstood = errors.New("scheduling: date/time not understood")
	// ErrSlotUnavailable means the requested interval is out of hours or taken.
	ErrSlotUnavailable = errors.New("scheduling: slot unavailable")
	// ErrNoSlotFound means the bounded forward search found nothing.
	ErrNoSlotFound = errors.New("scheduling: no slot found")
	// ErrInvalidInterval means start is not strictly before end.
	ErrInvalidInterval = errors.New("scheduling: interval start must be before end")
)
