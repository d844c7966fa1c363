package booking

import "errors"

var (
	// ErrCommitRaceLost means the slot was taken between drafting and confirming.
	ErrCommitRaceLost = errors.New("booking: slot no longer available at commit")
	// ErrInvalidDraftField means a name or phone fails its validity check.
	ErrInvalidDraftField = errors.New("booking: invalid draft field")
)
