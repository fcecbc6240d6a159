package tracking

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalid            = errors.New("invalid tracking number")
	ErrMalformed          = fmt.Errorf("%w: expected CF24, a 4 digit year and a sequence without leading zeros", ErrInvalid)
	ErrYearMismatch       = fmt.Errorf("%w: year is not the current year", ErrInvalid)
	ErrSequenceOutOfRange = fmt.Errorf("%w: sequence must be between %d and %d", ErrInvalid, MinSequence, MaxSequence)
)

// Validate checks candidate against the tracking number format and the calendar year of now.
func Validate(candidate string, now time.Time) error {
	n, err := Parse(candidate)
	if err != nil {
		return err
	}

	if n.Year != now.Year() {
		return fmt.Errorf("%w: %q was issued for %d", ErrYearMismatch, candidate, n.Year)
	}

	if n.Sequence < MinSequence || n.Sequence > MaxSequence {
		return fmt.Errorf("%w: %q", ErrSequenceOutOfRange, candidate)
	}

	return nil
}
