package fits

import (
	"errors"
	"fmt"
)

// ErrFormat is the sentinel all format failures wrap. Callers should treat a
// matching error as unrecoverable for that file and move on to the next
// candidate source.
var ErrFormat = errors.New("fits: malformed file")

// FormatError describes why a file could not be parsed.
//
// The original underlying error (if any) can be accessed via errors.Unwrap;
// errors.Is(err, ErrFormat) always holds.
type FormatError struct {
	Reason string
	cause  error
}

func (e *FormatError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("fits: %s: %v", e.Reason, e.cause)
	}
	return fmt.Sprintf("fits: %s", e.Reason)
}

func (e *FormatError) Unwrap() error { return e.cause }

// Is reports ErrFormat identity so callers can match the whole class.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

func formatErr(reason string, cause error) error {
	return &FormatError{Reason: reason, cause: cause}
}
