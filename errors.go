package echoscan

import (
	"errors"
	"fmt"

	"github.com/skyloom/echoscan/fits"
)

// ErrBadDataset indicates the dataset file could not be decoded.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrBadDataset struct {
	Path  string
	cause error
}

func (e *ErrBadDataset) Error() string {
	return fmt.Sprintf("bad dataset %s: %v", e.Path, e.cause)
}

func (e *ErrBadDataset) Unwrap() error { return e.cause }

// translateError normalizes internal errors at the facade boundary.
// Engine validation errors pass through unchanged so callers can match
// their sentinels.
func translateError(path string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fits.ErrFormat) {
		return &ErrBadDataset{Path: path, cause: err}
	}
	return err
}
