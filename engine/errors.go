package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPatchSize is returned when the patch size is not positive.
	ErrInvalidPatchSize = errors.New("patch size must be positive")

	// ErrInvalidSampleCount is returned when the sample count is not positive.
	ErrInvalidSampleCount = errors.New("sample count must be positive")
)

// ErrInvalidThreshold indicates a correlation threshold outside [0, 1].
type ErrInvalidThreshold struct {
	Threshold float64
}

func (e *ErrInvalidThreshold) Error() string {
	return fmt.Sprintf("correlation threshold out of range [0,1]: %g", e.Threshold)
}

// ReasonInsufficientData is set on Result.Reason when the valid sample count
// is below twice the patch size. The run aborts early with a zero-match
// result; it is not a hard failure.
const ReasonInsufficientData = "insufficient valid data"
