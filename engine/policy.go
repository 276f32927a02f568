package engine

import "fmt"

// BoundaryPolicy controls how a pairing that would run past the end of the
// stored array is handled.
type BoundaryPolicy int

const (
	// BoundaryClamp moves the second start back to N-P so both patches stay
	// inside the stored array. This reproduces the reference behavior; it
	// biases late-array samples toward shorter effective offsets.
	BoundaryClamp BoundaryPolicy = iota

	// BoundaryWrap assembles the second patch modulo N across the seam,
	// honoring the circular topology of the test hypothesis.
	BoundaryWrap
)

func (p BoundaryPolicy) String() string {
	switch p {
	case BoundaryClamp:
		return "clamp"
	case BoundaryWrap:
		return "wrap"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}
