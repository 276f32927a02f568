package engine

import "math"

// FractionalOffsets returns the default candidate pairing offsets for a
// domain of n samples: quarter, antipodal and three-quarter wraps.
func FractionalOffsets(n int) []int {
	return []int{n / 4, n / 2, 3 * n / 4}
}

// OffsetsFromAngles converts explicit shift angles in degrees to pixel
// offsets via round(n*angle/360). Angles are reduced modulo the full domain;
// an angle that reduces to a zero offset is dropped since it would pair a
// patch with itself.
func OffsetsFromAngles(n int, angles []float64) []int {
	offsets := make([]int, 0, len(angles))
	for _, a := range angles {
		o := int(math.Round(float64(n) * a / 360.0))
		o %= n
		if o < 0 {
			o += n
		}
		if o == 0 {
			continue
		}
		offsets = append(offsets, o)
	}
	return offsets
}

// AngularSeparation expresses a pixel offset as degrees of the full domain.
func AngularSeparation(offset, n int) float64 {
	return 360.0 * float64(offset) / float64(n)
}
