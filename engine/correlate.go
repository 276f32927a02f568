package engine

import "math"

// Pearson computes the linear correlation coefficient of two equal-length
// patches in a single pass. ok is false when either patch has zero variance,
// in which case the coefficient is undefined and the pair must be skipped.
//
// This is the engine's hot loop: it runs up to 3K times per scan over P
// elements each, so it stays allocation-free.
func Pearson(a, b []float64) (r float64, ok bool) {
	n := len(a)
	if n < 2 || n != len(b) {
		return 0, false
	}

	var sumA, sumB, sumAB, sumA2, sumB2 float64
	for i := 0; i < n; i++ {
		x, y := a[i], b[i]
		sumA += x
		sumB += y
		sumAB += x * y
		sumA2 += x * x
		sumB2 += y * y
	}

	fn := float64(n)
	num := fn*sumAB - sumA*sumB
	denA := fn*sumA2 - sumA*sumA
	denB := fn*sumB2 - sumB*sumB
	if denA <= 0 || denB <= 0 {
		return 0, false
	}

	r = num / math.Sqrt(denA*denB)
	// Guard against floating-point drift past the mathematical bounds.
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	if math.IsNaN(r) {
		return 0, false
	}
	return r, true
}
