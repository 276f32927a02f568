package engine

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Angular windows for the separation buckets, in degrees, bounds inclusive.
const (
	binHalfWidth = 5.0
	bin90        = 90.0
	bin180       = 180.0
	bin270       = 270.0
)

// Assess runs the one-sample t-test on the correlation magnitudes of the
// ranked top-K subset against a null mean of zero and bins the subset's
// angular separations.
//
// Fewer than two magnitudes cannot anchor a t-statistic; the test then
// reports NaN for both statistics and an undetermined verdict instead of
// failing.
func Assess(top []Match) *Significance {
	s := &Significance{SampleSize: len(top)}

	for _, m := range top {
		sep := m.AngularSeparation
		switch {
		case sep >= bin90-binHalfWidth && sep <= bin90+binHalfWidth:
			s.Near90++
		case sep >= bin180-binHalfWidth && sep <= bin180+binHalfWidth:
			s.Near180++
		case sep >= bin270-binHalfWidth && sep <= bin270+binHalfWidth:
			s.Near270++
		}
	}

	if len(top) < 2 {
		s.TStatistic = math.NaN()
		s.PValue = math.NaN()
		s.Verdict = VerdictUndetermined
		return s
	}

	n := float64(len(top))
	var sum float64
	for _, m := range top {
		sum += math.Abs(m.Correlation)
	}
	mean := sum / n

	var ss float64
	for _, m := range top {
		d := math.Abs(m.Correlation) - mean
		ss += d * d
	}
	sd := math.Sqrt(ss / (n - 1))

	if sd == 0 {
		// Identical magnitudes: the statistic degenerates. A nonzero mean is
		// infinitely far from the null in t units.
		if mean == 0 {
			s.TStatistic = math.NaN()
			s.PValue = math.NaN()
			s.Verdict = VerdictUndetermined
			return s
		}
		s.TStatistic = math.Inf(1)
		s.PValue = 0
		s.Verdict = VerdictHighlySignificant
		return s
	}

	s.TStatistic = mean / (sd / math.Sqrt(n))

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: n - 1}
	s.PValue = 2 * (1 - tDist.CDF(math.Abs(s.TStatistic)))

	switch {
	case s.PValue < 0.001:
		s.Verdict = VerdictHighlySignificant
	case s.PValue < 0.05:
		s.Verdict = VerdictSignificant
	default:
		s.Verdict = VerdictNotSignificant
	}
	return s
}
