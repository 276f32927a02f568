package engine

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// Rank orders matches by descending correlation magnitude in place.
// Ties break on (Start1, Start2, Offset) so the ranking is total and two runs
// over the same population always agree.
func Rank(matches []Match) {
	sort.Slice(matches, func(i, j int) bool {
		ai, aj := math.Abs(matches[i].Correlation), math.Abs(matches[j].Correlation)
		if ai != aj {
			return ai > aj
		}
		if matches[i].Start1 != matches[j].Start1 {
			return matches[i].Start1 < matches[j].Start1
		}
		if matches[i].Start2 != matches[j].Start2 {
			return matches[i].Start2 < matches[j].Start2
		}
		return matches[i].Offset < matches[j].Offset
	})
}

// Truncate returns the top-k prefix of a ranked slice without copying.
func Truncate(matches []Match, k int) []Match {
	if k <= 0 || k >= len(matches) {
		return matches
	}
	return matches[:k]
}

// Summarize computes the summary scalars over the full retained population:
// the largest correlation magnitude, the signed mean, and the count above the
// strong threshold. No deduplication of overlapping patches happens here; the
// significance machinery depends on the full retained population.
func Summarize(matches []Match, strongThreshold float64) (maxCorr, meanCorr float64, strong int) {
	if len(matches) == 0 {
		return 0, 0, 0
	}

	corrs := make([]float64, len(matches))
	for i, m := range matches {
		corrs[i] = m.Correlation
		if a := math.Abs(m.Correlation); a > maxCorr {
			maxCorr = a
		}
		if math.Abs(m.Correlation) > strongThreshold {
			strong++
		}
	}
	meanCorr, _ = stats.Float64Data(corrs).Mean()
	return maxCorr, meanCorr, strong
}
