package engine

// Match is one retained patch pair. Field names follow the JSON report
// vocabulary so records serialize directly.
type Match struct {
	// Start1 and Start2 are the patch start indices in the valid sample
	// sequence.
	Start1 int `json:"location1"`
	Start2 int `json:"location2"`

	// Correlation is the Pearson coefficient of the two patches, in [-1, 1].
	Correlation float64 `json:"correlation"`

	// Offset is the nominal pairing offset in pixels (before any boundary
	// clamping of Start2).
	Offset int `json:"separation_pixels"`

	// AngularSeparation is Offset expressed in degrees of the full domain.
	AngularSeparation float64 `json:"separation_degrees"`

	PatchSize int `json:"patch_size"`
}

// Result is the output of one detection run.
type Result struct {
	// Matches is the ranked top-K reporting subset.
	Matches []Match

	// TotalMatches is the size of the full retained population, of which
	// Matches is a truncation.
	TotalMatches int

	// StrongMatches counts retained correlations above the strong threshold.
	StrongMatches int

	// MaxCorrelation is the largest |correlation| over the full population;
	// MeanCorrelation is the signed mean over the same population.
	MaxCorrelation  float64
	MeanCorrelation float64

	// DataPoints is the number of valid samples scanned; SampledStarts the
	// number of patch starts actually drawn.
	DataPoints    int
	SampledStarts int

	// SkippedPairs counts zero-variance pairs excluded from scoring.
	SkippedPairs int

	// Reason is non-empty when the analysis aborted early with an empty
	// result (e.g. insufficient valid data). An empty Matches with an empty
	// Reason is a genuine null result.
	Reason string

	Significance *Significance
}

// Verdict is the display band for a significance p-value. It is a report
// annotation, never a scientific conclusion.
type Verdict string

const (
	VerdictHighlySignificant Verdict = "highly significant" // p < 0.001
	VerdictSignificant       Verdict = "significant"        // p < 0.05
	VerdictNotSignificant    Verdict = "not significant"
	VerdictUndetermined      Verdict = "undetermined" // too few matches to test
)

// Significance is the hypothesis-test summary over the top-K subset.
//
// The test deliberately runs on the reporting subset rather than the full
// retained population, so heavily overlapping weak pairs cannot drown out
// the ranked signal.
type Significance struct {
	TStatistic float64 `json:"t_statistic"`
	PValue     float64 `json:"p_value"`

	// Separation bucket counts over the tested subset.
	Near90  int `json:"near_90"`  // [85°, 95°]
	Near180 int `json:"near_180"` // [175°, 185°]
	Near270 int `json:"near_270"` // [265°, 275°]

	SampleSize int     `json:"sample_size"`
	Verdict    Verdict `json:"verdict"`
}
