// Package report renders detection results into the stable on-disk form.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/skyloom/echoscan/codec"
	"github.com/skyloom/echoscan/engine"
)

// AnalysisType identifies the report layout for downstream readers.
const AnalysisType = "echo_correlation"

// Report is the serialized form of one analysis run.
//
// Field names are a compatibility contract with existing plotting tooling.
// Add fields freely; never rename or repurpose one.
type Report struct {
	AnalysisType    string  `json:"analysis_type"`
	DataFile        string  `json:"data_file"`
	GeneratedAt     string  `json:"generated_at,omitempty"`
	DataPoints      int     `json:"data_points"`
	SampledStarts   int     `json:"sampled_starts,omitempty"`
	MatchesFound    int     `json:"matches_found"`
	StrongMatches   int     `json:"strong_matches"`
	MaxCorrelation  float64 `json:"max_correlation"`
	MeanCorrelation float64 `json:"mean_correlation"`
	DetectionRate   float64 `json:"detection_rate,omitempty"`

	TopMatches []engine.Match `json:"top_matches"`

	Significance *Significance `json:"significance,omitempty"`
	Reason       string        `json:"reason,omitempty"`
}

// Significance mirrors engine.Significance with JSON-safe p-values.
// NaN is not representable in JSON, so undetermined runs omit the numbers
// and keep only the verdict.
type Significance struct {
	TStatistic *float64 `json:"t_statistic,omitempty"`
	PValue     *float64 `json:"p_value,omitempty"`
	SampleSize int      `json:"sample_size"`
	Near90     int      `json:"near_90_deg"`
	Near180    int      `json:"near_180_deg"`
	Near270    int      `json:"near_270_deg"`
	Verdict    string   `json:"verdict"`
}

// New builds a report from a detection result.
// dataFile is recorded verbatim; pass the path the caller used.
func New(dataFile string, res *engine.Result) *Report {
	r := &Report{
		AnalysisType:    AnalysisType,
		DataFile:        dataFile,
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
		DataPoints:      res.DataPoints,
		SampledStarts:   res.SampledStarts,
		MatchesFound:    res.TotalMatches,
		StrongMatches:   res.StrongMatches,
		MaxCorrelation:  res.MaxCorrelation,
		MeanCorrelation: res.MeanCorrelation,
		TopMatches:      res.Matches,
		Reason:          res.Reason,
	}
	if r.TopMatches == nil {
		r.TopMatches = []engine.Match{}
	}
	// Matches per million pixels, so runs over maps of different resolution
	// stay comparable.
	if res.DataPoints > 0 {
		r.DetectionRate = float64(res.TotalMatches) / float64(res.DataPoints) * 1e6
	}
	if s := res.Significance; s != nil {
		r.Significance = convertSignificance(s)
	}
	return r
}

func convertSignificance(s *engine.Significance) *Significance {
	out := &Significance{
		SampleSize: s.SampleSize,
		Near90:     s.Near90,
		Near180:    s.Near180,
		Near270:    s.Near270,
		Verdict:    string(s.Verdict),
	}
	if f := jsonFloat(s.TStatistic); f != nil {
		out.TStatistic = f
	}
	if f := jsonFloat(s.PValue); f != nil {
		out.PValue = f
	}
	return out
}

// jsonFloat returns nil for values JSON cannot carry.
func jsonFloat(v float64) *float64 {
	if v != v || v > maxJSONFloat || v < -maxJSONFloat {
		return nil
	}
	return &v
}

const maxJSONFloat = 1.7976931348623157e308

// Encode serializes the report with the given codec (nil means the default).
func (r *Report) Encode(c codec.Codec) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	data, err := c.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return data, nil
}

// Save writes the encoded report to path, creating parent directories.
func (r *Report) Save(path string, c codec.Codec) error {
	data, err := r.Encode(c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Load reads a report back from disk.
func Load(path string, c codec.Codec) (*Report, error) {
	if c == nil {
		c = codec.Default
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var r Report
	if err := c.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}
