// Package echoscan detects echo correlations in spherical scalar fields.
//
// A scan samples patch start positions from a one-dimensional map of sky
// samples, pairs each patch with partners at fixed angular shifts, scores
// the pairs with Pearson correlation, and tests whether the strongest
// correlations are collectively nonzero.
//
// Basic usage:
//
//	sc := echoscan.New(
//		echoscan.WithPatchSize(2000),
//		echoscan.WithSamples(3000),
//		echoscan.WithLogLevel(slog.LevelInfo),
//	)
//	rep, err := sc.Analyze(ctx, "maps/cmb.fits")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(rep.MatchesFound, rep.Significance.Verdict)
package echoscan

import (
	"context"
	"errors"
	"time"

	"github.com/skyloom/echoscan/engine"
	"github.com/skyloom/echoscan/field"
	"github.com/skyloom/echoscan/fits"
	"github.com/skyloom/echoscan/report"
)

// Scanner runs echo-correlation analyses. Safe for concurrent use; each
// Analyze call is independent.
type Scanner struct {
	opts options
}

// New creates a Scanner. Options not given keep the reference defaults.
func New(optFns ...Option) *Scanner {
	return &Scanner{opts: applyOptions(optFns)}
}

// Analyze loads the map at path and runs a full detection pass.
func (s *Scanner) Analyze(ctx context.Context, path string) (*report.Report, error) {
	f, err := s.load(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.AnalyzeField(ctx, path, f)
}

// AnalyzeField runs a detection pass over an already-loaded field.
// name is recorded in the report as the data file.
func (s *Scanner) AnalyzeField(ctx context.Context, name string, f *field.Field) (*report.Report, error) {
	logger := s.opts.logger.WithDataset(name)

	if s.opts.removeMonopole {
		mean := f.RemoveMonopole()
		logger.DebugContext(ctx, "monopole removed", "mean", mean)
	}

	st := f.Stats()
	logger.DebugContext(ctx, "field statistics",
		"points", f.Len(),
		"mean", st.Mean,
		"std", st.Std,
		"min", st.Min,
		"max", st.Max,
	)

	d := s.detector(logger)
	start := time.Now()
	res, err := d.Detect(ctx, f)
	elapsed := time.Since(start)
	s.opts.metricsCollector.RecordDetect(matchCount(res), elapsed, err)
	logger.LogDetect(ctx, matchCount(res), skippedCount(res), elapsed, err)
	if err != nil {
		return nil, err
	}

	return report.New(name, res), nil
}

// SaveReport writes the report to path using the configured codec.
func (s *Scanner) SaveReport(ctx context.Context, rep *report.Report, path string) error {
	start := time.Now()
	err := rep.Save(path, s.opts.codec)
	s.opts.metricsCollector.RecordReport(time.Since(start), err)
	s.opts.logger.LogReport(ctx, path, err)
	return err
}

// load reads the map through the parse cache when one is configured.
func (s *Scanner) load(ctx context.Context, path string) (*field.Field, error) {
	start := time.Now()
	f, err := s.loadUncached(ctx, path)
	s.opts.metricsCollector.RecordRead(time.Since(start), err)
	if err != nil {
		s.opts.logger.LogRead(ctx, path, 0, 0, err)
		return nil, err
	}
	s.opts.logger.LogRead(ctx, path, f.Len(), f.Dropped(), nil)
	return f, nil
}

func (s *Scanner) loadUncached(ctx context.Context, path string) (*field.Field, error) {
	if c := s.opts.cache; c != nil {
		if f, err := c.Get(path); err == nil {
			s.opts.logger.LogCache(ctx, path, true)
			return f, nil
		}
		s.opts.logger.LogCache(ctx, path, false)
	}

	img, err := fits.Open(path)
	if err != nil {
		return nil, translateError(path, err)
	}
	f := field.New(img.Samples)

	if c := s.opts.cache; c != nil {
		if err := c.Put(path, f); err != nil {
			s.opts.logger.WarnContext(ctx, "parse cache write failed",
				"path", path,
				"error", err,
			)
		}
	}
	return f, nil
}

func (s *Scanner) detector(logger *Logger) *engine.Detector {
	return &engine.Detector{
		PatchSize:       s.opts.patchSize,
		Samples:         s.opts.samples,
		MinCorrelation:  s.opts.minCorrelation,
		StrongThreshold: s.opts.strongThreshold,
		TopK:            s.opts.topK,
		Seed:            s.opts.seed,
		ShiftAngles:     s.opts.shiftAngles,
		Boundary:        s.opts.boundary,
		Workers:         s.opts.workers,
		Logger:          logger.Logger,
	}
}

func matchCount(res *engine.Result) int {
	if res == nil {
		return 0
	}
	return res.TotalMatches
}

func skippedCount(res *engine.Result) int {
	if res == nil {
		return 0
	}
	return res.SkippedPairs
}

// IsInvalidConfig reports whether err stems from scanner configuration
// rather than the dataset.
func IsInvalidConfig(err error) bool {
	if errors.Is(err, engine.ErrInvalidPatchSize) || errors.Is(err, engine.ErrInvalidSampleCount) {
		return true
	}
	var te *engine.ErrInvalidThreshold
	return errors.As(err, &te)
}
