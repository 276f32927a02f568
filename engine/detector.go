package engine

import (
	"context"
	"io"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/skyloom/echoscan/field"
)

// Detector holds the configuration of one detection run. The zero value is
// not usable; construct through the echoscan facade or fill every field.
type Detector struct {
	// PatchSize is the window length P of each patch.
	PatchSize int

	// Samples is the number of patch starts K to draw.
	Samples int

	// MinCorrelation is the retention threshold on |r|.
	MinCorrelation float64

	// StrongThreshold classifies retained matches as strong.
	StrongThreshold float64

	// TopK bounds the reporting subset (and the significance test input).
	TopK int

	// Seed drives the start sampler. Equal seeds over equal fields reproduce
	// identical results.
	Seed int64

	// ShiftAngles, when non-empty, selects the explicit-angle offset policy;
	// otherwise the fractional-wrap offsets are used.
	ShiftAngles []float64

	// Boundary selects clamp or wrap pairing at the array end.
	Boundary BoundaryPolicy

	// Workers parallelizes the correlation loop when > 1. Output is
	// identical to the sequential run.
	Workers int

	Logger *slog.Logger
}

func (d *Detector) validate() error {
	if d.PatchSize <= 0 {
		return ErrInvalidPatchSize
	}
	if d.Samples <= 0 {
		return ErrInvalidSampleCount
	}
	if d.MinCorrelation < 0 || d.MinCorrelation > 1 {
		return &ErrInvalidThreshold{Threshold: d.MinCorrelation}
	}
	return nil
}

// startScore is the per-start unit of work: all offset pairings of one patch.
type startScore struct {
	matches []Match
	skipped int
}

// Detect runs the full pipeline over a field.
//
// An empty match list is a valid successful result. When the field has fewer
// than twice the patch size of valid samples, Detect returns a zero-match
// result with Reason set instead of an error.
func (d *Detector) Detect(ctx context.Context, f *field.Field) (*Result, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	log := d.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	n := f.Len()
	if n < 2*d.PatchSize {
		log.WarnContext(ctx, "aborting scan, not enough valid samples",
			"valid", n,
			"patch_size", d.PatchSize,
		)
		return &Result{
			Matches:      []Match{},
			DataPoints:   n,
			Reason:       ReasonInsufficientData,
			Significance: Assess(nil),
		}, nil
	}

	starts := SampleStarts(n, d.PatchSize, d.Samples, d.Seed)

	var offsets []int
	if len(d.ShiftAngles) > 0 {
		offsets = OffsetsFromAngles(n, d.ShiftAngles)
	} else {
		offsets = FractionalOffsets(n)
	}

	log.InfoContext(ctx, "scan started",
		"valid", n,
		"patch_size", d.PatchSize,
		"starts", len(starts),
		"offsets", len(offsets),
		"boundary", d.Boundary.String(),
	)

	scores := make([]startScore, len(starts))
	samples := f.Samples()

	if d.Workers > 1 {
		if err := d.scoreParallel(ctx, samples, starts, offsets, scores); err != nil {
			return nil, err
		}
	} else {
		progress := rate.Sometimes{Interval: 2 * time.Second}
		for i, start := range starts {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			scores[i] = d.scoreStart(samples, start, offsets)
			done := i + 1
			progress.Do(func() {
				log.DebugContext(ctx, "scan progress", "done", done, "total", len(starts))
			})
		}
	}

	// Merge preserves start order so parallel and sequential runs rank the
	// same population identically.
	var all []Match
	var skipped int
	for _, sc := range scores {
		all = append(all, sc.matches...)
		skipped += sc.skipped
	}

	Rank(all)
	maxCorr, meanCorr, strong := Summarize(all, d.StrongThreshold)
	top := Truncate(all, d.TopK)

	res := &Result{
		Matches:         top,
		TotalMatches:    len(all),
		StrongMatches:   strong,
		MaxCorrelation:  maxCorr,
		MeanCorrelation: meanCorr,
		DataPoints:      n,
		SampledStarts:   len(starts),
		SkippedPairs:    skipped,
		Significance:    Assess(top),
	}
	if res.Matches == nil {
		res.Matches = []Match{}
	}

	log.InfoContext(ctx, "scan completed",
		"matches", res.TotalMatches,
		"strong", res.StrongMatches,
		"skipped_pairs", res.SkippedPairs,
		"max_correlation", res.MaxCorrelation,
	)
	return res, nil
}

func (d *Detector) scoreParallel(ctx context.Context, samples []float64, starts, offsets []int, scores []startScore) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.Workers)

	const chunk = 256
	for lo := 0; lo < len(starts); lo += chunk {
		lo := lo
		hi := lo + chunk
		if hi > len(starts) {
			hi = len(starts)
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				scores[i] = d.scoreStart(samples, starts[i], offsets)
			}
			return nil
		})
	}
	return g.Wait()
}

// scoreStart correlates the patch at start against every offset candidate.
func (d *Detector) scoreStart(samples []float64, start int, offsets []int) startScore {
	n := len(samples)
	patch1 := samples[start : start+d.PatchSize]

	var sc startScore
	for _, offset := range offsets {
		patch2 := d.pairPatch(samples, start, offset)

		r, ok := Pearson(patch1, patch2)
		if !ok {
			sc.skipped++
			continue
		}
		if math.Abs(r) < d.MinCorrelation {
			continue
		}

		start2 := d.pairStart(n, start, offset)
		sc.matches = append(sc.matches, Match{
			Start1:            start,
			Start2:            start2,
			Correlation:       r,
			Offset:            offset,
			AngularSeparation: AngularSeparation(offset, n),
			PatchSize:         d.PatchSize,
		})
	}
	return sc
}

func (d *Detector) pairStart(n, start, offset int) int {
	start2 := (start + offset) % n
	if d.Boundary == BoundaryClamp && start2+d.PatchSize > n {
		start2 = n - d.PatchSize
	}
	return start2
}

// pairPatch returns the second patch for a pairing. Under the clamp policy
// the patch is always a contiguous view; under wrap it may be assembled
// across the seam.
func (d *Detector) pairPatch(samples []float64, start, offset int) []float64 {
	n := len(samples)
	start2 := (start + offset) % n

	if start2+d.PatchSize <= n {
		return samples[start2 : start2+d.PatchSize]
	}

	if d.Boundary == BoundaryClamp {
		start2 = n - d.PatchSize
		return samples[start2 : start2+d.PatchSize]
	}

	// Wrap: copy the two runs around the seam.
	patch := make([]float64, d.PatchSize)
	head := n - start2
	copy(patch, samples[start2:])
	copy(patch[head:], samples[:d.PatchSize-head])
	return patch
}
