package field

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/montanaflynn/stats"
)

// Field is a validity-filtered scalar field.
//
// Samples holds only the finite entries of the raw input, in original order.
// The bitmap records which raw indices survived the filter, so diagnostics
// can still refer back to source pixels.
type Field struct {
	samples []float64
	valid   *roaring.Bitmap
	rawLen  int
}

// New filters raw and builds a Field. NaN and infinite entries are dropped.
func New(raw []float64) *Field {
	f := &Field{
		samples: make([]float64, 0, len(raw)),
		valid:   roaring.New(),
		rawLen:  len(raw),
	}
	for i, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		f.samples = append(f.samples, v)
		f.valid.Add(uint32(i))
	}
	return f
}

// Samples returns the compacted finite sample sequence. Callers must not
// mutate the returned slice.
func (f *Field) Samples() []float64 { return f.samples }

// Len returns the number of valid samples.
func (f *Field) Len() int { return len(f.samples) }

// RawLen returns the length of the unfiltered input.
func (f *Field) RawLen() int { return f.rawLen }

// Dropped returns the number of non-finite entries removed by the filter.
func (f *Field) Dropped() int { return f.rawLen - len(f.samples) }

// ValidMask returns the bitmap of raw indices that passed the filter.
func (f *Field) ValidMask() *roaring.Bitmap { return f.valid }

// Patch returns the contiguous window [start, start+size). The slice aliases
// the field storage.
func (f *Field) Patch(start, size int) []float64 {
	return f.samples[start : start+size]
}

// Stats summarizes the valid samples.
type Stats struct {
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// Stats computes descriptive statistics over the valid samples.
// A field with no valid samples yields the zero Stats.
func (f *Field) Stats() Stats {
	if len(f.samples) == 0 {
		return Stats{}
	}
	d := stats.Float64Data(f.samples)
	mean, _ := d.Mean()
	std, _ := d.StandardDeviation()
	min, _ := d.Min()
	max, _ := d.Max()
	return Stats{Mean: mean, Std: std, Min: min, Max: max}
}

// RemoveMonopole subtracts the field mean from every sample in place and
// returns the removed value. Matching patterns at large separations should
// reflect structure, not a shared DC level.
func (f *Field) RemoveMonopole() float64 {
	if len(f.samples) == 0 {
		return 0
	}
	mean, _ := stats.Float64Data(f.samples).Mean()
	for i := range f.samples {
		f.samples[i] -= mean
	}
	return mean
}
