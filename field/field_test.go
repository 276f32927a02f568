package field

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFiltersNonFinite(t *testing.T) {
	raw := []float64{1, math.NaN(), 2, math.Inf(1), 3, math.Inf(-1), 4}
	f := New(raw)

	assert.Equal(t, []float64{1, 2, 3, 4}, f.Samples())
	assert.Equal(t, 4, f.Len())
	assert.Equal(t, 7, f.RawLen())
	assert.Equal(t, 3, f.Dropped())

	mask := f.ValidMask()
	assert.True(t, mask.Contains(0))
	assert.False(t, mask.Contains(1))
	assert.True(t, mask.Contains(2))
	assert.False(t, mask.Contains(3))
	assert.Equal(t, uint64(4), mask.GetCardinality())
}

func TestNewAllValid(t *testing.T) {
	raw := []float64{5, 6, 7}
	f := New(raw)
	assert.Equal(t, raw, f.Samples())
	assert.Zero(t, f.Dropped())
}

func TestPatch(t *testing.T) {
	f := New([]float64{0, 1, 2, 3, 4, 5})
	assert.Equal(t, []float64{2, 3, 4}, f.Patch(2, 3))
}

func TestStats(t *testing.T) {
	f := New([]float64{1, 2, 3, 4})
	s := f.Stats()
	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	assert.InDelta(t, 1.0, s.Min, 1e-12)
	assert.InDelta(t, 4.0, s.Max, 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), s.Std, 1e-9)
}

func TestStatsEmpty(t *testing.T) {
	f := New([]float64{math.NaN()})
	assert.Equal(t, Stats{}, f.Stats())
}

func TestRemoveMonopole(t *testing.T) {
	f := New([]float64{10, 20, 30})
	removed := f.RemoveMonopole()
	require.InDelta(t, 20, removed, 1e-12)
	assert.InDelta(t, 0, f.Stats().Mean, 1e-12)
	assert.Equal(t, []float64{-10, 0, 10}, f.Samples())
}
