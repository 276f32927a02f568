package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPearson(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
		ok       bool
	}{
		{"PerfectPositive", []float64{1, 2, 3, 4}, []float64{2, 4, 6, 8}, 1, true},
		{"PerfectNegative", []float64{1, 2, 3, 4}, []float64{8, 6, 4, 2}, -1, true},
		{"Uncorrelated", []float64{1, -1, 1, -1}, []float64{1, 1, -1, -1}, 0, true},
		{"ConstantLeft", []float64{5, 5, 5, 5}, []float64{1, 2, 3, 4}, 0, false},
		{"ConstantRight", []float64{1, 2, 3, 4}, []float64{0, 0, 0, 0}, 0, false},
		{"BothConstant", []float64{3, 3}, []float64{7, 7}, 0, false},
		{"TooShort", []float64{1}, []float64{2}, 0, false},
		{"LengthMismatch", []float64{1, 2, 3}, []float64{1, 2}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := Pearson(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, r, 1e-9)
			}
		})
	}
}

func TestPearsonBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 50; trial++ {
		a := make([]float64, 100)
		b := make([]float64, 100)
		for i := range a {
			a[i] = rng.NormFloat64()
			b[i] = rng.NormFloat64()
		}
		r, ok := Pearson(a, b)
		require.True(t, ok)
		assert.GreaterOrEqual(t, r, -1.0)
		assert.LessOrEqual(t, r, 1.0)
	}
}

func TestPearsonSymmetric(t *testing.T) {
	a := []float64{1.5, 2.5, 0.5, 4, 3}
	b := []float64{2, 1, 4, 3.5, 2.5}
	r1, ok1 := Pearson(a, b)
	r2, ok2 := Pearson(b, a)
	require.True(t, ok1)
	require.True(t, ok2)
	assert.InDelta(t, r1, r2, 1e-12)
}
