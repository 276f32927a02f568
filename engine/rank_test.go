package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankOrdersByMagnitude(t *testing.T) {
	matches := []Match{
		{Start1: 1, Correlation: 0.3},
		{Start1: 2, Correlation: -0.9},
		{Start1: 3, Correlation: 0.5},
		{Start1: 4, Correlation: -0.1},
	}
	Rank(matches)

	got := make([]float64, len(matches))
	for i, m := range matches {
		got[i] = m.Correlation
	}
	assert.Equal(t, []float64{-0.9, 0.5, 0.3, -0.1}, got)
}

func TestRankTieBreakIsTotal(t *testing.T) {
	matches := []Match{
		{Start1: 9, Start2: 2, Correlation: 0.5},
		{Start1: 3, Start2: 8, Correlation: -0.5},
		{Start1: 3, Start2: 1, Correlation: 0.5},
	}
	Rank(matches)

	assert.Equal(t, 3, matches[0].Start1)
	assert.Equal(t, 1, matches[0].Start2)
	assert.Equal(t, 3, matches[1].Start1)
	assert.Equal(t, 8, matches[1].Start2)
	assert.Equal(t, 9, matches[2].Start1)
}

func TestTruncate(t *testing.T) {
	matches := []Match{{Start1: 1}, {Start1: 2}, {Start1: 3}}

	assert.Len(t, Truncate(matches, 2), 2)
	assert.Len(t, Truncate(matches, 3), 3)
	assert.Len(t, Truncate(matches, 10), 3)
	assert.Len(t, Truncate(matches, 0), 3)
}

func TestSummarize(t *testing.T) {
	matches := []Match{
		{Correlation: 0.5},
		{Correlation: -0.7},
		{Correlation: 0.1},
		{Correlation: 0.21},
	}
	maxCorr, meanCorr, strong := Summarize(matches, 0.2)

	assert.InDelta(t, 0.7, maxCorr, 1e-12)
	assert.InDelta(t, (0.5-0.7+0.1+0.21)/4, meanCorr, 1e-12)
	assert.Equal(t, 3, strong)
}

func TestSummarizeEmpty(t *testing.T) {
	maxCorr, meanCorr, strong := Summarize(nil, 0.2)
	require.Zero(t, maxCorr)
	require.Zero(t, meanCorr)
	require.Zero(t, strong)
}
