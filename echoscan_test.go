package echoscan

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyloom/echoscan/cache"
	"github.com/skyloom/echoscan/engine"
	"github.com/skyloom/echoscan/fits"
	"github.com/skyloom/echoscan/report"
)

// writeMapFile builds a minimal float32 map file holding the samples.
func writeMapFile(t *testing.T, dir string, samples []float64) string {
	t.Helper()

	var b bytes.Buffer
	cards := []string{
		"SIMPLE  =                    T",
		"BITPIX  =                  -32",
		"NAXIS   =                    1",
		fmt.Sprintf("NAXIS1  = %20d", len(samples)),
		"END",
	}
	for _, c := range cards {
		b.WriteString(c + strings.Repeat(" ", fits.CardSize-len(c)))
	}
	for b.Len()%fits.BlockSize != 0 {
		b.WriteByte(' ')
	}
	for _, v := range samples {
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], math.Float32bits(float32(v)))
		b.Write(buf[:])
	}

	path := filepath.Join(dir, "map.fits")
	require.NoError(t, os.WriteFile(path, b.Bytes(), 0o644))
	return path
}

// plantedSamples is a 4000-sample zero field with one pattern at 0 and a
// copy at 1000, a quarter of the domain away.
func plantedSamples() []float64 {
	raw := make([]float64, 4000)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		v := rng.NormFloat64()
		raw[i] = v
		raw[1000+i] = v
	}
	return raw
}

func newTestScanner(extra ...Option) *Scanner {
	opts := []Option{
		WithPatchSize(200),
		WithSamples(4000),
		WithMinCorrelation(0.1),
		WithSeed(42),
	}
	return New(append(opts, extra...)...)
}

func TestAnalyzeFindsPlantedEcho(t *testing.T) {
	path := writeMapFile(t, t.TempDir(), plantedSamples())

	rep, err := newTestScanner().Analyze(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, report.AnalysisType, rep.AnalysisType)
	assert.Equal(t, path, rep.DataFile)
	assert.Equal(t, 4000, rep.DataPoints)
	require.NotEmpty(t, rep.TopMatches)

	best := rep.TopMatches[0]
	assert.Equal(t, 0, best.Start1)
	assert.Equal(t, 1000, best.Start2)
	assert.InDelta(t, 90.0, best.AngularSeparation, 1e-6)
	assert.Greater(t, best.Correlation, 0.999)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	path := writeMapFile(t, t.TempDir(), plantedSamples())
	sc := newTestScanner()

	a, err := sc.Analyze(context.Background(), path)
	require.NoError(t, err)
	b, err := sc.Analyze(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, a.TopMatches, b.TopMatches)
	assert.Equal(t, a.MatchesFound, b.MatchesFound)
}

func TestAnalyzeBadDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.fits")
	require.NoError(t, os.WriteFile(path, []byte("not a map at all"), 0o644))

	_, err := newTestScanner().Analyze(context.Background(), path)
	var bad *ErrBadDataset
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, path, bad.Path)
}

func TestAnalyzeInvalidConfig(t *testing.T) {
	path := writeMapFile(t, t.TempDir(), plantedSamples())

	_, err := New(WithPatchSize(-1)).Analyze(context.Background(), path)
	require.Error(t, err)
	assert.True(t, IsInvalidConfig(err))
	assert.ErrorIs(t, err, engine.ErrInvalidPatchSize)
}

func TestAnalyzeWithCache(t *testing.T) {
	dir := t.TempDir()
	path := writeMapFile(t, dir, plantedSamples())
	c, err := cache.New(filepath.Join(dir, "cache"))
	require.NoError(t, err)

	sc := newTestScanner(WithCache(c))
	a, err := sc.Analyze(context.Background(), path)
	require.NoError(t, err)

	// Second run hits the cache and must agree.
	b, err := sc.Analyze(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, a.TopMatches, b.TopMatches)
}

func TestAnalyzeMonopoleRemoval(t *testing.T) {
	// A large shared DC level correlates everything; removing the monopole
	// must not hide the genuine planted echo.
	samples := plantedSamples()
	for i := range samples {
		samples[i] += 100
	}
	path := writeMapFile(t, t.TempDir(), samples)

	rep, err := newTestScanner(WithMonopoleRemoval()).Analyze(context.Background(), path)
	require.NoError(t, err)
	require.NotEmpty(t, rep.TopMatches)
	assert.Equal(t, 0, rep.TopMatches[0].Start1)
	assert.Equal(t, 1000, rep.TopMatches[0].Start2)
}

func TestSaveReport(t *testing.T) {
	dir := t.TempDir()
	path := writeMapFile(t, dir, plantedSamples())

	metrics := &BasicMetricsCollector{}
	sc := newTestScanner(WithMetricsCollector(metrics))

	rep, err := sc.Analyze(context.Background(), path)
	require.NoError(t, err)

	out := filepath.Join(dir, "report.json")
	require.NoError(t, sc.SaveReport(context.Background(), rep, out))

	back, err := report.Load(out, nil)
	require.NoError(t, err)
	assert.Equal(t, rep.MatchesFound, back.MatchesFound)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.ReadCount)
	assert.Equal(t, int64(1), stats.DetectCount)
	assert.Equal(t, int64(1), stats.ReportCount)
	assert.Zero(t, stats.ReportErrors)
}
