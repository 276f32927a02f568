package echoscan

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    readCounter     prometheus.Counter
//	    detectHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordRead(duration time.Duration, err error) {
//	    p.readCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordRead is called after each dataset read.
	// duration is the total time taken, err is nil if successful.
	RecordRead(duration time.Duration, err error)

	// RecordDetect is called after each detection pass.
	// matches is the retained match count, duration is the time taken,
	// err is nil if successful.
	RecordDetect(matches int, duration time.Duration, err error)

	// RecordReport is called after each report write.
	RecordReport(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRead(time.Duration, error)        {}
func (NoopMetricsCollector) RecordDetect(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordReport(time.Duration, error)      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ReadCount        atomic.Int64
	ReadErrors       atomic.Int64
	ReadTotalNanos   atomic.Int64
	DetectCount      atomic.Int64
	DetectErrors     atomic.Int64
	DetectTotalNanos atomic.Int64
	DetectMatches    atomic.Int64
	ReportCount      atomic.Int64
	ReportErrors     atomic.Int64
}

// RecordRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRead(duration time.Duration, err error) {
	b.ReadCount.Add(1)
	b.ReadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ReadErrors.Add(1)
	}
}

// RecordDetect implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDetect(matches int, duration time.Duration, err error) {
	b.DetectCount.Add(1)
	b.DetectTotalNanos.Add(duration.Nanoseconds())
	b.DetectMatches.Add(int64(matches))
	if err != nil {
		b.DetectErrors.Add(1)
	}
}

// RecordReport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReport(duration time.Duration, err error) {
	b.ReportCount.Add(1)
	if err != nil {
		b.ReportErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ReadCount:      b.ReadCount.Load(),
		ReadErrors:     b.ReadErrors.Load(),
		ReadAvgNanos:   avgNanos(b.ReadTotalNanos.Load(), b.ReadCount.Load()),
		DetectCount:    b.DetectCount.Load(),
		DetectErrors:   b.DetectErrors.Load(),
		DetectAvgNanos: avgNanos(b.DetectTotalNanos.Load(), b.DetectCount.Load()),
		DetectMatches:  b.DetectMatches.Load(),
		ReportCount:    b.ReportCount.Load(),
		ReportErrors:   b.ReportErrors.Load(),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ReadCount      int64
	ReadErrors     int64
	ReadAvgNanos   int64
	DetectCount    int64
	DetectErrors   int64
	DetectAvgNanos int64
	DetectMatches  int64
	ReportCount    int64
	ReportErrors   int64
}
