package echoscan

import (
	"log/slog"

	"github.com/skyloom/echoscan/cache"
	"github.com/skyloom/echoscan/codec"
	"github.com/skyloom/echoscan/engine"
)

// Defaults mirror the reference analysis configuration.
const (
	DefaultPatchSize       = 2000
	DefaultSamples         = 3000
	DefaultMinCorrelation  = 0.1
	DefaultStrongThreshold = 0.2
	DefaultTopK            = 20
	DefaultSeed            = 42
)

type options struct {
	patchSize       int
	samples         int
	minCorrelation  float64
	strongThreshold float64
	topK            int
	seed            int64
	shiftAngles     []float64
	boundary        engine.BoundaryPolicy
	workers         int
	removeMonopole  bool

	codec            codec.Codec
	cache            *cache.Cache
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Scanner behavior.
type Option func(*options)

// WithPatchSize sets the patch length in samples. Patches shorter than a few
// hundred samples correlate noisily; the default matches the reference
// analysis.
func WithPatchSize(size int) Option {
	return func(o *options) {
		o.patchSize = size
	}
}

// WithSamples sets how many patch starts are drawn per run.
func WithSamples(n int) Option {
	return func(o *options) {
		o.samples = n
	}
}

// WithMinCorrelation sets the retention threshold on |r|.
func WithMinCorrelation(r float64) Option {
	return func(o *options) {
		o.minCorrelation = r
	}
}

// WithStrongThreshold sets the |r| cutoff counted as a strong match.
func WithStrongThreshold(r float64) Option {
	return func(o *options) {
		o.strongThreshold = r
	}
}

// WithTopK sets the reporting subset size. Zero keeps every retained match.
func WithTopK(k int) Option {
	return func(o *options) {
		o.topK = k
	}
}

// WithSeed sets the sampling seed. Runs with the same seed and configuration
// are bit-for-bit reproducible.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithShiftAngles overrides the default quarter/half/three-quarter shift
// offsets with explicit angular separations in degrees.
func WithShiftAngles(angles ...float64) Option {
	return func(o *options) {
		o.shiftAngles = angles
	}
}

// WithBoundaryPolicy selects how pairings near the end of the sample
// sequence are handled.
func WithBoundaryPolicy(p engine.BoundaryPolicy) Option {
	return func(o *options) {
		o.boundary = p
	}
}

// WithWorkers enables parallel scoring across the given number of
// goroutines. Results are identical to a sequential run.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithMonopoleRemoval subtracts the field mean before scoring, so a shared
// DC level does not inflate correlations.
func WithMonopoleRemoval() Option {
	return func(o *options) {
		o.removeMonopole = true
	}
}

// WithCodec configures the codec used for report encoding.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCache enables the parse cache, so repeated runs against the same map
// skip the format decode. Pass nil to disable.
func WithCache(c *cache.Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &echoscan.BasicMetricsCollector{}
//	sc := echoscan.New(echoscan.WithMetricsCollector(metrics))
//	// ... run analyses ...
//	stats := metrics.GetStats()
//	fmt.Printf("Detections: %d, Avg latency: %dns\n", stats.DetectCount, stats.DetectAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := echoscan.NewJSONLogger(slog.LevelInfo)
//	sc := echoscan.New(echoscan.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		patchSize:        DefaultPatchSize,
		samples:          DefaultSamples,
		minCorrelation:   DefaultMinCorrelation,
		strongThreshold:  DefaultStrongThreshold,
		topK:             DefaultTopK,
		seed:             DefaultSeed,
		codec:            codec.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
