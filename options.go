package streamvamana

import (
	"log/slog"

	"github.com/hupe1980/streamvamana/internal/labels"
)

// Params bundles the tunable knobs of the Vamana build/insert/consolidate
// algorithms. It is validated once at Engine construction. Per-call
// overrides in ConsolidateParams are used when positive and are not
// validated.
type Params struct {
	// L is the search list size used while inserting a new point (the
	// beam width passed to GreedySearch during InsertPoint).
	L int
	// R is the maximum out-degree of any live slot's neighbor list.
	R int
	// Alpha is the RobustPrune diversification factor. Must be >= 1.0.
	Alpha float32
	// C bounds the candidate pool size RobustPrune considers before
	// pruning; 0 means unbounded (limited only by L/search fan-out).
	C int
	// SaturateGraph pads RobustPrune's output up to R with the closest
	// previously-shadowed candidates when the alpha-test alone selects
	// fewer than R neighbors.
	SaturateGraph bool
	// NumThreads bounds worker-pool parallelism for InsertBatch and
	// ConsolidateDeletes. 0 means no limit.
	NumThreads int
	// NumFrozenPoints seeds NumFrozenPoints synthetic unit-norm frozen
	// entry points at construction time when positive; a later
	// SetStartPointsRandom call is then rejected. It is also the count
	// SetStartPointsRandom seeds (1 if zero).
	NumFrozenPoints int
	// FilterListSize is the beam width used for GreedySearch whenever a
	// label filter is active, in place of L/the caller's beam width: both
	// the per-label medoid-seeding pass of labeled inserts and searches
	// carrying a non-empty label filter.
	FilterListSize int
}

// DefaultParams returns parameter values matching common Vamana defaults
// (L=R=64, alpha=1.2, saturate enabled).
func DefaultParams() Params {
	return Params{
		L:               64,
		R:               64,
		Alpha:           1.2,
		C:               0,
		SaturateGraph:   true,
		NumThreads:      0,
		NumFrozenPoints: 0,
		FilterListSize:  64,
	}
}

// Validate checks that Params describes a usable configuration.
func (p Params) Validate() error {
	if p.L <= 0 {
		return &BadArgError{Field: "L", Reason: "must be positive"}
	}
	if p.R <= 0 {
		return &BadArgError{Field: "R", Reason: "must be positive"}
	}
	if p.Alpha < 1.0 {
		return &BadArgError{Field: "Alpha", Reason: "must be >= 1.0"}
	}
	if p.NumThreads < 0 {
		return &BadArgError{Field: "NumThreads", Reason: "must be non-negative"}
	}
	if p.NumFrozenPoints < 0 {
		return &BadArgError{Field: "NumFrozenPoints", Reason: "must be non-negative"}
	}
	if p.C < 0 {
		return &BadArgError{Field: "C", Reason: "must be non-negative"}
	}
	if p.FilterListSize < 0 {
		return &BadArgError{Field: "FilterListSize", Reason: "must be non-negative"}
	}
	return nil
}

// ConsolidateParams configures a single ConsolidateDeletes pass. Zero
// value means "use the Engine's Params".
type ConsolidateParams struct {
	// Alpha overrides Params.Alpha for the repair RobustPrune calls made
	// during this pass. 0 means use the Engine's configured Alpha.
	Alpha float32
	// R overrides Params.R for this pass. 0 means use the Engine's R.
	R int
	// NumThreads overrides Params.NumThreads for this pass.
	NumThreads int
}

// engineOptions holds construction-time knobs that sit outside the
// Vamana algorithm proper (logging, metrics, universal label),
// configured via the functional-options pattern below.
type engineOptions struct {
	logger         *Logger
	universalLabel *labels.Label
	metrics        MetricsCollector
}

// Option configures Engine construction. Options primarily exist to
// avoid exploding New's parameter list.
type Option func(*engineOptions)

// WithLogger configures structured logging for engine operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger at the given level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *engineOptions) {
		o.logger = NewTextLogger(level)
	}
}

// WithUniversalLabel configures the universal label: points carrying it
// satisfy every label filter, and it participates in per-label medoid
// seeding for every filtered search.
func WithUniversalLabel(l labels.Label) Option {
	return func(o *engineOptions) {
		o.universalLabel = &l
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// insert/search/consolidate operations. Pass nil to disable.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *engineOptions) {
		o.metrics = mc
	}
}

func applyOptions(optFns []Option) engineOptions {
	o := engineOptions{
		logger:  NoopLogger(),
		metrics: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metrics == nil {
		o.metrics = NoopMetricsCollector{}
	}
	return o
}
