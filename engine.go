package streamvamana

import (
	"math"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/streamvamana/internal/deleteset"
	"github.com/hupe1980/streamvamana/internal/gate"
	"github.com/hupe1980/streamvamana/internal/graph"
	"github.com/hupe1980/streamvamana/internal/kernel"
	"github.com/hupe1980/streamvamana/internal/labels"
	"github.com/hupe1980/streamvamana/internal/store"
	"github.com/hupe1980/streamvamana/internal/vamana"
)

// Tag is the externally supplied vector identifier.
type Tag = store.Tag

// Metric selects the distance space an Engine was built with.
type Metric = kernel.Metric

const (
	L2   = kernel.L2
	MIPS = kernel.MIPS
)

// Engine is the streaming Vamana proximity-graph index over vectors of
// element type T. All exported methods are safe for concurrent use;
// internal locking follows the per-slot / per-set discipline described
// alongside internal/graph, internal/store and internal/deleteset.
type Engine[T kernel.Numeric] struct {
	metric kernel.Metric
	dim    int // caller-visible dimension, pre MIPS augmentation
	params Params

	vecs *store.Store[T]
	adj  *graph.Store
	dels *deleteset.Set
	lbls *labels.Index
	gt   *gate.Gate
	vidx *vamana.Index[T]

	dist kernel.Func[T]

	mu          sync.RWMutex // guards entryPoints and maxNorm
	entryPoints []uint32
	maxNorm     float64

	logger  *Logger
	metrics MetricsCollector

	rngMu sync.Mutex
	rng   *rand.Rand

	slideCalls atomic.Uint64
}

// New builds an Engine over vectors of dimension dim (element type T),
// with a fixed slot capacity, distance metric, and Vamana parameters.
// If params.NumFrozenPoints > 0, that many synthetic unit-norm points are
// seeded as FROZEN entry points immediately, sparing callers a separate
// SetStartPointsRandom call for the common case.
func New[T kernel.Numeric](metric kernel.Metric, dim int, capacity int, params Params, opts ...Option) (*Engine[T], error) {
	if dim <= 0 {
		return nil, &BadArgError{Field: "dim", Reason: "must be positive"}
	}
	if capacity <= 0 {
		return nil, &BadArgError{Field: "capacity", Reason: "must be positive"}
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	o := applyOptions(opts)

	storeDim := dim
	if metric == kernel.MIPS {
		storeDim = dim + 1 // augmented coordinate for the MIPS-to-L2 lift
	}

	dist, err := kernel.Provider[T](metric)
	if err != nil {
		return nil, err
	}

	vecs := store.New[T](storeDim, capacity)
	adj := graph.New(capacity, params.R)

	e := &Engine[T]{
		metric:  metric,
		dim:     dim,
		params:  params,
		vecs:    vecs,
		adj:     adj,
		dels:    deleteset.New(capacity),
		lbls:    labels.New(),
		gt:      gate.New(),
		vidx:    &vamana.Index[T]{Dist: dist, Vecs: vecs, Adj: adj},
		dist:    dist,
		maxNorm: 1.0,
		logger:  o.logger,
		metrics: o.metrics,
		rng:     rand.New(rand.NewSource(1)),
	}

	if o.universalLabel != nil {
		e.lbls.SetUniversal(*o.universalLabel)
	}

	if params.NumFrozenPoints > 0 {
		if _, err := e.seedFrozenPoints(params.NumFrozenPoints, 1.0); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// SetUniversalLabel designates id as the universal label: points
// carrying it satisfy every label filter.
func (e *Engine[T]) SetUniversalLabel(id labels.Label) {
	e.lbls.SetUniversal(id)
}

// SetStartPointsRandom explicitly seeds start points with
// Params.NumFrozenPoints (or 1, if unset) synthetic unit-direction
// vectors scaled to norm, as FROZEN slots. It is a no-op error if start
// points were already established, either by a prior call or by
// New's automatic seeding.
func (e *Engine[T]) SetStartPointsRandom(norm float64) error {
	if norm <= 0 {
		return &BadArgError{Field: "norm", Reason: "must be positive"}
	}

	e.mu.RLock()
	already := len(e.entryPoints) > 0
	e.mu.RUnlock()
	if already {
		return &InvariantViolationError{Condition: "start points already set"}
	}

	count := e.params.NumFrozenPoints
	if count <= 0 {
		count = 1
	}

	pts, err := e.seedFrozenPoints(count, norm)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.entryPoints = pts
	e.maxNorm = norm
	e.mu.Unlock()

	return nil
}

// seedFrozenPoints allocates count synthetic FROZEN slots with random
// unit direction scaled to norm, and records them as entry points if
// none are set yet. It never touches the deletion set or label index:
// frozen points carry no tag and are never returned in search results.
func (e *Engine[T]) seedFrozenPoints(count int, norm float64) ([]uint32, error) {
	e.rngMu.Lock()
	pts := make([]uint32, 0, count)
	for i := 0; i < count; i++ {
		vec := randomUnitVector[T](e.rng, e.vecs.Dim(), norm)
		slot, err := e.vecs.AllocateFrozen(vec)
		if err != nil {
			e.rngMu.Unlock()
			return nil, err
		}
		pts = append(pts, slot)
	}
	e.rngMu.Unlock()

	e.mu.Lock()
	if len(e.entryPoints) == 0 {
		e.entryPoints = append(e.entryPoints, pts...)
		if norm > e.maxNorm {
			e.maxNorm = norm
		}
	}
	e.mu.Unlock()

	return pts, nil
}

// entryPointsSnapshot returns a copy of the current default entry points.
func (e *Engine[T]) entryPointsSnapshot() []uint32 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]uint32, len(e.entryPoints))
	copy(out, e.entryPoints)
	return out
}

// randomUnitVector draws a Gaussian random direction of dim elements and
// scales it to the given Euclidean norm, narrowing into T via
// kernel.FromFloat (saturating for integer element types).
func randomUnitVector[T kernel.Numeric](rng *rand.Rand, dim int, norm float64) []T {
	raw := make([]float64, dim)
	var sumSq float64
	for i := range raw {
		v := rng.NormFloat64()
		raw[i] = v
		sumSq += v * v
	}
	scale := 0.0
	if sumSq > 0 {
		scale = norm / math.Sqrt(sumSq)
	}
	out := make([]T, dim)
	for i, v := range raw {
		out[i] = kernel.FromFloat[T](v * scale)
	}
	return out
}
