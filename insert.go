package streamvamana

import (
	"context"
	"time"

	"github.com/hupe1980/streamvamana/internal/kernel"
	"github.com/hupe1980/streamvamana/internal/labels"
	"github.com/hupe1980/streamvamana/internal/vamana"
	"golang.org/x/sync/errgroup"
)

// InsertPoint allocates a slot for tag, runs GreedySearch from the current
// entry points to build a candidate pool, RobustPrune's it into tag's
// neighbor list, then back-links every selected neighbor (pruning that
// neighbor's own list if it would exceed R). If lset is non-empty, tag's
// labels are recorded and each label's medoid entry point is
// reservoir-sampled to include tag.
func (e *Engine[T]) InsertPoint(ctx context.Context, vec []T, tag Tag, lset ...labels.Label) error {
	start := time.Now()
	err := e.insertPoint(ctx, vec, tag, lset)
	e.metrics.RecordInsert(time.Since(start), err)
	e.logger.LogInsertPoint(ctx, tag, err)
	return err
}

func (e *Engine[T]) insertPoint(ctx context.Context, vec []T, tag Tag, lset []labels.Label) error {
	if len(vec) != e.dim {
		return &BadArgError{Field: "vec", Reason: "dimension mismatch"}
	}

	if err := e.gt.AcquireShared(ctx); err != nil {
		return err
	}
	defer e.gt.ReleaseShared()

	stored := vec
	if e.metric == kernel.MIPS {
		e.mu.RLock()
		m := e.maxNorm
		e.mu.RUnlock()

		augmented, clamped := kernel.Augment(vec, m)
		if clamped {
			e.logger.LogNormClamp(ctx, tag, kernel.Norm(vec), m)
		}
		stored = augmented
	}

	slot, err := e.vecs.Allocate(tag, stored)
	if err != nil {
		return translateStoreErr(err, e.vecs.Capacity())
	}

	entryPoints := e.searchEntryPoints(lset)
	if len(entryPoints) == 0 {
		// First point in an otherwise-empty graph: it has no neighbors to
		// find yet, but it becomes reachable as a future entry point.
		e.recordAsEntryPointIfNone(slot)
		e.applyLabels(slot, lset)
		return nil
	}

	beamWidth := e.params.L
	if len(lset) > 0 {
		beamWidth = e.params.FilterListSize
	}
	candidates := vamana.GreedySearch(e.vidx, stored, entryPoints, beamWidth)

	neighbors := vamana.RobustPrune(e.vidx, slot, candidates, e.params.R, e.params.Alpha, vamana.PruneOptions{
		Saturate:     e.params.SaturateGraph,
		IsTombstoned: e.dels.Contains,
		C:            e.params.C,
	})
	e.adj.Set(slot, neighbors)

	for _, n := range neighbors {
		e.backLink(n, slot)
	}

	e.applyLabels(slot, lset)

	return nil
}

// backLink adds slot as a neighbor of n, pruning n's list back down to R
// via RobustPrune (relative to n) if it would otherwise overflow.
func (e *Engine[T]) backLink(n, slot uint32) {
	if e.adj.TryAppend(n, slot) {
		return
	}

	e.adj.Lock(n)
	defer e.adj.Unlock(n)

	cur := append([]uint32(nil), e.adj.NeighborsLocked(n)...)
	cur = append(cur, slot)

	nVec := e.vecs.Vec(n)
	cands := make([]vamana.Candidate, 0, len(cur))
	for _, x := range cur {
		cands = append(cands, vamana.Candidate{Slot: x, Dist: e.dist(nVec, e.vecs.Vec(x))})
	}

	pruned := vamana.RobustPrune(e.vidx, n, cands, e.params.R, e.params.Alpha, vamana.PruneOptions{
		Saturate:     e.params.SaturateGraph,
		IsTombstoned: e.dels.Contains,
		C:            e.params.C,
	})
	e.adj.SetLocked(n, pruned)
}

// searchEntryPoints resolves the entry points a new insert's GreedySearch
// should start from: per-label medoids if lset names any labels with a
// recorded medoid, else the engine's default entry points.
func (e *Engine[T]) searchEntryPoints(lset []labels.Label) []uint32 {
	if len(lset) > 0 {
		if pts := e.lbls.EntryPoints(labels.NewFilter(lset...)); len(pts) > 0 {
			return pts
		}
	}
	return e.entryPointsSnapshot()
}

// recordAsEntryPointIfNone makes slot a default entry point when the
// engine has none yet, so the very first real insert bootstraps search.
func (e *Engine[T]) recordAsEntryPointIfNone(slot uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.entryPoints) == 0 {
		e.entryPoints = append(e.entryPoints, slot)
	}
}

// applyLabels records slot's labels and reservoir-samples each label's
// medoid.
func (e *Engine[T]) applyLabels(slot uint32, lset []labels.Label) {
	if len(lset) == 0 {
		return
	}
	e.lbls.Set(slot, lset)
	for _, l := range lset {
		e.maybeUpdateMedoid(l, slot)
	}
}

// maybeUpdateMedoid replaces label's recorded medoid with slot with
// probability 1/n, where n is the current posting-list size for label,
// giving every member of the label an equal chance of being the entry
// point (reservoir sampling of size 1).
func (e *Engine[T]) maybeUpdateMedoid(label labels.Label, slot uint32) {
	n := len(e.lbls.Slots(label))
	if n <= 0 {
		return
	}
	e.rngMu.Lock()
	r := e.rng.Intn(n)
	e.rngMu.Unlock()
	if r == 0 {
		e.lbls.SetMedoid(label, slot)
	}
}

// InsertItem is one entry of a InsertBatch call.
type InsertItem[T kernel.Numeric] struct {
	Vec    []T
	Tag    Tag
	Labels []labels.Label
}

// BatchReport summarizes an InsertBatch call.
type BatchReport struct {
	Attempted int
	Failed    int
	Errors    []error // parallel to failed items, nil entries omitted
}

// InsertBatch inserts items concurrently, bounded by Params.NumThreads
// (0 means no limit: one goroutine per item), and
// returns a report of per-item failures rather than aborting on the
// first error.
func (e *Engine[T]) InsertBatch(ctx context.Context, items []InsertItem[T]) (BatchReport, error) {
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	if e.params.NumThreads > 0 {
		g.SetLimit(e.params.NumThreads)
	}

	errs := make([]error, len(items))
	for i := range items {
		item := items[i]
		idx := i
		g.Go(func() error {
			errs[idx] = e.InsertPoint(gctx, item.Vec, item.Tag, item.Labels...)
			return nil
		})
	}
	_ = g.Wait() // per-item errors are collected in errs, never aborts the batch

	report := BatchReport{Attempted: len(items)}
	for _, err := range errs {
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, err)
		}
	}

	e.metrics.RecordBatchInsert(report.Attempted, report.Failed, time.Since(start))
	e.logger.LogBatchInsert(ctx, report.Attempted, report.Failed)

	return report, ctx.Err()
}
