package streamvamana

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/streamvamana/internal/vamana"
	"golang.org/x/sync/errgroup"
)

// ConsolidateStatus is the outcome of a ConsolidateDeletes pass.
type ConsolidateStatus int

const (
	// ConsolidateSuccess means the pass completed and every tombstoned
	// slot in the snapshotted deletion set was freed.
	ConsolidateSuccess ConsolidateStatus = iota
	// ConsolidateLockFail means the exclusive gate could not be acquired
	// within the bounded wait; the caller should retry with backoff.
	ConsolidateLockFail
	// ConsolidateInconsistentCount means a post-pass scan found a live
	// slot still referencing a freed slot — an invariant violation.
	ConsolidateInconsistentCount
)

func (s ConsolidateStatus) String() string {
	switch s {
	case ConsolidateSuccess:
		return "SUCCESS"
	case ConsolidateLockFail:
		return "LOCK_FAIL"
	case ConsolidateInconsistentCount:
		return "INCONSISTENT_COUNT"
	default:
		return "UNKNOWN"
	}
}

// ConsolidateReport summarizes a ConsolidateDeletes pass.
type ConsolidateReport struct {
	Status        ConsolidateStatus
	ActivePoints  int
	MaxPoints     int
	EmptySlots    int
	SlotsReleased int
	DeleteSetSize int
	Time          time.Duration
}

// ConsolidateDeletes acquires the exclusive consolidation gate, snapshots
// and clears the deletion set, repairs every non-free slot whose
// neighbor list references a tombstoned slot (in parallel across
// Params.NumThreads workers), then physically frees the tombstoned
// slots.
func (e *Engine[T]) ConsolidateDeletes(ctx context.Context, params ConsolidateParams) (ConsolidateReport, error) {
	start := time.Now()

	r := e.params.R
	if params.R > 0 {
		r = params.R
	}
	alpha := e.params.Alpha
	if params.Alpha > 0 {
		alpha = params.Alpha
	}
	threads := e.params.NumThreads
	if params.NumThreads > 0 {
		threads = params.NumThreads
	}

	report := ConsolidateReport{DeleteSetSize: e.dels.Len()}

	if err := e.gt.AcquireExclusive(ctx); err != nil {
		report.Status = ConsolidateLockFail
		report.Time = time.Since(start)
		err = translateGateErr(err)
		e.metrics.RecordConsolidate(0, report.Time, err)
		e.logger.LogConsolidate(ctx, report, err)
		return report, err
	}
	defer e.gt.ReleaseExclusive()

	tombstoned := e.dels.SnapshotAndClear()
	report.DeleteSetSize = len(tombstoned)

	tSet := make(map[uint32]struct{}, len(tombstoned))
	for _, s := range tombstoned {
		tSet[s] = struct{}{}
	}
	isBad := func(slot uint32) bool {
		_, ok := tSet[slot]
		return ok
	}

	slots := e.vecs.Snapshot()

	g := new(errgroup.Group)
	if threads > 0 {
		g.SetLimit(threads)
	}
	for _, slot := range slots {
		s := slot
		if isBad(s) {
			continue // freed below regardless of its own neighbor list
		}
		g.Go(func() error {
			e.repairSlot(s, tSet, isBad, r, alpha)
			return nil
		})
	}
	_ = g.Wait()

	for _, s := range tombstoned {
		e.lbls.Remove(s)
		if err := e.vecs.Free(s); err == nil {
			report.SlotsReleased++
		}
	}

	report.ActivePoints = e.vecs.Len()
	report.MaxPoints = e.vecs.Capacity()
	report.EmptySlots = report.MaxPoints - len(e.vecs.Snapshot())
	report.Time = time.Since(start)
	report.Status = ConsolidateSuccess

	var err error
	if e.hasResidualReference(tSet) {
		report.Status = ConsolidateInconsistentCount
		err = &InvariantViolationError{Condition: "live slot references a freed slot after consolidation"}
	}

	e.metrics.RecordConsolidate(report.SlotsReleased, report.Time, err)
	e.logger.LogConsolidate(ctx, report, err)

	return report, err
}

// repairSlot rebuilds slot's neighbor list when it references any
// tombstoned slot: the surviving neighbors plus the union of the bad
// neighbors' own neighbor lists (excluding tombstoned members and slot
// itself) are re-pruned relative to slot.
func (e *Engine[T]) repairSlot(slot uint32, tSet map[uint32]struct{}, isBad func(uint32) bool, r int, alpha float32) {
	neighbors := e.adj.Snapshot(slot)

	hasBad := false
	for _, n := range neighbors {
		if isBad(n) {
			hasBad = true
			break
		}
	}
	if !hasBad {
		return
	}

	expanded := make(map[uint32]struct{}, len(neighbors)*2)
	for _, n := range neighbors {
		if !isBad(n) {
			expanded[n] = struct{}{}
		}
	}
	for _, n := range neighbors {
		if !isBad(n) {
			continue
		}
		for _, u := range e.adj.Snapshot(n) {
			if u == slot || isBad(u) {
				continue
			}
			expanded[u] = struct{}{}
		}
	}

	vec := e.vecs.Vec(slot)
	cands := make([]vamana.Candidate, 0, len(expanded))
	for u := range expanded {
		cands = append(cands, vamana.Candidate{Slot: u, Dist: e.dist(vec, e.vecs.Vec(u))})
	}

	pruned := vamana.RobustPrune(e.vidx, slot, cands, r, alpha, vamana.PruneOptions{
		Saturate:     e.params.SaturateGraph,
		IsTombstoned: e.dels.Contains,
		C:            e.params.C,
	})
	e.adj.Set(slot, pruned)
}

// hasResidualReference scans every remaining non-free slot for a
// neighbor-list entry still naming a slot in tSet, which would mean
// consolidation failed to fully repair the graph.
func (e *Engine[T]) hasResidualReference(tSet map[uint32]struct{}) bool {
	for _, slot := range e.vecs.Snapshot() {
		for _, n := range e.adj.Snapshot(slot) {
			if _, bad := tSet[n]; bad {
				return true
			}
		}
	}
	return false
}

// SlideWindow performs one step of a sliding-window streaming workload:
// lazy-delete the tag that is sliding out of the active window (a no-op
// if it was never inserted or already deleted), then call
// ConsolidateDeletes every consolidateInterval calls. Callers are
// responsible for inserting nextTag themselves before or after calling
// SlideWindow; this method only manages the trailing edge of the window.
func (e *Engine[T]) SlideWindow(ctx context.Context, activeWindow, consolidateInterval int, nextTag Tag) error {
	if activeWindow <= 0 {
		return &BadArgError{Field: "activeWindow", Reason: "must be positive"}
	}

	if uint32(nextTag) >= uint32(activeWindow) {
		trailing := Tag(uint32(nextTag) - uint32(activeWindow))
		if err := e.LazyDelete(trailing); err != nil && !errors.Is(err, ErrUnknownTag) {
			return err
		}
	}

	if consolidateInterval <= 0 {
		return nil
	}
	if n := e.slideCalls.Add(1); n%uint64(consolidateInterval) == 0 {
		_, err := e.ConsolidateDeletes(ctx, ConsolidateParams{})
		return err
	}
	return nil
}
