package vamana

import (
	"sort"

	"github.com/hupe1980/streamvamana/internal/kernel"
)

// PruneOptions configures RobustPrune beyond (R, alpha).
type PruneOptions struct {
	// Saturate pads the result up to R with the closest previously-
	// dominated candidates when the shadow test alone selects fewer than
	// R neighbors. Tie-break is ascending distance to center, then
	// ascending slot index.
	Saturate bool
	// IsTombstoned excludes tombstoned slots from being *selected* as new
	// neighbors (existing edges may still point at tombstoned slots per
	// invariant 1; this only governs edges RobustPrune creates).
	IsTombstoned func(slot uint32) bool
	// C bounds the candidate pool size considered by the alpha-shadow
	// loop: only the C closest surviving candidates (after IsTombstoned
	// filtering) participate. 0 means unbounded. Capping the pool here,
	// before the O(n^2) shadow-test loop, is what makes C an effective
	// speed/quality knob rather than dead configuration.
	C int
}

// RobustPrune selects up to r diverse out-neighbors for center from
// candidates, applying the alpha-shadow test:
//
//	alpha * d(c*, c') <= d(p, c')
//
// candidates must carry Dist = distance from center to that candidate;
// callers computing candidates from a GreedySearch run with query =
// center's own vector get this for free (insert searches from the point
// being linked), other callers must recompute distances relative to the
// true center, as in the insert protocol's back-link case where the
// center is the existing neighbor u, not the new point s, and in
// consolidation's repair of a slot's neighbor list.
func RobustPrune[T kernel.Numeric](idx *Index[T], center uint32, candidates []Candidate, r int, alpha float32, opts PruneOptions) []uint32 {
	pool := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Slot == center {
			continue
		}
		if opts.IsTombstoned != nil && opts.IsTombstoned(c.Slot) {
			continue
		}
		pool = append(pool, c)
	}

	sort.Slice(pool, func(i, j int) bool {
		if pool[i].Dist != pool[j].Dist {
			return pool[i].Dist < pool[j].Dist
		}
		return pool[i].Slot < pool[j].Slot
	})

	if opts.C > 0 && len(pool) > opts.C {
		pool = pool[:opts.C]
	}

	result := make([]uint32, 0, r)
	selected := make(map[uint32]bool, r)
	remaining := pool

	for len(remaining) > 0 && len(result) < r {
		star := remaining[0]
		result = append(result, star.Slot)
		selected[star.Slot] = true

		kept := make([]Candidate, 0, len(remaining))
		starVec := idx.Vecs.Vec(star.Slot)
		for _, c := range remaining[1:] {
			distStarC := idx.Dist(starVec, idx.Vecs.Vec(c.Slot))
			if alpha*distStarC <= c.Dist {
				continue // shadowed by star, drop from further consideration
			}
			kept = append(kept, c)
		}
		remaining = kept
	}

	if opts.Saturate && len(result) < r {
		for _, c := range pool {
			if len(result) >= r {
				break
			}
			if selected[c.Slot] {
				continue
			}
			result = append(result, c.Slot)
			selected[c.Slot] = true
		}
	}

	return result
}
