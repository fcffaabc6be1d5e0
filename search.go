package streamvamana

import (
	"context"
	"time"

	"github.com/hupe1980/streamvamana/internal/kernel"
	"github.com/hupe1980/streamvamana/internal/labels"
	"github.com/hupe1980/streamvamana/internal/store"
	"github.com/hupe1980/streamvamana/internal/vamana"
)

// SearchResult is one hit returned by Search, ordered by ascending
// distance.
type SearchResult struct {
	Tag      Tag
	Distance float32
}

// Search runs GreedySearch from the default entry points (or, if filter
// names labels with a recorded medoid, from those medoids) and returns
// up to k live results satisfying filter, ordered by ascending distance.
// When filter carries any labels, the beam width is Params.FilterListSize
// rather than the caller-supplied beamWidth, matching the width used to
// build the per-label medoid graph neighborhoods filtered search relies on.
func (e *Engine[T]) Search(ctx context.Context, query []T, k, beamWidth int, filter *labels.Filter) ([]SearchResult, error) {
	start := time.Now()
	results, err := e.search(query, k, beamWidth, filter)
	e.metrics.RecordSearch(k, time.Since(start), err)
	e.logger.LogSearch(ctx, k, len(results), err)
	return results, err
}

func (e *Engine[T]) search(query []T, k, beamWidth int, filter *labels.Filter) ([]SearchResult, error) {
	if len(query) != e.dim {
		return nil, &BadArgError{Field: "query", Reason: "dimension mismatch"}
	}
	if k <= 0 {
		return nil, &BadArgError{Field: "k", Reason: "must be positive"}
	}

	stored := query
	if e.metric == kernel.MIPS {
		stored = kernel.AugmentQuery(query)
	}

	entryPoints := e.lbls.EntryPoints(filter)
	if len(entryPoints) == 0 {
		entryPoints = e.entryPointsSnapshot()
	}
	if len(entryPoints) == 0 {
		return nil, nil
	}

	if filter != nil && len(filter.Labels) > 0 {
		beamWidth = e.params.FilterListSize
	}
	candidates := vamana.GreedySearch(e.vidx, stored, entryPoints, beamWidth)

	results := make([]SearchResult, 0, k)
	for _, c := range candidates {
		if len(results) >= k {
			break
		}
		if e.vecs.State(c.Slot) != store.Live {
			continue
		}
		if !e.lbls.Satisfies(c.Slot, filter) {
			continue
		}
		tag, ok := e.vecs.TagOf(c.Slot)
		if !ok {
			continue
		}
		results = append(results, SearchResult{Tag: tag, Distance: c.Dist})
	}

	return results, nil
}
