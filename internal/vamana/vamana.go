// Package vamana implements the two algorithms at the heart of the engine:
// GreedySearch, the beam-expanded graph traversal used by both query
// search and insertion, and RobustPrune, the diversifying neighbor-selection
// rule that keeps the graph's out-degree bounded and its diameter small.
//
// Both operate over the shared internal/store + internal/graph slot model
// rather than a private snapshot, so search and prune can run concurrently
// with inserts elsewhere in the graph. RobustPrune's shadow test rejects a
// candidate c' when alpha*dist(c*, c') <= dist(p, c') for some already-kept
// neighbor c*, favoring diverse directions over a tight cluster of near
// duplicates.
package vamana

import (
	"sort"

	"github.com/hupe1980/streamvamana/internal/graph"
	"github.com/hupe1980/streamvamana/internal/kernel"
	"github.com/hupe1980/streamvamana/internal/store"
)

// Candidate is a (slot, distance-to-query) pair.
type Candidate struct {
	Slot uint32
	Dist float32
}

// Index bundles the read-only handles GreedySearch and RobustPrune need:
// a distance function, the vector arena, and the adjacency store. It
// carries no state of its own and is safe to share across goroutines.
type Index[T kernel.Numeric] struct {
	Dist kernel.Func[T]
	Vecs *store.Store[T]
	Adj  *graph.Store
}

// insertSorted inserts c into a slice kept sorted ascending by distance,
// tie-broken by ascending slot index, truncated to maxSize.
func insertSorted(list []Candidate, c Candidate, maxSize int) []Candidate {
	i := sort.Search(len(list), func(j int) bool {
		if list[j].Dist != c.Dist {
			return list[j].Dist > c.Dist
		}
		return list[j].Slot > c.Slot
	})
	if i >= maxSize {
		return list
	}
	if len(list) < maxSize {
		list = append(list, Candidate{})
	}
	copy(list[i+1:], list[i:])
	list[i] = c
	if len(list) > maxSize {
		list = list[:maxSize]
	}
	return list
}
