package vamana

import "github.com/hupe1980/streamvamana/internal/kernel"

// GreedySearch performs a best-first beam traversal from entryPoints
// toward query, returning the beamWidth-bounded candidate list V. V
// doubles as the traversal frontier and as the result set: callers that
// need k final results trim V down (excluding tombstoned/frozen slots
// and applying any label filter) and callers building a new node's
// neighbor list pass V straight into RobustPrune as its candidate set C.
//
// It never blocks: it only reads vector bytes, immutable for a slot's
// lifetime, and takes graph.Store.Snapshot, a shared-lock copy bounded
// by R, so it tolerates concurrent inserts/deletes/consolidation editing
// the very slots it is traversing.
func GreedySearch[T kernel.Numeric](idx *Index[T], query []T, entryPoints []uint32, beamWidth int) []Candidate {
	if beamWidth <= 0 {
		beamWidth = 1
	}

	visited := make(map[uint32]bool, beamWidth*4)
	seen := make(map[uint32]bool, beamWidth*4) // slots already offered to V
	v := make([]Candidate, 0, beamWidth)

	for _, e := range entryPoints {
		if seen[e] {
			continue
		}
		seen[e] = true
		d := idx.Dist(query, idx.Vecs.Vec(e))
		v = insertSorted(v, Candidate{Slot: e, Dist: d}, beamWidth)
	}

	for {
		// Step 1: pick the closest unvisited candidate in V.
		next, found := -1, false
		for i := range v {
			if !visited[v[i].Slot] {
				next, found = i, true
				break
			}
		}
		if !found {
			break
		}

		cur := v[next]
		visited[cur.Slot] = true

		// Step 2/3: expand neighbors from a cheap snapshot copy.
		neighbors := idx.Adj.Snapshot(cur.Slot)
		for _, n := range neighbors {
			if seen[n] {
				continue
			}
			seen[n] = true
			d := idx.Dist(query, idx.Vecs.Vec(n))
			v = insertSorted(v, Candidate{Slot: n, Dist: d}, beamWidth)
		}
	}

	return v
}
