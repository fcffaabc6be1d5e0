// Package graph owns the per-slot neighbor adjacency lists and the
// fine-grained per-slot locking that lets two threads mutating disjoint
// slots proceed without contention, while readers may take either the
// shared side or a cheap snapshot copy bounded by R.
package graph

import "sync"

// Store holds one neighbor list per slot, each independently lockable.
type Store struct {
	r     int
	slots []slotEntry
}

type slotEntry struct {
	mu        sync.RWMutex
	neighbors []uint32
}

// New allocates a graph store for capacity slots with max out-degree r.
func New(capacity, r int) *Store {
	g := &Store{r: r, slots: make([]slotEntry, capacity)}
	for i := range g.slots {
		g.slots[i].neighbors = make([]uint32, 0, r)
	}
	return g
}

// R returns the configured max out-degree.
func (g *Store) R() int { return g.r }

// Snapshot returns a copy of slot's neighbor list under a shared lock,
// cheap because lists are bounded by R.
func (g *Store) Snapshot(slot uint32) []uint32 {
	e := &g.slots[slot]
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]uint32, len(e.neighbors))
	copy(out, e.neighbors)
	return out
}

// Len returns the current out-degree of slot.
func (g *Store) Len(slot uint32) int {
	e := &g.slots[slot]
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.neighbors)
}

// Set replaces slot's neighbor list wholesale, truncating to R if
// necessary. Set takes slot's exclusive lock itself, so it must not be
// called while holding that lock via Lock; a multi-step read-modify-write
// under Lock uses SetLocked instead.
func (g *Store) Set(slot uint32, neighbors []uint32) {
	e := &g.slots[slot]
	e.mu.Lock()
	defer e.mu.Unlock()
	g.setLocked(e, neighbors)
}

func (g *Store) setLocked(e *slotEntry, neighbors []uint32) {
	if len(neighbors) > g.r {
		neighbors = neighbors[:g.r]
	}
	e.neighbors = append(e.neighbors[:0], neighbors...)
}

// TryAppend adds neighbor to slot's list if there is room under R,
// reporting whether it did. Used by the insert protocol's back-linking
// step: when a new point's pruned neighbor list names u, and |N(u)| < R,
// u simply appends the new point rather than re-running RobustPrune.
func (g *Store) TryAppend(slot, neighbor uint32) bool {
	e := &g.slots[slot]
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, n := range e.neighbors {
		if n == neighbor {
			return true // already linked
		}
	}
	if len(e.neighbors) >= g.r {
		return false
	}
	e.neighbors = append(e.neighbors, neighbor)
	return true
}

// Lock acquires slot's exclusive lock for a read-modify-write sequence
// that needs more than one Store call (e.g. read current neighbors, run
// RobustPrune, then Set). Pair with Unlock.
func (g *Store) Lock(slot uint32)   { g.slots[slot].mu.Lock() }
func (g *Store) Unlock(slot uint32) { g.slots[slot].mu.Unlock() }

// NeighborsLocked reads slot's neighbor list; caller must already hold
// slot's exclusive lock via Lock.
func (g *Store) NeighborsLocked(slot uint32) []uint32 {
	return g.slots[slot].neighbors
}

// SetLocked replaces slot's neighbor list; caller must already hold
// slot's exclusive lock via Lock.
func (g *Store) SetLocked(slot uint32, neighbors []uint32) {
	g.setLocked(&g.slots[slot], neighbors)
}

// LockTwo acquires the locks for slots a and b in ascending index order
// to prevent deadlock against a concurrent LockTwo(b, a). If a == b it
// locks once. Returns an unlock function.
func (g *Store) LockTwo(a, b uint32) (unlock func()) {
	if a == b {
		g.Lock(a)
		return func() { g.Unlock(a) }
	}
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	g.Lock(lo)
	g.Lock(hi)
	return func() {
		g.Unlock(hi)
		g.Unlock(lo)
	}
}
