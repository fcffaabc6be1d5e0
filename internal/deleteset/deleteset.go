// Package deleteset holds the set of slots pending consolidation. It is
// guarded by an RWMutex: membership tests and Len take the shared side;
// lazy delete takes the exclusive side to add a slot, because the bitset
// does not support concurrent writers, so concurrent deleters run one at
// a time; consolidation takes the exclusive side to snapshot-and-clear
// the whole set atomically.
package deleteset

import (
	"sync"

	"github.com/bits-and-blooms/bitset"
)

// Set is a tombstone set backed by a bitset.
type Set struct {
	mu   sync.RWMutex
	bits *bitset.BitSet
}

// New creates an empty deletion set sized for capacity slots.
func New(capacity int) *Set {
	return &Set{bits: bitset.New(uint(capacity))}
}

// Add marks slot as tombstoned-pending-consolidation. Concurrent deleters
// serialize briefly here since bitset.BitSet is not safe for concurrent
// writers. Only a concurrent SnapshotAndClear contends for longer.
func (s *Set) Add(slot uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bits.Set(uint(slot))
}

// Contains reports whether slot is currently in the deletion set.
func (s *Set) Contains(slot uint32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bits.Test(uint(slot))
}

// Len returns the number of tombstoned slots currently pending.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int(s.bits.Count())
}

// SnapshotAndClear takes the exclusive side, copies the current set of
// tombstoned slots, clears the live set, and returns the snapshot for the
// consolidator to process.
func (s *Set) SnapshotAndClear() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]uint32, 0, s.bits.Count())
	for i, e := s.bits.NextSet(0); e; i, e = s.bits.NextSet(i + 1) {
		out = append(out, uint32(i))
	}
	s.bits.ClearAll()
	return out
}
