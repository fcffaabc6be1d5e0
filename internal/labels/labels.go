// Package labels implements optional per-slot label sets and per-label
// medoid entry points for filtered search. Posting lists are kept as
// Roaring bitmaps, an inverted index generalized from string metadata
// keys/values down to plain label ids.
package labels

import (
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// Label is an opaque categorical label id. One value may be designated
// the universal label via Index.SetUniversal — it matches any filter.
type Label uint32

// Filter constrains a search to slots carrying at least one of Labels
// (OR semantics), or the universal label.
type Filter struct {
	Labels []Label
}

// NewFilter builds a Filter over the given labels.
func NewFilter(ls ...Label) *Filter {
	return &Filter{Labels: ls}
}

// Index tracks, per slot, its label set, and per label, a posting-list
// bitmap plus a chosen medoid slot to use as a filtered-search entry
// point.
type Index struct {
	mu sync.RWMutex

	bySlot    map[uint32][]Label
	postings  map[Label]*roaring.Bitmap
	medoids   map[Label]uint32
	universal Label
	hasUniv   bool
}

// New creates an empty label index.
func New() *Index {
	return &Index{
		bySlot:   make(map[uint32][]Label),
		postings: make(map[Label]*roaring.Bitmap),
		medoids:  make(map[Label]uint32),
	}
}

// SetUniversal designates id as the universal label: any slot carrying it
// satisfies every filter.
func (x *Index) SetUniversal(id Label) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.universal = id
	x.hasUniv = true
}

// Set assigns slot's label set, updating posting lists. Replaces any
// labels previously assigned to slot.
func (x *Index) Set(slot uint32, ls []Label) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if old, ok := x.bySlot[slot]; ok {
		for _, l := range old {
			if p := x.postings[l]; p != nil {
				p.Remove(slot)
			}
		}
	}

	if len(ls) == 0 {
		delete(x.bySlot, slot)
		return
	}

	sorted := append([]Label(nil), ls...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	x.bySlot[slot] = sorted

	for _, l := range sorted {
		p, ok := x.postings[l]
		if !ok {
			p = roaring.New()
			x.postings[l] = p
		}
		p.Add(slot)
	}
}

// Remove clears slot's labels and posting-list membership, e.g. when a
// slot is freed by consolidation.
func (x *Index) Remove(slot uint32) {
	x.Set(slot, nil)
	x.mu.Lock()
	defer x.mu.Unlock()
	for label, medoid := range x.medoids {
		if medoid == slot {
			delete(x.medoids, label)
		}
	}
}

// Universal returns the designated universal label, if any.
func (x *Index) Universal() (Label, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.universal, x.hasUniv
}

// IsUniversal reports whether l is the designated universal label.
func (x *Index) IsUniversal(l Label) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.hasUniv && l == x.universal
}

// Labels returns slot's assigned labels.
func (x *Index) Labels(slot uint32) []Label {
	x.mu.RLock()
	defer x.mu.RUnlock()
	ls := x.bySlot[slot]
	out := make([]Label, len(ls))
	copy(out, ls)
	return out
}

// Satisfies reports whether slot's labels satisfy filter: true if filter
// is nil/empty, slot carries the universal label, or slot carries any
// label named in filter.
func (x *Index) Satisfies(slot uint32, filter *Filter) bool {
	if filter == nil || len(filter.Labels) == 0 {
		return true
	}
	x.mu.RLock()
	defer x.mu.RUnlock()

	ls := x.bySlot[slot]
	if x.hasUniv {
		for _, l := range ls {
			if l == x.universal {
				return true
			}
		}
	}
	for _, want := range filter.Labels {
		for _, l := range ls {
			if l == want {
				return true
			}
		}
	}
	return false
}

// Slots returns the posting list for label as a plain slice.
func (x *Index) Slots(label Label) []uint32 {
	x.mu.RLock()
	defer x.mu.RUnlock()
	p, ok := x.postings[label]
	if !ok {
		return nil
	}
	return p.ToArray()
}

// SetMedoid records slot as the entry point for searches filtered on
// label.
func (x *Index) SetMedoid(label Label, slot uint32) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.medoids[label] = slot
}

// Medoid returns the recorded entry point for label, if any.
func (x *Index) Medoid(label Label) (uint32, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	slot, ok := x.medoids[label]
	return slot, ok
}

// EntryPoints resolves the medoids for every label in filter, deduplicated.
// If filter is nil/empty or no medoid is recorded for any of its labels,
// EntryPoints returns nil so the caller falls back to the default entry
// points: a filtered search should enter only at medoids of labels named
// in the filter (or the universal label's medoid), not the global default.
func (x *Index) EntryPoints(filter *Filter) []uint32 {
	if filter == nil || len(filter.Labels) == 0 {
		return nil
	}
	x.mu.RLock()
	defer x.mu.RUnlock()

	seen := make(map[uint32]bool)
	var out []uint32
	for _, l := range filter.Labels {
		if slot, ok := x.medoids[l]; ok && !seen[slot] {
			seen[slot] = true
			out = append(out, slot)
		}
	}
	if x.hasUniv {
		if slot, ok := x.medoids[x.universal]; ok && !seen[slot] {
			out = append(out, slot)
		}
	}
	return out
}
