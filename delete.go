package streamvamana

import (
	"context"
	"time"
)

// LazyDelete marks tag's slot TOMBSTONED without touching the graph;
// physical reclamation and neighbor-list repair are deferred to
// ConsolidateDeletes. Returns ErrUnknownTag if tag does not name a live
// slot, or an *UnsupportedError if the slot carries any non-universal
// label: labeled points cannot be lazily deleted by this engine, since
// tombstoning one would leave its label's posting list and medoid
// pointing at a slot with no path back to searchable neighbors.
func (e *Engine[T]) LazyDelete(tag Tag) error {
	start := time.Now()
	err := e.lazyDelete(tag)
	e.metrics.RecordLazyDelete(time.Since(start), err)
	e.logger.LogLazyDelete(context.Background(), tag, err)
	return err
}

func (e *Engine[T]) lazyDelete(tag Tag) error {
	slot, ok := e.vecs.SlotOf(tag)
	if !ok {
		return ErrUnknownTag
	}

	for _, l := range e.lbls.Labels(slot) {
		if !e.lbls.IsUniversal(l) {
			return &UnsupportedError{Reason: "deleting a point that carries a non-universal label"}
		}
	}

	if err := e.vecs.MarkTombstoned(slot); err != nil {
		return translateStoreErr(err, e.vecs.Capacity())
	}
	e.dels.Add(slot)

	return nil
}
