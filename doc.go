// Package streamvamana implements a dynamic, in-memory approximate
// nearest-neighbor proximity graph for streaming workloads, built on the
// Vamana algorithm family (GreedySearch + RobustPrune) as used by
// DiskANN's incremental "FreshVamana" variant.
//
// # Quick Start
//
//	eng, _ := streamvamana.New[float32](streamvamana.L2, 128, 100000, streamvamana.DefaultParams())
//	_ = eng.SetStartPointsRandom(1.0)
//	_ = eng.InsertPoint(ctx, vec, streamvamana.Tag(1))
//	results, _ := eng.Search(ctx, query, 10, 64, nil)
//
// # Streaming Deletes
//
// Deletes are lazy: LazyDelete tombstones a slot immediately but leaves
// its vector and adjacency list in place so concurrent searches and
// inserts stay correct. A background driver reclaims tombstoned slots
// and repairs the graph around them:
//
//	_ = eng.LazyDelete(tag)
//	report, _ := eng.ConsolidateDeletes(ctx, streamvamana.ConsolidateParams{})
//
// SlideWindow composes both steps for the common fixed-window streaming
// pattern (evict the oldest tag, consolidate every N calls):
//
//	_ = eng.SlideWindow(ctx, activeWindow, consolidateInterval, nextTag)
//
// # Filtered Search
//
// Points may carry labels; Search accepts an optional *labels.Filter and
// enters the graph at the filtered labels' recorded medoids rather than
// the default entry points, when one is available.
//
// # Persistence
//
// Save/Load round-trip an Engine through a self-describing header plus
// four checksummed sidecar files (vectors, adjacency, tags, labels).
// Tombstoned points are dropped and slots are compacted on Save.
//
// # Key Properties
//
//   - Single-writer/many-reader consolidation gate: inserts run
//     concurrently with each other, but never with ConsolidateDeletes.
//     Searches take no gate and run alongside both.
//   - Per-slot fine-grained locking with ascending-index lock ordering.
//   - Exact MIPS support via a fixed-max-norm augmented-dimension lift to
//     L2, so both metrics share one GreedySearch/RobustPrune code path.
package streamvamana
