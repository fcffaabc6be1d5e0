// Package gate implements a single-writer/many-readers admission control
// where inserts take the shared side and never block indefinitely, and
// consolidation takes the exclusive side with a bounded-wait attempt
// that surfaces ErrTimeout on failure rather than blocking forever.
//
// The gate is built on a golang.org/x/sync/semaphore.Weighted and a
// context-bounded Acquire, generalized from a worker-count gate into a
// reader/writer gate: readers each hold weight 1, the writer holds the
// full weight.
package gate

import (
	"context"
	"errors"

	"golang.org/x/sync/semaphore"
)

// weight is large enough that it is never exhausted by concurrent
// readers (inserters) in practice; the exclusive side always requests
// the entire weight, which only succeeds once every reader has released.
const weight = 1 << 30

// ErrTimeout is returned by AcquireExclusive when the bounded wait
// expires before every reader has released the gate.
var ErrTimeout = errors.New("gate: consolidation gate acquisition timed out")

// Gate is the consolidation gate.
type Gate struct {
	sem *semaphore.Weighted
}

// New creates an unheld gate.
func New() *Gate {
	return &Gate{sem: semaphore.NewWeighted(weight)}
}

// AcquireShared blocks until the shared (reader/insert) side of the gate
// is available, or ctx is done.
func (g *Gate) AcquireShared(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

// ReleaseShared releases a previously acquired shared hold.
func (g *Gate) ReleaseShared() {
	g.sem.Release(1)
}

// AcquireExclusive attempts to take the whole gate within ctx's bound.
// Callers should pass a ctx with a deadline/timeout derived from their
// configured lock-wait ceiling; ErrTimeout is returned if ctx is done
// first (ctx's own error is not wrapped).
func (g *Gate) AcquireExclusive(ctx context.Context) error {
	if err := g.sem.Acquire(ctx, weight); err != nil {
		return ErrTimeout
	}
	return nil
}

// ReleaseExclusive releases a previously acquired exclusive hold.
func (g *Gate) ReleaseExclusive() {
	g.sem.Release(weight)
}
