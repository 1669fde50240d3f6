// Package pool provides object pools for allocation-free leaf ordering.
// Uses sync.Pool so concurrent searches reuse their leaf queues.
package pool

import (
	"sync"

	"github.com/hupe1980/schtree/internal/queue"
	"github.com/hupe1980/schtree/internal/vecmath"
)

// maxRetainedCapacity bounds the queue capacity kept in the pool.
// Larger queues are dropped on Put and reallocated on demand.
const maxRetainedCapacity = 1 << 20

// SearchContext contains the reusable buffers of one search.
type SearchContext[T vecmath.Float] struct {
	Leaves *queue.PriorityQueue[T]
}

// Reset clears the SearchContext for reuse.
func (sc *SearchContext[T]) Reset() {
	sc.Leaves.Reset()
}

// Pool is a typed pool of SearchContexts sized for a fixed leaf count.
type Pool[T vecmath.Float] struct {
	p sync.Pool
}

// New creates a pool whose contexts can queue capacity leaves without growing.
func New[T vecmath.Float](capacity int) *Pool[T] {
	pl := &Pool[T]{}
	pl.p.New = func() any {
		return &SearchContext[T]{Leaves: queue.NewMin[T](capacity)}
	}
	return pl
}

// Get retrieves a reset SearchContext from the pool.
func (pl *Pool[T]) Get() *SearchContext[T] {
	sc := pl.p.Get().(*SearchContext[T])
	sc.Reset()
	return sc
}

// Put returns a SearchContext to the pool for reuse.
func (pl *Pool[T]) Put(sc *SearchContext[T]) {
	if sc == nil || sc.Leaves.Cap() > maxRetainedCapacity {
		return
	}
	pl.p.Put(sc)
}
