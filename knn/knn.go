// Package knn provides the bounded top-k container returned by nearest
// neighbor searches.
//
// A Result keeps the k best (index, distance) pairs seen so far in a binary
// max-heap whose root is the current worst candidate, so both the admission
// test and the eviction are O(log k). Pairs are totally ordered by distance
// with the point index as tie-breaker, which makes results deterministic
// regardless of the order candidates are offered in.
package knn

import (
	"slices"

	"github.com/hupe1980/schtree/internal/vecmath"
)

// Neighbor is a point index and its distance to the query.
type Neighbor[T vecmath.Float] struct {
	Index    int
	Distance T
}

// Less reports whether n orders before o: smaller distance, then smaller index.
func (n Neighbor[T]) Less(o Neighbor[T]) bool {
	if n.Distance != o.Distance {
		return n.Distance < o.Distance
	}
	return n.Index < o.Index
}

// Result is a fixed-capacity max-heap of the k best neighbors.
//
// A Result is not safe for concurrent use. Sort finalizes it; inserting into
// a sorted Result panics.
type Result[T vecmath.Float] struct {
	k      int
	items  []Neighbor[T]
	sorted bool
}

// New creates an empty Result with capacity k.
func New[T vecmath.Float](k int) *Result[T] {
	r := &Result[T]{}
	r.SetK(k)
	return r
}

// SetK raises the capacity to k. The capacity never shrinks.
func (r *Result[T]) SetK(k int) {
	if k <= r.k {
		return
	}
	r.k = k
	r.items = slices.Grow(r.items, k-len(r.items))
}

// K returns the capacity.
func (r *Result[T]) K() int { return r.k }

// Len returns the number of neighbors held.
func (r *Result[T]) Len() int { return len(r.items) }

// IsFull reports whether k neighbors are held.
func (r *Result[T]) IsFull() bool { return len(r.items) >= r.k }

// Sorted reports whether the Result has been finalized by Sort.
func (r *Result[T]) Sorted() bool { return r.sorted }

// MaxDistance returns the distance of the worst neighbor held, or +Inf while
// the Result is not full. An unfilled Result therefore never prunes.
func (r *Result[T]) MaxDistance() T {
	if !r.IsFull() || len(r.items) == 0 {
		return vecmath.Inf[T]()
	}
	return r.items[0].Distance
}

// Insert offers a candidate. Below capacity it is always accepted; at
// capacity it replaces the current worst neighbor only if it orders strictly
// before it. Reports whether the candidate was kept.
func (r *Result[T]) Insert(index int, dist T) bool {
	if r.sorted {
		panic("knn: insert into finalized result")
	}

	item := Neighbor[T]{Index: index, Distance: dist}
	if len(r.items) < r.k {
		r.items = append(r.items, item)
		r.siftUp(len(r.items) - 1)
		return true
	}
	if len(r.items) == 0 || !item.Less(r.items[0]) {
		return false
	}
	r.items[0] = item
	r.siftDown(0, len(r.items))
	return true
}

// Neighbors returns the held pairs. The order is heap order unless the
// Result was sorted. The slice aliases internal storage.
func (r *Result[T]) Neighbors() []Neighbor[T] {
	return r.items
}

// Indices returns the point indices in the current order.
func (r *Result[T]) Indices() []int {
	out := make([]int, len(r.items))
	for i, n := range r.items {
		out[i] = n.Index
	}
	return out
}

// Sort finalizes the Result by heap-sorting it in place into ascending
// (distance, index) order and returns the sorted neighbors. Calling Sort
// again is a no-op.
func (r *Result[T]) Sort() []Neighbor[T] {
	if r.sorted {
		return r.items
	}
	for end := len(r.items) - 1; end > 0; end-- {
		r.items[0], r.items[end] = r.items[end], r.items[0]
		r.siftDown(0, end)
	}
	r.sorted = true
	return r.items
}

// Equal reports whether r and o hold the same neighbors. Both are compared
// in sorted order; neither receiver is modified.
func (r *Result[T]) Equal(o *Result[T]) bool {
	if r == nil || o == nil {
		return r == o
	}
	if len(r.items) != len(o.items) {
		return false
	}
	return slices.Equal(sortedCopy(r), sortedCopy(o))
}

func sortedCopy[T vecmath.Float](r *Result[T]) []Neighbor[T] {
	if r.sorted {
		return r.items
	}
	out := slices.Clone(r.items)
	slices.SortFunc(out, compare[T])
	return out
}

func compare[T vecmath.Float](a, b Neighbor[T]) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}

// worse reports whether items[i] orders after items[j] (max-heap predicate).
func (r *Result[T]) worse(i, j int) bool {
	return r.items[j].Less(r.items[i])
}

func (r *Result[T]) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !r.worse(i, p) {
			return
		}
		r.items[i], r.items[p] = r.items[p], r.items[i]
		i = p
	}
}

func (r *Result[T]) siftDown(i, n int) {
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		worst := l
		if rc := l + 1; rc < n && r.worse(rc, l) {
			worst = rc
		}
		if !r.worse(worst, i) {
			return
		}
		r.items[i], r.items[worst] = r.items[worst], r.items[i]
		i = worst
	}
}
