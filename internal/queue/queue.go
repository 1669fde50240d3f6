// Package queue provides the min-priority queue that orders leaf visits
// during a search.
package queue

import "github.com/hupe1980/schtree/internal/vecmath"

// Item is a leaf position and its lower-bound distance to the query.
type Item[T vecmath.Float] struct {
	Leaf  int // Leaf is the position in the tree's leaf list.
	Bound T   // Bound is the priority of the item in the queue.
}

// less orders by bound, then by leaf position for determinism.
func (a Item[T]) less(b Item[T]) bool {
	if a.Bound != b.Bound {
		return a.Bound < b.Bound
	}
	return a.Leaf < b.Leaf
}

// PriorityQueue is a value-based binary min-heap of Items.
//
// Items are appended unordered with Append and heapified once by Init, so a
// search that stops after a few leaves pays O(L) instead of O(L log L) for a
// full sort.
type PriorityQueue[T vecmath.Float] struct {
	items []Item[T]
}

// NewMin initializes an empty min-queue with the given capacity.
func NewMin[T vecmath.Float](capacity int) *PriorityQueue[T] {
	return &PriorityQueue[T]{items: make([]Item[T], 0, capacity)}
}

// Len returns the number of items in the queue.
func (pq *PriorityQueue[T]) Len() int { return len(pq.items) }

// Cap returns the capacity of the backing slice.
func (pq *PriorityQueue[T]) Cap() int { return cap(pq.items) }

// Append adds an item without restoring the heap invariant. Call Init
// before popping.
func (pq *PriorityQueue[T]) Append(item Item[T]) {
	pq.items = append(pq.items, item)
}

// Init establishes the heap invariant in O(n).
func (pq *PriorityQueue[T]) Init() {
	n := len(pq.items)
	for i := n/2 - 1; i >= 0; i-- {
		pq.siftDown(i)
	}
}

// PopItem removes and returns the smallest item.
func (pq *PriorityQueue[T]) PopItem() (Item[T], bool) {
	n := len(pq.items)
	if n == 0 {
		return Item[T]{}, false
	}
	root := pq.items[0]
	last := pq.items[n-1]
	pq.items = pq.items[:n-1]
	if n-1 > 0 {
		pq.items[0] = last
		pq.siftDown(0)
	}
	return root, true
}

// Reset clears the queue for reuse.
func (pq *PriorityQueue[T]) Reset() {
	pq.items = pq.items[:0]
}

func (pq *PriorityQueue[T]) siftDown(i int) {
	n := len(pq.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		if r := l + 1; r < n && pq.items[r].less(pq.items[l]) {
			best = r
		}
		if !pq.items[best].less(pq.items[i]) {
			return
		}
		pq.items[i], pq.items[best] = pq.items[best], pq.items[i]
		i = best
	}
}
