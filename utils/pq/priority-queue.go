// Package pq provides a duplicate-free priority queue, used as the
// priority-ordered working set of fixpoint iteration.
package pq

import "container/heap"

// PriorityQueue hands out elements in the order induced by its
// comparison function. Adding an element already in the queue is a
// no-op, so an element extracted once can be re-added later but never
// occupies two slots at the same time.
type PriorityQueue[T comparable] struct {
	inner   ordered[T]
	present map[T]struct{}
}

// Empty creates a priority queue ordered by the given less function.
func Empty[T comparable](less func(T, T) bool) *PriorityQueue[T] {
	return &PriorityQueue[T]{
		inner:   ordered[T]{less: less},
		present: make(map[T]struct{}),
	}
}

// IsEmpty checks whether the queue is exhausted.
func (p *PriorityQueue[T]) IsEmpty() bool {
	return len(p.inner.elems) == 0
}

// GetNext extracts the least element under the queue's ordering.
func (p *PriorityQueue[T]) GetNext() T {
	el := heap.Pop(&p.inner).(T)
	delete(p.present, el)
	return el
}

// Add inserts the given element, unless already present.
func (p *PriorityQueue[T]) Add(el T) {
	if _, found := p.present[el]; found {
		return
	}
	p.present[el] = struct{}{}
	heap.Push(&p.inner, el)
}

// ordered adapts a slice plus a less function to heap.Interface.
type ordered[T any] struct {
	elems []T
	less  func(T, T) bool
}

var _ heap.Interface = (*ordered[int])(nil)

func (o ordered[T]) Len() int           { return len(o.elems) }
func (o ordered[T]) Less(i, j int) bool { return o.less(o.elems[i], o.elems[j]) }

func (o ordered[T]) Swap(i, j int) {
	o.elems[i], o.elems[j] = o.elems[j], o.elems[i]
}

func (o *ordered[T]) Push(x any) {
	o.elems = append(o.elems, x.(T))
}

func (o *ordered[T]) Pop() any {
	last := len(o.elems) - 1
	el := o.elems[last]
	o.elems = o.elems[:last]
	return el
}
