// Package worklist provides the working sets driving fixpoint iteration.
package worklist

// A WorkingSet hands out dirty elements in a policy-specific but
// deterministic order. Implementations never contain duplicates.
type WorkingSet[T comparable] interface {
	Add(el T)
	GetNext() T
	IsEmpty() bool
}

// FIFO is a first-in first-out working set.
type FIFO[T comparable] struct {
	list    []T
	present map[T]struct{}
}

// EmptyFIFO creates an empty FIFO working set.
func EmptyFIFO[T comparable]() *FIFO[T] {
	return &FIFO[T]{present: make(map[T]struct{})}
}

// Add appends the given element, unless already present.
func (w *FIFO[T]) Add(el T) {
	if _, found := w.present[el]; found {
		return
	}
	w.present[el] = struct{}{}
	w.list = append(w.list, el)
}

// GetNext pops the oldest element.
func (w *FIFO[T]) GetNext() T {
	next := w.list[0]
	w.list = w.list[1:]
	delete(w.present, next)
	return next
}

// IsEmpty checks whether the working set is exhausted.
func (w *FIFO[T]) IsEmpty() bool {
	return len(w.list) == 0
}

// LIFO is a last-in first-out working set.
type LIFO[T comparable] struct {
	list    []T
	present map[T]struct{}
}

// EmptyLIFO creates an empty LIFO working set.
func EmptyLIFO[T comparable]() *LIFO[T] {
	return &LIFO[T]{present: make(map[T]struct{})}
}

// Add pushes the given element, unless already present.
func (w *LIFO[T]) Add(el T) {
	if _, found := w.present[el]; found {
		return
	}
	w.present[el] = struct{}{}
	w.list = append(w.list, el)
}

// GetNext pops the most recently pushed element.
func (w *LIFO[T]) GetNext() T {
	next := w.list[len(w.list)-1]
	w.list = w.list[:len(w.list)-1]
	delete(w.present, next)
	return next
}

// IsEmpty checks whether the working set is exhausted.
func (w *LIFO[T]) IsEmpty() bool {
	return len(w.list) == 0
}
