// Package queue implements bounded top-k selection.
package queue

import "slices"

// Bounded keeps the k best items offered to it.
//
// It is a value-based binary heap whose root is the worst kept item, so an
// offer that does not beat the root is rejected in O(1).
type Bounded[T any] struct {
	k     int
	less  func(a, b T) bool // less(a, b) reports whether a ranks ahead of b
	items []T
}

// NewBounded creates a selector for the k best items under less.
// less must be a strict weak ordering; make it total to get deterministic ties.
func NewBounded[T any](k int, less func(a, b T) bool) *Bounded[T] {
	if k < 0 {
		k = 0
	}
	return &Bounded[T]{k: k, less: less, items: make([]T, 0, k)}
}

// Len returns the number of kept items.
func (b *Bounded[T]) Len() int { return len(b.items) }

// Offer considers item for the top k.
func (b *Bounded[T]) Offer(item T) {
	if b.k == 0 {
		return
	}
	if len(b.items) < b.k {
		b.items = append(b.items, item)
		b.siftUp(len(b.items) - 1)
		return
	}
	if !b.less(item, b.items[0]) {
		return
	}
	b.items[0] = item
	b.siftDown(0)
}

// Sorted returns the kept items best first. The selector must not be reused.
func (b *Bounded[T]) Sorted() []T {
	out := b.items
	b.items = nil
	slices.SortFunc(out, compareFunc(b.less))
	return out
}

// worse reports whether items[i] ranks after items[j] (heap order).
func (b *Bounded[T]) worse(i, j int) bool {
	return b.less(b.items[j], b.items[i])
}

func (b *Bounded[T]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !b.worse(i, parent) {
			return
		}
		b.items[i], b.items[parent] = b.items[parent], b.items[i]
		i = parent
	}
}

func (b *Bounded[T]) siftDown(i int) {
	n := len(b.items)
	for {
		worst := i
		left, right := 2*i+1, 2*i+2
		if left < n && b.worse(left, worst) {
			worst = left
		}
		if right < n && b.worse(right, worst) {
			worst = right
		}
		if worst == i {
			return
		}
		b.items[i], b.items[worst] = b.items[worst], b.items[i]
		i = worst
	}
}

// TopK returns the k best items best first.
//
// When k covers every item the slice is sorted in place and returned;
// otherwise a bounded heap selects the winners without sorting the rest.
// With a total order both paths yield the same result.
func TopK[T any](items []T, k int, less func(a, b T) bool) []T {
	if k <= 0 || len(items) == 0 {
		return nil
	}
	if k >= len(items) {
		slices.SortFunc(items, compareFunc(less))
		return items
	}
	b := NewBounded(k, less)
	for _, item := range items {
		b.Offer(item)
	}
	return b.Sorted()
}

func compareFunc[T any](less func(a, b T) bool) func(a, b T) int {
	return func(a, b T) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		}
		return 0
	}
}
