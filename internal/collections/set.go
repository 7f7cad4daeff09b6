// Package collections holds the small generic containers shared across
// the compiler.
package collections

import "fmt"

// Set is an unordered collection of unique values.
type Set[T comparable] map[T]struct{}

// NewSet builds a set holding the given values.
func NewSet[T comparable](vs ...T) Set[T] {
	s := make(Set[T], len(vs))
	s.Add(vs...)
	return s
}

// Add inserts values, ignoring ones already present.
func (s Set[T]) Add(vs ...T) {
	for _, v := range vs {
		s[v] = struct{}{}
	}
}

// Delete removes a value; removing an absent value is a no-op.
func (s Set[T]) Delete(v T) {
	delete(s, v)
}

// Has reports whether v is in the set.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of values held.
func (s Set[T]) Len() int {
	return len(s)
}

// Members returns the values in no particular order.
func (s Set[T]) Members() []T {
	r := make([]T, 0, len(s))
	for v := range s {
		r = append(r, v)
	}
	return r
}

func (s Set[T]) String() string {
	return fmt.Sprintf("%v", s.Members())
}
