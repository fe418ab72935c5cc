// Package sets holds the small set helpers used for module name lists.
package sets

// Set is a hash set for comparable keys.
type Set[T comparable] map[T]struct{}

// New creates a set pre-populated with the provided values.
func New[T comparable](vals ...T) Set[T] {
	s := make(Set[T], len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts value into the set.
func (s Set[T]) Add(v T) { s[v] = struct{}{} }

// Has returns true if v is present.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Unique returns vals without duplicates and zero values, keeping first
// occurrences in order.
func Unique[T comparable](vals []T) []T {
	var zero T
	out := make([]T, 0, len(vals))
	seen := make(Set[T], len(vals))
	for _, v := range vals {
		if v == zero || seen.Has(v) {
			continue
		}
		seen.Add(v)
		out = append(out, v)
	}
	return out
}

// Partition splits vals into the ones not in exclude and the ones that are.
func Partition[T comparable](vals []T, exclude Set[T]) (kept, dropped []T) {
	kept = make([]T, 0, len(vals))
	for _, v := range vals {
		if exclude.Has(v) {
			dropped = append(dropped, v)
			continue
		}
		kept = append(kept, v)
	}
	return kept, dropped
}
