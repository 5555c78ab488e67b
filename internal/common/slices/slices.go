package slices

import "golang.org/x/exp/constraints"

// MapErr returns a new slice obtained by applying fn to each element of s.
// It stops at and returns the first error returned by fn.
func MapErr[S ~[]E, E any, V any](s S, fn func(E) (V, error)) ([]V, error) {
	if s == nil {
		return nil, nil
	}
	rv := make([]V, len(s))
	for i, e := range s {
		v, err := fn(e)
		if err != nil {
			return nil, err
		}
		rv[i] = v
	}
	return rv, nil
}

// Ones returns a slice T[] of length n with all elements equal to 1.
func Ones[T constraints.Integer | constraints.Float](n int) []T {
	rv := make([]T, n)
	for i := range rv {
		rv[i] = 1
	}
	return rv
}

// Column returns the j-th element of every row of s.
// Rows too short to have a j-th element contribute the zero value.
func Column[S ~[]E, E any](s []S, j int) []E {
	rv := make([]E, len(s))
	for i, si := range s {
		if j < len(si) {
			rv[i] = si[j]
		}
	}
	return rv
}
