package cmp

func SliceEq[T comparable](a []T, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for nth, va := range a {
		if va != b[nth] {
			return false
		}
	}
	return true
}

// Check a has b as its sub-sequence.
//
// Example
//
//	SliceContains(
//		[]string{"--cores", "8", "--jobs", "30"},
//		[]string{"--jobs", "30"},
//	)  // => true
//
//	SliceContains(
//		[]string{"--cores", "8", "--jobs", "30"},
//		[]string{"--cores", "30"},
//	) // => false. should be sub-sequence.
//
//	SliceContains(
//		[]string{"--cores", "8"},
//		[]string{},
//	) // => true. empty is everywhere.
func SliceContains[T comparable](a []T, b []T) bool {
	for len(a) >= len(b) {
		if SliceEq(a[:len(b)], b) {
			return true
		}
		a = a[1:]
	}
	return false
}

// check 2 slice has same content but its ordering.
//
// In other words, this function answers equivalence of two bags (or multi-sets).
//
//	SliceContentEq([]string{"a", "b", "c"}, []string{"c", "b", "a"})            // ==> true
//	SliceContentEq([]string{"a", "b", "c"}, []string{"c", "b", "a", "z"})       // ==> false
//	SliceContentEq([]string{"a", "b", "c", "c"}, []string{"a", "b", "c"})       // ==> false
func SliceContentEq[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}

	count := map[T]int{}
	for _, v := range a {
		count[v] += 1
	}
	for _, v := range b {
		count[v] -= 1
		if count[v] < 0 {
			return false
		}
	}
	return true
}
