package availability

import "math"

// Dimensions returns the keys with more than one distinct value, in key
// order. Keys with a single value contribute a factor of one and are left out.
func (a *Availability) Dimensions() []string {
	var dims []string
	for _, k := range a.keys {
		if len(a.unique[k]) > 1 {
			dims = append(dims, k)
		}
	}
	return dims
}

// HypercubeSize returns the product of the distinct-value counts of the
// dimensions. It is 1 when there are no dimensions.
func (a *Availability) HypercubeSize() int {
	dims := a.Dimensions()
	counts := make([]int, len(dims))
	for i, k := range dims {
		counts[i] = len(a.unique[k])
	}
	return Volume(counts)
}

// Volume is the product of counts, saturating at math.MaxInt.
func Volume(counts []int) int {
	n := 1
	for _, c := range counts {
		if c == 0 {
			return 0
		}
		if n > math.MaxInt/c {
			n = math.MaxInt
			continue
		}
		n *= c
	}
	return n
}

// IsFullHypercube reports whether the record count equals HypercubeSize.
// Only counts are compared: a sparse set whose size matches the product is
// also reported as a hypercube.
func (a *Availability) IsFullHypercube() bool {
	return IsFullHypercube(a, a.Len())
}

// IsFullHypercube compares an external count (for example the number of
// fields in a collection) with the hypercube size of a.
func IsFullHypercube(a *Availability, count int) bool {
	return count == a.HypercubeSize()
}
