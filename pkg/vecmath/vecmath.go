// Package vecmath provides the small amount of vector arithmetic the
// interpolation index needs.
package vecmath

import "fmt"

// ErrDimensionMismatch indicates two vectors of different length were
// combined.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// DistanceSq returns the squared Euclidean distance between a and b.
func DistanceSq(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, &ErrDimensionMismatch{Expected: len(a), Actual: len(b)}
	}
	return SquaredL2(a, b), nil
}

// SquaredL2 is DistanceSq without the length check. b must be at least as
// long as a.
func SquaredL2(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		// The conversion rounds the product and keeps it from being fused
		// into the addition.
		sum += float64(d * d)
	}
	return sum
}
