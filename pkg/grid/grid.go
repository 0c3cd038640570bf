// Package grid addresses cells of a uniform grid and enumerates the cells
// adjacent to a reference cell.
package grid

import (
	"errors"
	"fmt"
	"iter"
	"math"
)

// MaxDims is the largest dimensionality a Key can address.
const MaxDims = 8

var (
	// ErrInvalidDimension is returned for a dimension outside [1, MaxDims].
	ErrInvalidDimension = errors.New("grid: invalid dimension")

	// ErrInvalidLocation is returned when a location does not map to a
	// finite cell.
	ErrInvalidLocation = errors.New("grid: location does not map to a finite cell")

	// ErrCellOutOfRange is returned when a finite location falls in a cell
	// whose coordinates exceed the int32 range.
	ErrCellOutOfRange = errors.New("grid: cell coordinate out of range")
)

// Key identifies a grid cell. Only the first d components are used for a
// d-dimensional grid; the remainder stay zero so keys compare by value.
type Key [MaxDims]int

// Add returns k moved by offset.
func (k Key) Add(offset Key) Key {
	for i := range k {
		k[i] += offset[i]
	}
	return k
}

// Slice returns the first d components of k.
func (k Key) Slice(d int) []int {
	return append([]int(nil), k[:d]...)
}

// CheckDims validates a grid dimensionality.
func CheckDims(d int) error {
	if d < 1 || d > MaxDims {
		return fmt.Errorf("%w: %d (must be 1..%d)", ErrInvalidDimension, d, MaxDims)
	}
	return nil
}

// KeyOf maps location to the cell containing it. Each component is divided
// by cellSize, rounded half away from zero and truncated to an integer.
// Cell coordinates are limited to the int32 range, so adding an offset from
// Offsets never overflows.
func KeyOf(location []float64, cellSize float64) (Key, error) {
	var k Key
	if err := CheckDims(len(location)); err != nil {
		return k, err
	}
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		return k, fmt.Errorf("%w: cell size %g", ErrInvalidLocation, cellSize)
	}
	for i, x := range location {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return k, fmt.Errorf("%w: component %d = %g", ErrInvalidLocation, i, x)
		}
		c := math.Round(x / cellSize)
		if c > math.MaxInt32 || c < math.MinInt32 {
			return k, fmt.Errorf("%w: component %d = %g at cell size %g", ErrCellOutOfRange, i, x, cellSize)
		}
		k[i] = int(c)
	}
	return k, nil
}

// NeighborCount returns 3^d, the number of cells Offsets yields.
func NeighborCount(d int) int {
	n := 1
	for i := 0; i < d; i++ {
		n *= 3
	}
	return n
}

// Offsets returns every offset in {-1,0,1}^d exactly once. The sequence is
// lazy and may be ranged over any number of times.
func Offsets(d int) (iter.Seq[Key], error) {
	if err := CheckDims(d); err != nil {
		return nil, err
	}
	return func(yield func(Key) bool) {
		var delta Key
		for i := 0; i < d; i++ {
			delta[i] = -1
		}
		for {
			if !yield(delta) {
				return
			}
			// Odometer step: increment the lowest digit, carrying as needed.
			i := 0
			for ; i < d; i++ {
				delta[i]++
				if delta[i] <= 1 {
					break
				}
				delta[i] = -1
			}
			if i == d {
				return
			}
		}
	}, nil
}
