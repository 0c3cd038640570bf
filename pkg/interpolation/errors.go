package interpolation

import (
	"errors"

	"gridinterp/pkg/vecmath"
)

var (
	// ErrUnbuiltIndex is returned by queries issued before BuildIndex.
	ErrUnbuiltIndex = errors.New("interpolation: index has not been built")

	// ErrDegenerateEnvelope is returned by BuildIndex when the data has no
	// spatial extent, so no cell size can be derived.
	ErrDegenerateEnvelope = errors.New("interpolation: envelope has zero extent")

	// ErrInvalidDivision is returned by BuildIndex for a division below 1.
	ErrInvalidDivision = errors.New("interpolation: division must be at least 1")
)

// ErrDimensionMismatch indicates a location or data vector whose length does
// not match the rest of the data set.
type ErrDimensionMismatch = vecmath.ErrDimensionMismatch
