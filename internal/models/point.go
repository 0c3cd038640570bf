// Package models holds the value types shared by the interpolation packages.
package models

import "gridinterp/pkg/vecmath"

// DataPoint is a single sample: a location in space and the data vector
// measured there. It is immutable after construction.
type DataPoint struct {
	location []float64
	data     []float64
}

// NewDataPoint copies location and data into a new DataPoint.
func NewDataPoint(location, data []float64) *DataPoint {
	return &DataPoint{
		location: append([]float64(nil), location...),
		data:     append([]float64(nil), data...),
	}
}

// Location returns a copy of the sample location.
func (p *DataPoint) Location() []float64 {
	return append([]float64(nil), p.location...)
}

// Data returns a copy of the sample data vector.
func (p *DataPoint) Data() []float64 {
	return append([]float64(nil), p.data...)
}

// Dims is the dimensionality of the location.
func (p *DataPoint) Dims() int { return len(p.location) }

// DataDims is the length of the data vector.
func (p *DataPoint) DataDims() int { return len(p.data) }

// Coord returns a single location component without copying.
func (p *DataPoint) Coord(i int) float64 { return p.location[i] }

// DistanceSqTo returns the squared Euclidean distance from the sample to
// location.
func (p *DataPoint) DistanceSqTo(location []float64) (float64, error) {
	return vecmath.DistanceSq(p.location, location)
}

// DistanceSqUnchecked is DistanceSqTo for callers that have already
// validated the dimensions of location.
func (p *DataPoint) DistanceSqUnchecked(location []float64) float64 {
	return vecmath.SquaredL2(p.location, location)
}

// RawData exposes the data vector without a copy. Callers must not modify it.
func (p *DataPoint) RawData() []float64 { return p.data }
