// Package interpolation estimates data vectors at arbitrary locations from a
// scattered set of samples. Samples are bucketed in a uniform hash grid and a
// query looks only at the cells adjacent to the query cell.
package interpolation

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"gridinterp/internal/models"
	"gridinterp/pkg/grid"
)

const (
	// DefaultDivision is the number of cells spanning the widest side of the
	// envelope when no other resolution is requested.
	DefaultDivision = 10

	// ExactMatchEpsilon is the squared distance below which a sample is taken
	// to coincide with the query location.
	ExactMatchEpsilon = 1e-10

	// candidates is how many of the nearest samples are blended.
	candidates = 2
)

// DataSet owns a collection of samples and the grid index built over them.
//
// Read-only methods may be called concurrently once BuildIndex has returned,
// as long as nothing calls Append or BuildIndex again.
type DataSet struct {
	points []*models.DataPoint

	dims     int
	dataDims int
	envMin   []float64
	envMax   []float64

	division int
	indexed  int
	cellSize float64
	buckets  map[grid.Key][]*models.DataPoint
	offsets  []grid.Key
}

// New returns an empty DataSet.
func New() *DataSet {
	return &DataSet{}
}

// Append adds p to the set and widens the envelope. The first point fixes
// the location and data dimensionality; later points must match. The
// envelope starts at the origin rather than at the first point. Points
// appended after BuildIndex are not visible to queries until the index is
// rebuilt.
func (ds *DataSet) Append(p *models.DataPoint) error {
	if len(ds.points) == 0 {
		if err := grid.CheckDims(p.Dims()); err != nil {
			return err
		}
		ds.dims = p.Dims()
		ds.dataDims = p.DataDims()
		ds.envMin = make([]float64, ds.dims)
		ds.envMax = make([]float64, ds.dims)
	}
	if p.Dims() != ds.dims {
		return fmt.Errorf("location: %w", &ErrDimensionMismatch{Expected: ds.dims, Actual: p.Dims()})
	}
	if p.DataDims() != ds.dataDims {
		return fmt.Errorf("data: %w", &ErrDimensionMismatch{Expected: ds.dataDims, Actual: p.DataDims()})
	}

	ds.points = append(ds.points, p)
	for i := 0; i < ds.dims; i++ {
		x := p.Coord(i)
		if x < ds.envMin[i] {
			ds.envMin[i] = x
		}
		if x > ds.envMax[i] {
			ds.envMax[i] = x
		}
	}
	return nil
}

// Len returns the number of appended points.
func (ds *DataSet) Len() int { return len(ds.points) }

// Points returns the appended points in insertion order.
func (ds *DataSet) Points() []*models.DataPoint {
	return append([]*models.DataPoint(nil), ds.points...)
}

// Dims returns the location dimensionality, or 0 for an empty set.
func (ds *DataSet) Dims() int { return ds.dims }

// DataDims returns the data vector length, or 0 for an empty set.
func (ds *DataSet) DataDims() int { return ds.dataDims }

// Envelope returns copies of the component-wise minimum and maximum. ok is
// false before the first Append.
func (ds *DataSet) Envelope() (min, max []float64, ok bool) {
	if len(ds.points) == 0 {
		return nil, nil, false
	}
	return append([]float64(nil), ds.envMin...), append([]float64(nil), ds.envMax...), true
}

// CellSize returns the grid resolution, or 0 before BuildIndex.
func (ds *DataSet) CellSize() float64 { return ds.cellSize }

// Division returns the division the index was built with.
func (ds *DataSet) Division() int { return ds.division }

// Indexed reports whether BuildIndex has succeeded.
func (ds *DataSet) Indexed() bool { return ds.buckets != nil }

// BuildIndex buckets every point by grid cell. The cell size is the widest
// side of the envelope divided by division. Each call discards the previous
// index and rebuilds it from the current points.
func (ds *DataSet) BuildIndex(division int) error {
	if division < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidDivision, division)
	}
	if len(ds.points) == 0 {
		return fmt.Errorf("%w: no points", ErrDegenerateEnvelope)
	}

	extent := 0.0
	for i := range ds.envMax {
		extent = math.Max(extent, math.Abs(ds.envMax[i]-ds.envMin[i]))
	}
	if extent == 0 || math.IsInf(extent, 0) || math.IsNaN(extent) {
		return fmt.Errorf("%w: extent %g", ErrDegenerateEnvelope, extent)
	}
	cellSize := extent / float64(division)

	offsetSeq, err := grid.Offsets(ds.dims)
	if err != nil {
		return err
	}
	offsets := make([]grid.Key, 0, grid.NeighborCount(ds.dims))
	for o := range offsetSeq {
		offsets = append(offsets, o)
	}

	buckets := make(map[grid.Key][]*models.DataPoint)
	for _, p := range ds.points {
		k, err := grid.KeyOf(p.Location(), cellSize)
		if err != nil {
			return fmt.Errorf("failed to index point: %w", err)
		}
		buckets[k] = append(buckets[k], p)
	}

	ds.division = division
	ds.indexed = len(ds.points)
	ds.cellSize = cellSize
	ds.buckets = buckets
	ds.offsets = offsets
	return nil
}

func (ds *DataSet) checkQuery(location []float64) error {
	if ds.buckets == nil {
		return ErrUnbuiltIndex
	}
	if len(location) != ds.dims {
		return fmt.Errorf("query location: %w", &ErrDimensionMismatch{Expected: ds.dims, Actual: len(location)})
	}
	return nil
}

// Around returns every indexed point in the cell containing location and in
// the cells adjacent to it. The result may be empty, including for a finite
// location too far out to have a cell key.
func (ds *DataSet) Around(location []float64) ([]*models.DataPoint, error) {
	if err := ds.checkQuery(location); err != nil {
		return nil, err
	}
	origin, err := grid.KeyOf(location, ds.cellSize)
	if errors.Is(err, grid.ErrCellOutOfRange) {
		// BuildIndex rejects such cells, so nothing indexed is nearby.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var result []*models.DataPoint
	for _, delta := range ds.offsets {
		result = append(result, ds.buckets[origin.Add(delta)]...)
	}
	return result, nil
}

// Neighbor is a point found by NearTo together with its squared distance to
// the query location.
type Neighbor struct {
	Point      *models.DataPoint
	DistanceSq float64
}

// NearTo is Around sorted by ascending squared distance to location. Ties
// keep the order Around produced them in.
func (ds *DataSet) NearTo(location []float64) ([]Neighbor, error) {
	around, err := ds.Around(location)
	if err != nil {
		return nil, err
	}
	return sortByDistance(around, location, nil), nil
}

func sortByDistance(points []*models.DataPoint, location []float64, skip *models.DataPoint) []Neighbor {
	out := make([]Neighbor, 0, len(points))
	for _, p := range points {
		if p == skip {
			continue
		}
		out = append(out, Neighbor{Point: p, DistanceSq: p.DistanceSqUnchecked(location)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceSq < out[j].DistanceSq
	})
	return out
}

// InterpolateAt estimates the data vector at location from the two nearest
// indexed points. ok is false when no point lies in the searched cells.
//
// A point closer than ExactMatchEpsilon (squared) is returned unchanged.
// Otherwise the candidates are averaged with weights 1/d^2.
func (ds *DataSet) InterpolateAt(location []float64) (data []float64, ok bool, err error) {
	near, err := ds.NearTo(location)
	if err != nil {
		return nil, false, err
	}
	data, ok = blend(near, ds.dataDims)
	return data, ok, nil
}

func blend(near []Neighbor, dataDims int) ([]float64, bool) {
	if len(near) == 0 {
		return nil, false
	}
	if len(near) > candidates {
		near = near[:candidates]
	}

	// Must run before weighting: a zero distance has no finite weight.
	if near[0].DistanceSq < ExactMatchEpsilon {
		return near[0].Point.Data(), true
	}

	weights := make([]float64, len(near))
	for i, n := range near {
		weights[i] = 1 / n.DistanceSq
	}
	sum := floats.Sum(weights)

	// Each term is (x*w)/sum, accumulated from zero in distance order, so the
	// rounding matches the established CSV output.
	out := make([]float64, dataDims)
	for i, n := range near {
		w := weights[i]
		for c, x := range n.Point.RawData() {
			out[c] += x * w / sum
		}
	}
	return out, true
}
