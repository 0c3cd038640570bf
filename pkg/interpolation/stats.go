package interpolation

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// IndexStats summarises how points are spread over the grid buckets.
type IndexStats struct {
	Points       int
	Indexed      int
	Buckets      int
	CellSize     float64
	Division     int
	MaxBucket    int
	MeanBucket   float64
	StdDevBucket float64
}

// Stats reports bucket occupancy for the current index. Indexed can be less
// than Points when points were appended after BuildIndex.
func (ds *DataSet) Stats() (IndexStats, error) {
	if ds.buckets == nil {
		return IndexStats{}, ErrUnbuiltIndex
	}
	sizes := make([]float64, 0, len(ds.buckets))
	for _, b := range ds.buckets {
		sizes = append(sizes, float64(len(b)))
	}

	s := IndexStats{
		Points:   len(ds.points),
		Indexed:  ds.indexed,
		Buckets:  len(ds.buckets),
		CellSize: ds.cellSize,
		Division: ds.division,
	}
	if len(sizes) > 0 {
		s.MaxBucket = int(floats.Max(sizes))
		s.MeanBucket, s.StdDevBucket = stat.MeanStdDev(sizes, nil)
	}
	return s, nil
}
