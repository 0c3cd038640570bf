package interpolation

import (
	"context"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ProgressFunc is called periodically by long-running operations.
type ProgressFunc func(completed, total int)

// Validation is the outcome of leave-one-out cross validation.
type Validation struct {
	// Evaluated is the number of points that had at least one other point
	// in range.
	Evaluated int
	// Unresolved is the number of points with no other point in range.
	Unresolved int
	// RMSE holds the root mean square error per data component.
	RMSE []float64
	// MeanAbsError holds the mean absolute error per data component.
	MeanAbsError []float64
}

// CrossValidate interpolates at every indexed point with that point left out
// and compares the estimate with the stored data.
func (ds *DataSet) CrossValidate(ctx context.Context, progress ProgressFunc) (Validation, error) {
	if ds.buckets == nil {
		return Validation{}, ErrUnbuiltIndex
	}

	indexed := ds.points[:ds.indexed]

	sqErr := make([][]float64, ds.dataDims)
	absErr := make([][]float64, ds.dataDims)
	v := Validation{}

	for i, p := range indexed {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return Validation{}, err
			}
			if progress != nil {
				progress(i, len(indexed))
			}
		}

		loc := p.Location()
		around, err := ds.Around(loc)
		if err != nil {
			return Validation{}, err
		}
		est, ok := blend(sortByDistance(around, loc, p), ds.dataDims)
		if !ok {
			v.Unresolved++
			continue
		}
		v.Evaluated++
		for c, want := range p.RawData() {
			d := est[c] - want
			sqErr[c] = append(sqErr[c], d*d)
			absErr[c] = append(absErr[c], math.Abs(d))
		}
	}
	if progress != nil {
		progress(len(indexed), len(indexed))
	}

	v.RMSE = make([]float64, ds.dataDims)
	v.MeanAbsError = make([]float64, ds.dataDims)
	if v.Evaluated > 0 {
		for c := 0; c < ds.dataDims; c++ {
			v.RMSE[c] = math.Sqrt(stat.Mean(sqErr[c], nil))
			v.MeanAbsError[c] = stat.Mean(absErr[c], nil)
		}
	}
	return v, nil
}
