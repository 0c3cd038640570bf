package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataPointCopies(t *testing.T) {
	loc := []float64{1, 2, 3}
	data := []float64{4, 5}
	p := NewDataPoint(loc, data)

	loc[0] = 100
	data[0] = 100
	assert.Equal(t, []float64{1, 2, 3}, p.Location())
	assert.Equal(t, []float64{4, 5}, p.Data())

	out := p.Data()
	out[1] = -1
	assert.Equal(t, []float64{4, 5}, p.Data())

	assert.Equal(t, 3, p.Dims())
	assert.Equal(t, 2, p.DataDims())
}

func TestDataPointDistance(t *testing.T) {
	a := NewDataPoint([]float64{0, 0}, nil)
	b := NewDataPoint([]float64{3, 4}, nil)

	ab, err := a.DistanceSqTo(b.Location())
	require.NoError(t, err)
	ba, err := b.DistanceSqTo(a.Location())
	require.NoError(t, err)
	assert.Equal(t, 25.0, ab)
	assert.Equal(t, ab, ba)

	_, err = a.DistanceSqTo([]float64{1, 2, 3})
	assert.Error(t, err)
}
