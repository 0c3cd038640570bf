package visualization

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridinterp/pkg/scan"
)

// grid2 is a 2x2 scan: bottom row (v = -1) first, as scan.Run orders it.
func grid2() []scan.Result {
	return []scan.Result{
		{Data: []float64{0, 3}, OK: true},
		{Data: []float64{10, 4}, OK: true},
		{OK: false},
		{Data: []float64{5, 0}, OK: true},
	}
}

func TestNewViewerShape(t *testing.T) {
	_, err := NewViewer(grid2(), 3)
	assert.Error(t, err)
	_, err = NewViewer(nil, 0)
	assert.Error(t, err)
}

func TestRange(t *testing.T) {
	v, err := NewViewer(grid2(), 2)
	require.NoError(t, err)

	lo, hi, ok := v.Range(0)
	require.True(t, ok)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 10.0, hi)

	lo, hi, ok = v.Range(Magnitude)
	require.True(t, ok)
	assert.InDelta(t, 3.0, lo, 1e-12)
	assert.InDelta(t, 10.770329614269007, hi, 1e-12)

	_, _, ok = v.Range(5)
	assert.False(t, ok)
}

func TestRender(t *testing.T) {
	v, err := NewViewer(grid2(), 2)
	require.NoError(t, err)

	img, err := v.Render(0)
	require.NoError(t, err)
	g := img.(*image.Gray16)

	// Bottom row of the image is the first row of results.
	assert.Equal(t, uint16(1), g.Gray16At(0, 1).Y)
	assert.Equal(t, uint16(65535), g.Gray16At(1, 1).Y)
	assert.Equal(t, uint16(0), g.Gray16At(0, 0).Y)
	assert.Equal(t, uint16(32768), g.Gray16At(1, 0).Y)

	_, err = v.Render(-2)
	assert.Error(t, err)
}

func TestRenderNothingResolved(t *testing.T) {
	v, err := NewViewer([]scan.Result{{}}, 1)
	require.NoError(t, err)
	img, err := v.Render(0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), img.(*image.Gray16).Gray16At(0, 0).Y)
}

func TestSavePNG(t *testing.T) {
	v, err := NewViewer(grid2(), 2)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "plane.png")
	require.NoError(t, v.SavePNG(Magnitude, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
}
