// Package visualization renders plane scan results as grayscale images.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"

	"gridinterp/pkg/scan"
)

// Magnitude selects the Euclidean norm of the data vector instead of a
// single component.
const Magnitude = -1

// Viewer maps a square plane scan onto pixels. Column i holds the i-th u
// step and row 0 holds the largest v, so +v points up.
type Viewer struct {
	results []scan.Result
	side    int
}

// NewViewer wraps results produced by scan.Run for a plane with side points
// along each axis.
func NewViewer(results []scan.Result, side int) (*Viewer, error) {
	if side <= 0 || len(results) != side*side {
		return nil, fmt.Errorf("visualization: %d results do not form a %dx%d grid", len(results), side, side)
	}
	return &Viewer{results: results, side: side}, nil
}

func value(r scan.Result, component int) (float64, bool) {
	if !r.OK {
		return 0, false
	}
	if component == Magnitude {
		return floats.Norm(r.Data, 2), true
	}
	if component < 0 || component >= len(r.Data) {
		return 0, false
	}
	return r.Data[component], true
}

// Range returns the smallest and largest value of component among resolved
// results. ok is false if nothing was resolved.
func (v *Viewer) Range(component int) (lo, hi float64, ok bool) {
	var vals []float64
	for _, r := range v.results {
		if x, ok := value(r, component); ok {
			vals = append(vals, x)
		}
	}
	if len(vals) == 0 {
		return 0, 0, false
	}
	return floats.Min(vals), floats.Max(vals), true
}

// Render draws component scaled linearly from its range onto 1..65535.
// Unresolved points are drawn as 0.
func (v *Viewer) Render(component int) (image.Image, error) {
	if component < Magnitude {
		return nil, fmt.Errorf("visualization: invalid component %d", component)
	}
	img := image.NewGray16(image.Rect(0, 0, v.side, v.side))

	lo, hi, ok := v.Range(component)
	if !ok {
		return img, nil
	}
	span := hi - lo

	for i, r := range v.results {
		x, ok := value(r, component)
		if !ok {
			continue
		}
		t := 1.0
		if span > 0 {
			t = (x - lo) / span
		}
		level := uint16(1 + math.Round(t*65534))
		img.SetGray16(i%v.side, v.side-1-i/v.side, color.Gray16{Y: level})
	}
	return img, nil
}

// SavePNG renders component and writes it to filename, creating parent
// directories as needed.
func (v *Viewer) SavePNG(component int, filename string) error {
	img, err := v.Render(component)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return file.Close()
}
