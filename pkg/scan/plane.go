// Package scan evaluates an interpolator over a regular grid of points on a
// plane and writes the results as CSV.
package scan

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Interpolator is the query side of an indexed data set.
type Interpolator interface {
	InterpolateAt(location []float64) ([]float64, bool, error)
}

// Plane describes a square grid centred on Origin, spanning UAxis and VAxis.
type Plane struct {
	Origin    []float64 `yaml:"origin"`
	UAxis     int       `yaml:"uAxis"`
	VAxis     int       `yaml:"vAxis"`
	HalfWidth float64   `yaml:"halfWidth"`
	Step      float64   `yaml:"step"`
}

// DefaultPlane is the xz plane through the origin, from -3 to 3 in steps of
// 0.1.
func DefaultPlane() Plane {
	return Plane{
		Origin:    []float64{0, 0, 0},
		UAxis:     0,
		VAxis:     2,
		HalfWidth: 3,
		Step:      0.1,
	}
}

// Validate checks that the plane describes a usable grid.
func (p Plane) Validate() error {
	d := len(p.Origin)
	switch {
	case d < 2:
		return fmt.Errorf("scan: origin needs at least 2 dimensions, got %d", d)
	case p.UAxis < 0 || p.UAxis >= d || p.VAxis < 0 || p.VAxis >= d:
		return fmt.Errorf("scan: axes %d,%d out of range for %d dimensions", p.UAxis, p.VAxis, d)
	case p.UAxis == p.VAxis:
		return errors.New("scan: u and v axes must differ")
	case !(p.Step > 0):
		return fmt.Errorf("scan: step must be positive, got %g", p.Step)
	case !(p.HalfWidth >= 0):
		return fmt.Errorf("scan: half width must not be negative, got %g", p.HalfWidth)
	}
	return nil
}

// Steps returns n, the number of steps on each side of the origin.
func (p Plane) Steps() int {
	return int(math.Ceil(p.HalfWidth / p.Step))
}

// Points returns the grid locations with v in the outer loop and u in the
// inner loop, both from -n to n steps.
func (p Plane) Points() [][]float64 {
	n := p.Steps()
	out := make([][]float64, 0, (2*n+1)*(2*n+1))
	for vi := -n; vi <= n; vi++ {
		for ui := -n; ui <= n; ui++ {
			loc := append([]float64(nil), p.Origin...)
			loc[p.UAxis] = float64(ui) * p.Step
			loc[p.VAxis] = float64(vi) * p.Step
			out = append(out, loc)
		}
	}
	return out
}

// Result is the outcome of one query.
type Result struct {
	Location []float64
	Data     []float64
	OK       bool
}

// ProgressFunc is called as queries complete.
type ProgressFunc func(completed, total int)

// Options tunes Run and Write.
type Options struct {
	// Workers bounds the number of concurrent queries. Zero means
	// runtime.NumCPU().
	Workers int
	// DataDims is the number of "*" placeholders printed for an unresolved
	// query. Zero means 3.
	DataDims int
	// Progress, if set, is called from the calling goroutine as each row of
	// the plane is handed to a worker.
	Progress ProgressFunc
}

// Run queries interp at every point of the plane. Results are returned in
// plane order regardless of Workers. interp must be safe for concurrent
// read-only use.
func Run(ctx context.Context, interp Interpolator, plane Plane, opts Options) ([]Result, error) {
	if err := plane.Validate(); err != nil {
		return nil, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	points := plane.Points()
	results := make([]Result, len(points))
	row := 2*plane.Steps() + 1

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(points); start += row {
		end := min(start+row, len(points))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				data, ok, err := interp.InterpolateAt(points[i])
				if err != nil {
					return fmt.Errorf("query at %v: %w", points[i], err)
				}
				results[i] = Result{Location: points[i], Data: data, OK: ok}
			}
			return nil
		})
		if opts.Progress != nil {
			opts.Progress(end, len(points))
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Write prints one CSV line per result: the location followed by the data,
// or "*" placeholders when the query found nothing.
func Write(w io.Writer, results []Result, opts Options) error {
	dataDims := opts.DataDims
	if dataDims <= 0 {
		dataDims = 3
	}
	unresolved := strings.TrimSuffix(strings.Repeat("*,", dataDims), ",")

	bw := bufio.NewWriter(w)
	var sb strings.Builder
	for _, r := range results {
		sb.Reset()
		for i, x := range r.Location {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(FormatFloat(x))
		}
		sb.WriteByte(',')
		if r.OK {
			for i, x := range r.Data {
				if i > 0 {
					sb.WriteByte(',')
				}
				sb.WriteString(FormatFloat(x))
			}
		} else {
			sb.WriteString(unresolved)
		}
		sb.WriteByte('\n')
		if _, err := bw.WriteString(sb.String()); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}
