// Package records reads comma-separated sample rows into data points.
package records

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cast"

	"gridinterp/internal/models"
)

// Columns selects which fields of a row form the location and the data
// vector.
type Columns struct {
	Location []int `yaml:"location"`
	Data     []int `yaml:"data"`
}

// DefaultColumns takes the location from fields 0-2 and the data vector from
// fields 8-10.
func DefaultColumns() Columns {
	return Columns{
		Location: []int{0, 1, 2},
		Data:     []int{8, 9, 10},
	}
}

// Validate checks that both column lists are non-empty and non-negative.
func (c Columns) Validate() error {
	if len(c.Location) == 0 {
		return errors.New("records: no location columns")
	}
	if len(c.Data) == 0 {
		return errors.New("records: no data columns")
	}
	for _, i := range append(append([]int(nil), c.Location...), c.Data...) {
		if i < 0 {
			return fmt.Errorf("records: negative column index %d", i)
		}
	}
	return nil
}

func (c Columns) width() int {
	w := 0
	for _, i := range append(append([]int(nil), c.Location...), c.Data...) {
		if i+1 > w {
			w = i + 1
		}
	}
	return w
}

// ParseError reports a row that could not be turned into a data point.
type ParseError struct {
	Source string
	Line   int
	Column int // -1 when the row as a whole is at fault
	Err    error
}

func (e *ParseError) Error() string {
	src := e.Source
	if src == "" {
		src = "input"
	}
	if e.Column < 0 {
		return fmt.Sprintf("%s:%d: %v", src, e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: column %d: %v", src, e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ErrShortRow is wrapped by a ParseError when a row has fewer fields than the
// configured columns need.
var ErrShortRow = errors.New("row has too few fields")

// Appender receives parsed points.
type Appender interface {
	Append(p *models.DataPoint) error
}

// Reader parses rows from an io.Reader. Lines starting with '#' and blank
// lines are skipped.
type Reader struct {
	scanner *bufio.Scanner
	cols    Columns
	width   int
	source  string
	line    int
}

// NewReader returns a Reader over r. source names r in error messages.
func NewReader(r io.Reader, source string, cols Columns) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{
		scanner: s,
		cols:    cols,
		width:   cols.width(),
		source:  source,
	}
}

// Next returns the next data point, or io.EOF when the input is exhausted.
func (r *Reader) Next() (*models.DataPoint, error) {
	for r.scanner.Scan() {
		r.line++
		text := r.scanner.Text()
		if strings.HasPrefix(text, "#") || strings.TrimSpace(text) == "" {
			continue
		}
		return r.parse(text)
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.source, err)
	}
	return nil, io.EOF
}

func (r *Reader) parse(text string) (*models.DataPoint, error) {
	fields := strings.Split(strings.TrimSpace(text), ",")
	if len(fields) < r.width {
		return nil, &ParseError{
			Source: r.source,
			Line:   r.line,
			Column: -1,
			Err:    fmt.Errorf("%w: got %d, need %d", ErrShortRow, len(fields), r.width),
		}
	}

	pick := func(idx []int) ([]float64, error) {
		out := make([]float64, len(idx))
		for i, col := range idx {
			v, err := cast.ToFloat64E(strings.TrimSpace(fields[col]))
			if err != nil {
				return nil, &ParseError{Source: r.source, Line: r.line, Column: col, Err: err}
			}
			out[i] = v
		}
		return out, nil
	}

	loc, err := pick(r.cols.Location)
	if err != nil {
		return nil, err
	}
	data, err := pick(r.cols.Data)
	if err != nil {
		return nil, err
	}
	return models.NewDataPoint(loc, data), nil
}

// ReadAll appends every remaining point to dst and returns how many were
// added.
func (r *Reader) ReadAll(dst Appender) (int, error) {
	n := 0
	for {
		p, err := r.Next()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if err := dst.Append(p); err != nil {
			return n, &ParseError{Source: r.source, Line: r.line, Column: -1, Err: err}
		}
		n++
	}
}
