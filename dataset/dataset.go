package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed is returned when input cannot be decoded.
	ErrMalformed = errors.New("dataset: malformed input")
	// ErrUnknownFormat is returned when a name has no recognized extension.
	ErrUnknownFormat = errors.New("dataset: unknown format")
	// ErrEmpty is returned when the input holds no points.
	ErrEmpty = errors.New("dataset: no points")
)

// Dataset is a loaded point set.
type Dataset struct {
	// Points holds one coordinate slice of length Dim per point.
	Points [][]float32
	// Labels is parallel to Points. It is nil for formats without labels.
	Labels []string
	// Dim is the shared dimension of every point.
	Dim int
}

// Len returns the number of points.
func (d *Dataset) Len() int {
	return len(d.Points)
}

// Label returns the label of point i, or "" when the dataset carries none.
func (d *Dataset) Label(i int) string {
	if i < 0 || i >= len(d.Labels) {
		return ""
	}
	return d.Labels[i]
}

// Bounds returns the per-dimension minimum and maximum over all points.
func (d *Dataset) Bounds() (lo, hi []float32) {
	if len(d.Points) == 0 {
		return nil, nil
	}
	lo = append([]float32(nil), d.Points[0]...)
	hi = append([]float32(nil), d.Points[0]...)
	for _, p := range d.Points[1:] {
		for j, v := range p {
			lo[j] = min(lo[j], v)
			hi[j] = max(hi[j], v)
		}
	}
	return lo, hi
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}
