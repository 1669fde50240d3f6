package dataset

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
)

// ReadCSV decodes points from comma-separated text.
//
// The first dims columns of each row are coordinates and any remaining
// columns form the label. When dims is 0 the dimension is the number of
// leading numeric columns in the first data row. A first row whose
// coordinate columns are not numeric is treated as a header and skipped.
func ReadCSV(r io.Reader, dims int) (*Dataset, error) {
	if dims < 0 {
		return nil, malformed("negative dimension %d", dims)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	ds := &Dataset{Dim: dims}
	first := true

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed("%v", err)
		}
		line, _ := cr.FieldPos(0)

		if first {
			first = false
			if isHeader(rec, dims) {
				continue
			}
		}
		if ds.Dim == 0 {
			if ds.Dim = leadingNumeric(rec); ds.Dim == 0 {
				return nil, malformed("line %d: no numeric columns", line)
			}
		}

		if len(rec) < ds.Dim {
			return nil, malformed("line %d: %d columns, want at least %d", line, len(rec), ds.Dim)
		}

		p := make([]float32, ds.Dim)
		for j := range p {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[j]), 32)
			if err != nil {
				return nil, malformed("line %d column %d: %v", line, j+1, err)
			}
			p[j] = float32(v)
		}

		ds.Points = append(ds.Points, p)
		ds.Labels = append(ds.Labels, strings.TrimSpace(strings.Join(rec[ds.Dim:], ",")))
	}

	if len(ds.Points) == 0 {
		return nil, ErrEmpty
	}
	return ds, nil
}

// WriteCSV encodes ds with a header row of x0..xD-1 followed by a label column
// when labels are present.
func WriteCSV(w io.Writer, ds *Dataset) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, ds.Dim+1)
	for j := 0; j < ds.Dim; j++ {
		header = append(header, "x"+strconv.Itoa(j))
	}
	if ds.Labels != nil {
		header = append(header, "label")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	rec := make([]string, 0, ds.Dim+1)
	for i, p := range ds.Points {
		rec = rec[:0]
		for _, v := range p {
			rec = append(rec, strconv.FormatFloat(float64(v), 'g', -1, 32))
		}
		if ds.Labels != nil {
			rec = append(rec, ds.Label(i))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func isHeader(rec []string, dims int) bool {
	n := dims
	if n == 0 {
		n = 1
	}
	for j := 0; j < n && j < len(rec); j++ {
		if !isNumber(rec[j]) {
			return true
		}
	}
	return false
}

func leadingNumeric(rec []string) int {
	n := 0
	for n < len(rec) && isNumber(rec[n]) {
		n++
	}
	return n
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	return err == nil
}
