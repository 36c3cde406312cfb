package cli

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/minwls/pkg/errors"
)

// interceptName labels the constant column in reports.
const interceptName = "const"

// Dataset is a regression problem read from CSV.
type Dataset struct {
	Response   string
	Regressors []string
	Y          *mat.VecDense
	X          *mat.Dense
	// Weights is nil when no weight column was selected.
	Weights []float64
}

// LoadCSV reads path with ReadCSV.
func LoadCSV(path, weightCol string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open data file: %s", path)
	}
	defer func() { _ = f.Close() }()
	return ReadCSV(f, weightCol)
}

// ReadCSV parses a CSV with a header row. The first column is the response,
// the column named weightCol (if any) holds observation weights and every
// other column is a regressor. All cells must be numeric.
func ReadCSV(r io.Reader, weightCol string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse CSV")
	}
	if len(records) < 2 {
		return nil, errors.NewModelError("ReadCSV", "need a header and at least one row", errors.ErrEmptyData)
	}

	header := records[0]
	if len(header) < 2 {
		return nil, errors.NewValueError("ReadCSV", "need a response column and at least one regressor")
	}

	weightIdx := -1
	if weightCol != "" {
		for j, name := range header {
			if strings.TrimSpace(name) == weightCol {
				weightIdx = j
				break
			}
		}
		if weightIdx < 0 {
			return nil, errors.NewValueError("ReadCSV", "weight column "+strconv.Quote(weightCol)+" not found")
		}
		if weightIdx == 0 {
			return nil, errors.NewValueError("ReadCSV", "the response column cannot be the weight column")
		}
	}

	ds := &Dataset{Response: strings.TrimSpace(header[0])}
	var cols []int
	for j := 1; j < len(header); j++ {
		if j == weightIdx {
			continue
		}
		cols = append(cols, j)
		ds.Regressors = append(ds.Regressors, strings.TrimSpace(header[j]))
	}
	if len(cols) == 0 {
		return nil, errors.NewValueError("ReadCSV", "no regressor columns")
	}

	rows := records[1:]
	n := len(rows)
	ds.Y = mat.NewVecDense(n, nil)
	ds.X = mat.NewDense(n, len(cols), nil)
	if weightIdx >= 0 {
		ds.Weights = make([]float64, n)
	}

	for i, row := range rows {
		line := i + 2
		if len(row) != len(header) {
			return nil, errors.NewDimensionError("ReadCSV", len(header), len(row), 1)
		}
		y, err := parseCell(row[0], line, header[0])
		if err != nil {
			return nil, err
		}
		ds.Y.SetVec(i, y)
		for c, j := range cols {
			v, err := parseCell(row[j], line, header[j])
			if err != nil {
				return nil, err
			}
			ds.X.Set(i, c, v)
		}
		if weightIdx >= 0 {
			w, err := parseCell(row[weightIdx], line, header[weightIdx])
			if err != nil {
				return nil, err
			}
			ds.Weights[i] = w
		}
	}
	return ds, nil
}

func parseCell(s string, line int, column string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "line %d, column %q", line, column)
	}
	return v, nil
}

// Design returns the parameter names and the design matrix, with a leading
// constant column when intercept is set.
func (d *Dataset) Design(intercept bool) ([]string, *mat.Dense) {
	if !intercept {
		return append([]string(nil), d.Regressors...), d.X
	}
	n, k := d.X.Dims()
	design := mat.NewDense(n, k+1, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1)
		for j := 0; j < k; j++ {
			design.Set(i, j+1, d.X.At(i, j))
		}
	}
	return append([]string{interceptName}, d.Regressors...), design
}
