package design

import (
	"encoding/json"
	"fmt"
	"math"

	"glmdesign/domain/core"
)

// Matrix is a dense row-major numeric matrix. Unlike most linear algebra
// containers it can hold zero columns while keeping its row count, which is
// how a design with no covariates (or a model without responses) is carried.
type Matrix struct {
	rows int
	cols int
	data []float64
}

// NewMatrix creates a rows×cols matrix backed by data. A nil data slice
// allocates zeros; otherwise len(data) must equal rows*cols.
func NewMatrix(rows, cols int, data []float64) Matrix {
	if rows < 0 || cols < 0 {
		panic("design: negative matrix dimension")
	}
	if data == nil {
		data = make([]float64, rows*cols)
	}
	if len(data) != rows*cols {
		panic(fmt.Sprintf("design: data length %d does not match %dx%d", len(data), rows, cols))
	}
	return Matrix{rows: rows, cols: cols, data: data}
}

// FromRows builds a matrix from a slice of rows. Rows may be empty, in which
// case the result has zero columns but keeps the row count.
func FromRows(rows [][]float64) (Matrix, error) {
	if len(rows) == 0 {
		return Matrix{}, nil
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return Matrix{}, fmt.Errorf("%w: row %d has %d columns, expected %d", core.ErrShapeMismatch, i, len(row), cols)
		}
		data = append(data, row...)
	}
	return Matrix{rows: len(rows), cols: cols, data: data}, nil
}

// FromColumns builds a matrix from column vectors of equal length.
func FromColumns(rows int, columns ...[]float64) (Matrix, error) {
	m := NewMatrix(rows, len(columns), nil)
	for j, col := range columns {
		if len(col) != rows {
			return Matrix{}, fmt.Errorf("%w: column %d has %d rows, expected %d", core.ErrShapeMismatch, j, len(col), rows)
		}
		m.SetCol(j, col)
	}
	return m, nil
}

// Ones returns a rows×1 matrix of ones
func Ones(rows int) Matrix {
	m := NewMatrix(rows, 1, nil)
	for i := range m.data {
		m.data[i] = 1
	}
	return m
}

func (m Matrix) Rows() int { return m.rows }
func (m Matrix) Cols() int { return m.cols }

// Dims returns the number of rows and columns
func (m Matrix) Dims() (int, int) { return m.rows, m.cols }

// IsEmpty reports whether the matrix holds no values
func (m Matrix) IsEmpty() bool { return m.rows == 0 || m.cols == 0 }

// At returns the element at row i, column j
func (m Matrix) At(i, j int) float64 {
	m.check(i, j)
	return m.data[i*m.cols+j]
}

// Set assigns the element at row i, column j
func (m *Matrix) Set(i, j int, v float64) {
	m.check(i, j)
	m.data[i*m.cols+j] = v
}

func (m Matrix) check(i, j int) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("design: index (%d,%d) out of range for %dx%d matrix", i, j, m.rows, m.cols))
	}
}

// nonFinite returns the first NaN or infinite element in row-major order
func (m Matrix) nonFinite() (int, int, bool) {
	for k, v := range m.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return k / m.cols, k % m.cols, true
		}
	}
	return 0, 0, false
}

// Col returns a copy of column j
func (m Matrix) Col(j int) []float64 {
	out := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		out[i] = m.At(i, j)
	}
	return out
}

// SetCol overwrites column j with v
func (m *Matrix) SetCol(j int, v []float64) {
	if len(v) != m.rows {
		panic(fmt.Sprintf("design: column length %d does not match %d rows", len(v), m.rows))
	}
	for i, x := range v {
		m.Set(i, j, x)
	}
}

// Row returns a copy of row i
func (m Matrix) Row(i int) []float64 {
	out := make([]float64, m.cols)
	copy(out, m.data[i*m.cols:(i+1)*m.cols])
	return out
}

// RawRowMajor returns a copy of the backing data in row-major order
func (m Matrix) RawRowMajor() []float64 {
	out := make([]float64, len(m.data))
	copy(out, m.data)
	return out
}

// Clone returns a deep copy
func (m Matrix) Clone() Matrix {
	return Matrix{rows: m.rows, cols: m.cols, data: m.RawRowMajor()}
}

// SelectRows returns a new matrix holding the given rows in the given order.
// The column count is preserved even when no rows are selected.
func (m Matrix) SelectRows(idx []int) Matrix {
	out := NewMatrix(len(idx), m.cols, nil)
	for k, i := range idx {
		copy(out.data[k*m.cols:(k+1)*m.cols], m.data[i*m.cols:(i+1)*m.cols])
	}
	return out
}

// SelectCols returns a new matrix holding the given columns in the given order.
func (m Matrix) SelectCols(idx []int) Matrix {
	out := NewMatrix(m.rows, len(idx), nil)
	for i := 0; i < m.rows; i++ {
		for k, j := range idx {
			out.data[i*out.cols+k] = m.data[i*m.cols+j]
		}
	}
	return out
}

// AppendCol returns a new matrix with v added as the last column
func (m Matrix) AppendCol(v []float64) Matrix {
	return m.insertCol(m.cols, v)
}

// PrependCol returns a new matrix with v added as the first column
func (m Matrix) PrependCol(v []float64) Matrix {
	return m.insertCol(0, v)
}

func (m Matrix) insertCol(at int, v []float64) Matrix {
	if len(v) != m.rows {
		panic(fmt.Sprintf("design: column length %d does not match %d rows", len(v), m.rows))
	}
	out := NewMatrix(m.rows, m.cols+1, nil)
	for i := 0; i < m.rows; i++ {
		src := m.data[i*m.cols : (i+1)*m.cols]
		dst := out.data[i*out.cols : (i+1)*out.cols]
		copy(dst[:at], src[:at])
		dst[at] = v[i]
		copy(dst[at+1:], src[at:])
	}
	return out
}

// ToRows returns the matrix as a slice of row copies
func (m Matrix) ToRows() [][]float64 {
	out := make([][]float64, m.rows)
	for i := range out {
		out[i] = m.Row(i)
	}
	return out
}

// MarshalJSON encodes the matrix as an array of rows
func (m Matrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToRows())
}

// UnmarshalJSON decodes an array of rows
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var rows [][]float64
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	parsed, err := FromRows(rows)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
