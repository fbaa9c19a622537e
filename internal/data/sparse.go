package data

import (
	"github.com/shopspring/decimal"
)

// SparseRow stores the non-zero entries of one sample as parallel
// index/value slices, indices strictly increasing.
type SparseRow struct {
	Indices []int
	Values  []decimal.Decimal
}

// SparseMatrix is a row-major sparse feature matrix. Models consume dense
// input, so sparse data is densified at the boundary; the sparse form
// exists for compact storage and I/O of mostly-zero feature sets.
type SparseMatrix struct {
	Rows []SparseRow
	Cols int
}

func NewSparseMatrix(cols int) *SparseMatrix {
	return &SparseMatrix{Cols: cols}
}

func (sm *SparseMatrix) AppendRow(row SparseRow) {
	sm.Rows = append(sm.Rows, row)
}

func (sm *SparseMatrix) NumRows() int {
	return len(sm.Rows)
}

// Dense expands the matrix into the [][]decimal.Decimal layout the models
// and the calibration pipeline operate on.
func (sm *SparseMatrix) Dense() [][]decimal.Decimal {
	X := make([][]decimal.Decimal, len(sm.Rows))
	for i, row := range sm.Rows {
		X[i] = make([]decimal.Decimal, sm.Cols)
		for k, j := range row.Indices {
			if j >= 0 && j < sm.Cols {
				X[i][j] = row.Values[k]
			}
		}
	}
	return X
}

// SparseFromDense converts a dense matrix, keeping only non-zero entries.
func SparseFromDense(X [][]decimal.Decimal) *SparseMatrix {
	cols := 0
	if len(X) > 0 {
		cols = len(X[0])
	}
	sm := NewSparseMatrix(cols)
	for _, sample := range X {
		var row SparseRow
		for j, v := range sample {
			if !v.IsZero() {
				row.Indices = append(row.Indices, j)
				row.Values = append(row.Values, v)
			}
		}
		sm.AppendRow(row)
	}
	return sm
}
