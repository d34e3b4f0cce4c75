package numeric

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"glmdesign/domain/core"
	"glmdesign/domain/design"
)

// defaultRcond is the relative singular value cutoff used for rank decisions
const defaultRcond = 1e-10

// OLS computes least-squares residuals through a truncated SVD of the
// regressors.
type OLS struct {
	rcond float64
}

// NewOLS creates a least-squares residualizer
func NewOLS() *OLS {
	return &OLS{rcond: defaultRcond}
}

// Residuals regresses every column of dep on reg and returns dep - reg·β.
// With no regressors there is nothing to explain and dep is returned as is.
func (o *OLS) Residuals(dep, reg design.Matrix) (design.Matrix, error) {
	if reg.Cols() == 0 || dep.IsEmpty() {
		return dep.Clone(), nil
	}
	if dep.Rows() != reg.Rows() {
		return design.Matrix{}, fmt.Errorf("%w: %d dependent rows vs %d regressor rows",
			core.ErrShapeMismatch, dep.Rows(), reg.Rows())
	}

	x := ToDense(reg)
	y := ToDense(dep)

	beta, err := o.solve(x, y)
	if err != nil {
		return design.Matrix{}, err
	}

	var fitted, resid mat.Dense
	fitted.Mul(x, beta)
	resid.Sub(y, &fitted)
	return FromDense(&resid), nil
}

// solve returns the minimum-norm least-squares coefficients. Singular
// values below rcond relative to the largest are treated as zero, so
// collinear regressors share their effect instead of blowing up.
func (o *OLS) solve(x, y *mat.Dense) (*mat.Dense, error) {
	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, fmt.Errorf("%w: singular value decomposition did not converge", core.ErrRegression)
	}
	_, k := x.Dims()
	_, m := y.Dims()
	rank := svd.Rank(o.rcond)
	if rank == 0 {
		return mat.NewDense(k, m, nil), nil
	}
	var beta mat.Dense
	svd.SolveTo(&beta, y, rank)
	return &beta, nil
}

// ToDense copies a non-empty design matrix into a gonum matrix
func ToDense(m design.Matrix) *mat.Dense {
	r, c := m.Dims()
	return mat.NewDense(r, c, m.RawRowMajor())
}

// FromDense copies a gonum matrix into a design matrix
func FromDense(d mat.Matrix) design.Matrix {
	r, c := d.Dims()
	out := design.NewMatrix(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, d.At(i, j))
		}
	}
	return out
}
