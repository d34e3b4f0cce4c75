package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"glmdesign/domain/design"
)

const tol = 1e-9

func TestStandardizeSampleVariance(t *testing.T) {
	z := Standardize([]float64{1, 2, 3})

	// sample sd of 1,2,3 is 1
	assert.InDeltaSlice(t, []float64{-1, 0, 1}, z, tol)
	assert.InDelta(t, 0, stat.Mean(z, nil), tol)
	assert.InDelta(t, 1, stat.Variance(z, nil), tol)
}

func TestStandardizeDegenerateInputs(t *testing.T) {
	assert.Empty(t, Standardize(nil))
	assert.Equal(t, []float64{0}, Standardize([]float64{42}))
	assert.Equal(t, []float64{0, 0, 0}, Standardize([]float64{0.1, 0.1, 0.1}))
}

func TestStandardizeTinyScale(t *testing.T) {
	z := Standardize([]float64{1e-13, 2e-13, 3e-13})
	assert.InDeltaSlice(t, []float64{-1, 0, 1}, z, 1e-6)

	z = Standardize([]float64{1e6 + 1e-3, 1e6 + 2e-3, 1e6 + 3e-3})
	assert.InDeltaSlice(t, []float64{-1, 0, 1}, z, 1e-3)
}

func TestStandardizePropagatesNaN(t *testing.T) {
	z := Standardize([]float64{1, math.NaN(), 3, 4})
	for i, v := range z {
		assert.True(t, math.IsNaN(v), "element %d = %v", i, v)
	}
}

func TestZScoreIsColumnWise(t *testing.T) {
	m, err := design.FromRows([][]float64{{1, 10}, {2, 20}, {3, 60}})
	require.NoError(t, err)

	out := NewZScorer().ZScore(m)
	for j := 0; j < out.Cols(); j++ {
		col := out.Col(j)
		assert.InDelta(t, 0, stat.Mean(col, nil), tol)
		assert.InDelta(t, 1, stat.Variance(col, nil), tol)
	}
	// input untouched
	assert.Equal(t, 60.0, m.At(2, 1))
}

func TestZScoreZeroRows(t *testing.T) {
	out := NewZScorer().ZScore(design.NewMatrix(0, 2, nil))
	assert.Equal(t, 0, out.Rows())
	assert.Equal(t, 2, out.Cols())
}

func TestResidualsAreOrthogonalToRegressors(t *testing.T) {
	space := []float64{1, 2, 3, 4, 5, 6}
	ortho := []float64{2.1, 3.9, 6.2, 8.1, 9.8, 12.5}
	reg, _ := design.FromColumns(6, space)
	dep, _ := design.FromColumns(6, ortho)

	resid, err := NewOLS().Residuals(dep, reg)
	require.NoError(t, err)

	r := resid.Col(0)
	assert.InDelta(t, 0, floats.Dot(r, space), 1e-8)
}

func TestResidualsWithIntercept(t *testing.T) {
	ones := []float64{1, 1, 1, 1, 1}
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{3, 5, 7, 9, 11} // exactly 3 + 2x
	reg, _ := design.FromColumns(5, ones, x)
	dep, _ := design.FromColumns(5, y)

	resid, err := NewOLS().Residuals(dep, reg)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0, 0, 0, 0}, resid.Col(0), 1e-9)
}

func TestResidualsRankDeficientRegressors(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	twiceA := []float64{2, 4, 6, 8}
	y := []float64{1, 0, 1, 5}
	reg, _ := design.FromColumns(4, a, twiceA)
	dep, _ := design.FromColumns(4, y)

	resid, err := NewOLS().Residuals(dep, reg)
	require.NoError(t, err)

	single, _ := design.FromColumns(4, a)
	expected, err := NewOLS().Residuals(dep, single)
	require.NoError(t, err)

	assert.InDeltaSlice(t, expected.Col(0), resid.Col(0), 1e-8)
}

func TestResidualsEmptySpaceReturnsInput(t *testing.T) {
	dep, _ := design.FromColumns(3, []float64{1, 2, 4})
	resid, err := NewOLS().Residuals(dep, design.NewMatrix(3, 0, nil))
	require.NoError(t, err)
	assert.Equal(t, dep.ToRows(), resid.ToRows())
}

func TestResidualsShapeMismatch(t *testing.T) {
	dep, _ := design.FromColumns(3, []float64{1, 2, 4})
	reg, _ := design.FromColumns(2, []float64{1, 2})
	_, err := NewOLS().Residuals(dep, reg)
	assert.Error(t, err)
}

func TestDiagnose(t *testing.T) {
	full, _ := design.FromColumns(4, []float64{1, 1, 1, 1}, []float64{1, 2, 3, 5})
	diag := NewDiagnoser().Diagnose(full)
	assert.Equal(t, 2, diag.Rank)
	assert.False(t, diag.RankDeficient())
	assert.Greater(t, diag.Condition, 1.0)
	assert.False(t, math.IsInf(diag.Condition, 0))

	collinear, _ := design.FromColumns(3, []float64{1, 2, 3}, []float64{2, 4, 6})
	diag = NewDiagnoser().Diagnose(collinear)
	assert.Equal(t, 1, diag.Rank)
	assert.True(t, diag.RankDeficient())
	assert.Zero(t, diag.Condition)

	empty := NewDiagnoser().Diagnose(design.NewMatrix(3, 0, nil))
	assert.Equal(t, 0, empty.Rank)
	assert.False(t, empty.RankDeficient())
}
