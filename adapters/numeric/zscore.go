package numeric

import (
	"math"

	"github.com/montanaflynn/stats"

	"glmdesign/domain/design"
)

// constantTolerance treats a column as constant when its standard deviation
// is this small relative to its mean. Summation error on a constant column
// otherwise turns it into noise of magnitude one. The bound is purely
// relative so that columns on a tiny scale are still standardized.
const constantTolerance = 1e-12

// ZScorer standardizes columns to zero mean and unit sample variance (n-1).
// Constant and single-row columns are centered only, which yields zeros.
type ZScorer struct{}

// NewZScorer creates a column standardizer
func NewZScorer() *ZScorer {
	return &ZScorer{}
}

// ZScore returns a standardized copy of m
func (z *ZScorer) ZScore(m design.Matrix) design.Matrix {
	out := m.Clone()
	if m.Rows() == 0 {
		return out
	}
	for j := 0; j < m.Cols(); j++ {
		out.SetCol(j, Standardize(m.Col(j)))
	}
	return out
}

// Standardize z-scores a single vector. Non-finite input propagates into
// the result; models are checked for finite values before any stage runs.
func Standardize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	mean, err := stats.Mean(values)
	if err != nil {
		return out
	}

	sd := 0.0
	if len(values) > 1 {
		sd, err = stats.StandardDeviationSample(values)
		if err != nil {
			sd = 0
		}
	}
	if sd == 0 || sd <= constantTolerance*math.Abs(mean) {
		// a constant column centers to zero
		return out
	}

	for i, v := range values {
		out[i] = (v - mean) / sd
	}
	return out
}
