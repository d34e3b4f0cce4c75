package numeric

import (
	"gonum.org/v1/gonum/mat"

	"glmdesign/domain/design"
)

// Diagnoser inspects the singular values of a finished design
type Diagnoser struct {
	rcond float64
}

// NewDiagnoser creates a design diagnoser
func NewDiagnoser() *Diagnoser {
	return &Diagnoser{rcond: defaultRcond}
}

// Diagnose reports the numerical rank and the 2-norm condition number of x.
// Condition is zero when the design is exactly singular.
func (d *Diagnoser) Diagnose(x design.Matrix) design.Diagnostics {
	rows, cols := x.Dims()
	diag := design.Diagnostics{Rows: rows, Columns: cols}
	if x.IsEmpty() {
		return diag
	}

	var svd mat.SVD
	if ok := svd.Factorize(ToDense(x), mat.SVDNone); !ok {
		return diag
	}
	values := svd.Values(nil)
	if len(values) == 0 || values[0] == 0 {
		return diag
	}

	for _, s := range values {
		if s > d.rcond*values[0] {
			diag.Rank++
		}
	}
	smallest := values[len(values)-1]
	if smallest > 0 && diag.Rank == len(values) {
		diag.Condition = values[0] / smallest
	}
	return diag
}
