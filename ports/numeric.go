package ports

import (
	"glmdesign/domain/design"
)

// Standardizer z-scores a matrix column-wise. Implementations must accept
// zero-row and one-row input without failing; the pipeline routes around
// those cases where the result would be meaningless.
type Standardizer interface {
	ZScore(m design.Matrix) design.Matrix
}

// Residualizer regresses the dependent columns on the regressor columns and
// returns the residuals, shaped like dep.
type Residualizer interface {
	Residuals(dep, reg design.Matrix) (design.Matrix, error)
}

// Diagnoser reports rank and conditioning of a finished design
type Diagnoser interface {
	Diagnose(x design.Matrix) design.Diagnostics
}
