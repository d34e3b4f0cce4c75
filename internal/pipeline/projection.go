package pipeline

import (
	"fmt"

	"glmdesign/domain/core"
	"glmdesign/domain/design"
)

// project replaces the ortho columns with their least-squares residuals on
// the space columns
func (r *run) project(m design.Model, i int, proj design.Projection) (design.Model, error) {
	spaceMask, missing := design.ColumnMask(m.LabelsY, proj.Space)
	if missing != "" {
		return m, core.NewLookupError(fmt.Sprintf("projection[%d].space", i), missing)
	}
	orthoMask, missing := design.ColumnMask(m.LabelsY, proj.Ortho)
	if missing != "" {
		return m, core.NewLookupError(fmt.Sprintf("projection[%d].ortho", i), missing)
	}

	spaceIdx := design.MaskIndices(spaceMask)
	orthoIdx := design.MaskIndices(orthoMask)
	if len(spaceIdx) == 0 {
		r.warn(design.StageProjection, "projection %d has an empty space, columns left unchanged", i)
	}

	resid, err := r.p.residualizer.Residuals(m.X.SelectCols(orthoIdx), m.X.SelectCols(spaceIdx))
	if err != nil {
		return m, fmt.Errorf("projection %d: %w", i, err)
	}
	for k, j := range orthoIdx {
		m.X.SetCol(j, resid.Col(k))
	}

	r.p.logger.Debug("projection applied", "space", proj.Space, "ortho", proj.Ortho)
	return m, nil
}
