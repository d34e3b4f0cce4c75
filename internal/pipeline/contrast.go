package pipeline

import (
	"fmt"

	"glmdesign/domain/core"
	"glmdesign/domain/design"
)

// extractContrast keeps exactly the contrast columns, in contrast order, and
// builds the weight vector. This is the only stage that drops covariates.
func (r *run) extractContrast(m design.Model, contrast design.Contrast, intercept bool) (design.Model, error) {
	terms := make(design.Contrast, 0, len(contrast)+1)
	if intercept && !contrast.Has(design.InterceptLabel) {
		terms = append(terms, design.ContrastTerm{Name: design.InterceptLabel, Weight: 0})
	}
	terms = append(terms, contrast...)

	idx := make([]int, len(terms))
	for i, term := range terms {
		matches := design.FindColumns(m.LabelsY, term.Name)
		switch len(matches) {
		case 1:
			idx[i] = matches[0]
		case 0:
			return m, core.NewContrastError(term.Name, "is not a column of the design")
		default:
			return m, core.NewContrastError(term.Name, fmt.Sprintf("matches %d columns", len(matches)))
		}
	}

	if dropped := len(m.LabelsY) - len(idx); dropped > 0 {
		r.p.logger.Debug("contrast dropped covariates", "dropped", dropped)
	}

	m.X = m.X.SelectCols(idx)
	m.LabelsY = terms.Names()
	m.C = terms.Weights()
	return m, nil
}
