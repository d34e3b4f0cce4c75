package pipeline

import "glmdesign/domain/design"

// normalize z-scores the configured covariates, pins the intercept to one
// and optionally z-scores the responses. Degenerate cases (a single
// observation for X, two or fewer for Y) are skipped with a warning.
func (r *run) normalize(m design.Model, opts design.Options) design.Model {
	switch opts.NormalizeX.Mode() {
	case design.NormalizeAll:
		if m.X.Rows() == 1 {
			r.warn(design.StageNormalize, "covariates not normalized: only one observation")
		} else {
			m.X = r.p.standardizer.ZScore(m.X)
		}
	case design.NormalizeSubset:
		var idx []int
		for j, label := range m.LabelsY {
			if opts.NormalizeX.Includes(label) {
				idx = append(idx, j)
			}
		}
		if len(idx) > 0 {
			z := r.p.standardizer.ZScore(m.X.SelectCols(idx))
			for k, j := range idx {
				m.X.SetCol(j, z.Col(k))
			}
		}
	}

	if i := design.InterceptIndex(m.LabelsY); i >= 0 {
		m.X.SetCol(i, onesVector(m.X.Rows()))
	}

	if opts.NormalizeY && m.HasResponses() {
		if m.Y.Rows() > 2 {
			m.Y = r.p.standardizer.ZScore(m.Y)
		} else {
			r.warn(design.StageNormalize, "responses not normalized: %d observations, need more than 2", m.Y.Rows())
		}
	}
	return m
}
