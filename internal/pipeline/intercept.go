package pipeline

import "glmdesign/domain/design"

// addIntercept makes sure exactly one constant "intercept" column exists and
// that it comes first when it had to be created.
func (r *run) addIntercept(m design.Model, enabled bool) design.Model {
	if !enabled {
		return m
	}

	n := len(m.LabelsX)
	if i := design.InterceptIndex(m.LabelsY); i >= 0 {
		// already supplied by the caller: keep its position, force it constant
		m.X.SetCol(i, onesVector(n))
		return m
	}

	if m.X.Cols() == 0 {
		m.X = design.Ones(n)
	} else {
		m.X = m.X.PrependCol(onesVector(n))
	}
	m.LabelsY = append([]string{design.InterceptLabel}, m.LabelsY...)
	return m
}
