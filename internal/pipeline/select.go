package pipeline

import (
	"fmt"

	"glmdesign/domain/core"
	"glmdesign/domain/design"
)

// selectRows applies each filter to the rows surviving the previous one
func (r *run) selectRows(m design.Model, filters []design.SelectFilter) (design.Model, error) {
	for i, f := range filters {
		cols := design.FindColumns(m.LabelsY, f.Label)
		if len(cols) == 0 {
			return m, core.NewLookupError(fmt.Sprintf("select[%d]", i), f.Label)
		}

		keep := make([]int, 0, m.X.Rows())
		for row := 0; row < m.X.Rows(); row++ {
			if rowMatches(m.X, row, cols, f) {
				keep = append(keep, row)
			}
		}
		r.p.logger.Debug("select filter applied",
			"label", f.Label,
			"before", m.X.Rows(),
			"after", len(keep),
		)
		m = takeRows(m, keep)
	}

	if len(filters) > 0 && len(m.LabelsX) == 0 {
		r.warn(design.StageSelect, "selection removed every observation")
	}
	return m, nil
}

// rowMatches requires every resolved column to satisfy every predicate
func rowMatches(x design.Matrix, row int, cols []int, f design.SelectFilter) bool {
	for _, c := range cols {
		v := x.At(row, c)
		if len(f.Values) > 0 && !contains(f.Values, v) {
			return false
		}
		if f.Min != nil && !(v > *f.Min) {
			return false
		}
		if f.Max != nil && !(v < *f.Max) {
			return false
		}
	}
	return true
}

func contains(values []float64, v float64) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
