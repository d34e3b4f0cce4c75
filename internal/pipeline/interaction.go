package pipeline

import (
	"fmt"

	"glmdesign/domain/core"
	"glmdesign/domain/design"
)

// interact appends one product column per configured interaction. Later interactions may
// use the columns produced by earlier ones.
func (r *run) interact(m design.Model, interactions []design.Interaction) (design.Model, error) {
	for _, in := range interactions {
		if len(in.Factor) < 2 {
			return m, core.NewInteractionError(in.Label, fmt.Sprintf("needs at least 2 factors, got %d", len(in.Factor)))
		}

		normalize := in.ShouldNormalize()
		var product []float64
		for k, name := range in.Factor {
			col, err := resolveFactor(m, in.Label, name)
			if err != nil {
				return m, err
			}
			values := m.X.Col(col)
			if normalize {
				values = r.zscoreVector(values)
			}
			if k == 0 {
				product = values
				continue
			}
			for i := range product {
				product[i] *= values[i]
			}
		}
		if normalize {
			product = r.zscoreVector(product)
		}

		m.X = m.X.AppendCol(product)
		m.LabelsY = append(m.LabelsY, in.Label)
		r.p.logger.Debug("interaction added", "label", in.Label, "factors", in.Factor, "normalized", normalize)
	}
	return m, nil
}

// resolveFactor requires exactly one column to carry the factor name
func resolveFactor(m design.Model, label, name string) (int, error) {
	idx := design.FindColumns(m.LabelsY, name)
	switch len(idx) {
	case 1:
		return idx[0], nil
	case 0:
		return -1, fmt.Errorf("%w %q: %w", core.ErrInteraction, label, core.NewLookupError("factor", name))
	default:
		return -1, fmt.Errorf("%w in %q: %q matches %d columns", core.ErrAmbiguousFactor, label, name, len(idx))
	}
}

func (r *run) zscoreVector(v []float64) []float64 {
	col, err := design.FromColumns(len(v), v)
	if err != nil {
		return v
	}
	return r.p.standardizer.ZScore(col).Col(0)
}
