package pipeline

import (
	"sort"

	"glmdesign/domain/design"
)

// reorder gathers, for each requested label in order, every observation
// carrying that label in its original relative order. Unrequested rows are
// dropped; requested labels with no rows only produce a warning. An empty
// request list means every distinct label in sorted order.
func (r *run) reorder(m design.Model, requested []string) (design.Model, error) {
	if len(requested) == 0 {
		requested = uniqueSorted(m.LabelsX)
	}

	rowsByLabel := make(map[string][]int, len(m.LabelsX))
	for i, label := range m.LabelsX {
		rowsByLabel[label] = append(rowsByLabel[label], i)
	}

	idx := make([]int, 0, len(m.LabelsX))
	for _, label := range requested {
		rows, ok := rowsByLabel[label]
		if !ok {
			r.warn(design.StageReorder, "label %q not found among observations, skipped", label)
			continue
		}
		idx = append(idx, rows...)
	}

	if dropped := len(m.LabelsX) - len(idx); dropped > 0 {
		r.p.logger.Debug("reorder dropped unrequested observations", "dropped", dropped)
	}
	return takeRows(m, idx), nil
}

func uniqueSorted(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
