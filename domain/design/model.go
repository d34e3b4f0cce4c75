package design

import (
	"encoding/json"
	"fmt"
	"slices"

	"glmdesign/domain/core"
)

// Model is the value threaded through every pipeline stage.
// Rows of X and Y are observations labelled by LabelsX; columns of X are
// covariates labelled by LabelsY. C is only populated by contrast extraction.
type Model struct {
	X       Matrix    `json:"x"`
	Y       Matrix    `json:"y"`
	LabelsX []string  `json:"labels_x"`
	LabelsY []string  `json:"labels_y"`
	C       []float64 `json:"c,omitempty"`
}

// modelJSON is the wire shape of a Model. Units carries the response
// column count, which an array of rows cannot express when there are no rows.
type modelJSON struct {
	X       Matrix    `json:"x"`
	Y       Matrix    `json:"y"`
	LabelsX []string  `json:"labels_x"`
	LabelsY []string  `json:"labels_y"`
	C       []float64 `json:"c,omitempty"`
	Units   int       `json:"units,omitempty"`
}

// MarshalJSON encodes the model with its response unit count
func (m Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(modelJSON{
		X:       m.X,
		Y:       m.Y,
		LabelsX: m.LabelsX,
		LabelsY: m.LabelsY,
		C:       m.C,
		Units:   m.Y.Cols(),
	})
}

// UnmarshalJSON restores the column counts of matrices without rows: X takes
// one column per column label and Y one column per unit.
func (m *Model) UnmarshalJSON(data []byte) error {
	var raw modelJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.X.Rows() == 0 && raw.X.Cols() == 0 && len(raw.LabelsX) == 0 && len(raw.LabelsY) > 0 {
		raw.X = NewMatrix(0, len(raw.LabelsY), nil)
	}
	if raw.Y.Rows() == 0 && raw.Units > 0 {
		raw.Y = NewMatrix(0, raw.Units, nil)
	}
	*m = Model{X: raw.X, Y: raw.Y, LabelsX: raw.LabelsX, LabelsY: raw.LabelsY, C: raw.C}
	return nil
}

// HasResponses reports whether Y carries any unit columns
func (m Model) HasResponses() bool {
	return m.Y.Cols() > 0
}

// Clone returns a deep copy so stages never alias the caller's data
func (m Model) Clone() Model {
	out := Model{
		X:       m.X.Clone(),
		Y:       m.Y.Clone(),
		LabelsX: slices.Clone(m.LabelsX),
		LabelsY: slices.Clone(m.LabelsY),
		C:       slices.Clone(m.C),
	}
	return out
}

// Validate checks that an input model carries every required field with
// consistent shapes.
func (m Model) Validate() error {
	if m.LabelsX == nil {
		return fmt.Errorf("%w: labels_x", core.ErrMissingField)
	}
	if m.LabelsY == nil {
		return fmt.Errorf("%w: labels_y", core.ErrMissingField)
	}
	rows := m.X.Rows()
	if rows == 0 && m.X.Cols() == 0 {
		// an absent covariate table means "no covariates", not "no rows"
		rows = len(m.LabelsX)
	}
	if err := m.checkShape(rows); err != nil {
		return fmt.Errorf("%w: %s", core.ErrShapeMismatch, err.Error())
	}
	if i, j, ok := m.X.nonFinite(); ok {
		return core.NewConfigError("x", fmt.Sprintf("value %v at row %q column %q is not finite", m.X.At(i, j), m.LabelsX[i], m.LabelsY[j]))
	}
	if i, j, ok := m.Y.nonFinite(); ok {
		return core.NewConfigError("y", fmt.Sprintf("value %v at row %q unit %d is not finite", m.Y.At(i, j), m.LabelsX[i], j+1))
	}
	return nil
}

// CheckAlignment verifies the row and column alignment invariants after a stage
func (m Model) CheckAlignment(stage Stage) error {
	if err := m.checkShape(m.X.Rows()); err != nil {
		return core.NewInvariantError(string(stage), err.Error())
	}
	return nil
}

func (m Model) checkShape(xRows int) error {
	if xRows != len(m.LabelsX) {
		return fmt.Errorf("x has %d rows but %d row labels", xRows, len(m.LabelsX))
	}
	if m.X.Cols() != len(m.LabelsY) {
		return fmt.Errorf("x has %d columns but %d column labels", m.X.Cols(), len(m.LabelsY))
	}
	if m.HasResponses() && m.Y.Rows() != len(m.LabelsX) {
		return fmt.Errorf("y has %d rows but %d row labels", m.Y.Rows(), len(m.LabelsX))
	}
	if m.C != nil && len(m.C) != m.X.Cols() {
		return fmt.Errorf("contrast has %d weights but x has %d columns", len(m.C), m.X.Cols())
	}
	return nil
}
