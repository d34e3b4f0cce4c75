package run

import (
	"glmdesign/domain/core"
	"glmdesign/domain/design"
)

// DesignRun records one prepared design together with the inputs that
// produced it. It is the unit persisted by the run repository.
type DesignRun struct {
	ID          core.RunID         `json:"id"`
	Name        string             `json:"name,omitempty"`
	InputHash   core.Hash          `json:"input_hash"`
	OptionsHash core.Hash          `json:"options_hash"`
	Fingerprint core.Hash          `json:"fingerprint"`
	Options     design.Options     `json:"options"`
	Result      design.Result      `json:"result"`
	Diagnostics design.Diagnostics `json:"diagnostics"`
	CreatedAt   core.Timestamp     `json:"created_at"`
}

// NewDesignRun creates a run record from a pipeline invocation
func NewDesignRun(name string, input design.Model, opts design.Options, result design.Result, diag design.Diagnostics) *DesignRun {
	inputHash := InputFingerprint(input)
	optionsHash := opts.Fingerprint()

	return &DesignRun{
		ID:          core.NewRunID(),
		Name:        name,
		InputHash:   inputHash,
		OptionsHash: optionsHash,
		Fingerprint: core.NewHasher().String(inputHash.String()).String(optionsHash.String()).Sum(),
		Options:     opts,
		Result:      result,
		Diagnostics: diag,
		CreatedAt:   core.Now(),
	}
}

// InputFingerprint hashes a model's labels and values
func InputFingerprint(m design.Model) core.Hash {
	return core.NewHasher().
		Strings(m.LabelsX).
		Strings(m.LabelsY).
		Floats(m.X.RawRowMajor()).
		Floats(m.Y.RawRowMajor()).
		Sum()
}

// Validate checks if the run record is complete
func (r *DesignRun) Validate() error {
	if core.ID(r.ID).IsEmpty() {
		return core.NewConfigError("design_run", "id cannot be empty")
	}
	if r.Fingerprint.IsEmpty() {
		return core.NewConfigError("design_run", "fingerprint cannot be empty")
	}
	if err := r.Result.Model.CheckAlignment(design.StageContrast); err != nil {
		return err
	}
	return nil
}
