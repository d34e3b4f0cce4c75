package design

// Stage names a pipeline step in warnings and invariant errors
type Stage string

const (
	StageInput       Stage = "input"
	StageReorder     Stage = "reorder"
	StageSelect      Stage = "select"
	StageInteraction Stage = "interaction"
	StageIntercept   Stage = "intercept"
	StageContrast    Stage = "contrast"
	StageNormalize   Stage = "normalize"
	StageProjection  Stage = "projection"
	StageDiagnostics Stage = "diagnostics"
)

// Warning is a non-fatal condition met while preparing a design
type Warning struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
}

// Result is a fully prepared design
type Result struct {
	Model    Model     `json:"model"`
	Warnings []Warning `json:"warnings,omitempty"`
}
