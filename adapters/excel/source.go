package excel

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"glmdesign/domain/core"
	"glmdesign/domain/design"
)

// TableSource loads design inputs from CSV or XLSX tables
type TableSource struct {
	cfg    ExcelConfig
	logger *slog.Logger
}

// NewTableSource creates a model source
func NewTableSource(cfg ExcelConfig, logger *slog.Logger) *TableSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &TableSource{cfg: cfg, logger: logger}
}

// LoadModel reads the covariate table and, when response is not empty, the
// response table. Response rows must carry the covariate row labels in the
// same order.
func (s *TableSource) LoadModel(ctx context.Context, covariates, response string) (design.Model, error) {
	if covariates == "" {
		return design.Model{}, core.NewConfigError("covariates", "path cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return design.Model{}, err
	}

	data, err := NewDataReader(covariates, s.cfg, s.logger).ReadData()
	if err != nil {
		return design.Model{}, err
	}
	labelsX, labelsY, x, err := LabelledMatrix(data)
	if err != nil {
		return design.Model{}, fmt.Errorf("%s: %w", covariates, err)
	}
	model := design.Model{X: x, LabelsX: labelsX, LabelsY: labelsY}

	if response != "" {
		if err := ctx.Err(); err != nil {
			return design.Model{}, err
		}
		data, err := NewDataReader(response, s.cfg, s.logger).ReadData()
		if err != nil {
			return design.Model{}, err
		}
		rowLabels, _, y, err := LabelledMatrix(data)
		if err != nil {
			return design.Model{}, fmt.Errorf("%s: %w", response, err)
		}
		if !slices.Equal(rowLabels, labelsX) {
			return design.Model{}, fmt.Errorf("%w: response rows of %s do not match covariate rows of %s",
				core.ErrShapeMismatch, response, covariates)
		}
		model.Y = y
	}

	s.logger.Info("model loaded",
		"covariates", covariates,
		"observations", len(model.LabelsX),
		"columns", len(model.LabelsY),
		"units", model.Y.Cols(),
	)
	return model, nil
}
