package ports

import (
	"context"

	"glmdesign/domain/design"
)

// ModelSource loads an input model from covariate and (optional) response tables
type ModelSource interface {
	LoadModel(ctx context.Context, covariates, response string) (design.Model, error)
}

// DesignSink writes a prepared design
type DesignSink interface {
	WriteDesign(ctx context.Context, path string, m design.Model) error
}
