package ports

import (
	"context"

	"glmdesign/domain/core"
	"glmdesign/domain/run"
)

// DesignRunRepository persists prepared designs
type DesignRunRepository interface {
	Save(ctx context.Context, r *run.DesignRun) error
	GetByID(ctx context.Context, id core.RunID) (*run.DesignRun, error)
	List(ctx context.Context, limit, offset int) ([]*run.DesignRun, error)
	Delete(ctx context.Context, id core.RunID) error
}
