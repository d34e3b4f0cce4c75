package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"glmdesign/adapters/numeric"
	"glmdesign/domain/core"
	"glmdesign/domain/design"
	"glmdesign/domain/run"
	"glmdesign/internal/pipeline"
	"glmdesign/ports"
)

// DesignService prepares designs and records them as runs
type DesignService struct {
	pipeline  *pipeline.Pipeline
	diagnoser ports.Diagnoser
	source    ports.ModelSource
	sink      ports.DesignSink
	repo      ports.DesignRunRepository
	logger    *slog.Logger
}

// PrepareRequest defines the inputs for one in-memory preparation
type PrepareRequest struct {
	Name    string
	Model   design.Model
	Options design.Options
	Save    bool
}

// FileJob describes a preparation whose inputs and outputs live on disk
type FileJob struct {
	Name       string `yaml:"name" json:"name"`
	Covariates string `yaml:"covariates" json:"covariates"`
	Response   string `yaml:"response,omitempty" json:"response,omitempty"`
	Options    string `yaml:"options,omitempty" json:"options,omitempty"`
	Output     string `yaml:"output,omitempty" json:"output,omitempty"`
	Save       bool   `yaml:"save,omitempty" json:"save,omitempty"`
}

// NewDesignService creates a design service. source, sink and repo may be
// nil when the caller never uses the operations that need them.
func NewDesignService(source ports.ModelSource, sink ports.DesignSink, repo ports.DesignRunRepository, logger *slog.Logger) *DesignService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DesignService{
		pipeline:  pipeline.New(pipeline.WithLogger(logger)),
		diagnoser: numeric.NewDiagnoser(),
		source:    source,
		sink:      sink,
		repo:      repo,
		logger:    logger,
	}
}

// Prepare runs the pipeline, diagnoses the finished design and optionally
// persists the run
func (s *DesignService) Prepare(ctx context.Context, req PrepareRequest) (*run.DesignRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	result, err := s.pipeline.Prepare(req.Model, req.Options)
	if err != nil {
		s.logger.Error("design preparation failed", "name", req.Name, "error", err)
		return nil, err
	}

	diag := s.diagnoser.Diagnose(result.Model.X)
	if diag.RankDeficient() {
		msg := fmt.Sprintf("design is rank deficient: rank %d with %d columns", diag.Rank, diag.Columns)
		result.Warnings = append(result.Warnings, design.Warning{Stage: design.StageDiagnostics, Message: msg})
		s.logger.Warn(msg, "name", req.Name)
	}

	dr := run.NewDesignRun(req.Name, req.Model, req.Options, result, diag)
	if req.Save {
		if s.repo == nil {
			return nil, fmt.Errorf("cannot save run %s: no repository configured", dr.ID)
		}
		if err := s.repo.Save(ctx, dr); err != nil {
			return nil, err
		}
	}

	s.logger.Info("design prepared",
		"run_id", dr.ID.String(),
		"name", req.Name,
		"observations", len(result.Model.LabelsX),
		"columns", len(result.Model.LabelsY),
		"rank", diag.Rank,
		"warnings", len(result.Warnings),
		"saved", req.Save,
		"elapsed", time.Since(start),
	)
	return dr, nil
}

// PrepareFiles loads a job's tables and options, prepares the design and
// writes it when the job names an output
func (s *DesignService) PrepareFiles(ctx context.Context, job FileJob) (*run.DesignRun, error) {
	if s.source == nil {
		return nil, fmt.Errorf("no model source configured")
	}
	model, err := s.source.LoadModel(ctx, job.Covariates, job.Response)
	if err != nil {
		return nil, err
	}
	opts, err := design.LoadOptions(job.Options)
	if err != nil {
		return nil, err
	}

	name := job.Name
	if name == "" {
		name = job.Covariates
	}
	dr, err := s.Prepare(ctx, PrepareRequest{Name: name, Model: model, Options: opts, Save: job.Save})
	if err != nil {
		return nil, err
	}

	if job.Output != "" {
		if s.sink == nil {
			return nil, fmt.Errorf("no design sink configured")
		}
		if err := s.sink.WriteDesign(ctx, job.Output, dr.Result.Model); err != nil {
			return nil, err
		}
	}
	return dr, nil
}

// Get returns a stored run
func (s *DesignService) Get(ctx context.Context, id core.RunID) (*run.DesignRun, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("no repository configured")
	}
	return s.repo.GetByID(ctx, id)
}

// List returns stored runs newest first
func (s *DesignService) List(ctx context.Context, limit, offset int) ([]*run.DesignRun, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("no repository configured")
	}
	return s.repo.List(ctx, limit, offset)
}

// Delete removes a stored run
func (s *DesignService) Delete(ctx context.Context, id core.RunID) error {
	if s.repo == nil {
		return fmt.Errorf("no repository configured")
	}
	return s.repo.Delete(ctx, id)
}
