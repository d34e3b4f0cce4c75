// Package pipeline turns a covariate table into a GLM design matrix.
//
// Stages run strictly in order:
//
//	reorder → select → interaction → intercept → contrast → normalize → (projection → normalize)*
//
// Every stage receives the model produced by the previous one and returns a
// new model; the caller's input is never modified. Alignment of labels with
// matrix dimensions is re-checked after each stage.
package pipeline

import (
	"fmt"
	"log/slog"

	"glmdesign/adapters/numeric"
	"glmdesign/domain/design"
	"glmdesign/ports"
)

// Pipeline holds the numeric collaborators used by the stages
type Pipeline struct {
	standardizer ports.Standardizer
	residualizer ports.Residualizer
	logger       *slog.Logger
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger used for stage progress and warnings
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithStandardizer replaces the z-score primitive
func WithStandardizer(s ports.Standardizer) Option {
	return func(p *Pipeline) { p.standardizer = s }
}

// WithResidualizer replaces the least-squares residual primitive
func WithResidualizer(r ports.Residualizer) Option {
	return func(p *Pipeline) { p.residualizer = r }
}

// New creates a pipeline backed by the default numeric adapters
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		standardizer: numeric.NewZScorer(),
		residualizer: numeric.NewOLS(),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prepare runs the full pipeline with default collaborators
func Prepare(model design.Model, opts design.Options) (design.Result, error) {
	return New().Prepare(model, opts)
}

// run carries the per-call state: the warnings collected so far
type run struct {
	p        *Pipeline
	warnings []design.Warning
}

func (r *run) warn(stage design.Stage, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	for _, w := range r.warnings {
		if w.Stage == stage && w.Message == msg {
			return
		}
	}
	r.warnings = append(r.warnings, design.Warning{Stage: stage, Message: msg})
	r.p.logger.Warn(msg, "stage", string(stage))
}

type step struct {
	stage design.Stage
	apply func(design.Model) (design.Model, error)
}

// Prepare validates the inputs, applies defaults and runs every stage.
// Either a fully consistent result or an error is returned.
func (p *Pipeline) Prepare(model design.Model, opts design.Options) (design.Result, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return design.Result{}, err
	}
	if err := model.Validate(); err != nil {
		return design.Result{}, err
	}

	m := model.Clone()
	m.C = nil
	if m.X.Rows() == 0 && m.X.Cols() == 0 {
		m.X = design.NewMatrix(len(m.LabelsX), 0, nil)
	}

	r := &run{p: p}
	steps := []step{
		{design.StageReorder, func(m design.Model) (design.Model, error) { return r.reorder(m, opts.LabelsX) }},
		{design.StageSelect, func(m design.Model) (design.Model, error) { return r.selectRows(m, opts.Select) }},
		{design.StageInteraction, func(m design.Model) (design.Model, error) { return r.interact(m, opts.Interaction) }},
		{design.StageIntercept, func(m design.Model) (design.Model, error) { return r.addIntercept(m, opts.Intercept()), nil }},
		{design.StageContrast, func(m design.Model) (design.Model, error) {
			return r.extractContrast(m, opts.Contrast, opts.Intercept())
		}},
		{design.StageNormalize, func(m design.Model) (design.Model, error) { return r.normalize(m, opts), nil }},
	}
	for i, proj := range opts.Projection {
		steps = append(steps,
			step{design.StageProjection, func(m design.Model) (design.Model, error) { return r.project(m, i, proj) }},
			step{design.StageNormalize, func(m design.Model) (design.Model, error) { return r.normalize(m, opts), nil }},
		)
	}

	for _, s := range steps {
		next, err := s.apply(m)
		if err != nil {
			p.logger.Debug("stage failed", "stage", string(s.stage), "error", err)
			return design.Result{}, err
		}
		if err := next.CheckAlignment(s.stage); err != nil {
			return design.Result{}, err
		}
		m = next
		p.logger.Debug("stage complete",
			"stage", string(s.stage),
			"rows", m.X.Rows(),
			"columns", m.X.Cols(),
		)
	}

	return design.Result{Model: m, Warnings: r.warnings}, nil
}

// takeRows keeps the given observation rows, in order, across X, Y and LabelsX
func takeRows(m design.Model, idx []int) design.Model {
	labels := make([]string, len(idx))
	for k, i := range idx {
		labels[k] = m.LabelsX[i]
	}
	m.X = m.X.SelectRows(idx)
	if m.HasResponses() {
		m.Y = m.Y.SelectRows(idx)
	}
	m.LabelsX = labels
	return m
}

func onesVector(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}
