package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"gopkg.in/yaml.v3"

	"glmdesign/domain/core"
	"glmdesign/domain/run"
)

// Manifest lists the jobs of one batch
type Manifest struct {
	Concurrency int       `yaml:"concurrency,omitempty"`
	Jobs        []FileJob `yaml:"jobs"`
}

// LoadManifest reads a YAML batch manifest. Relative paths inside the
// manifest are resolved against the manifest's directory.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return Manifest{}, fmt.Errorf("%w: manifest %s: %w", core.ErrConfig, path, err)
	}

	base := filepath.Dir(path)
	for i := range m.Jobs {
		job := &m.Jobs[i]
		if job.Covariates == "" {
			return Manifest{}, core.NewConfigError(fmt.Sprintf("jobs[%d].covariates", i), "cannot be empty")
		}
		job.Covariates = resolve(base, job.Covariates)
		job.Response = resolve(base, job.Response)
		job.Options = resolve(base, job.Options)
		job.Output = resolve(base, job.Output)
	}
	return m, nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// JobResult is the outcome of one batch job
type JobResult struct {
	Job      FileJob
	Run      *run.DesignRun
	Err      error
	Duration time.Duration
}

// BatchRunner prepares independent jobs concurrently. A failing job does not
// stop the others; only cancellation of the context ends the batch early.
type BatchRunner struct {
	service     *DesignService
	concurrency int64
	logger      *slog.Logger
}

// NewBatchRunner creates a batch runner allowing concurrency jobs at once
func NewBatchRunner(service *DesignService, concurrency int, logger *slog.Logger) *BatchRunner {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchRunner{service: service, concurrency: int64(concurrency), logger: logger}
}

// Run prepares every job and returns one result per job, in job order
func (b *BatchRunner) Run(ctx context.Context, jobs []FileJob) ([]JobResult, error) {
	results := make([]JobResult, len(jobs))
	sem := semaphore.NewWeighted(b.concurrency)
	g, gctx := errgroup.WithContext(ctx)

	b.logger.Info("batch started", "jobs", len(jobs), "concurrency", b.concurrency)
	for i, job := range jobs {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			start := time.Now()
			dr, err := b.service.PrepareFiles(gctx, job)
			results[i] = JobResult{Job: job, Run: dr, Err: err, Duration: time.Since(start)}
			if err != nil {
				b.logger.Error("batch job failed", "job", job.Name, "covariates", job.Covariates, "error", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}

	b.logger.Info("batch finished", "jobs", len(jobs), "failed", Failed(results))
	return results, nil
}

// Failed counts the jobs that returned an error
func Failed(results []JobResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
