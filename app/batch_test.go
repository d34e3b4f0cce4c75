package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glmdesign/domain/core"
	"glmdesign/internal/testutil"
)

func TestLoadManifestResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
concurrency: 2
jobs:
  - name: first
    covariates: data/cov.csv
    options: /abs/options.yaml
    output: out/first
`), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Concurrency)
	require.Len(t, m.Jobs, 1)
	assert.Equal(t, filepath.Join(dir, "data", "cov.csv"), m.Jobs[0].Covariates)
	assert.Equal(t, "/abs/options.yaml", m.Jobs[0].Options)
	assert.Equal(t, filepath.Join(dir, "out", "first"), m.Jobs[0].Output)
	assert.Empty(t, m.Jobs[0].Response)
}

func TestLoadManifestErrors(t *testing.T) {
	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("jobs:\n  - covariate: x.csv\n"), 0o644))
	_, err := LoadManifest(unknown)
	assert.ErrorIs(t, err, core.ErrConfig)

	missing := filepath.Join(dir, "missing.yaml")
	require.NoError(t, os.WriteFile(missing, []byte("jobs:\n  - name: nothing\n"), 0o644))
	_, err = LoadManifest(missing)
	assert.ErrorIs(t, err, core.ErrConfig)
}

func TestBatchRunner_Run(t *testing.T) {
	svc, repo := newTestService(t)
	dir := t.TempDir()
	good := writeCohortFiles(t, dir)
	good.Save = true

	second := good
	second.Name = "csv-output"
	second.Output = filepath.Join(dir, "csv-out")

	broken := good
	broken.Name = "broken"
	broken.Covariates = filepath.Join(dir, "does-not-exist.csv")

	runner := NewBatchRunner(svc, 2, testutil.NewTestLogger(t))
	results, err := runner.Run(context.Background(), []FileJob{good, broken, second})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, "broken", results[1].Job.Name)
	assert.Equal(t, 1, Failed(results))
	assert.Equal(t, 2, repo.Count())
	assert.Equal(t, results[0].Run.Fingerprint, results[2].Run.Fingerprint)

	_, err = os.Stat(filepath.Join(dir, "csv-out", "X.csv"))
	assert.NoError(t, err)
}

func TestBatchRunner_Cancelled(t *testing.T) {
	svc, _ := newTestService(t)
	job := writeCohortFiles(t, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewBatchRunner(svc, 0, nil).Run(ctx, []FileJob{job, job})
	assert.ErrorIs(t, err, context.Canceled)
}
