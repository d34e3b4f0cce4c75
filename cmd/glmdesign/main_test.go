package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glmdesign/domain/run"
	"glmdesign/internal/testkit"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	cmd := newRootCmd(&out, &logs)
	cmd.SetArgs(args)
	err := cmd.Execute()
	t.Log(logs.String())
	return out.String(), err
}

func writeInputs(t *testing.T, dir string) (covariates, options string) {
	t.Helper()
	model := testkit.NewCohortGenerator(testkit.DefaultCohortConfig()).Generate()
	covariates = filepath.Join(dir, "covariates.csv")
	options = filepath.Join(dir, "options.yaml")
	require.NoError(t, testkit.WriteCSV(covariates, model.LabelsX, model.LabelsY, model.X))
	require.NoError(t, os.WriteFile(options, []byte("contrast:\n  age: 1\n  group: -1\n"), 0o644))
	return covariates, options
}

func TestPrepareCommand(t *testing.T) {
	dir := t.TempDir()
	covariates, options := writeInputs(t, dir)
	outDir := filepath.Join(dir, "design")

	out, err := execute(t, "prepare",
		"--db-url", filepath.Join(dir, "runs.db"),
		"--covariates", covariates,
		"--options", options,
		"--out", outDir,
		"--format", "csv",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Design run")
	assert.Contains(t, out, "intercept")

	for _, name := range []string{"X.csv", "C.csv"} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}
}

func TestPrepareCommandJSON(t *testing.T) {
	dir := t.TempDir()
	covariates, options := writeInputs(t, dir)

	out, err := execute(t, "prepare", "--db-url", filepath.Join(dir, "runs.db"),
		"--covariates", covariates, "--options", options, "--json")
	require.NoError(t, err)

	var dr run.DesignRun
	require.NoError(t, json.Unmarshal([]byte(out), &dr))
	assert.Equal(t, []string{"intercept", "age", "group"}, dr.Result.Model.LabelsY)
	assert.Equal(t, []float64{0, 1, -1}, dr.Result.Model.C)
}

func TestPrepareCommandRequiresCovariates(t *testing.T) {
	_, err := execute(t, "prepare", "--db-url", filepath.Join(t.TempDir(), "runs.db"))
	assert.Error(t, err)
}

func TestStoredRunCommands(t *testing.T) {
	dir := t.TempDir()
	covariates, options := writeInputs(t, dir)
	db := filepath.Join(dir, "runs.db")

	_, err := execute(t, "migrate", "--db-url", db)
	require.NoError(t, err)

	out, err := execute(t, "prepare", "--db-url", db,
		"--covariates", covariates, "--options", options, "--save", "--json", "--name", "saved")
	require.NoError(t, err)
	var dr run.DesignRun
	require.NoError(t, json.Unmarshal([]byte(out), &dr))

	out, err = execute(t, "list", "--db-url", db)
	require.NoError(t, err)
	assert.Contains(t, out, dr.ID.String())
	assert.Contains(t, out, "saved")

	out, err = execute(t, "report", dr.ID.String(), "--db-url", db)
	require.NoError(t, err)
	assert.Contains(t, out, "# Design run saved")

	page := filepath.Join(dir, "report.html")
	_, err = execute(t, "report", dr.ID.String(), "--db-url", db, "--html", "-o", page)
	require.NoError(t, err)
	html, err := os.ReadFile(page)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<html")

	_, err = execute(t, "report", "not-an-id", "--db-url", db)
	assert.Error(t, err)

	out, err = execute(t, "show", dr.ID.String(), "--db-url", db, "--path", "result.model.labels_y")
	require.NoError(t, err)
	assert.JSONEq(t, `["intercept","age","group"]`, out)

	out, err = execute(t, "show", dr.ID.String(), "--db-url", db, "--path", "name")
	require.NoError(t, err)
	assert.Equal(t, "saved\n", out)

	_, err = execute(t, "show", dr.ID.String(), "--db-url", db, "--path", "no.such.field")
	assert.Error(t, err)
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	covariates, options := writeInputs(t, dir)
	manifest := filepath.Join(dir, "batch.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(`
concurrency: 2
jobs:
  - name: good
    covariates: `+filepath.Base(covariates)+`
    options: `+filepath.Base(options)+`
  - name: broken
    covariates: missing.csv
`), 0o644))

	out, err := execute(t, "batch", manifest, "--db-url", filepath.Join(dir, "runs.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 jobs failed")
	assert.Contains(t, out, "good")
	assert.Contains(t, out, "broken")
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "", outputPath("", "xlsx"))
	assert.Equal(t, "design.xlsx", outputPath("design", "xlsx"))
	assert.Equal(t, "design.xlsx", outputPath("design.xlsx", "xlsx"))
	assert.Equal(t, "design", outputPath("design", "csv"))
}
