package testkit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glmdesign/adapters/excel"
	"glmdesign/domain/core"
	"glmdesign/domain/design"
	"glmdesign/domain/run"
)

func TestCohortGeneratorIsReproducible(t *testing.T) {
	cfg := DefaultCohortConfig()
	cfg.Repeats = 2

	a := NewCohortGenerator(cfg).Generate()
	b := NewCohortGenerator(cfg).Generate()

	require.NoError(t, a.Validate())
	assert.Equal(t, cfg.Subjects*2, len(a.LabelsX))
	assert.Equal(t, CohortColumns, a.LabelsY)
	assert.Equal(t, cfg.Units, a.Y.Cols())
	assert.Equal(t, a.X.ToRows(), b.X.ToRows())
	assert.Equal(t, a.Y.ToRows(), b.Y.ToRows())
	assert.Equal(t, a.LabelsX[0], a.LabelsX[1])
}

func TestCohortGeneratorWithoutUnits(t *testing.T) {
	cfg := DefaultCohortConfig()
	cfg.Units = 0
	m := NewCohortGenerator(cfg).Generate()
	assert.False(t, m.HasResponses())
	require.NoError(t, m.Validate())
}

func TestWriteCSVRoundTrip(t *testing.T) {
	m := NewCohortGenerator(DefaultCohortConfig()).Generate()
	dir := t.TempDir()
	cov := filepath.Join(dir, "cov.csv")
	resp := filepath.Join(dir, "resp.csv")
	require.NoError(t, WriteCSV(cov, m.LabelsX, m.LabelsY, m.X))
	require.NoError(t, WriteCSV(resp, m.LabelsX, UnitLabels(m.Y.Cols()), m.Y))

	loaded, err := excel.NewTableSource(excel.DefaultExcelConfig(), nil).LoadModel(context.Background(), cov, resp)
	require.NoError(t, err)
	assert.Equal(t, m.LabelsX, loaded.LabelsX)
	assert.Equal(t, m.X.ToRows(), loaded.X.ToRows())
	assert.Equal(t, m.Y.ToRows(), loaded.Y.ToRows())
}

func storedRun(t *testing.T, name string, at time.Time) *run.DesignRun {
	t.Helper()
	x := design.Ones(2)
	result := design.Result{Model: design.Model{X: x, LabelsX: []string{"a", "b"}, LabelsY: []string{"intercept"}, C: []float64{0}}}
	dr := run.NewDesignRun(name, result.Model, design.DefaultOptions(), result, design.Diagnostics{})
	dr.CreatedAt = core.NewTimestamp(at)
	return dr
}

func TestInMemoryDesignRunRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryDesignRunRepository()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	older := storedRun(t, "older", base)
	newer := storedRun(t, "newer", base.Add(time.Hour))
	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))
	assert.Error(t, repo.Save(ctx, newer))

	got, err := repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "older", got.Name)

	list, err := repo.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].Name)

	page, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "older", page[0].Name)

	empty, err := repo.List(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, repo.Delete(ctx, older.ID))
	_, err = repo.GetByID(ctx, older.ID)
	assert.ErrorIs(t, err, core.ErrRunNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, older.ID), core.ErrNotFound)
	assert.Equal(t, 1, repo.Count())
}
