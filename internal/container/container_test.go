package container

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glmdesign/app"
	"glmdesign/domain/core"
	"glmdesign/internal/config"
	"glmdesign/internal/testkit"
	"glmdesign/internal/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite", URL: filepath.Join(t.TempDir(), "runs.db")},
		Server:   config.ServerConfig{Addr: ":0", Mode: "test"},
		Log:      config.LogConfig{Level: "debug", Format: "text"},
		Batch:    config.BatchConfig{Concurrency: 2},
		Output:   config.OutputConfig{Format: "csv"},
	}
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil, nil)
	require.Error(t, err)
}

func TestContainerWithoutDatabase(t *testing.T) {
	c, err := New(testConfig(t), testutil.NewTestLogger(t))
	require.NoError(t, err)

	model := testkit.NewCohortGenerator(testkit.DefaultCohortConfig()).Generate()
	dr, err := c.Service.Prepare(context.Background(), app.PrepareRequest{Model: model})
	require.NoError(t, err)
	assert.False(t, dr.ID.String() == "")

	_, err = c.Service.Prepare(context.Background(), app.PrepareRequest{Model: model, Save: true})
	assert.Error(t, err)
	assert.Error(t, c.Migrate(context.Background()))
	assert.NoError(t, c.Shutdown(context.Background()))
}

func TestContainerWithSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	c, err := New(cfg, testutil.NewTestLogger(t))
	require.NoError(t, err)

	db, err := Open(ctx, cfg.Database)
	require.NoError(t, err)
	require.NoError(t, c.InitWithDatabase(db))
	t.Cleanup(func() { _ = c.Shutdown(context.Background()) })

	require.NoError(t, c.Migrate(ctx))
	require.NoError(t, c.Migrate(ctx), "migrations are idempotent")

	model := testkit.NewCohortGenerator(testkit.DefaultCohortConfig()).Generate()
	dr, err := c.Service.Prepare(ctx, app.PrepareRequest{Name: "stored", Model: model, Save: true})
	require.NoError(t, err)

	stored, err := c.Service.Get(ctx, dr.ID)
	require.NoError(t, err)
	assert.Equal(t, dr.Fingerprint, stored.Fingerprint)
	assert.Equal(t, dr.Result.Model.LabelsY, stored.Result.Model.LabelsY)
	assert.Equal(t, dr.Result.Model.X.ToRows(), stored.Result.Model.X.ToRows())

	runs, err := c.Service.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	rec := httptest.NewRecorder()
	c.Server().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, c.Service.Delete(ctx, dr.ID))
	_, err = c.Service.Get(ctx, dr.ID)
	assert.ErrorIs(t, err, core.ErrRunNotFound)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "oracle", URL: "x"})
	assert.Error(t, err)
}
