package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glmdesign/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "glmdesign.db", cfg.Database.URL)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.Equal(t, "xlsx", cfg.Output.Format)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfgFile := filepath.Join(dir, "glmdesign.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`
database:
  driver: postgres
  url: postgres://file
log:
  level: debug
batch:
  concurrency: 2
`), 0o644))

	t.Setenv("GLMDESIGN_DATABASE_URL", "postgres://env")
	t.Setenv("GLMDESIGN_LOG_FORMAT", "json")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("concurrency", 1, "")
	flags.String("db-url", "", "")
	require.NoError(t, flags.Parse([]string{"--concurrency=8"}))

	cfg, err := Load(cfgFile, flags)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)    // file
	assert.Equal(t, "postgres://env", cfg.Database.URL) // env over file, unset flag ignored
	assert.Equal(t, "debug", cfg.Log.Level)             // file
	assert.Equal(t, "json", cfg.Log.Format)             // env
	assert.Equal(t, 8, cfg.Batch.Concurrency)           // flag over file
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GLMDESIGN_SERVER_ADDR=:9999\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("GLMDESIGN_SERVER_ADDR") })

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GLMDESIGN_DATABASE_DRIVER", "mysql")

	_, err := Load("", nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Database: DatabaseConfig{Driver: "sqlite", URL: ":memory:"},
			Server:   ServerConfig{Addr: ":8080"},
			Log:      LogConfig{Level: "INFO", Format: "text"},
			Batch:    BatchConfig{Concurrency: 1},
			Output:   OutputConfig{Format: "csv"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty url", func(c *Config) { c.Database.URL = "" }},
		{"bad mode", func(c *Config) { c.Server.Mode = "prod" }},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
		{"zero concurrency", func(c *Config) { c.Batch.Concurrency = 0 }},
		{"bad output", func(c *Config) { c.Output.Format = "parquet" }},
	}

	base := valid()
	require.NoError(t, base.Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
