package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"glmdesign/internal/errors"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "GLMDESIGN_"

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	Log      LogConfig      `koanf:"log"`
	Batch    BatchConfig    `koanf:"batch"`
	Output   OutputConfig   `koanf:"output"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver string `koanf:"driver"`
	URL    string `koanf:"url"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Addr string `koanf:"addr"`
	Mode string `koanf:"mode"`
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// BatchConfig bounds concurrent batch preparation
type BatchConfig struct {
	Concurrency int `koanf:"concurrency"`
}

// OutputConfig selects how prepared designs are written
type OutputConfig struct {
	Format string `koanf:"format"`
}

// Defaults returns the built-in configuration values
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"database.driver":   "sqlite",
		"database.url":      "glmdesign.db",
		"server.addr":       ":8080",
		"server.mode":       "release",
		"log.level":         "info",
		"log.format":        "text",
		"batch.concurrency": 4,
		"output.format":     "xlsx",
	}
}

// flagKeys maps CLI flag names onto configuration keys
var flagKeys = map[string]string{
	"db-driver":   "database.driver",
	"db-url":      "database.url",
	"addr":        "server.addr",
	"log-level":   "log.level",
	"log-format":  "log.format",
	"concurrency": "batch.concurrency",
	"format":      "output.format",
}

// Load reads configuration. Precedence (highest to lowest):
// flags > env vars (GLMDESIGN_*) > config file > defaults.
// A .env file in the working directory is loaded into the environment first.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, errors.Wrap(err, "failed to load .env")
		}
	}

	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "error reading config file %s", cfgFile)
		}
	}

	// 3. Environment: GLMDESIGN_DATABASE_URL -> database.url
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("database.driver must be sqlite or postgres, got %q", c.Database.Driver))
	}
	if c.Database.URL == "" {
		return errors.ConfigInvalid("database.url is required")
	}
	if c.Server.Addr == "" {
		return errors.ConfigInvalid("server.addr is required")
	}
	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("server.mode must be debug, release or test, got %q", c.Server.Mode))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format))
	}
	if c.Batch.Concurrency < 1 {
		return errors.ConfigInvalid("batch.concurrency must be at least 1")
	}
	switch c.Output.Format {
	case "xlsx", "csv":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("output.format must be xlsx or csv, got %q", c.Output.Format))
	}
	return nil
}
