package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"glmdesign/adapters/excel"
	"glmdesign/adapters/postgres"
	"glmdesign/app"
	"glmdesign/internal/api"
	"glmdesign/internal/config"
	"glmdesign/internal/migration"
	"glmdesign/internal/report"
	"glmdesign/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	RunRepo ports.DesignRunRepository

	// File adapters
	Source *excel.TableSource
	Sink   *excel.DesignWriter

	// Services
	Service  *app.DesignService
	Batch    *app.BatchRunner
	Renderer *report.Renderer
}

// New creates a new dependency injection container. Without a database the
// service can prepare designs but not store them.
func New(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	excelCfg := excel.DefaultExcelConfig()
	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Source:   excel.NewTableSource(excelCfg, logger),
		Sink:     excel.NewDesignWriter(excelCfg, logger),
		Renderer: report.NewRenderer(report.DefaultPreviewRows),
	}
	c.initServices()
	return c, nil
}

// Open connects to the configured database and verifies the connection
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(cfg.Driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}
	if cfg.Driver == "sqlite" {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database connection test failed: %w", err)
	}
	return db, nil
}

// InitWithDatabase initializes components that require database access
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db

	// Test database connection
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.RunRepo = postgres.NewDesignRunRepository(db)
	c.initServices()

	c.Logger.Info("container initialized with database", "driver", db.DriverName())
	return nil
}

func (c *Container) initServices() {
	c.Service = app.NewDesignService(c.Source, c.Sink, c.RunRepo, c.Logger)
	c.Batch = app.NewBatchRunner(c.Service, c.Config.Batch.Concurrency, c.Logger)
}

// Migrate brings the database schema up to date
func (c *Container) Migrate(ctx context.Context) error {
	if c.DB == nil {
		return fmt.Errorf("migrate: no database connection")
	}
	runner := migration.NewRunner()
	if err := runner.Run(ctx, c.DB); err != nil {
		return err
	}
	c.Logger.Info("migrations applied", "version", runner.Version())
	return nil
}

// Server builds the HTTP API over the container's service
func (c *Container) Server() *api.Server {
	var pinger api.Pinger
	if c.DB != nil {
		pinger = c.DB
	}
	return api.NewServer(c.Service, c.Renderer, pinger, c.Config.Server.Mode, c.Logger)
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	// Close database connection
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
