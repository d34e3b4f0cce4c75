package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"glmdesign/internal"
	"glmdesign/internal/config"
	"glmdesign/internal/container"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli carries the state shared by every subcommand once flags are parsed
type cli struct {
	cfgFile string
	out     io.Writer
	logOut  io.Writer

	cfg       *config.Config
	logger    *slog.Logger
	container *container.Container
}

func newRootCmd(out, logOut io.Writer) *cobra.Command {
	a := &cli{out: out, logOut: logOut}

	rootCmd := &cobra.Command{
		Use:           "glmdesign",
		Short:         "Prepare GLM design matrices from covariate tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.container == nil {
				return nil
			}
			return a.container.Shutdown(cmd.Context())
		},
	}
	rootCmd.SetOut(out)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "YAML configuration file")
	pf.String("db-driver", "", "database driver: sqlite or postgres")
	pf.String("db-url", "", "database connection string or sqlite file")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text or json")

	rootCmd.AddCommand(
		newPrepareCmd(a),
		newBatchCmd(a),
		newServeCmd(a),
		newMigrateCmd(a),
		newListCmd(a),
		newReportCmd(a),
		newShowCmd(a),
	)
	return rootCmd
}

func (a *cli) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = internal.NewLogger(a.logOut, cfg.Log.Level, cfg.Log.Format)

	c, err := container.New(cfg, a.logger)
	if err != nil {
		return err
	}
	a.container = c
	return nil
}

// openDB connects the container to the configured database and applies
// migrations, which are idempotent
func (a *cli) openDB(ctx context.Context) error {
	if a.container.DB != nil {
		return nil
	}
	db, err := container.Open(ctx, a.cfg.Database)
	if err != nil {
		return err
	}
	if err := a.container.InitWithDatabase(db); err != nil {
		db.Close()
		return err
	}
	return a.container.Migrate(ctx)
}
