package main

import (
	"github.com/spf13/cobra"
)

func newServeCmd(a *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the design API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.openDB(cmd.Context()); err != nil {
				return err
			}
			return a.container.Server().Run(cmd.Context(), a.cfg.Server.Addr)
		},
	}

	cmd.Flags().String("addr", "", "listen address, for example :8080")
	return cmd
}

func newMigrateCmd(a *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.openDB(cmd.Context()); err != nil {
				return err
			}
			cmd.Printf("database %s is up to date\n", a.cfg.Database.Driver)
			return nil
		},
	}
}
