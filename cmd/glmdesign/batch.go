package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"glmdesign/app"
)

func newBatchCmd(a *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch MANIFEST",
		Short: "Prepare every job of a YAML manifest concurrently",
		Long: `Prepare every job listed in a YAML manifest.

A failing job is reported and does not stop the others. The command exits
with an error when at least one job failed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := app.LoadManifest(args[0])
			if err != nil {
				return err
			}

			for _, job := range manifest.Jobs {
				if job.Save {
					if err := a.openDB(cmd.Context()); err != nil {
						return err
					}
					break
				}
			}

			runner := a.container.Batch
			// an explicit flag beats the manifest
			if manifest.Concurrency > 0 && !cmd.Flags().Changed("concurrency") {
				runner = app.NewBatchRunner(a.container.Service, manifest.Concurrency, a.logger)
			}

			results, err := runner.Run(cmd.Context(), manifest.Jobs)
			renderBatch(a.out, results)
			if err != nil {
				return err
			}
			if failed := app.Failed(results); failed > 0 {
				return fmt.Errorf("%d of %d jobs failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().Int("concurrency", 0, "maximum number of jobs prepared at once")
	return cmd
}
