package main

import (
	"encoding/json"
	"path/filepath"

	"github.com/spf13/cobra"

	"glmdesign/app"
)

func newPrepareCmd(a *cli) *cobra.Command {
	var job app.FileJob
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Prepare one design from covariate and response tables",
		Long: `Prepare one design matrix from a covariate table and an optional response table.

Tables are CSV or XLSX with a label column first and one header row.
The options file is YAML; see the README for the available keys.

Example: glmdesign prepare --covariates subjects.csv --options glm.yaml --out design.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if job.Save {
				if err := a.openDB(cmd.Context()); err != nil {
					return err
				}
			}
			job.Output = outputPath(job.Output, a.cfg.Output.Format)

			dr, err := a.container.Service.PrepareFiles(cmd.Context(), job)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(dr)
			}
			renderRun(a.out, dr)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&job.Name, "name", "", "name recorded with the run")
	f.StringVar(&job.Covariates, "covariates", "", "covariate table (csv or xlsx)")
	f.StringVar(&job.Response, "response", "", "response table (csv or xlsx)")
	f.StringVar(&job.Options, "options", "", "YAML options file")
	f.StringVar(&job.Output, "out", "", "write the design to this workbook or directory")
	f.BoolVar(&job.Save, "save", false, "store the run in the database")
	f.BoolVar(&asJSON, "json", false, "print the run as JSON")
	f.String("format", "", "output format when --out has no extension: xlsx or csv")
	_ = cmd.MarkFlagRequired("covariates")

	return cmd
}

// outputPath gives an extensionless xlsx output its extension; csv output
// is always a directory
func outputPath(out, format string) string {
	if out == "" || format != "xlsx" || filepath.Ext(out) != "" {
		return out
	}
	return out + ".xlsx"
}
