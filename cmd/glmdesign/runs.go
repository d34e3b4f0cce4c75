package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"glmdesign/domain/core"
)

func newListCmd(a *cli) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.openDB(cmd.Context()); err != nil {
				return err
			}
			runs, err := a.container.Service.List(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			renderRuns(a.out, runs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of runs to skip")
	return cmd
}

func newReportCmd(a *cli) *cobra.Command {
	var asHTML bool
	var out string

	cmd := &cobra.Command{
		Use:   "report RUN_ID",
		Short: "Render a stored run as Markdown or HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := core.ParseRunID(args[0])
			if err != nil {
				return err
			}
			if err := a.openDB(cmd.Context()); err != nil {
				return err
			}
			dr, err := a.container.Service.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			render := a.container.Renderer.Markdown
			if asHTML {
				render = a.container.Renderer.HTML
			}
			doc, err := render(dr)
			if err != nil {
				return err
			}

			if out != "" {
				return os.WriteFile(out, doc, 0o644)
			}
			_, err = a.out.Write(doc)
			return err
		},
	}

	cmd.Flags().BoolVar(&asHTML, "html", false, "render a complete HTML page")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the report to a file")
	return cmd
}

func newShowCmd(a *cli) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Print a stored run as JSON, or one field of it",
		Long: `Print a stored run as JSON. --path selects a field with GJSON syntax.

Example: glmdesign show 0190... --path result.model.labels_y`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := core.ParseRunID(args[0])
			if err != nil {
				return err
			}
			if err := a.openDB(cmd.Context()); err != nil {
				return err
			}
			dr, err := a.container.Service.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			doc, err := json.Marshal(dr)
			if err != nil {
				return err
			}
			if path == "" {
				path = "@pretty"
			}
			value := gjson.GetBytes(doc, path)
			if !value.Exists() {
				return fmt.Errorf("path %q matches nothing in run %s", path, id)
			}
			_, err = fmt.Fprintln(a.out, value.String())
			return err
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "GJSON path, for example result.warnings.#.message")
	return cmd
}
