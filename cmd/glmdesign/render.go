package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"glmdesign/app"
	"glmdesign/domain/run"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderRun(w io.Writer, dr *run.DesignRun) {
	m := dr.Result.Model

	t := newTable(w)
	t.SetTitle("Design run")
	t.AppendRows([]table.Row{
		{"Run ID", dr.ID.String()},
		{"Name", dr.Name},
		{"Observations", len(m.LabelsX)},
		{"Columns", len(m.LabelsY)},
		{"Response units", m.Y.Cols()},
		{"Rank", fmt.Sprintf("%d of %d", dr.Diagnostics.Rank, dr.Diagnostics.Columns)},
		{"Condition", formatCondition(dr.Diagnostics.Condition)},
		{"Fingerprint", dr.Fingerprint.Short()},
	})
	t.Render()

	if len(m.LabelsY) > 0 {
		c := newTable(w)
		c.AppendHeader(table.Row{"Column", "Weight"})
		for j, label := range m.LabelsY {
			weight := ""
			if j < len(m.C) {
				weight = strconv.FormatFloat(m.C[j], 'g', -1, 64)
			}
			c.AppendRow(table.Row{label, weight})
		}
		c.Render()
	}

	for _, warning := range dr.Result.Warnings {
		fmt.Fprintf(w, "warning [%s]: %s\n", warning.Stage, warning.Message)
	}
}

func renderBatch(w io.Writer, results []app.JobResult) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Job", "Status", "Run ID", "Columns", "Warnings", "Duration"})
	for _, r := range results {
		name := r.Job.Name
		if name == "" {
			name = r.Job.Covariates
		}
		switch {
		case r.Err != nil:
			t.AppendRow(table.Row{name, "failed: " + r.Err.Error(), "", "", "", r.Duration.Round(time.Millisecond)})
		case r.Run == nil:
			t.AppendRow(table.Row{name, "skipped", "", "", "", ""})
		default:
			t.AppendRow(table.Row{name, "ok", r.Run.ID.String(), len(r.Run.Result.Model.LabelsY), len(r.Run.Result.Warnings), r.Duration.Round(time.Millisecond)})
		}
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d failed", app.Failed(results))})
	t.Render()
}

func renderRuns(w io.Writer, runs []*run.DesignRun) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "(0 runs)")
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Run ID", "Name", "Created", "Rows", "Columns", "Rank", "Fingerprint"})
	for _, dr := range runs {
		t.AppendRow(table.Row{
			dr.ID.String(),
			dr.Name,
			dr.CreatedAt.String(),
			dr.Diagnostics.Rows,
			dr.Diagnostics.Columns,
			dr.Diagnostics.Rank,
			dr.Fingerprint.Short(),
		})
	}
	t.Render()
}

func formatCondition(c float64) string {
	if c <= 0 {
		return "singular"
	}
	return strconv.FormatFloat(c, 'g', 6, 64)
}
