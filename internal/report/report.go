// Package report renders stored design runs as Markdown and HTML.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"glmdesign/domain/design"
	"glmdesign/domain/run"
	"glmdesign/internal/profiling"
)

// DefaultPreviewRows bounds the design rows shown in a report
const DefaultPreviewRows = 10

// Renderer builds reports
type Renderer struct {
	previewRows int
	profiler    *profiling.Profiler
}

// NewRenderer creates a report renderer showing at most previewRows design rows
func NewRenderer(previewRows int) *Renderer {
	if previewRows < 0 {
		previewRows = 0
	}
	return &Renderer{previewRows: previewRows, profiler: profiling.NewProfiler()}
}

// Markdown renders the run summary, contrast, column profile, warnings,
// options and a preview of X
func (r *Renderer) Markdown(dr *run.DesignRun) ([]byte, error) {
	m := dr.Result.Model
	var b strings.Builder

	title := dr.Name
	if title == "" {
		title = dr.ID.String()
	}
	fmt.Fprintf(&b, "# Design run %s\n\n", escape(title))

	b.WriteString("| Field | Value |\n|---|---|\n")
	row(&b, "Run ID", dr.ID.String())
	row(&b, "Created", dr.CreatedAt.String())
	row(&b, "Fingerprint", "`"+dr.Fingerprint.Short()+"`")
	row(&b, "Observations", strconv.Itoa(len(m.LabelsX)))
	row(&b, "Columns", strconv.Itoa(len(m.LabelsY)))
	row(&b, "Response units", strconv.Itoa(m.Y.Cols()))
	row(&b, "Rank", fmt.Sprintf("%d of %d", dr.Diagnostics.Rank, dr.Diagnostics.Columns))
	if dr.Diagnostics.Condition > 0 {
		row(&b, "Condition number", strconv.FormatFloat(dr.Diagnostics.Condition, 'g', 6, 64))
	} else {
		row(&b, "Condition number", "singular")
	}

	b.WriteString("\n## Contrast\n\n| Column | Weight |\n|---|---|\n")
	for j, label := range m.LabelsY {
		weight := ""
		if j < len(m.C) {
			weight = formatFloat(m.C[j])
		}
		row(&b, escape(label), weight)
	}

	if profiles := r.profiler.ProfileDesign(m); len(profiles) > 0 {
		writeProfiles(&b, profiles)
	}

	b.WriteString("\n## Warnings\n\n")
	if len(dr.Result.Warnings) == 0 {
		b.WriteString("None.\n")
	}
	for _, w := range dr.Result.Warnings {
		fmt.Fprintf(&b, "- **%s**: %s\n", w.Stage, escape(w.Message))
	}

	opts, err := design.MarshalOptions(dr.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}
	fmt.Fprintf(&b, "\n## Options\n\n```yaml\n%s```\n", opts)

	if r.previewRows > 0 && len(m.LabelsX) > 0 && len(m.LabelsY) > 0 {
		r.writePreview(&b, m)
	}
	return []byte(b.String()), nil
}

func (r *Renderer) writePreview(b *strings.Builder, m design.Model) {
	n := min(r.previewRows, len(m.LabelsX))
	fmt.Fprintf(b, "\n## Design preview (%d of %d rows)\n\n", n, len(m.LabelsX))

	b.WriteString("| Label |")
	for _, label := range m.LabelsY {
		fmt.Fprintf(b, " %s |", escape(label))
	}
	b.WriteString("\n|---|")
	b.WriteString(strings.Repeat("---|", len(m.LabelsY)))
	b.WriteString("\n")

	for i := 0; i < n; i++ {
		fmt.Fprintf(b, "| %s |", escape(m.LabelsX[i]))
		for _, v := range m.X.Row(i) {
			fmt.Fprintf(b, " %s |", strconv.FormatFloat(v, 'f', 4, 64))
		}
		b.WriteString("\n")
	}
}

func writeProfiles(b *strings.Builder, profiles []profiling.ColumnProfile) {
	b.WriteString("\n## Column profile\n\n| Column | Mean | SD | Min | Max | Skewness | Outliers |\n|---|---|---|---|---|---|---|\n")
	for _, p := range profiles {
		skew := "-"
		if !p.Constant {
			skew = formatShort(p.Skewness)
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s | %d |\n",
			escape(p.Name), formatShort(p.Mean), formatShort(p.StdDev),
			formatShort(p.Min), formatShort(p.Max), skew, p.Outliers)
	}
}

// HTML renders the Markdown report as a complete HTML page
func (r *Renderer) HTML(dr *run.DesignRun) ([]byte, error) {
	md, err := r.Markdown(dr)
	if err != nil {
		return nil, err
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse(md)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: "Design run " + dr.ID.String(),
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.Render(doc, renderer), nil
}

func row(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", key, value)
}

// escape keeps user supplied labels from breaking table cells
func escape(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}

func formatShort(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
