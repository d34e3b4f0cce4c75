package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"glmdesign/domain/design"
)

// Sheet (and CSV file) names of a written design
const (
	SheetX = "X"
	SheetY = "Y"
	SheetC = "C"
)

// DesignWriter writes prepared designs either as one workbook or as a
// directory of CSV files
type DesignWriter struct {
	cfg    ExcelConfig
	logger *slog.Logger
}

// NewDesignWriter creates a design sink
func NewDesignWriter(cfg ExcelConfig, logger *slog.Logger) *DesignWriter {
	if cfg.LabelHeader == "" {
		cfg.LabelHeader = DefaultExcelConfig().LabelHeader
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DesignWriter{cfg: cfg, logger: logger}
}

// WriteDesign writes X, Y (when present) and C. A path ending in .xlsx
// produces a workbook; any other path is treated as a directory.
func (w *DesignWriter) WriteDesign(ctx context.Context, path string, m design.Model) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tables := w.tables(m)

	var err error
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		err = w.writeWorkbook(path, tables)
	} else {
		err = w.writeCSVDir(path, tables)
	}
	if err != nil {
		return err
	}
	w.logger.Info("design written", "path", path, "sheets", len(tables))
	return nil
}

type table struct {
	name string
	rows [][]string
}

func (w *DesignWriter) tables(m design.Model) []table {
	x := table{name: SheetX, rows: [][]string{append([]string{w.cfg.LabelHeader}, m.LabelsY...)}}
	for i, label := range m.LabelsX {
		x.rows = append(x.rows, labelledRow(label, m.X.Row(i)))
	}
	out := []table{x}

	if m.HasResponses() {
		header := []string{w.cfg.LabelHeader}
		for j := 0; j < m.Y.Cols(); j++ {
			header = append(header, "unit_"+strconv.Itoa(j+1))
		}
		y := table{name: SheetY, rows: [][]string{header}}
		for i, label := range m.LabelsX {
			y.rows = append(y.rows, labelledRow(label, m.Y.Row(i)))
		}
		out = append(out, y)
	}

	c := table{name: SheetC, rows: [][]string{{"name", "weight"}}}
	for j, label := range m.LabelsY {
		c.rows = append(c.rows, []string{label, formatFloat(m.C[j])})
	}
	return append(out, c)
}

func (w *DesignWriter) writeWorkbook(path string, tables []table) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), t.name); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", t.name, err)
			}
		} else if _, err := f.NewSheet(t.name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", t.name, err)
		}
		for r, row := range t.rows {
			cells := make([]interface{}, len(row))
			for c, value := range row {
				cells[c] = cellValue(r, c, value)
			}
			ref, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(t.name, ref, &cells); err != nil {
				return fmt.Errorf("failed to write sheet %s: %w", t.name, err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// cellValue stores numbers as numeric cells; headers and labels stay text
func cellValue(row, col int, value string) interface{} {
	if row == 0 || col == 0 {
		return value
	}
	if v, err := strconv.ParseFloat(value, 64); err == nil {
		return v
	}
	return value
}

func (w *DesignWriter) writeCSVDir(dir string, tables []table) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, t := range tables {
		if err := writeCSV(filepath.Join(dir, t.name+".csv"), t.rows); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

func labelledRow(label string, values []float64) []string {
	row := make([]string, 0, len(values)+1)
	row = append(row, label)
	for _, v := range values {
		row = append(row, formatFloat(v))
	}
	return row
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
