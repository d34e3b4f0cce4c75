package excel

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"glmdesign/domain/core"
	"glmdesign/domain/design"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
	logger   *slog.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string, cfg ExcelConfig, logger *slog.Logger) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DataReader{filePath: filePath, fileType: fileType, sheet: cfg.Sheet, logger: logger}
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*ExcelData, error) {
	r.logger.Debug("reading table", "type", r.fileType, "path", r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// readExcelData reads the configured sheet (or the first one)
func (r *DataReader) readExcelData() (*ExcelData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	r.logger.Debug("sheet read", "sheet", sheet, "rows", len(rows), "elapsed", time.Since(startTime))

	if len(rows) < 1 {
		return nil, fmt.Errorf("Excel file must have at least a header row")
	}
	return r.processRows(rows)
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*ExcelData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	r.logger.Debug("csv read", "rows", len(rows), "elapsed", time.Since(readStart))

	if len(rows) < 1 {
		return nil, fmt.Errorf("CSV file must have at least a header row")
	}
	return r.processRows(rows)
}

// processRows trims cells and pads short rows. Excel omits trailing empty
// cells, so a short row is not an error here; numeric parsing rejects it later.
func (r *DataReader) processRows(rows [][]string) (*ExcelData, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([][]string, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		if isBlank(rows[i]) {
			continue
		}
		if len(rows[i]) > len(headers) {
			return nil, fmt.Errorf("row %d has %d cells but the header has %d", i+1, len(rows[i]), len(headers))
		}
		row := make([]string, len(headers))
		for j, cell := range rows[i] {
			row[j] = strings.TrimSpace(cell)
		}
		dataRows = append(dataRows, row)
	}

	r.logger.Debug("table processed", "columns", len(headers), "rows", len(dataRows))
	return &ExcelData{Headers: headers, Rows: dataRows}, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// LabelledMatrix splits a table into its row labels (first column), column
// labels (remaining headers) and numeric values.
func LabelledMatrix(data *ExcelData) (rowLabels, colLabels []string, m design.Matrix, err error) {
	if len(data.Headers) == 0 {
		return nil, nil, design.Matrix{}, core.NewConfigError("table", "header row is empty")
	}
	colLabels = append([]string{}, data.Headers[1:]...)
	for j, label := range colLabels {
		if label == "" {
			return nil, nil, design.Matrix{}, core.NewConfigError("table", fmt.Sprintf("column %d has no header", j+2))
		}
	}

	rowLabels = make([]string, len(data.Rows))
	m = design.NewMatrix(len(data.Rows), len(colLabels), nil)
	for i, row := range data.Rows {
		if row[0] == "" {
			return nil, nil, design.Matrix{}, core.NewConfigError("table", fmt.Sprintf("row %d has no label", i+2))
		}
		rowLabels[i] = row[0]
		for j := range colLabels {
			cell := row[j+1]
			v, perr := strconv.ParseFloat(cell, 64)
			if perr != nil {
				return nil, nil, design.Matrix{}, core.NewConfigError(
					fmt.Sprintf("table[%s,%s]", row[0], colLabels[j]),
					fmt.Sprintf("%q is not numeric", cell),
				)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, nil, design.Matrix{}, core.NewConfigError(
					fmt.Sprintf("table[%s,%s]", row[0], colLabels[j]),
					fmt.Sprintf("%q is not finite", cell),
				)
			}
			m.Set(i, j, v)
		}
	}
	return rowLabels, colLabels, m, nil
}
