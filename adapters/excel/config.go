package excel

// ExcelConfig holds configuration for the table source and sink
type ExcelConfig struct {
	// Sheet read from workbooks; empty means the first sheet
	Sheet string `json:"sheet"`
	// Header written above the row label column
	LabelHeader string `json:"label_header"`
}

// DefaultExcelConfig returns sensible defaults for Excel processing
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		LabelHeader: "label",
	}
}
