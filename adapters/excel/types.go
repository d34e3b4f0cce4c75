package excel

// ExcelData represents one table read from an Excel or CSV file.
// Rows keep file order; every row has exactly len(Headers) cells.
type ExcelData struct {
	Headers []string   // Column headers
	Rows    [][]string // Data rows
}
