package excel

// RawRowData represents a row of raw spreadsheet data as string key-value pairs
type RawRowData map[string]string

// SheetData represents one parsed worksheet or CSV file
type SheetData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}
