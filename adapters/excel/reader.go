package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"textattack/domain/core"
	"textattack/internal"
	"textattack/ports"

	"github.com/xuri/excelize/v2"
)

// DataReader reads input sentences from Excel or CSV files
type DataReader struct {
	config DatasetConfig
	logger *internal.Logger
}

var _ ports.DatasetReader = (*DataReader)(nil)

// NewDataReader creates a reader; a nil logger means internal.DefaultLogger
func NewDataReader(config DatasetConfig, logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{config: config, logger: logger}
}

// fileType maps an extension to "xlsx", "csv" or "txt"
func fileType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv"
	case ".txt":
		return "txt"
	default:
		return "xlsx"
	}
}

// ReadSentences returns the text column of the file in row order.
// Blank cells are kept as empty inputs.
func (r *DataReader) ReadSentences(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	kind := fileType(path)
	r.logger.Debug("[DataReader] Starting to read %s file: %s", kind, path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, core.NewResourceError(strings.ToUpper(kind)+" file "+path, err)
	}

	if kind == "txt" {
		return r.readLines(path)
	}

	var (
		rows [][]string
		err  error
	)
	switch kind {
	case "csv":
		rows, err = r.readCSVRows(path)
	default:
		rows, err = r.readExcelRows(path)
	}
	if err != nil {
		return nil, err
	}

	data := r.processRows(rows)
	column, err := r.DetectTextColumn(data)
	if err != nil {
		return nil, err
	}

	sentences := make([]string, 0, len(data.Rows))
	for _, row := range data.Rows {
		sentences = append(sentences, row[column])
	}
	r.logger.Info("[DataReader] %d sentences read from column %q of %s", len(sentences), column, path)
	return sentences, nil
}

func (r *DataReader) readExcelRows(path string) ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.config.SheetName
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("Excel file %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	r.logger.Debug("[DataReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *DataReader) readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// readLines treats every line of a plain text file as one sentence
func (r *DataReader) readLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}
	content := strings.TrimRight(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
	if content == "" {
		return []string{}, nil
	}
	return strings.Split(content, "\n"), nil
}

// processRows converts raw string rows into SheetData. Without a header row
// columns are named by their 1-based position.
func (r *DataReader) processRows(rows [][]string) *SheetData {
	if len(rows) == 0 {
		return &SheetData{}
	}

	var headers []string
	dataStart := 1
	if r.config.NoHeader {
		dataStart = 0
		width := 0
		for _, row := range rows {
			width = max(width, len(row))
		}
		for i := range width {
			headers = append(headers, strconv.Itoa(i+1))
		}
	} else {
		for _, header := range rows[0] {
			headers = append(headers, strings.TrimSpace(header))
		}
	}

	dataRows := make([]RawRowData, 0, len(rows)-dataStart)
	for _, row := range rows[dataStart:] {
		rowData := make(RawRowData, len(headers))
		for j, header := range headers {
			if j < len(row) {
				rowData[header] = strings.TrimSpace(row[j])
			} else {
				rowData[header] = ""
			}
		}
		dataRows = append(dataRows, rowData)
	}

	return &SheetData{Headers: headers, Rows: dataRows}
}

// DetectTextColumn returns the configured column, a well-known text column
// name, or the first column.
func (r *DataReader) DetectTextColumn(data *SheetData) (string, error) {
	if len(data.Headers) == 0 {
		return "", fmt.Errorf("%w: no columns found", core.ErrEmptyInput)
	}

	if want := strings.TrimSpace(r.config.TextColumn); want != "" {
		for _, header := range data.Headers {
			if strings.EqualFold(header, want) {
				return header, nil
			}
		}
		return "", fmt.Errorf("%w: text column %q not found in %v", core.ErrInvalidConfiguration, want, data.Headers)
	}

	for _, name := range textColumnNames {
		for _, header := range data.Headers {
			if strings.ToLower(header) == name {
				return header, nil
			}
		}
	}

	return data.Headers[0], nil
}
