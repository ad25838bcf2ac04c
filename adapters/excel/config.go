package excel

// DatasetConfig controls how sentences are located in a spreadsheet
type DatasetConfig struct {
	// TextColumn names the column holding the sentences. Empty means detect.
	TextColumn string `json:"text_column"`
	// SheetName selects the worksheet. Empty means the first sheet.
	SheetName string `json:"sheet_name"`
	// NoHeader treats the first row as data.
	NoHeader bool `json:"no_header"`
}

// DefaultDatasetConfig detects the text column on the first sheet
func DefaultDatasetConfig() DatasetConfig {
	return DatasetConfig{}
}

// textColumnNames are checked in order when no column is configured
var textColumnNames = []string{
	"text",
	"sentence",
	"input",
	"utterance",
	"content",
}
