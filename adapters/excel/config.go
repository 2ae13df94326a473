package excel

// ReaderConfig holds configuration for tabular upload parsing
type ReaderConfig struct {
	SheetName string `json:"sheet_name"` // empty reads the first sheet
	MaxRows   int    `json:"max_rows"`   // zero means unlimited
	Comma     rune   `json:"comma"`
}

// DefaultReaderConfig returns sensible defaults for CSV and Excel uploads
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		Comma: ',',
	}
}
