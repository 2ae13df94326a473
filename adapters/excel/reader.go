package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"stockboard/domain/dataset"
	"stockboard/internal"
)

// Supported upload formats
const (
	FileTypeCSV  = "csv"
	FileTypeXLSX = "xlsx"
)

// DataReader parses an uploaded CSV or Excel file into a Frame
type DataReader struct {
	filename string
	fileType string
	config   ReaderConfig
	logger   *internal.Logger
}

// FileType returns the upload format implied by the file extension, or ""
// when it is not supported.
func FileType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FileTypeCSV
	case ".xlsx":
		return FileTypeXLSX
	default:
		return ""
	}
}

// NewDataReader creates a reader for the given upload name
func NewDataReader(filename string, config ReaderConfig) *DataReader {
	if config.Comma == 0 {
		config.Comma = ','
	}
	return &DataReader{
		filename: filename,
		fileType: FileType(filename),
		config:   config,
		logger:   internal.DefaultLogger.WithComponent("DataReader"),
	}
}

// ReadFrame reads the whole upload into a Frame
func (r *DataReader) ReadFrame(src io.Reader) (*dataset.Frame, error) {
	start := time.Now()

	var rows [][]string
	var err error
	switch r.fileType {
	case FileTypeCSV:
		rows, err = r.readCSV(src)
	case FileTypeXLSX:
		rows, err = r.readExcel(src)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(r.filename))
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("%s file must have at least a header row", strings.ToUpper(r.fileType))
	}

	frame := r.processRows(rows)
	r.logger.Debug("%s parsed in %s (%d columns, %d rows)",
		r.filename, time.Since(start), len(frame.Headers), frame.Len())
	return frame, nil
}

func (r *DataReader) readCSV(src io.Reader) ([][]string, error) {
	reader := csv.NewReader(src)
	reader.Comma = r.config.Comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func (r *DataReader) readExcel(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.config.SheetName
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("Excel file has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

// processRows splits the header from the records. Blank headers are named
// by position and short records are padded.
func (r *DataReader) processRows(rows [][]string) *dataset.Frame {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		header = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		headers[i] = header
	}

	body := rows[1:]
	if r.config.MaxRows > 0 && len(body) > r.config.MaxRows {
		body = body[:r.config.MaxRows]
	}

	records := make([][]string, 0, len(body))
	for _, row := range body {
		if isBlank(row) {
			continue
		}
		record := make([]string, len(headers))
		for j := range headers {
			if j < len(row) {
				record[j] = strings.TrimSpace(row[j])
			}
		}
		records = append(records, record)
	}

	return &dataset.Frame{Name: r.filename, Headers: headers, Records: records}
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
