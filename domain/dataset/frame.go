package dataset

import (
	"strconv"
	"strings"
)

// Frame is a parsed tabular upload held by the backend: a header row plus
// string cells. Typed access goes through the column helpers.
type Frame struct {
	Name    string
	Headers []string
	Records [][]string
}

// Len returns the number of data rows.
func (f *Frame) Len() int {
	return len(f.Records)
}

// Index returns the position of col, or -1.
func (f *Frame) Index(col string) int {
	for i, h := range f.Headers {
		if h == col {
			return i
		}
	}
	return -1
}

// HasColumns reports whether every named column exists.
func (f *Frame) HasColumns(cols ...string) bool {
	for _, c := range cols {
		if f.Index(c) < 0 {
			return false
		}
	}
	return true
}

// Cell returns the trimmed cell at row i of col, or "" when out of range.
func (f *Frame) Cell(i int, col string) string {
	j := f.Index(col)
	if j < 0 || i < 0 || i >= len(f.Records) || j >= len(f.Records[i]) {
		return ""
	}
	return strings.TrimSpace(f.Records[i][j])
}

// Column returns every cell of col.
func (f *Frame) Column(col string) []string {
	j := f.Index(col)
	if j < 0 {
		return nil
	}
	out := make([]string, len(f.Records))
	for i, rec := range f.Records {
		if j < len(rec) {
			out[i] = strings.TrimSpace(rec[j])
		}
	}
	return out
}

// NumericColumns lists columns whose non-empty cells all parse as numbers.
func (f *Frame) NumericColumns() []string {
	var cols []string
	for j, h := range f.Headers {
		if f.isNumeric(j) {
			cols = append(cols, h)
		}
	}
	return cols
}

func (f *Frame) isNumeric(j int) bool {
	seen := false
	for _, rec := range f.Records {
		if j >= len(rec) {
			continue
		}
		c := strings.TrimSpace(rec[j])
		if c == "" {
			continue
		}
		if _, err := strconv.ParseFloat(c, 64); err != nil {
			return false
		}
		seen = true
	}
	return seen
}

// Rows converts the first n data rows (all when n < 0) to typed rows.
// Numeric columns decode as numbers, empty cells as null.
func (f *Frame) Rows(n int) Rows {
	numeric := make([]bool, len(f.Headers))
	for j := range f.Headers {
		numeric[j] = f.isNumeric(j)
	}

	limit := len(f.Records)
	if n >= 0 && n < limit {
		limit = n
	}
	rows := make(Rows, 0, limit)
	for i := 0; i < limit; i++ {
		rec := f.Records[i]
		row := make(Row, 0, len(f.Headers))
		for j, h := range f.Headers {
			var cell string
			if j < len(rec) {
				cell = strings.TrimSpace(rec[j])
			}
			row = append(row, Field{Key: h, Value: typedCell(cell, numeric[j])})
		}
		rows = append(rows, row)
	}
	return rows
}

func typedCell(cell string, numeric bool) interface{} {
	if cell == "" {
		return nil
	}
	if numeric {
		if v, err := strconv.ParseFloat(cell, 64); err == nil {
			return v
		}
	}
	return cell
}
