package view

import (
	"stockboard/domain/dataset"
	"stockboard/domain/session"
)

// CleanupTable is the column-removal grid of the meta cleanup modal.
type CleanupTable struct {
	Columns []string
	Rows    [][]string
	Removed []string
}

// BuildCleanupTable lays out the given preview rows. Columns are the
// first-row keys minus the hidden ones.
func BuildCleanupTable(preview dataset.Rows, hidden func(string) bool) CleanupTable {
	var t CleanupTable
	for _, col := range preview.Columns() {
		if hidden(col) {
			t.Removed = append(t.Removed, col)
			continue
		}
		t.Columns = append(t.Columns, col)
	}
	for _, row := range preview {
		cells := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			cells[i] = row.Text(col)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// CleanupFor builds the modal grid for a session.
func CleanupFor(s *session.Session) CleanupTable {
	return BuildCleanupTable(s.CleanupPreview(), s.Removed.Has)
}
