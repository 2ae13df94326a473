package view

import (
	"strings"
	"sync"

	"stockboard/domain/dataset"
)

// PageSize is the number of rows per overview table page.
const PageSize = 5

// Table is one rendered page of a searchable table.
type Table struct {
	ID       string
	Columns  []string
	Rows     [][]string
	Query    string
	Page     int
	Pages    int
	Total    int
	Filtered int
}

// HasPrev reports whether a previous page exists.
func (t Table) HasPrev() bool { return t.Page > 1 }

// HasNext reports whether a next page exists.
func (t Table) HasNext() bool { return t.Page < t.Pages }

// PrevPage is the previous page number.
func (t Table) PrevPage() int { return t.Page - 1 }

// NextPage is the next page number.
func (t Table) NextPage() int { return t.Page + 1 }

// Empty reports whether there is nothing to show.
func (t Table) Empty() bool { return len(t.Columns) == 0 }

// BuildTable filters rows by a case-insensitive substring match over every
// cell and slices out the requested page. Columns come from the first row.
// Pages are 1-based and clamped into range.
func BuildTable(id string, rows dataset.Rows, query string, page int) Table {
	columns := rows.Columns()
	t := Table{ID: id, Columns: columns, Query: query, Total: len(rows)}

	needle := strings.ToLower(strings.TrimSpace(query))
	var matched [][]string
	for _, row := range rows {
		cells := make([]string, len(columns))
		hit := needle == ""
		for i, col := range columns {
			cells[i] = row.Text(col)
			if !hit && strings.Contains(strings.ToLower(cells[i]), needle) {
				hit = true
			}
		}
		if hit {
			matched = append(matched, cells)
		}
	}
	t.Filtered = len(matched)

	t.Pages = (len(matched) + PageSize - 1) / PageSize
	if t.Pages == 0 {
		t.Pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > t.Pages {
		page = t.Pages
	}
	t.Page = page

	start := (page - 1) * PageSize
	end := start + PageSize
	if end > len(matched) {
		end = len(matched)
	}
	if start < end {
		t.Rows = matched[start:end]
	}
	return t
}

// TableMounts remembers which rows each table container currently shows.
// Mounting into a container replaces whatever it held.
type TableMounts struct {
	mu     sync.RWMutex
	tables map[string]dataset.Rows
}

// NewTableMounts creates an empty set of table containers.
func NewTableMounts() *TableMounts {
	return &TableMounts{tables: make(map[string]dataset.Rows)}
}

// Mount binds rows to a container and reports whether something was replaced.
func (m *TableMounts) Mount(container string, rows dataset.Rows) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, replaced := m.tables[container]
	m.tables[container] = rows
	return replaced
}

// Render builds the requested page of the container's table.
func (m *TableMounts) Render(container, query string, page int) (Table, bool) {
	m.mu.RLock()
	rows, ok := m.tables[container]
	m.mu.RUnlock()
	if !ok {
		return Table{ID: container, Page: 1, Pages: 1}, false
	}
	return BuildTable(container, rows, query, page), true
}

// Clear removes every mounted table.
func (m *TableMounts) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables = make(map[string]dataset.Rows)
}
