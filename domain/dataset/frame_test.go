package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleFrame() *Frame {
	return &Frame{
		Name:    "prices.csv",
		Headers: []string{"Date", "Close", "Symbol"},
		Records: [][]string{
			{"2024-01-02", "10.5", "AAPL"},
			{"2024-01-03", "", "AAPL"},
			{"2024-01-04", "11", "MSFT"},
		},
	}
}

func TestFrameColumns(t *testing.T) {
	f := sampleFrame()

	assert.Equal(t, 3, f.Len())
	assert.True(t, f.HasColumns("Date", "Close"))
	assert.False(t, f.HasColumns("Close", "Volume"))
	assert.Equal(t, []string{"Close"}, f.NumericColumns())
	assert.Equal(t, "MSFT", f.Cell(2, "Symbol"))
	assert.Equal(t, "", f.Cell(9, "Symbol"))
}

func TestFrameRowsTyped(t *testing.T) {
	rows := sampleFrame().Rows(2)

	assert.Len(t, rows, 2)
	assert.Equal(t, []string{"Date", "Close", "Symbol"}, rows.Columns())
	v, _ := rows[0].Get("Close")
	assert.Equal(t, 10.5, v)
	v, _ = rows[1].Get("Close")
	assert.Nil(t, v)
	v, _ = rows[0].Get("Date")
	assert.Equal(t, "2024-01-02", v)
}

