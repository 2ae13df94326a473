package charts

import (
	"github.com/go-echarts/go-echarts/v2/opts"

	"stockboard/domain/dataset"
)

// missing is how ECharts marks an absent point in a series.
const missing = "-"

// SymbolField is the x field that scatter plots replace with the row index.
const SymbolField = "Symbol"

// AxisLabels returns the display form of field for every row.
func AxisLabels(rows dataset.Rows, field string) []string {
	labels := make([]string, len(rows))
	for i, row := range rows {
		labels[i] = row.Text(field)
	}
	return labels
}

// Values returns field for every row as a number, or the missing marker.
func Values(rows dataset.Rows, field string) []interface{} {
	values := make([]interface{}, len(rows))
	for i, row := range rows {
		if v, ok := row.Float(field); ok {
			values[i] = v
		} else {
			values[i] = missing
		}
	}
	return values
}

func lineData(values []interface{}) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		data[i] = opts.LineData{Value: v}
	}
	return data
}

func barData(values []interface{}) []opts.BarData {
	data := make([]opts.BarData, len(values))
	for i, v := range values {
		data[i] = opts.BarData{Value: v}
	}
	return data
}

// PieSlices pairs each row's name field with its value field. Rows without
// a numeric value are skipped.
func PieSlices(rows dataset.Rows, nameField, valueField string) []opts.PieData {
	slices := make([]opts.PieData, 0, len(rows))
	for _, row := range rows {
		v, ok := row.Float(valueField)
		if !ok {
			continue
		}
		slices = append(slices, opts.PieData{Name: row.Text(nameField), Value: v})
	}
	return slices
}

// ScatterPoints builds [x, y] points. When xField is Symbol the x value is
// the row index and the symbol travels as the point name, so tooltips can
// show it.
func ScatterPoints(rows dataset.Rows, xField, yField string) []opts.ScatterData {
	points := make([]opts.ScatterData, 0, len(rows))
	for i, row := range rows {
		y, ok := row.Float(yField)
		if !ok {
			continue
		}
		if xField == SymbolField {
			points = append(points, opts.ScatterData{Name: SymbolAt(rows, i), Value: []interface{}{i, y}})
			continue
		}
		x, ok := row.Float(xField)
		if !ok {
			continue
		}
		points = append(points, opts.ScatterData{Name: row.Text(xField), Value: []interface{}{x, y}})
	}
	return points
}

// SymbolAt restores the symbol for a scatter x index.
func SymbolAt(rows dataset.Rows, index int) string {
	if index < 0 || index >= len(rows) {
		return "Unknown"
	}
	return rows[index].Text(SymbolField)
}

// CorrelationMatrix rebuilds a symmetric square matrix from pairwise cells.
// Labels are the column names in first-seen order; pairs never listed stay 0.
func CorrelationMatrix(cells []dataset.CorrelationCell) ([]string, [][]float64) {
	index := make(map[string]int)
	var labels []string
	add := func(name string) {
		if _, ok := index[name]; !ok {
			index[name] = len(labels)
			labels = append(labels, name)
		}
	}
	for _, c := range cells {
		add(c.Column1)
		add(c.Column2)
	}

	matrix := make([][]float64, len(labels))
	for i := range matrix {
		matrix[i] = make([]float64, len(labels))
	}
	for _, c := range cells {
		i, j := index[c.Column1], index[c.Column2]
		matrix[i][j] = c.Correlation
		matrix[j][i] = c.Correlation
	}
	return labels, matrix
}

func heatmapData(matrix [][]float64) []opts.HeatMapData {
	var data []opts.HeatMapData
	for y, row := range matrix {
		for x, v := range row {
			data = append(data, opts.HeatMapData{Value: [3]interface{}{x, y, v}})
		}
	}
	return data
}
