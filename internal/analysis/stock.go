package analysis

import (
	"math"
	"sort"
	"strconv"
	"time"

	"stockboard/domain/dataset"
	"stockboard/internal/errors"
)

// Column names of a price file.
const (
	ColDate   = "Date"
	ColOpen   = "Open"
	ColHigh   = "High"
	ColLow    = "Low"
	ColClose  = "Close"
	ColVolume = "Volume"
	ColSymbol = "Symbol"
)

// Derived column names.
const (
	ColDailyReturn       = "Daily_Return"
	ColCumulativeReturn  = "Cumulative_Return"
	ColRollingVolatility = "Rolling_Volatility"
	ColMA20              = "MA20"
	ColMA50              = "MA50"
)

// Metric names.
const (
	MetricAverageReturn = "Average Daily Return"
	MetricVolatility    = "Volatility"
	MetricSharpe        = "Sharpe Ratio"
	MetricVaR95         = "VaR (95%)"
)

// HistLimit caps the raw returns list sent for histograms.
const HistLimit = 500

var priceColumns = []string{ColDate, ColOpen, ColHigh, ColLow, ColClose, ColVolume, ColDailyReturn}

// priceTable is a frame sorted by date with parsed dates and closes.
type priceTable struct {
	frame *dataset.Frame
	order []int
	dates []time.Time
	valid []bool
	close []float64
}

// sortPrices orders rows by date. Rows whose date does not parse go last in
// their original order. A frame without a Date column keeps its order.
func sortPrices(f *dataset.Frame) *priceTable {
	n := f.Len()
	t := &priceTable{
		frame: f,
		order: make([]int, n),
		dates: make([]time.Time, n),
		valid: make([]bool, n),
		close: make([]float64, n),
	}
	hasDate := f.Index(ColDate) >= 0
	for i := 0; i < n; i++ {
		t.order[i] = i
		if hasDate {
			t.dates[i], t.valid[i] = ParseDate(f.Cell(i, ColDate))
		}
	}
	if hasDate {
		sort.SliceStable(t.order, func(a, b int) bool {
			ia, ib := t.order[a], t.order[b]
			if t.valid[ia] != t.valid[ib] {
				return t.valid[ia]
			}
			return t.valid[ia] && t.dates[ia].Before(t.dates[ib])
		})
	}
	closes := floatsAt(f, ColClose)
	for k, i := range t.order {
		t.close[k] = closes[i]
	}
	return t
}

// dateAt returns the formatted date of the k-th sorted row.
func (t *priceTable) dateAt(k int) (string, bool) {
	i := t.order[k]
	if !t.valid[i] {
		return "", false
	}
	return t.dates[i].Format(DateLayout), true
}

// column returns a numeric column in sorted order.
func (t *priceTable) column(col string) []float64 {
	raw := floatsAt(t.frame, col)
	out := make([]float64, len(t.order))
	for k, i := range t.order {
		out[k] = raw[i]
	}
	return out
}

// floatsAt parses col positionally; cells that do not parse are NaN.
func floatsAt(f *dataset.Frame, col string) []float64 {
	cells := f.Column(col)
	out := make([]float64, f.Len())
	for i := range out {
		out[i] = math.NaN()
		if i < len(cells) {
			if v, err := strconv.ParseFloat(cells[i], 64); err == nil {
				out[i] = v
			}
		}
	}
	return out
}

// dated builds {Date, field...} rows for sorted positions where the date
// parses and every value is present.
func (t *priceTable) dated(fields []string, values ...[]float64) dataset.Series {
	rows := dataset.Series{}
	for k := range t.order {
		date, ok := t.dateAt(k)
		if !ok {
			continue
		}
		row := dataset.Row{{Key: ColDate, Value: date}}
		complete := true
		for j, v := range values {
			if math.IsNaN(v[k]) {
				complete = false
				break
			}
			row = append(row, dataset.Field{Key: fields[j], Value: v[k]})
		}
		if complete {
			rows = append(rows, row)
		}
	}
	return rows
}

// Metrics computes the stock KPIs. rf is the annual risk-free rate.
func Metrics(f *dataset.Frame, rf float64) (dataset.StockMetrics, error) {
	if !f.HasColumns(ColClose) {
		return nil, errors.InvalidInput("CSV has no 'Close' column, cannot compute returns")
	}
	t := sortPrices(f)
	returns := Present(PctChange(t.close))

	avg, vol, var95 := math.NaN(), math.NaN(), math.NaN()
	if len(returns) > 0 {
		avg = mean(returns)
		var95 = Quantile(returns, 0.05)
	}
	if len(returns) > 1 {
		vol = sampleStd(returns)
	}
	sharpe := math.NaN()
	if !math.IsNaN(vol) && vol != 0 {
		sharpe = (avg - rf/TradingDays) / vol
	}

	return dataset.StockMetrics{
		{Key: MetricAverageReturn, Value: Round(avg, 6)},
		{Key: MetricVolatility, Value: Round(vol, 6)},
		{Key: MetricSharpe, Value: Round(sharpe, 3)},
		{Key: MetricVaR95, Value: Round(var95, 4)},
	}, nil
}

// Charts computes the price, moving average and rolling volatility series,
// plus the correlation of the numeric columns.
func Charts(f *dataset.Frame) (*dataset.StockCharts, error) {
	if !f.HasColumns(ColDate, ColClose) {
		return nil, errors.InvalidInput("Dataset missing required columns")
	}
	t := sortPrices(f)
	ma20 := RollingMean(t.close, ShortWindow)
	ma50 := RollingMean(t.close, LongWindow)
	vol := RollingStd(PctChange(t.close), ShortWindow)

	return &dataset.StockCharts{
		PriceChart:  t.dated([]string{ColClose}, t.close),
		MAChart:     t.dated([]string{ColClose, ColMA20, ColMA50}, t.close, ma20, ma50),
		Volatility:  t.dated([]string{ColRollingVolatility}, vol),
		Correlation: Correlation(f),
	}, nil
}

// Returns computes the returns histogram, cumulative return and 30-row
// rolling volatility.
func Returns(f *dataset.Frame) (*dataset.StockReturns, error) {
	if !f.HasColumns(ColDate, ColClose) {
		return nil, errors.InvalidInput("Need Date and Close columns")
	}
	t := sortPrices(f)
	daily := PctChange(t.close)

	hist := Present(daily)
	if len(hist) > HistLimit {
		hist = hist[:HistLimit]
	}
	return &dataset.StockReturns{
		Hist:       hist,
		Cumulative: t.dated([]string{ColCumulativeReturn}, CumulativeReturn(daily)),
		Volatility: t.dated([]string{ColRollingVolatility}, RollingStd(daily, ReturnsVolWindow)),
	}, nil
}

// Prices returns the price-like columns in date order, with dates
// normalized and the daily return added when Close exists.
func Prices(f *dataset.Frame) (dataset.Rows, error) {
	var cols []string
	for _, c := range priceColumns {
		if f.HasColumns(c) || (c == ColDailyReturn && f.HasColumns(ColClose)) {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return nil, errors.InvalidInput("No price-like columns found")
	}

	t := sortPrices(f)
	numbers := map[string][]float64{}
	for _, c := range cols {
		switch c {
		case ColDate:
		case ColDailyReturn:
			numbers[c] = PctChange(t.close)
		default:
			numbers[c] = t.column(c)
		}
	}

	rows := make(dataset.Rows, 0, len(t.order))
	for k, i := range t.order {
		row := make(dataset.Row, 0, len(cols))
		for _, c := range cols {
			if c == ColDate {
				date, ok := t.dateAt(k)
				if !ok {
					date = f.Cell(i, ColDate)
				}
				row = append(row, dataset.Field{Key: c, Value: date})
				continue
			}
			var v interface{}
			if x := numbers[c][k]; !math.IsNaN(x) {
				v = x
			}
			row = append(row, dataset.Field{Key: c, Value: v})
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Correlation returns the Pearson correlation of every pair of numeric
// columns, diagonal included. Fewer than two numeric columns yield nil.
func Correlation(f *dataset.Frame) []dataset.CorrelationCell {
	cols := f.NumericColumns()
	if len(cols) < 2 {
		return nil
	}
	values := make([][]float64, len(cols))
	for i, c := range cols {
		values[i] = floatsAt(f, c)
	}

	var cells []dataset.CorrelationCell
	for i := range cols {
		for j := range cols {
			r := 1.0
			if i != j {
				r = Correlate(values[i], values[j])
			}
			if math.IsNaN(r) {
				continue
			}
			rounded, _ := Round(r, 4).(float64)
			cells = append(cells, dataset.CorrelationCell{Column1: cols[i], Column2: cols[j], Correlation: rounded})
		}
	}
	return cells
}
