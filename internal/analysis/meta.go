package analysis

import (
	"math"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"stockboard/domain/dataset"
	"stockboard/internal/errors"
)

// Listing file columns.
const (
	ColListingExchange = "Listing Exchange"
	ColMarketCategory  = "Market Category"
	ColETF             = "ETF"
	ColRoundLotSize    = "Round Lot Size"
	ColFinancialStatus = "Financial Status"
	ColTestIssue       = "Test Issue"
	ColMarketCap       = "Market Cap"
	ColSector          = "Sector"
	ColCount           = "Count"
	ColRoundLotRange   = "Round Lot Size Range"
)

// ScatterLimit caps the points of the symbol scatter.
const ScatterLimit = 500

// TopRoundLotSize is how many symbols the top round lot list keeps.
const TopRoundLotSize = 10

// roundLotBins are the buckets of the round lot distribution. Upper bounds
// are inclusive.
var roundLotBins = []struct {
	Label string
	Upper float64
}{
	{"1-99", 99},
	{"100", 100},
	{"101-1000", 1000},
	{"1001+", math.Inf(1)},
}

// MetaKPIs computes the listing summary tiles. A KPI whose source column is
// absent is left nil and encodes as N/A.
func MetaKPIs(f *dataset.Frame) (*dataset.MetaKPIs, error) {
	if !f.HasColumns(ColSymbol) && !f.HasColumns(ColListingExchange) && !f.HasColumns(ColETF) {
		return nil, errors.InvalidInput("Dataset has no listing columns")
	}
	k := &dataset.MetaKPIs{}
	if f.HasColumns(ColSymbol) {
		k.UniqueStocks = float64(len(ValueCounts(f.Column(ColSymbol))))
	}
	if f.HasColumns(ColListingExchange) {
		k.ExchangeDistribution = dataset.Row{}
		for _, c := range ValueCounts(f.Column(ColListingExchange)) {
			k.ExchangeDistribution = append(k.ExchangeDistribution, dataset.Field{Key: c.Value, Value: float64(c.N)})
		}
	}
	if f.HasColumns(ColETF) {
		etf, total := etfCounts(f)
		k.ETFCount = float64(etf)
		k.ETFSplit = etfSplit(etf, total)
	}
	return k, nil
}

func etfCounts(f *dataset.Frame) (etf, total int) {
	for _, c := range f.Column(ColETF) {
		if c == "" {
			continue
		}
		total++
		if strings.EqualFold(c, "Y") {
			etf++
		}
	}
	return etf, total
}

func etfSplit(etf, total int) *dataset.ETFSplit {
	if total == 0 {
		return &dataset.ETFSplit{}
	}
	pct := float64(etf) / float64(total) * 100
	e, _ := stats.Round(pct, 2)
	n, _ := stats.Round(100-pct, 2)
	return &dataset.ETFSplit{ETF: e, NonETF: n}
}

// MetaCharts computes the exchange bar, market category pie and symbol
// scatter. Each is omitted when its columns are missing.
func MetaCharts(f *dataset.Frame) (*dataset.MetaCharts, error) {
	c := &dataset.MetaCharts{}
	if f.HasColumns(ColListingExchange) {
		c.ExchangeBar = countRows(f.Column(ColListingExchange), ColListingExchange)
	}
	if f.HasColumns(ColMarketCategory) {
		c.MarketCategoryPie = countRows(f.Column(ColMarketCategory), ColMarketCategory)
	}
	if f.HasColumns(ColSymbol, ColRoundLotSize) {
		c.Scatter = symbolRows(f, ScatterLimit)
	}
	return c, nil
}

// MetaAdvanced computes every advanced section the columns allow.
func MetaAdvanced(f *dataset.Frame) (*dataset.MetaAdvanced, error) {
	adv := &dataset.MetaAdvanced{}

	if f.HasColumns(ColETF) {
		etf, total := etfCounts(f)
		split := etfSplit(etf, total)
		adv.ETFPercentages = dataset.Row{
			{Key: "ETF Percentage", Value: split.ETF},
			{Key: "Non-ETF Percentage", Value: split.NonETF},
		}
	}

	if f.HasColumns(ColSymbol, ColRoundLotSize) {
		rows := symbolRows(f, -1)
		sort.SliceStable(rows, func(a, b int) bool {
			x, _ := rows[a].Float(ColRoundLotSize)
			y, _ := rows[b].Float(ColRoundLotSize)
			return x > y
		})
		adv.TopRoundLot = rows.Head(TopRoundLotSize)
	}

	if f.HasColumns(ColFinancialStatus) {
		adv.FinancialStatus = labelledCounts(f.Column(ColFinancialStatus), ColFinancialStatus)
	}
	if f.HasColumns(ColTestIssue) {
		adv.TestIssue = labelledCounts(f.Column(ColTestIssue), ColTestIssue)
	}
	if f.HasColumns(ColRoundLotSize) {
		adv.RoundLotDistribution = roundLotDistribution(floatsAt(f, ColRoundLotSize))
	}
	if f.HasColumns(ColMarketCap) {
		if caps := marketCapStats(Present(floatsAt(f, ColMarketCap))); caps != nil {
			adv.MarketCapStats = caps
		}
	}
	if f.HasColumns(ColSector) {
		dist := dataset.Row{}
		for _, c := range ValueCounts(f.Column(ColSector)) {
			dist = append(dist, dataset.Field{Key: c.Value, Value: float64(c.N)})
		}
		adv.SectorDistribution = dist
	}
	return adv, nil
}

// countRows renders value counts as {col, Count} rows.
func countRows(cells []string, col string) dataset.Series {
	rows := dataset.Series{}
	for _, c := range ValueCounts(cells) {
		rows = append(rows, dataset.Row{{Key: col, Value: c.Value}, {Key: ColCount, Value: float64(c.N)}})
	}
	return rows
}

// labelledCounts renders value counts as {Count, col} rows.
func labelledCounts(cells []string, col string) dataset.Series {
	rows := dataset.Series{}
	for _, c := range ValueCounts(cells) {
		rows = append(rows, dataset.Row{{Key: ColCount, Value: float64(c.N)}, {Key: col, Value: c.Value}})
	}
	return rows
}

// symbolRows returns {Symbol, Round Lot Size} rows with a numeric size,
// capped at limit when limit >= 0.
func symbolRows(f *dataset.Frame, limit int) dataset.Series {
	sizes := floatsAt(f, ColRoundLotSize)
	rows := dataset.Series{}
	for i := 0; i < f.Len(); i++ {
		if limit >= 0 && len(rows) >= limit {
			break
		}
		if math.IsNaN(sizes[i]) {
			continue
		}
		rows = append(rows, dataset.Row{
			{Key: ColSymbol, Value: f.Cell(i, ColSymbol)},
			{Key: ColRoundLotSize, Value: sizes[i]},
		})
	}
	return rows
}

func roundLotDistribution(sizes []float64) dataset.Series {
	counts := make([]int, len(roundLotBins))
	for _, s := range sizes {
		if math.IsNaN(s) {
			continue
		}
		for i, bin := range roundLotBins {
			if s <= bin.Upper {
				counts[i]++
				break
			}
		}
	}
	rows := dataset.Series{}
	for i, bin := range roundLotBins {
		if counts[i] == 0 {
			continue
		}
		rows = append(rows, dataset.Row{{Key: ColRoundLotRange, Value: bin.Label}, {Key: ColCount, Value: float64(counts[i])}})
	}
	return rows
}

func marketCapStats(caps []float64) dataset.Row {
	if len(caps) == 0 {
		return nil
	}
	m, _ := stats.Mean(caps)
	med, _ := stats.Median(caps)
	lo, _ := stats.Min(caps)
	hi, _ := stats.Max(caps)
	return dataset.Row{
		{Key: "Mean", Value: Round(m, 2)},
		{Key: "Median", Value: Round(med, 2)},
		{Key: "Min", Value: lo},
		{Key: "Max", Value: hi},
	}
}
