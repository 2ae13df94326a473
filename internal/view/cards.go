// Package view shapes session and backend data into the structures the
// dashboard templates render. Nothing here performs I/O.
package view

import (
	"fmt"
	"strconv"

	"stockboard/domain/dataset"
)

// Placeholder text shown before a KPI arrives.
const Loading = "Loading..."

// Meta KPI card labels, in display order.
const (
	LabelUniqueStocks         = "Unique Stocks on NASDAQ"
	LabelExchangeDistribution = "Exchange Distribution"
	LabelETFCount             = "ETF Count"
	LabelETFSplit             = "ETF vs Non-ETF"
)

// KPICard is one value/label tile.
type KPICard struct {
	Label string
	Value string
}

// FormatKPI renders a KPI value. Missing values and the backend's N/A
// marker render as N/A; zero is a real value.
func FormatKPI(v interface{}) string {
	if v == nil {
		return dataset.NotAvailable
	}
	if s, ok := v.(string); ok && s == "" {
		return dataset.NotAvailable
	}
	return dataset.FormatValue(v)
}

// StockSummaryCards are the Rows / Columns / Date Range tiles.
func StockSummaryCards(s dataset.Summary) []KPICard {
	return []KPICard{
		{Label: "Rows", Value: strconv.Itoa(s.Rows)},
		{Label: "Columns", Value: strconv.Itoa(s.Cols)},
		{Label: "Date Range", Value: s.DateRange()},
	}
}

// RowCards renders one tile per key in document order. Used for upload
// extras and stock metrics.
func RowCards(row dataset.Row) []KPICard {
	cards := make([]KPICard, 0, len(row))
	for _, f := range row {
		cards = append(cards, KPICard{Label: f.Key, Value: FormatKPI(f.Value)})
	}
	return cards
}

// MetaPlaceholderCards are the four meta tiles before the KPI fetch lands.
func MetaPlaceholderCards() []KPICard {
	return []KPICard{
		{Label: LabelUniqueStocks, Value: Loading},
		{Label: LabelExchangeDistribution, Value: Loading},
		{Label: LabelETFCount, Value: Loading},
		{Label: LabelETFSplit, Value: Loading},
	}
}

// MetaKPICards back-fills the four meta tiles. Exchange Distribution shows
// the number of distinct exchanges.
func MetaKPICards(k *dataset.MetaKPIs) []KPICard {
	if k == nil {
		k = &dataset.MetaKPIs{}
	}

	exchanges := dataset.NotAvailable
	if k.ExchangeDistribution != nil {
		exchanges = strconv.Itoa(len(k.ExchangeDistribution))
	}

	split := dataset.NotAvailable
	if k.ETFSplit != nil {
		split = fmt.Sprintf("%s%% / %s%%",
			dataset.FormatValue(k.ETFSplit.ETF), dataset.FormatValue(k.ETFSplit.NonETF))
	}

	return []KPICard{
		{Label: LabelUniqueStocks, Value: FormatKPI(k.UniqueStocks)},
		{Label: LabelExchangeDistribution, Value: exchanges},
		{Label: LabelETFCount, Value: FormatKPI(k.ETFCount)},
		{Label: LabelETFSplit, Value: split},
	}
}

// CountCards renders one tile per row: the value of countField labelled by
// labelField, or Unknown when the label is blank.
func CountCards(rows dataset.Rows, labelField, countField string) []KPICard {
	cards := make([]KPICard, 0, len(rows))
	for _, row := range rows {
		label := row.Text(labelField)
		if label == "" {
			label = "Unknown"
		}
		v, _ := row.Get(countField)
		cards = append(cards, KPICard{Label: label, Value: FormatKPI(v)})
	}
	return cards
}
