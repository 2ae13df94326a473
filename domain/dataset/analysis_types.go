// Package dataset holds the payloads exchanged with the analysis backend:
// ordered rows, upload envelopes, and the stock and meta analysis results.
package dataset

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// NotAvailable is the backend's marker for a KPI it could not compute.
const NotAvailable = "N/A"

// StockMetrics is the flat metric mapping of /analyze/{token}/metrics.
// Keys keep document order so the KPI cards follow the backend's order.
type StockMetrics = Row

// StockCharts is the payload of /analyze/{token}/charts.
type StockCharts struct {
	PriceChart  Series            `json:"price_chart"`
	MAChart     Series            `json:"ma_chart"`
	Volatility  Series            `json:"volatility"`
	Correlation []CorrelationCell `json:"correlation,omitempty"`
}

// CorrelationCell is one entry of a pairwise correlation listing.
type CorrelationCell struct {
	Column1     string  `json:"Column1"`
	Column2     string  `json:"Column2"`
	Correlation float64 `json:"Correlation"`
}

// StockReturns is the payload of /analyze/{token}/returns.
type StockReturns struct {
	Hist       []float64 `json:"hist"`
	Cumulative Series    `json:"cumulative"`
	Volatility Series    `json:"volatility"`
}

// MetaCharts is the payload of /analyze-meta/{token}/charts. Every series
// is optional.
type MetaCharts struct {
	ExchangeBar       Series `json:"exchange_bar,omitempty"`
	MarketCategoryPie Series `json:"market_category_pie,omitempty"`
	Scatter           Series `json:"scatter,omitempty"`
}

// Backend keys of the meta KPI payload.
const (
	KPIUniqueStocks         = "Unique Stocks"
	KPIExchangeDistribution = "Exchange Distribution"
	KPIETFCount             = "ETF Count"
	KPIETFSplit             = "ETF vs Non-ETF"
)

// MetaKPIs is the payload of /analyze-meta/{token}/kpis. A nil field means
// the backend omitted it or reported "N/A".
type MetaKPIs struct {
	UniqueStocks         interface{}
	ExchangeDistribution Row
	ETFCount             interface{}
	ETFSplit             *ETFSplit
}

// ETFSplit is the ETF vs Non-ETF percentage pair.
type ETFSplit struct {
	ETF    float64 `json:"ETF Percentage"`
	NonETF float64 `json:"Non-ETF Percentage"`
}

// UnmarshalJSON probes each KPI independently so one malformed entry does
// not hide the others.
func (k *MetaKPIs) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid meta KPI payload")
	}
	res := gjson.ParseBytes(data)
	*k = MetaKPIs{
		UniqueStocks: scalarKPI(res.Get(KPIUniqueStocks)),
		ETFCount:     scalarKPI(res.Get(KPIETFCount)),
	}
	if dist := res.Get(KPIExchangeDistribution); dist.IsObject() {
		k.ExchangeDistribution = RowFromResult(dist)
	}
	if split := res.Get(KPIETFSplit); split.IsObject() {
		k.ETFSplit = &ETFSplit{
			ETF:    split.Get("ETF Percentage").Float(),
			NonETF: split.Get("Non-ETF Percentage").Float(),
		}
	}
	return nil
}

// MarshalJSON writes the KPIs back in the backend's key layout.
func (k MetaKPIs) MarshalJSON() ([]byte, error) {
	out := Row{
		{Key: KPIUniqueStocks, Value: orNotAvailable(k.UniqueStocks)},
		{Key: KPIExchangeDistribution, Value: NotAvailable},
		{Key: KPIETFCount, Value: orNotAvailable(k.ETFCount)},
		{Key: KPIETFSplit, Value: NotAvailable},
	}
	if k.ExchangeDistribution != nil {
		out.Set(KPIExchangeDistribution, k.ExchangeDistribution)
	}
	if k.ETFSplit != nil {
		out.Set(KPIETFSplit, *k.ETFSplit)
	}
	return out.MarshalJSON()
}

func scalarKPI(v gjson.Result) interface{} {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	if v.Type == gjson.String && v.String() == NotAvailable {
		return nil
	}
	return valueOf(v)
}

func orNotAvailable(v interface{}) interface{} {
	if v == nil {
		return NotAvailable
	}
	return v
}

// Backend keys of the advanced meta payload.
const (
	AdvancedETFPercentages       = "etf_percentages"
	AdvancedTopRoundLot          = "top_round_lot"
	AdvancedFinancialStatus      = "financial_status"
	AdvancedMarketCapStats       = "market_cap_stats"
	AdvancedTestIssue            = "test_issue"
	AdvancedRoundLotDistribution = "round_lot_distribution"
	AdvancedSectorDistribution   = "sector_distribution"
)

// MetaAdvanced is the payload of /analyze-meta/{token}/advanced. Each
// section is optional; nil means absent.
type MetaAdvanced struct {
	ETFPercentages       Row
	TopRoundLot          Series
	FinancialStatus      Series
	TestIssue            Series
	RoundLotDistribution Series

	// Sections with no fixed shape are kept as decoded JSON values.
	MarketCapStats     interface{}
	SectorDistribution interface{}

	// Unknown lists keys the dashboard does not render, in document order.
	Unknown []string
	// Invalid maps a section key to the reason it could not be decoded.
	// Such sections stay nil; the others are kept.
	Invalid map[string]error
}

// UnmarshalJSON decodes the sections that are present and records the rest.
// A badly shaped section is noted in Invalid and does not fail the payload.
func (m *MetaAdvanced) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid advanced meta payload")
	}
	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return fmt.Errorf("expected JSON object for advanced meta, got %s", res.Type)
	}

	*m = MetaAdvanced{}
	res.ForEach(func(key, value gjson.Result) bool {
		if value.Type == gjson.Null {
			return true
		}
		var err error
		switch key.String() {
		case AdvancedETFPercentages:
			m.ETFPercentages, err = objectRow(value)
		case AdvancedTopRoundLot:
			err = json.Unmarshal([]byte(value.Raw), &m.TopRoundLot)
		case AdvancedFinancialStatus:
			err = json.Unmarshal([]byte(value.Raw), &m.FinancialStatus)
		case AdvancedMarketCapStats:
			m.MarketCapStats = valueOf(value)
		case AdvancedTestIssue:
			err = json.Unmarshal([]byte(value.Raw), &m.TestIssue)
		case AdvancedRoundLotDistribution:
			err = json.Unmarshal([]byte(value.Raw), &m.RoundLotDistribution)
		case AdvancedSectorDistribution:
			m.SectorDistribution = valueOf(value)
		default:
			m.Unknown = append(m.Unknown, key.String())
		}
		if err != nil {
			m.drop(key.String(), err)
		}
		return true
	})
	return nil
}

func (m *MetaAdvanced) drop(key string, err error) {
	switch key {
	case AdvancedETFPercentages:
		m.ETFPercentages = nil
	case AdvancedTopRoundLot:
		m.TopRoundLot = nil
	case AdvancedFinancialStatus:
		m.FinancialStatus = nil
	case AdvancedTestIssue:
		m.TestIssue = nil
	case AdvancedRoundLotDistribution:
		m.RoundLotDistribution = nil
	}
	if m.Invalid == nil {
		m.Invalid = make(map[string]error)
	}
	m.Invalid[key] = err
}

// MarshalJSON emits only the sections that are present.
func (m MetaAdvanced) MarshalJSON() ([]byte, error) {
	out := Row{}
	if m.ETFPercentages != nil {
		out.Set(AdvancedETFPercentages, m.ETFPercentages)
	}
	if m.TopRoundLot != nil {
		out.Set(AdvancedTopRoundLot, m.TopRoundLot)
	}
	if m.FinancialStatus != nil {
		out.Set(AdvancedFinancialStatus, m.FinancialStatus)
	}
	if m.MarketCapStats != nil {
		out.Set(AdvancedMarketCapStats, m.MarketCapStats)
	}
	if m.TestIssue != nil {
		out.Set(AdvancedTestIssue, m.TestIssue)
	}
	if m.RoundLotDistribution != nil {
		out.Set(AdvancedRoundLotDistribution, m.RoundLotDistribution)
	}
	if m.SectorDistribution != nil {
		out.Set(AdvancedSectorDistribution, m.SectorDistribution)
	}
	return out.MarshalJSON()
}

func objectRow(v gjson.Result) (Row, error) {
	if !v.IsObject() {
		return nil, fmt.Errorf("expected object, got %s", v.Type)
	}
	return RowFromResult(v), nil
}
