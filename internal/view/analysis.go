package view

import (
	"stockboard/domain/dataset"
	"stockboard/domain/session"
	"stockboard/internal/charts"
)

// Field names of the advanced meta payload rows.
const (
	FieldStatus          = "Status"
	FieldPercentage      = "Percentage"
	FieldRoundLotSize    = "Round Lot Size"
	FieldRoundLotRange   = "Round Lot Size Range"
	FieldCount           = "Count"
	FieldFinancialStatus = "Financial Status"
	FieldTestIssue       = "Test Issue"
)

// TopRoundLotLimit caps the top round lot bar.
const TopRoundLotLimit = 10

// Overview is the data panel shown after an upload or a cleanup decision.
type Overview struct {
	Kind    session.FileKind
	Summary []KPICard
	Extra   []KPICard
	Table   Table
}

// Stock reports whether the overview belongs to a stock file.
func (o Overview) Stock() bool { return o.Kind == session.KindStock }

// OverviewTableID is the container the overview table mounts into.
const OverviewTableID = "overviewTable"

// BuildOverview renders the overview for a session. Stock files get the
// summary and extra tiles; meta files get the placeholder tiles that the
// KPI fetch back-fills.
func BuildOverview(s *session.Session, table Table) Overview {
	o := Overview{Kind: s.Kind, Table: table}
	switch s.Kind {
	case session.KindStock:
		o.Summary = StockSummaryCards(s.Upload.Summary)
		o.Extra = RowCards(s.Upload.Extra)
	case session.KindMeta:
		o.Summary = MetaPlaceholderCards()
	}
	return o
}

// ChartFrame is one chart slot on an analysis panel.
type ChartFrame struct {
	Mount string
	Title string
}

// StockAnalysis is the stock panel content.
type StockAnalysis struct {
	Metrics []KPICard
	Charts  []ChartFrame
	Notes   []string
}

// MetaAnalysis is the meta panel content.
type MetaAnalysis struct {
	Charts   []ChartFrame
	Advanced []AdvancedSection
	Notes    []string
}

// BarPlan is a bar chart the advanced section wants drawn.
type BarPlan struct {
	Mount  string
	Title  string
	XField string
	YField string
	Rows   dataset.Rows
}

// AdvancedSection is one block of the advanced meta panel. It carries
// either a chart or a list of count cards.
type AdvancedSection struct {
	Title string
	Bar   *BarPlan
	Cards []KPICard
}

// Chart returns the frame for a section's bar, or nil for a card section.
func (s AdvancedSection) Chart() *ChartFrame {
	if s.Bar == nil {
		return nil
	}
	return &ChartFrame{Mount: s.Bar.Mount, Title: s.Bar.Title}
}

// PlanAdvanced decides which advanced sections to show. Every section is
// optional. Financial status cards only appear when there is no top round
// lot data.
func PlanAdvanced(adv *dataset.MetaAdvanced) []AdvancedSection {
	if adv == nil {
		return nil
	}
	var sections []AdvancedSection

	if adv.ETFPercentages != nil {
		rows := dataset.Rows{
			{{Key: FieldStatus, Value: "ETF"}, {Key: FieldPercentage, Value: etfValue(adv.ETFPercentages, "ETF Percentage")}},
			{{Key: FieldStatus, Value: "Non-ETF"}, {Key: FieldPercentage, Value: etfValue(adv.ETFPercentages, "Non-ETF Percentage")}},
		}
		sections = append(sections, AdvancedSection{
			Title: "ETF vs Non-ETF Distribution",
			Bar: &BarPlan{
				Mount: charts.MountETFBar, Title: "ETF vs Non-ETF (%)",
				XField: FieldStatus, YField: FieldPercentage, Rows: rows,
			},
		})
	}

	switch {
	case len(adv.TopRoundLot) > 0:
		sections = append(sections, AdvancedSection{
			Title: "Top 10 Companies by Round Lot Size",
			Bar: &BarPlan{
				Mount: charts.MountTopRoundLot, Title: "Top 10 Round Lot Size",
				XField: charts.SymbolField, YField: FieldRoundLotSize,
				Rows: adv.TopRoundLot.Head(TopRoundLotLimit),
			},
		})
	case adv.FinancialStatus != nil:
		sections = append(sections, AdvancedSection{
			Title: "Financial Status Distribution",
			Cards: CountCards(adv.FinancialStatus, FieldFinancialStatus, FieldCount),
		})
	}

	if adv.TestIssue != nil {
		sections = append(sections, AdvancedSection{
			Title: "Test Issue Distribution",
			Cards: CountCards(adv.TestIssue, FieldTestIssue, FieldCount),
		})
	}

	if len(adv.RoundLotDistribution) > 0 {
		sections = append(sections, AdvancedSection{
			Title: "Round Lot Size Distribution",
			Bar: &BarPlan{
				Mount: charts.MountRoundLotDist, Title: "Round Lot Size Distribution",
				XField: FieldRoundLotRange, YField: FieldCount,
				Rows: adv.RoundLotDistribution,
			},
		})
	}
	return sections
}

func etfValue(row dataset.Row, key string) interface{} {
	if v, ok := row.Float(key); ok {
		return v
	}
	return 0.0
}

// PieDemoTitle labels the placeholder pie.
const PieDemoTitle = "Test Chart"

// PieNoData is the debug note shown when the pie payload is missing.
const PieNoData = "No data available for pie chart"

// PieDemoRows is the placeholder pie dataset.
func PieDemoRows() dataset.Rows {
	return dataset.Rows{
		{{Key: "Market Category", Value: "Test 1"}, {Key: FieldCount, Value: 50.0}},
		{{Key: "Market Category", Value: "Test 2"}, {Key: FieldCount, Value: 30.0}},
		{{Key: "Market Category", Value: "Test 3"}, {Key: FieldCount, Value: 20.0}},
	}
}
