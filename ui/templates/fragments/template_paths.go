// Package fragments provides template name constants for the dashboard pages and HTMX fragments
package fragments

import "strings"

// Template names as registered by ParseFS (base file names)
const (
	// Pages
	Index = "index.html"
	Help  = "help.html"

	// Layout
	Workspace = "layout_workspace.html"
	Tabs      = "layout_tabs.html"
	Alert     = "layout_alert.html"

	// Overview
	Overview      = "overview_panel.html"
	OverviewTable = "overview_table.html"
	KPIStrip      = "overview_kpis.html"

	// Analysis panels
	StockAnalysis = "analysis_stock.html"
	StockReturns  = "analysis_returns.html"
	MetaAnalysis  = "analysis_meta.html"
	ChartEmpty    = "analysis_chart_empty.html"

	// Modals
	CleanupModal = "modal_cleanup.html"
)

// GetAllTemplatePaths returns all template names the app expects to find
func GetAllTemplatePaths() []string {
	return []string{
		// Pages
		Index,
		Help,

		// Layout
		Workspace,
		Tabs,
		Alert,

		// Overview
		Overview,
		OverviewTable,
		KPIStrip,

		// Analysis
		StockAnalysis,
		StockReturns,
		MetaAnalysis,
		ChartEmpty,

		// Modals
		CleanupModal,
	}
}

// GetTemplateCategory returns the category for a given template name
func GetTemplateCategory(templatePath string) string {
	switch {
	case templatePath == Index || templatePath == Help:
		return "page"
	case strings.HasPrefix(templatePath, "layout_"):
		return "layout"
	case strings.HasPrefix(templatePath, "overview_"):
		return "overview"
	case strings.HasPrefix(templatePath, "analysis_"):
		return "analysis"
	case strings.HasPrefix(templatePath, "modal_"):
		return "modals"
	default:
		return "unknown"
	}
}
