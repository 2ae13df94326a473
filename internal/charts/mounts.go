// Package charts turns backend series into go-echarts pages bound to the
// dashboard's chart mount points.
package charts

// Mount ids of the dashboard's chart frames.
const (
	MountPrice       = "priceChart"
	MountMA          = "maChart"
	MountVolatility  = "volatilityChart"
	MountCorrelation = "correlationChart"
	MountCumulative  = "cumulativeChart"

	MountExchangeBar  = "exchangeBar"
	MountMarketPie    = "marketPie"
	MountScatter      = "scatterPlot"
	MountETFBar       = "etfVsNonEtfBar"
	MountTopRoundLot  = "topRoundLotChart"
	MountRoundLotDist = "roundLotChart"
)

// StockMounts are the frames of the stock analysis panel.
var StockMounts = []string{MountPrice, MountMA, MountVolatility, MountCorrelation, MountCumulative}

// MetaMounts are the frames of the meta analysis panel.
var MetaMounts = []string{MountExchangeBar, MountMarketPie, MountScatter, MountETFBar, MountTopRoundLot, MountRoundLotDist}

// AllMounts lists every frame the dashboard page declares.
func AllMounts() []string {
	all := make([]string, 0, len(StockMounts)+len(MetaMounts))
	all = append(all, StockMounts...)
	return append(all, MetaMounts...)
}

// Chart kinds
const (
	KindLine        = "line"
	KindMultiLine   = "multi-line"
	KindBar         = "bar"
	KindPie         = "pie"
	KindScatter     = "scatter"
	KindCorrelation = "correlation"
)
