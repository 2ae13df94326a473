package app

import (
	"context"
	"fmt"

	"stockboard/domain/core"
	"stockboard/internal"
	"stockboard/internal/charts"
	"stockboard/internal/view"
	"stockboard/ports"
)

// AnalysisService fetches derived analysis for the current token and mounts
// the resulting charts. A fetch never retries; on failure it returns what
// it has so far along with the error.
type AnalysisService struct {
	client  ports.AnalysisClient
	board   *charts.Board
	pieDemo bool
	logger  *internal.Logger
}

// NewAnalysisService creates the analysis fetchers. pieDemo enables the
// placeholder pie when the backend sends no market category data.
func NewAnalysisService(client ports.AnalysisClient, board *charts.Board, pieDemo bool) *AnalysisService {
	return &AnalysisService{
		client:  client,
		board:   board,
		pieDemo: pieDemo,
		logger:  internal.DefaultLogger.WithComponent("AnalysisService"),
	}
}

// FetchStockAnalysis loads metrics then charts for a stock dataset.
func (s *AnalysisService) FetchStockAnalysis(ctx context.Context, token core.Token) (view.StockAnalysis, error) {
	var out view.StockAnalysis
	if token.IsEmpty() {
		return out, nil
	}

	metrics, err := s.client.Metrics(ctx, token)
	if err != nil {
		return s.stockFailed(out, "metrics", err)
	}
	out.Metrics = view.RowCards(metrics)

	payload, err := s.client.StockCharts(ctx, token)
	if err != nil {
		return s.stockFailed(out, "charts", err)
	}

	s.draw(&out.Charts, &out.Notes, charts.MountPrice, "Stock Price Over Time", func(mount, title string) error {
		return s.board.Line(mount, payload.PriceChart, "Date", "Close", title)
	})
	s.draw(&out.Charts, &out.Notes, charts.MountMA, "Moving Averages", func(mount, title string) error {
		return s.board.MultiLine(mount, payload.MAChart, "Date", []string{"Close", "MA20", "MA50"}, title)
	})
	s.draw(&out.Charts, &out.Notes, charts.MountVolatility, "Rolling Volatility", func(mount, title string) error {
		return s.board.Line(mount, payload.Volatility, "Date", "Rolling_Volatility", title)
	})
	if len(payload.Correlation) > 0 {
		s.draw(&out.Charts, &out.Notes, charts.MountCorrelation, "Correlation Matrix", func(mount, title string) error {
			return s.board.Correlation(mount, payload.Correlation, title)
		})
	}
	return out, nil
}

// FetchStockReturns loads the cumulative return series and mounts it as a
// line chart. It is a separate request from FetchStockAnalysis.
func (s *AnalysisService) FetchStockReturns(ctx context.Context, token core.Token) (view.StockAnalysis, error) {
	var out view.StockAnalysis
	if token.IsEmpty() {
		return out, nil
	}

	returns, err := s.client.Returns(ctx, token)
	if err != nil {
		return s.stockFailed(out, "returns", err)
	}
	if len(returns.Cumulative) == 0 {
		return out, nil
	}
	s.draw(&out.Charts, &out.Notes, charts.MountCumulative, "Cumulative Return", func(mount, title string) error {
		return s.board.Line(mount, returns.Cumulative, "Date", "Cumulative_Return", title)
	})
	return out, nil
}

// FetchMetaAnalysis loads the meta charts and then the advanced sections.
// A charts failure stops before the advanced request.
func (s *AnalysisService) FetchMetaAnalysis(ctx context.Context, token core.Token) (view.MetaAnalysis, error) {
	var out view.MetaAnalysis
	if token.IsEmpty() {
		return out, nil
	}

	payload, err := s.client.MetaCharts(ctx, token)
	if err != nil {
		s.logger.Error("meta charts for %s: %v", token, err)
		return out, err
	}

	if payload.ExchangeBar != nil {
		s.draw(&out.Charts, &out.Notes, charts.MountExchangeBar, "Stocks per Exchange", func(mount, title string) error {
			return s.board.Bar(mount, payload.ExchangeBar, "Listing Exchange", "Count", title)
		})
	}

	switch {
	case payload.MarketCategoryPie != nil:
		s.draw(&out.Charts, &out.Notes, charts.MountMarketPie, "Market Categories", func(mount, title string) error {
			return s.board.Pie(mount, payload.MarketCategoryPie, "Market Category", "Count", title)
		})
	case s.pieDemo:
		s.draw(&out.Charts, &out.Notes, charts.MountMarketPie, view.PieDemoTitle, func(mount, title string) error {
			return s.board.Pie(mount, view.PieDemoRows(), "Market Category", "Count", title)
		})
	default:
		out.Notes = append(out.Notes, view.PieNoData)
	}

	if payload.Scatter != nil {
		s.draw(&out.Charts, &out.Notes, charts.MountScatter, "Symbol vs Round Lot Size", func(mount, title string) error {
			return s.board.Scatter(mount, payload.Scatter, charts.SymbolField, view.FieldRoundLotSize, title)
		})
	}

	sections, err := s.FetchMetaAdvanced(ctx, token)
	out.Advanced = sections
	if err != nil {
		return out, err
	}
	return out, nil
}

// FetchMetaKPIs loads the four meta KPI tiles. On failure the placeholder
// tiles are returned unchanged.
func (s *AnalysisService) FetchMetaKPIs(ctx context.Context, token core.Token) ([]view.KPICard, error) {
	if token.IsEmpty() {
		return view.MetaPlaceholderCards(), nil
	}
	kpis, err := s.client.MetaKPIs(ctx, token)
	if err != nil {
		s.logger.Error("meta kpis for %s: %v", token, err)
		return view.MetaPlaceholderCards(), err
	}
	return view.MetaKPICards(kpis), nil
}

// FetchMetaAdvanced loads the advanced payload and mounts every bar it plans.
func (s *AnalysisService) FetchMetaAdvanced(ctx context.Context, token core.Token) ([]view.AdvancedSection, error) {
	if token.IsEmpty() {
		return nil, nil
	}
	adv, err := s.client.MetaAdvanced(ctx, token)
	if err != nil {
		s.logger.Error("meta advanced for %s: %v", token, err)
		return nil, err
	}
	if len(adv.Unknown) > 0 {
		s.logger.Debug("ignoring advanced keys %v", adv.Unknown)
	}
	for key, err := range adv.Invalid {
		s.logger.Warn("advanced section %s for %s: %v", key, token, err)
	}

	sections := view.PlanAdvanced(adv)
	for _, section := range sections {
		if section.Bar == nil {
			continue
		}
		bar := section.Bar
		if err := s.board.Bar(bar.Mount, bar.Rows, bar.XField, bar.YField, bar.Title); err != nil {
			s.logger.Warn("advanced chart %s: %v", bar.Mount, err)
		}
	}
	return sections, nil
}

// draw mounts one chart. A failure is noted and does not stop siblings.
func (s *AnalysisService) draw(frames *[]view.ChartFrame, notes *[]string, mount, title string, render func(mount, title string) error) {
	if err := render(mount, title); err != nil {
		*notes = append(*notes, fmt.Sprintf("%s: %v", mount, err))
		return
	}
	*frames = append(*frames, view.ChartFrame{Mount: mount, Title: title})
}

func (s *AnalysisService) stockFailed(out view.StockAnalysis, stage string, err error) (view.StockAnalysis, error) {
	s.logger.Error("stock %s: %v", stage, err)
	return out, err
}
