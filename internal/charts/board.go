package charts

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"stockboard/domain/dataset"
	"stockboard/internal"
)

// Board builds charts in the shared style and mounts them in a registry.
type Board struct {
	registry *Registry
	style    Style
	logger   *internal.Logger
}

// NewBoard creates a board over the registry.
func NewBoard(registry *Registry, style Style) *Board {
	return &Board{
		registry: registry,
		style:    style,
		logger:   internal.DefaultLogger.WithComponent("Charts"),
	}
}

// Line plots yField against xField as one filled line.
func (b *Board) Line(mount string, rows dataset.Series, xField, yField, title string) error {
	line := charts.NewLine()
	line.SetGlobalOptions(b.globals(mount, title, "axis", false)...)
	line.SetGlobalOptions(
		charts.WithXAxisOpts(b.categoryAxis(xField)),
		charts.WithYAxisOpts(b.valueAxis(yField)),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside", Start: 0, End: 100}),
	)
	line.SetXAxis(AxisLabels(rows, xField)).
		AddSeries(title, lineData(Values(rows, yField)), b.lineSeriesOpts(0, true)...)

	return b.mount(NewHandle(mount, KindLine, title, line))
}

// MultiLine plots several fields against xField, one line each.
func (b *Board) MultiLine(mount string, rows dataset.Series, xField string, yFields []string, title string) error {
	line := charts.NewLine()
	line.SetGlobalOptions(b.globals(mount, title, "axis", true)...)
	line.SetGlobalOptions(
		charts.WithXAxisOpts(b.categoryAxis(xField)),
		charts.WithYAxisOpts(b.valueAxis("")),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside", Start: 0, End: 100}),
	)
	line.SetXAxis(AxisLabels(rows, xField))
	for i, field := range yFields {
		line.AddSeries(field, lineData(Values(rows, field)), b.lineSeriesOpts(i, false)...)
	}

	return b.mount(NewHandle(mount, KindMultiLine, title, line))
}

// Bar plots yField per xField category.
func (b *Board) Bar(mount string, rows dataset.Series, xField, yField, title string) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(b.globals(mount, title, "axis", false)...)
	bar.SetGlobalOptions(
		charts.WithXAxisOpts(b.categoryAxis(xField)),
		charts.WithYAxisOpts(b.valueAxis(yField)),
	)
	bar.SetXAxis(AxisLabels(rows, xField)).
		AddSeries(title, barData(Values(rows, yField)),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: b.style.Color(0)}),
			charts.WithBarChartOpts(opts.BarChart{BarGap: "10%"}),
		)

	return b.mount(NewHandle(mount, KindBar, title, bar))
}

// Pie plots one slice per row, named by nameField and sized by valueField.
func (b *Board) Pie(mount string, rows dataset.Series, nameField, valueField, title string) error {
	pie := charts.NewPie()
	pie.SetGlobalOptions(b.globals(mount, title, "item", true)...)
	pie.AddSeries(title, PieSlices(rows, nameField, valueField),
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"35%", "70%"}}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Color: b.style.TextColor}),
	)

	return b.mount(NewHandle(mount, KindPie, title, pie))
}

// Scatter plots yField against xField. A Symbol x axis is plotted by row
// index with the symbol kept as the point name.
func (b *Board) Scatter(mount string, rows dataset.Series, xField, yField, title string) error {
	xName := xField
	if xField == SymbolField {
		xName = "Stock Index"
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(b.globals(mount, title, "item", false)...)
	scatter.SetGlobalOptions(
		charts.WithXAxisOpts(b.numericAxis(xName)),
		charts.WithYAxisOpts(b.valueAxis(yField)),
	)
	points := ScatterPoints(rows, xField, yField)
	for i := range points {
		points[i].SymbolSize = b.style.Scatter.SymbolSize
	}
	scatter.AddSeries(title, points,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: b.style.Color(0)}),
	)

	return b.mount(NewHandle(mount, KindScatter, title, scatter))
}

// Correlation renders a symmetric heatmap from pairwise correlation cells.
// The diverging colour scale runs from negative through zero to positive.
func (b *Board) Correlation(mount string, cells []dataset.CorrelationCell, title string) error {
	labels, matrix := CorrelationMatrix(cells)

	heatmap := charts.NewHeatMap()
	heatmap.SetGlobalOptions(b.globals(mount, title, "item", false)...)
	heatmap.SetGlobalOptions(
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			Data:      labels,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
			AxisLabel: &opts.AxisLabel{Rotate: 45, Color: b.style.AxisColor},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Data:      labels,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
			AxisLabel: &opts.AxisLabel{Color: b.style.AxisColor},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        -1,
			Max:        1,
			InRange: &opts.VisualMapInRange{
				Color: []string{b.style.Correlation.Negative, b.style.Correlation.Zero, b.style.Correlation.Positive},
			},
		}),
	)
	heatmap.SetXAxis(labels).AddSeries("Correlation", heatmapData(matrix))

	return b.mount(NewHandle(mount, KindCorrelation, title, heatmap))
}

// mount binds the handle, logging failures so sibling charts keep going.
func (b *Board) mount(h *Handle) error {
	if err := b.registry.Mount(h); err != nil {
		b.logger.Error("Failed to mount %s chart %q: %v", h.Kind, h.Title, err)
		return err
	}
	b.logger.Debug("Mounted %s chart %q at %s (%d live)", h.Kind, h.Title, h.Mount, b.registry.Live(h.Mount))
	return nil
}

func (b *Board) globals(mount, title, trigger string, legend bool) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       title,
			ChartID:         mount,
			Width:           b.style.Width,
			Height:          b.style.Height,
			BackgroundColor: b.style.Background,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: title,
			TitleStyle: &opts.TextStyle{
				Color:    b.style.TextColor,
				FontSize: b.style.TitleSize,
			},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: trigger}),
		charts.WithLegendOpts(opts.Legend{
			Show:      opts.Bool(legend),
			Top:       "bottom",
			TextStyle: &opts.TextStyle{Color: b.style.TextColor, FontSize: b.style.LabelSize},
		}),
		charts.WithColorsOpts(opts.Colors(b.style.Palette)),
		charts.WithGridOpts(opts.Grid{Left: "10%", Right: "6%", Top: "60", Bottom: "18%"}),
	}
}

func (b *Board) categoryAxis(name string) opts.XAxis {
	return opts.XAxis{
		Name:      name,
		Type:      "category",
		AxisLabel: &opts.AxisLabel{Color: b.style.AxisColor},
	}
}

func (b *Board) numericAxis(name string) opts.XAxis {
	return opts.XAxis{
		Name:      name,
		Type:      "value",
		AxisLabel: &opts.AxisLabel{Color: b.style.AxisColor},
	}
}

func (b *Board) valueAxis(name string) opts.YAxis {
	return opts.YAxis{
		Name:      name,
		Type:      "value",
		Scale:     opts.Bool(true),
		AxisLabel: &opts.AxisLabel{Color: b.style.AxisColor},
	}
}

func (b *Board) lineSeriesOpts(i int, fill bool) []charts.SeriesOpts {
	series := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{
			Smooth:     opts.Bool(b.style.Line.Smooth),
			ShowSymbol: opts.Bool(b.style.Line.ShowSymbol),
		}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: b.style.Color(i)}),
	}
	if fill {
		series = append(series, charts.WithAreaStyleOpts(opts.AreaStyle{
			Opacity: b.style.Line.AreaOpacity,
		}))
	}
	return series
}
