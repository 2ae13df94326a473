package charts

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed style.yaml
var defaultStyleYAML []byte

// Style is the shared look applied to every chart type.
type Style struct {
	Palette     []string         `yaml:"palette"`
	Background  string           `yaml:"background"`
	TextColor   string           `yaml:"text_color"`
	AxisColor   string           `yaml:"axis_color"`
	TitleSize   int              `yaml:"title_size"`
	LabelSize   int              `yaml:"label_size"`
	Width       string           `yaml:"width"`
	Height      string           `yaml:"height"`
	Line        LineStyle        `yaml:"line"`
	Scatter     ScatterStyle     `yaml:"scatter"`
	Correlation CorrelationStyle `yaml:"correlation"`
}

// LineStyle tunes line and multi-line charts.
type LineStyle struct {
	Smooth      bool    `yaml:"smooth"`
	AreaOpacity float32 `yaml:"area_opacity"`
	ShowSymbol  bool    `yaml:"show_symbol"`
}

// ScatterStyle tunes scatter charts.
type ScatterStyle struct {
	SymbolSize int `yaml:"symbol_size"`
}

// CorrelationStyle sets the diverging colours of the correlation heatmap.
type CorrelationStyle struct {
	Negative string `yaml:"negative"`
	Zero     string `yaml:"zero"`
	Positive string `yaml:"positive"`
}

// DefaultStyle returns the embedded style.
func DefaultStyle() Style {
	var s Style
	if err := yaml.Unmarshal(defaultStyleYAML, &s); err != nil {
		panic(fmt.Sprintf("embedded chart style is invalid: %v", err))
	}
	return s
}

// LoadStyle reads a YAML style file over the defaults. An empty path returns
// the defaults.
func LoadStyle(path string) (Style, error) {
	s := DefaultStyle()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("failed to read chart style: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse chart style %s: %w", path, err)
	}
	if len(s.Palette) == 0 {
		return s, fmt.Errorf("chart style %s has an empty palette", path)
	}
	return s, nil
}

// Color returns the palette colour for position i, cycling.
func (s Style) Color(i int) string {
	if len(s.Palette) == 0 {
		return ""
	}
	if i < 0 {
		i = -i
	}
	return s.Palette[i%len(s.Palette)]
}
