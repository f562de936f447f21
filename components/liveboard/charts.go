package liveboard

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "360px"

// ChartRenderer renders chart widgets as standalone go-echarts HTML so a
// client without a charting library can still preview the board.
type ChartRenderer struct {
	cache      RenderCache
	theme      string
	assetsHost string
}

// ChartRendererOption customizes a ChartRenderer.
type ChartRendererOption func(*ChartRenderer)

// WithChartCache injects a render cache. Pass nil to disable caching.
func WithChartCache(cache RenderCache) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets the echarts theme (defaults to Westeros).
func WithChartTheme(theme string) ChartRendererOption {
	return func(r *ChartRenderer) {
		if theme != "" {
			r.theme = theme
		}
	}
}

// WithChartAssetsHost rewrites the host echarts JS is loaded from.
func WithChartAssetsHost(host string) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.assetsHost = host
	}
}

// NewChartRenderer builds a renderer with a five minute preview cache.
func NewChartRenderer(options ...ChartRendererOption) *ChartRenderer {
	r := &ChartRenderer{
		cache: NewChartCache(5 * time.Minute),
		theme: types.ThemeWesteros,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Render returns preview HTML for a chart widget.
func (r *ChartRenderer) Render(w Widget) (string, error) {
	if !w.Kind.IsChart() || w.Chart == nil {
		return "", fmt.Errorf("liveboard: widget %s is not a chart", w.ID)
	}
	render := func() (string, error) {
		return r.render(w.Kind, *w.Chart)
	}
	if r.cache == nil {
		return render()
	}
	sum, err := contentHash(w.Chart)
	if err != nil {
		return render()
	}
	key := fmt.Sprintf("%s:%s:%s", w.ID, r.theme, sum)
	return r.cache.GetOrRender(key, render)
}

func (r *ChartRenderer) render(kind Kind, chart ChartPayload) (string, error) {
	switch kind {
	case KindBarChart:
		bar := charts.NewBar()
		bar.SetGlobalOptions(r.globalOptions(chart)...)
		bar.SetXAxis(chart.XAxisCategories)
		for _, s := range chart.Series {
			bar.AddSeries(s.Name, toBarData(chart.XAxisCategories, s.Data), seriesColor(s)...)
		}
		return renderChart(bar)
	case KindLineChart:
		line := charts.NewLine()
		line.SetGlobalOptions(r.globalOptions(chart)...)
		line.SetXAxis(chart.XAxisCategories)
		for _, s := range chart.Series {
			line.AddSeries(s.Name, toLineData(chart.XAxisCategories, s.Data), seriesColor(s)...)
		}
		line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		return renderChart(line)
	case KindPieChart:
		pie := charts.NewPie()
		pie.SetGlobalOptions(r.globalOptions(chart)...)
		for _, s := range chart.Series {
			pie.AddSeries(s.Name, toPieData(chart.XAxisCategories, s.Data))
		}
		return renderChart(pie)
	default:
		return "", fmt.Errorf("liveboard: unsupported chart kind %s", kind)
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *ChartRenderer) globalOptions(chart ChartPayload) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  r.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	global := []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: chart.Title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
	if chart.XAxisTitle != "" {
		global = append(global, charts.WithXAxisOpts(opts.XAxis{Name: chart.XAxisTitle}))
	}
	if chart.YAxisTitle != "" {
		global = append(global, charts.WithYAxisOpts(opts.YAxis{Name: chart.YAxisTitle}))
	}
	return global
}

func seriesColor(s Series) []charts.SeriesOpts {
	if s.Color == "" {
		return nil
	}
	return []charts.SeriesOpts{charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color})}
}

func categoryAt(categories []string, i int) string {
	if i < len(categories) {
		return categories[i]
	}
	return ""
}

func toBarData(categories []string, values []float64) []opts.BarData {
	data := make([]opts.BarData, len(values))
	for i, v := range values {
		data[i] = opts.BarData{Name: categoryAt(categories, i), Value: v}
	}
	return data
}

func toLineData(categories []string, values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		data[i] = opts.LineData{Name: categoryAt(categories, i), Value: v}
	}
	return data
}

func toPieData(categories []string, values []float64) []opts.PieData {
	data := make([]opts.PieData, len(values))
	for i, v := range values {
		name := categoryAt(categories, i)
		if name == "" {
			name = fmt.Sprintf("Slice %d", i+1)
		}
		data[i] = opts.PieData{Name: name, Value: v}
	}
	return data
}
