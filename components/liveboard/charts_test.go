package liveboard

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCache struct {
	inner *ChartCache
	calls int
}

func (c *countingCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	return c.inner.GetOrRender(key, func() (string, error) {
		c.calls++
		return render()
	})
}

func TestChartRendererRendersEveryChartKind(t *testing.T) {
	r := NewChartRenderer(WithChartCache(nil))
	for _, kind := range []Kind{KindLineChart, KindBarChart, KindPieChart} {
		w := testChart(kind, string(kind)+"-1", "Quarterly Revenue")
		w.Chart.XAxisCategories = []string{"Q1"}
		html, err := r.Render(w)
		require.NoError(t, err, kind)
		assert.Contains(t, html, "echarts")
		assert.Contains(t, html, "Quarterly Revenue")
	}
}

func TestChartRendererRendersFallback(t *testing.T) {
	r := NewChartRenderer(WithChartCache(nil))
	html, err := r.Render(Widget{ID: "bar_chart-1", Kind: KindBarChart, Title: "Empty", Chart: FallbackChart(KindBarChart, "Empty")})
	require.NoError(t, err)
	assert.True(t, strings.Contains(html, "No Data"))
}

func TestChartRendererRejectsNonCharts(t *testing.T) {
	_, err := NewChartRenderer().Render(testCard("card-1", "A"))
	assert.Error(t, err)
}

func TestChartRendererUsesCache(t *testing.T) {
	cache := &countingCache{inner: NewChartCache(time.Minute)}
	r := NewChartRenderer(WithChartCache(cache), WithChartTheme("dark"), WithChartAssetsHost("https://cdn.example.com/"))
	w := testChart(KindLineChart, "line-1", "Trend")
	first, err := r.Render(w)
	require.NoError(t, err)
	second, err := r.Render(w)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.calls)
	assert.Contains(t, first, "https://cdn.example.com/")
}
