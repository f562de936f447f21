package queries

import (
	"context"
	"testing"

	"github.com/goliatone/go-liveboard/components/liveboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededService(t *testing.T) *liveboard.Service {
	t.Helper()
	service := liveboard.NewService(liveboard.Options{})
	ctx := context.Background()
	calls := []liveboard.ToolCall{
		{Name: liveboard.ToolSetReportName, Args: liveboard.Args{"name": "Sales Review"}},
		{Name: liveboard.ToolRenderMetricCard, Args: liveboard.Args{"title": "Revenue", "value": "$10k"}},
		{Name: liveboard.ToolRenderBarChart, Args: liveboard.Args{
			"title":           "By Region",
			"xAxisCategories": []any{"North", "South"},
			"xAxisTitle":      "Region",
			"yAxisTitle":      "Revenue",
			"series":          []any{map[string]any{"name": "2024", "data": []any{10, 20}}},
		}},
	}
	for _, call := range calls {
		result, err := service.Invoke(ctx, call)
		require.NoError(t, err)
		require.Equal(t, liveboard.StatusOK, result.Status, result.Message)
	}
	return service
}

func TestRenderPlanQuery(t *testing.T) {
	service := seededService(t)
	plan, err := NewRenderPlanQuery(service).Query(context.Background(), RenderPlanInput{})
	require.NoError(t, err)
	assert.Equal(t, "Sales Review", plan.Report.Name)
	assert.NotEmpty(t, plan.Fingerprint)

	slot, ok := plan.Slot("card_1")
	require.True(t, ok)
	assert.Equal(t, liveboard.SlotWidget, slot.State)

	_, err = NewRenderPlanQuery(nil).Query(context.Background(), RenderPlanInput{})
	assert.Error(t, err)
}

func TestPinnedDashboardQueries(t *testing.T) {
	service := seededService(t)
	ctx := context.Background()
	pin, err := service.Pin(ctx)
	require.NoError(t, err)

	pins, err := NewPinnedDashboardsQuery(service).Query(ctx, PinnedDashboardsInput{})
	require.NoError(t, err)
	require.Len(t, pins, 1)
	assert.Equal(t, "Sales Review", pins[0].Name)

	got, err := NewPinnedDashboardQuery(service).Query(ctx, PinnedDashboardInput{ID: pin.ID})
	require.NoError(t, err)
	assert.Len(t, got.Widgets, 2)

	_, err = NewPinnedDashboardQuery(service).Query(ctx, PinnedDashboardInput{ID: "pin-missing"})
	assert.ErrorIs(t, err, liveboard.ErrPinNotFound)

	_, err = NewPinnedDashboardQuery(service).Query(ctx, PinnedDashboardInput{})
	assert.EqualError(t, err, "pin id is required")
}

func TestPromptsAndPreferencesQueries(t *testing.T) {
	service := liveboard.NewService(liveboard.Options{})
	ctx := context.Background()
	prompt := service.OpenPrompt(ctx, "layout", []string{"theme"})

	prompts, err := NewPromptsQuery(service).Query(ctx, PromptsInput{})
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Equal(t, prompt.ID, prompts[0].ID)

	_, err = service.SubmitPrompt(ctx, prompt.ID, map[string]any{"theme": "dark"})
	require.NoError(t, err)

	prompts, err = NewPromptsQuery(service).Query(ctx, PromptsInput{})
	require.NoError(t, err)
	assert.Empty(t, prompts)

	prefs, err := NewPreferencesQuery(service).Query(ctx, PreferencesInput{})
	require.NoError(t, err)
	assert.Equal(t, "dark", prefs.Values["theme"])
}

func TestToolCatalogQuery(t *testing.T) {
	catalog, err := NewToolCatalogQuery(liveboard.NewService(liveboard.Options{})).Query(context.Background(), ToolCatalogInput{})
	require.NoError(t, err)
	assert.Equal(t, liveboard.CatalogVersion, catalog.Version)
	assert.Len(t, catalog.Tools, len(liveboard.DefaultToolDefinitions()))
}

func TestChartPreviewQuery(t *testing.T) {
	service := seededService(t)
	ctx := context.Background()
	var chartID, cardID string
	for _, w := range service.Snapshot().Widgets {
		switch w.Kind {
		case liveboard.KindBarChart:
			chartID = w.ID
		case liveboard.KindCard:
			cardID = w.ID
		}
	}
	require.NotEmpty(t, chartID)

	query := NewChartPreviewQuery(service)
	html, err := query.Query(ctx, ChartPreviewInput{WidgetID: chartID})
	require.NoError(t, err)
	assert.Contains(t, html, "echarts")

	_, err = query.Query(ctx, ChartPreviewInput{WidgetID: cardID})
	assert.Error(t, err)

	_, err = query.Query(ctx, ChartPreviewInput{WidgetID: "missing"})
	assert.ErrorIs(t, err, liveboard.ErrWidgetNotFound)

	_, err = query.Query(ctx, ChartPreviewInput{})
	assert.EqualError(t, err, "widget id is required")
}
