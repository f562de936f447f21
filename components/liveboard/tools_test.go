package liveboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolRegistryResolve(t *testing.T) {
	reg := NewToolRegistry()
	cases := map[string]string{
		"render_line_chart":        ToolRenderLineChart,
		"renderLineChart":          ToolRenderLineChart,
		" setReportName ":          ToolSetReportName,
		"collectUserPreferences":   ToolCollectUserPrefs,
		"collect_user_preferences": ToolCollectUserPrefs,
		"collect_user_prefs":       ToolCollectUserPrefs,
	}
	for in, want := range cases {
		got, ok := reg.Resolve(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := reg.Resolve("renderGauge")
	assert.False(t, ok)
	_, ok = reg.Resolve("")
	assert.False(t, ok)
}

func TestDefaultToolDefinitions(t *testing.T) {
	reg := NewToolRegistry()
	defs := reg.Definitions()
	require.Len(t, defs, 7)
	for i := 1; i < len(defs); i++ {
		assert.Less(t, defs[i-1].Name, defs[i].Name)
	}

	line, ok := reg.Definition(ToolRenderLineChart)
	require.True(t, ok)
	assert.Equal(t, []string{"title", "xAxisCategories", "xAxisTitle", "yAxisTitle", "series"}, line.Required())

	pie, _ := reg.Definition(ToolRenderPieChart)
	assert.Equal(t, []string{"title", "categories", "values"}, pie.Required())

	table, _ := reg.Definition(ToolRenderTable)
	assert.Equal(t, []string{"title", "columns", "rows"}, table.Required())

	report, _ := reg.Definition(ToolSetReportName)
	assert.True(t, report.Strict)
	assert.Equal(t, []string{"name"}, report.Required())
}

func TestToolDefinitionSchema(t *testing.T) {
	def, _ := NewToolRegistry().Definition(ToolRenderPieChart)
	schema := def.Schema()
	assert.Equal(t, "object", schema["type"])
	props := schema["properties"].(map[string]any)
	values := props["values"].(map[string]any)
	assert.Equal(t, "array", values["type"])
	assert.Equal(t, map[string]any{"type": "number"}, values["items"])
	assert.Equal(t, []string{"title", "categories", "values"}, schema["required"])
}

func TestToolRegistryRegister(t *testing.T) {
	reg := NewToolRegistry()
	assert.Error(t, reg.Register(ToolDefinition{}))
	require.NoError(t, reg.Register(ToolDefinition{Name: "render_gauge"}))
	got, ok := reg.Resolve("renderGauge")
	require.True(t, ok)
	assert.Equal(t, "render_gauge", got)
}
