package liveboard

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ettle/strcase"
)

// Tool names understood by the dispatcher. They are part of the prompt
// contract with the model and must not change.
const (
	ToolRenderMetricCard = "render_metric_card"
	ToolRenderLineChart  = "render_line_chart"
	ToolRenderBarChart   = "render_bar_chart"
	ToolRenderPieChart   = "render_pie_chart"
	ToolRenderTable      = "render_table"
	ToolSetReportName    = "set_report_name"
	ToolCollectUserPrefs = "collect_user_prefs"
)

// ToolParameter describes one argument in the chat runtime's parameter list.
type ToolParameter struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool   `json:"required" yaml:"required"`
}

// ToolDefinition is the registration record of a tool.
type ToolDefinition struct {
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	Parameters  []ToolParameter `json:"parameters" yaml:"parameters"`
	// Strict tools have their arguments validated against Schema before
	// dispatch; widget tools are normalized leniently instead.
	Strict bool `json:"strict,omitempty" yaml:"strict,omitempty"`
}

// Required lists the names of required parameters.
func (d ToolDefinition) Required() []string {
	var out []string
	for _, p := range d.Parameters {
		if p.Required {
			out = append(out, p.Name)
		}
	}
	return out
}

// Schema renders the parameter list as a JSON schema object.
func (d ToolDefinition) Schema() map[string]any {
	props := make(map[string]any, len(d.Parameters))
	for _, p := range d.Parameters {
		prop := schemaType(p.Type)
		if p.Description != "" {
			prop["description"] = p.Description
		}
		props[p.Name] = prop
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if req := d.Required(); len(req) > 0 {
		schema["required"] = req
	}
	return schema
}

func schemaType(t string) map[string]any {
	if item, ok := strings.CutSuffix(t, "[]"); ok {
		return map[string]any{"type": "array", "items": schemaType(item)}
	}
	switch t {
	case "string", "number", "boolean", "object":
		return map[string]any{"type": t}
	default:
		return map[string]any{}
	}
}

var toolAliases = map[string]string{
	"collect_user_preferences": ToolCollectUserPrefs,
}

// ToolRegistry stores tool definitions and resolves incoming tool names.
type ToolRegistry struct {
	mu          sync.RWMutex
	definitions map[string]ToolDefinition
}

// NewToolRegistry builds a registry seeded with the default tools.
func NewToolRegistry() *ToolRegistry {
	reg := &ToolRegistry{definitions: map[string]ToolDefinition{}}
	for _, def := range DefaultToolDefinitions() {
		_ = reg.Register(def)
	}
	return reg
}

// Register stores a definition, replacing any previous one with that name.
func (r *ToolRegistry) Register(def ToolDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("liveboard: tool name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.Name] = def
	return nil
}

// Resolve maps a tool name as sent by a chat runtime (camelCase, snake_case
// or an alias) onto its canonical registered name.
func (r *ToolRegistry) Resolve(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.definitions[name]; ok {
		return name, true
	}
	snake := strcase.ToSnake(name)
	if alias, ok := toolAliases[snake]; ok {
		snake = alias
	}
	if _, ok := r.definitions[snake]; ok {
		return snake, true
	}
	return "", false
}

// Definition fetches a definition by canonical name.
func (r *ToolRegistry) Definition(name string) (ToolDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[name]
	return def, ok
}

// Definitions returns all definitions sorted by name.
func (r *ToolRegistry) Definitions() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]ToolDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// DefaultToolDefinitions returns the built-in tool set.
func DefaultToolDefinitions() []ToolDefinition {
	chartParams := func(example string) []ToolParameter {
		return []ToolParameter{
			{Name: "title", Type: "string", Description: "The title of the chart", Required: true},
			{Name: "xAxisCategories", Type: "string[]", Description: "Categories for the X-axis, matching the length of each series", Required: true},
			{Name: "xAxisTitle", Type: "string", Description: "Title for the X-axis", Required: true},
			{Name: "yAxisTitle", Type: "string", Description: "Title for the Y-axis", Required: true},
			{Name: "series", Type: "object[]", Description: "Array of series objects with 'name' (string) and 'data' (number[]). Example: " + example, Required: true},
		}
	}
	return []ToolDefinition{
		{
			Name:        ToolRenderMetricCard,
			Description: "Render a metric (KPI) card in the first dashboard row. At most three cards are shown.",
			Parameters: []ToolParameter{
				{Name: "title", Type: "string", Description: "Label of the metric, e.g. 'Total Revenue'", Required: true},
				{Name: "value", Type: "string", Description: "Main value, already formatted", Required: true},
				{Name: "subtitle", Type: "string", Description: "Additional context"},
				{Name: "trendValue", Type: "number", Description: "Trend percentage, positive or negative"},
				{Name: "trendLabel", Type: "string", Description: "Trend label, e.g. 'vs last month'"},
				{Name: "icon", Type: "string", Description: "Emoji icon"},
				{Name: "color", Type: "string", Description: "Color theme: blue, green, purple, orange, red, indigo"},
			},
		},
		{
			Name:        ToolRenderLineChart,
			Description: "Render a line chart for trends over time (row 3). The 'series' parameter is required.",
			Parameters:  chartParams(`[{"name": "Sales", "data": [100, 200, 150, 300]}]`),
		},
		{
			Name:        ToolRenderBarChart,
			Description: "Render a bar chart for category comparisons (row 2, right). The 'series' parameter is required.",
			Parameters:  chartParams(`[{"name": "Revenue", "data": [1000, 2000, 1500, 3000]}]`),
		},
		{
			Name:        ToolRenderPieChart,
			Description: "Render a pie chart for proportions and distributions (row 2, left).",
			Parameters: []ToolParameter{
				{Name: "title", Type: "string", Description: "The title of the chart", Required: true},
				{Name: "categories", Type: "string[]", Description: "Label of each slice", Required: true},
				{Name: "values", Type: "number[]", Description: "Value of each slice, same length as categories", Required: true},
				{Name: "seriesName", Type: "string", Description: "Name of the data series"},
			},
		},
		{
			Name:        ToolRenderTable,
			Description: "Render a data table (row 4). Both 'columns' and 'rows' are required.",
			Parameters: []ToolParameter{
				{Name: "title", Type: "string", Description: "The title of the table", Required: true},
				{Name: "columns", Type: "object[]", Description: "Column definitions with 'key', 'label' and optional 'type' (string, number, currency, percentage, date)", Required: true},
				{Name: "rows", Type: "object[]", Description: "Row objects keyed by column key", Required: true},
			},
		},
		{
			Name:        ToolSetReportName,
			Description: "Set the name of the dashboard report shown in its header. Call it first.",
			Parameters: []ToolParameter{
				{Name: "name", Type: "string", Description: "Report name, e.g. 'Ecommerce Sales Dashboard'", Required: true},
			},
			Strict: true,
		},
		{
			Name:        ToolCollectUserPrefs,
			Description: "Show an interactive form that collects user preferences and wait for the user to submit it.",
			Parameters: []ToolParameter{
				{Name: "context", Type: "string", Description: "Why preferences are being collected", Required: true},
				{Name: "requiredFields", Type: "string[]", Description: "Preference fields to collect"},
			},
			Strict: true,
		},
	}
}
