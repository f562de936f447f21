package liveboard

import (
	"fmt"
	"math"
	"time"

	"github.com/ettle/strcase"
	"github.com/google/uuid"
)

const (
	seriesExample  = `Example: {"series": [{"name": "Sales", "data": [100, 200, 150, 300]}]}`
	columnsExample = `Example: [{"key": "name", "label": "Name"}]`
	rowsExample    = `Example: [{"name": "Item 1"}]`
)

// Normalized is the outcome of building a widget from tool arguments.
// Degraded is set when a fallback payload replaced malformed input.
type Normalized struct {
	Widget   Widget
	Degraded bool
	Reason   string
}

// Normalizer turns raw tool arguments into validated widgets. Check performs
// the boundary validation that may reject a call; Build never fails.
type Normalizer struct {
	now   func() time.Time
	newID func(Kind) string
}

// NewNormalizer builds a normalizer with wall-clock timestamps and uuid ids.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		now: time.Now,
		newID: func(kind Kind) string {
			return fmt.Sprintf("%s-%s", kind, uuid.NewString())
		},
	}
}

// Normalize runs Check then Build.
func (n *Normalizer) Normalize(tool string, args Args) (Normalized, error) {
	kind, err := n.Check(tool, args)
	if err != nil {
		return Normalized{}, err
	}
	return n.Build(kind, args), nil
}

// Check validates the argument shape for a widget tool and returns the kind
// of widget it will produce.
func (n *Normalizer) Check(tool string, args Args) (Kind, error) {
	switch tool {
	case ToolRenderMetricCard:
		return KindCard, nil
	case ToolRenderLineChart, ToolRenderBarChart:
		if !args.present("series") {
			return "", missingParam(tool, "series", "You must provide a series array. "+seriesExample)
		}
		if _, ok := anySlice(args["series"]); !ok {
			if _, ok := mapValue(args["series"]); !ok {
				return "", reject(tool, "series", `"series" must be an array or object. %s`, seriesExample)
			}
		}
		if tool == ToolRenderLineChart {
			return KindLineChart, nil
		}
		return KindBarChart, nil
	case ToolRenderPieChart:
		categories, catOK := anySlice(args["categories"])
		values, valOK := anySlice(args["values"])
		if !catOK || !valOK || len(categories) != len(values) {
			return "", reject(tool, "values", `"categories" and "values" must be arrays of the same length.`)
		}
		return KindPieChart, nil
	case ToolRenderTable:
		if err := checkArrayParam(tool, "columns", args, "It must be an array of column definitions. "+columnsExample, columnsExample); err != nil {
			return "", err
		}
		if err := checkArrayParam(tool, "rows", args, "It must be an array of row objects. "+rowsExample, rowsExample); err != nil {
			return "", err
		}
		return KindTable, nil
	default:
		return "", reject(tool, "", "Unknown tool %q.", tool)
	}
}

func checkArrayParam(tool, param string, args Args, missingHint, example string) error {
	if !args.present(param) {
		return missingParam(tool, param, missingHint)
	}
	if _, ok := anySlice(args[param]); !ok {
		return reject(tool, param, "%q must be an array. Received: %s. %s", param, typeName(args[param]), example)
	}
	return nil
}

// Build constructs the widget for kind. Malformed content degrades to the
// kind's fallback payload; the result always satisfies IsValid.
func (n *Normalizer) Build(kind Kind, args Args) Normalized {
	var out Normalized
	switch kind {
	case KindCard:
		out = buildCard(args)
	case KindLineChart, KindBarChart:
		out = buildChart(kind, args)
	case KindPieChart:
		out = buildPie(args)
	case KindTable:
		out = buildTable(args)
	default:
		return Normalized{}
	}
	out.Widget.ID = n.newID(kind)
	out.Widget.Kind = kind
	out.Widget.CreatedAt = n.now().UTC().Truncate(time.Millisecond)
	switch {
	case out.Widget.Card != nil:
		out.Widget.Title = out.Widget.Card.Title
	case out.Widget.Chart != nil:
		out.Widget.Title = out.Widget.Chart.Title
	case out.Widget.Table != nil:
		out.Widget.Title = out.Widget.Table.Title
	}
	return out
}

// ReportName validates set_report_name arguments.
func (n *Normalizer) ReportName(args Args) (string, error) {
	name := args.string("name")
	if name == "" {
		return "", missingParam(ToolSetReportName, "name", "")
	}
	return name, nil
}

func buildCard(args Args) Normalized {
	title := args.string("title")
	value := stringValue(args["value"], "")
	card := &CardPayload{
		Title:    title,
		Value:    value,
		Subtitle: args.string("subtitle"),
		Icon:     args.string("icon"),
	}
	if trend, ok := numberValue(args["trendValue"]); ok {
		card.Trend = &Trend{
			Value:      math.Abs(trend),
			IsPositive: trend >= 0,
			Label:      args.string("trendLabel"),
		}
	}
	if color := Color(args.string("color")); color.valid() {
		card.Color = color
	}
	out := Normalized{Widget: Widget{Card: card}}
	if card.Title == "" {
		card.Title = "Metric"
		out.Degraded, out.Reason = true, "missing title"
	}
	if card.Value == "" {
		card.Value = noDataValue
		out.Degraded, out.Reason = true, "missing value"
	}
	return out
}

func buildChart(kind Kind, args Args) Normalized {
	title := args.string("title")
	xTitle := args.string("xAxisTitle")
	yTitle := args.string("yAxisTitle")
	categories, catOK := stringSliceValue(args["xAxisCategories"])

	if title == "" || !catOK || xTitle == "" || yTitle == "" {
		return Normalized{
			Widget:   Widget{Chart: FallbackChart(kind, title)},
			Degraded: true,
			Reason:   "missing required chart fields",
		}
	}

	series := normalizeSeries(args["series"])
	if len(series) == 0 {
		chart := FallbackChart(kind, title)
		chart.XAxisCategories = []string{noDataSeries}
		chart.XAxisTitle = xTitle
		chart.YAxisTitle = yTitle
		return Normalized{
			Widget:   Widget{Chart: chart},
			Degraded: true,
			Reason:   "no usable series",
		}
	}

	return Normalized{Widget: Widget{Chart: &ChartPayload{
		Title:           title,
		XAxisCategories: categories,
		XAxisTitle:      xTitle,
		YAxisTitle:      yTitle,
		Series:          series,
		ChartType:       kind.ChartType(),
	}}}
}

// normalizeSeries accepts an array of series objects, a single series object,
// or a bare array of numbers.
func normalizeSeries(v any) []Series {
	if items, ok := anySlice(v); ok {
		out := make([]Series, 0, len(items))
		for i, item := range items {
			defaultName := fmt.Sprintf("Series %d", i+1)
			if m, ok := mapValue(item); ok {
				if s, ok := seriesFromMap(m, defaultName); ok {
					out = append(out, s)
				}
				continue
			}
			if f, ok := numberValue(item); ok {
				out = append(out, Series{Name: defaultName, Data: []float64{f}})
			}
		}
		return out
	}
	if m, ok := mapValue(v); ok {
		if s, ok := seriesFromMap(m, "Series"); ok {
			return []Series{s}
		}
	}
	return nil
}

func seriesFromMap(m map[string]any, defaultName string) (Series, bool) {
	var data []float64
	if d, ok := numberSlice(m["data"]); ok {
		data = d
	} else if d, ok := numberSlice(m["values"]); ok {
		data = d
	} else if f, ok := numberValue(m["value"]); ok {
		data = []float64{f}
	}
	if len(data) == 0 {
		return Series{}, false
	}
	name := stringValue(m["name"], stringValue(m["label"], defaultName))
	return Series{Name: name, Data: data, Color: stringValue(m["color"], "")}, true
}

func buildPie(args Args) Normalized {
	title := args.string("title")
	categories, _ := stringSliceValue(args["categories"])
	values, ok := strictNumberSlice(args["values"])
	if title == "" || !ok || len(values) == 0 {
		return Normalized{
			Widget:   Widget{Chart: FallbackChart(KindPieChart, title)},
			Degraded: true,
			Reason:   "pie values missing or not numeric",
		}
	}
	return Normalized{Widget: Widget{Chart: &ChartPayload{
		Title:           title,
		XAxisCategories: categories,
		Series:          []Series{{Name: stringValue(args["seriesName"], "Data"), Data: values}},
		ChartType:       KindPieChart.ChartType(),
	}}}
}

func buildTable(args Args) Normalized {
	table := &TablePayload{Title: stringValue(args["title"], "Table")}
	out := Normalized{Widget: Widget{Table: table}}

	items, _ := anySlice(args["columns"])
	for _, item := range items {
		if col, ok := columnFromValue(item); ok {
			table.Columns = append(table.Columns, col)
		}
	}
	if len(table.Columns) == 0 {
		table.Columns = []Column{fallbackColumn()}
		out.Degraded, out.Reason = true, "no usable columns"
	}

	rows, _ := anySlice(args["rows"])
	for _, item := range rows {
		if m, ok := mapValue(item); ok {
			table.Rows = append(table.Rows, cellMap(m))
		}
	}
	if len(table.Rows) == 0 {
		table.Rows = []map[string]any{fallbackRow()}
		out.Degraded, out.Reason = true, "no usable rows"
	}
	return out
}

func columnFromValue(v any) (Column, bool) {
	if label, ok := v.(string); ok && label != "" {
		return Column{Key: strcase.ToSnake(label), Label: label}, true
	}
	m, ok := mapValue(v)
	if !ok {
		return Column{}, false
	}
	key := stringValue(m["key"], "")
	label := stringValue(m["label"], "")
	if key == "" && label == "" {
		return Column{}, false
	}
	if key == "" {
		key = strcase.ToSnake(label)
	}
	if label == "" {
		label = key
	}
	col := Column{Key: key, Label: label}
	if t := ColumnType(stringValue(m["type"], "")); t.valid() {
		col.Type = t
	}
	return col, true
}
