package liveboard

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind identifies the widget variant. Kinds are immutable once a widget is created.
type Kind string

const (
	KindCard      Kind = "card"
	KindLineChart Kind = "line_chart"
	KindBarChart  Kind = "bar_chart"
	KindPieChart  Kind = "pie_chart"
	KindTable     Kind = "table"
)

// Kinds lists every widget kind in layout order.
func Kinds() []Kind {
	return []Kind{KindCard, KindPieChart, KindBarChart, KindLineChart, KindTable}
}

// Valid reports whether k is a known widget kind.
func (k Kind) Valid() bool {
	switch k {
	case KindCard, KindLineChart, KindBarChart, KindPieChart, KindTable:
		return true
	default:
		return false
	}
}

// IsChart reports whether k is one of the chart kinds.
func (k Kind) IsChart() bool {
	return k == KindLineChart || k == KindBarChart || k == KindPieChart
}

// ChartType returns the short chart tag ("line", "bar", "pie") for chart kinds.
func (k Kind) ChartType() string {
	switch k {
	case KindLineChart:
		return "line"
	case KindBarChart:
		return "bar"
	case KindPieChart:
		return "pie"
	default:
		return ""
	}
}

// Color is a palette token accepted by metric cards.
type Color string

const (
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorPurple Color = "purple"
	ColorOrange Color = "orange"
	ColorRed    Color = "red"
	ColorIndigo Color = "indigo"
	ColorGray   Color = "gray"
)

func (c Color) valid() bool {
	switch c {
	case ColorBlue, ColorGreen, ColorPurple, ColorOrange, ColorRed, ColorIndigo, ColorGray:
		return true
	default:
		return false
	}
}

// ColumnType is the optional formatting hint of a table column.
type ColumnType string

const (
	ColumnString     ColumnType = "string"
	ColumnNumber     ColumnType = "number"
	ColumnCurrency   ColumnType = "currency"
	ColumnPercentage ColumnType = "percentage"
	ColumnDate       ColumnType = "date"
)

func (t ColumnType) valid() bool {
	switch t {
	case ColumnString, ColumnNumber, ColumnCurrency, ColumnPercentage, ColumnDate:
		return true
	default:
		return false
	}
}

// Trend decorates a metric card with a directional change.
type Trend struct {
	Value      float64 `json:"value"`
	IsPositive bool    `json:"isPositive"`
	Label      string  `json:"label,omitempty"`
}

// CardPayload is the data of a metric card.
type CardPayload struct {
	Title    string `json:"title"`
	Value    string `json:"value"`
	Subtitle string `json:"subtitle,omitempty"`
	Trend    *Trend `json:"trend,omitempty"`
	Icon     string `json:"icon,omitempty"`
	Color    Color  `json:"color,omitempty"`
}

// Series is one plotted data series.
type Series struct {
	Name  string    `json:"name"`
	Data  []float64 `json:"data"`
	Color string    `json:"color,omitempty"`
}

// ChartPayload is the data shared by line, bar and pie charts.
type ChartPayload struct {
	Title           string   `json:"title"`
	XAxisCategories []string `json:"xAxisCategories"`
	XAxisTitle      string   `json:"xAxisTitle"`
	YAxisTitle      string   `json:"yAxisTitle"`
	Series          []Series `json:"series"`
	ChartType       string   `json:"chartType"`
	// Fallback marks the "No Data" placeholder chart, the only chart whose
	// series may be empty.
	Fallback bool `json:"fallback,omitempty"`
}

// Column describes one table column.
type Column struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Type  ColumnType `json:"type,omitempty"`
}

// TablePayload is the data of a table widget.
type TablePayload struct {
	Title   string           `json:"title"`
	Columns []Column         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// Widget is a committed dashboard element. Exactly one payload pointer is set,
// matching Kind.
type Widget struct {
	ID        string
	Kind      Kind
	Title     string
	Card      *CardPayload
	Chart     *ChartPayload
	Table     *TablePayload
	CreatedAt time.Time
}

// Payload returns the kind-specific payload as an untyped value.
func (w Widget) Payload() any {
	switch {
	case w.Kind == KindCard:
		return w.Card
	case w.Kind.IsChart():
		return w.Chart
	case w.Kind == KindTable:
		return w.Table
	default:
		return nil
	}
}

// Valid reports whether the widget's payload satisfies its kind's predicate.
func (w Widget) Valid() bool {
	return IsValid(w.Kind, w.Payload())
}

// IsValid is the validity predicate per widget kind.
func IsValid(kind Kind, payload any) bool {
	switch kind {
	case KindCard:
		card, ok := payload.(*CardPayload)
		return ok && card != nil && card.Title != "" && card.Value != ""
	case KindLineChart, KindBarChart, KindPieChart:
		chart, ok := payload.(*ChartPayload)
		if !ok || chart == nil || len(chart.Series) == 0 {
			return false
		}
		if chart.Fallback {
			return len(chart.Series) == 1 && chart.Series[0].Name == noDataSeries
		}
		for _, s := range chart.Series {
			if len(s.Data) == 0 {
				return false
			}
		}
		return true
	case KindTable:
		table, ok := payload.(*TablePayload)
		return ok && table != nil && len(table.Columns) > 0 && table.Rows != nil
	default:
		return false
	}
}

const (
	noDataSeries      = "No Data"
	noDataColor       = "#cccccc"
	noDataValue       = "No data"
	noDataTableStatus = "No data available"
)

// FallbackCard builds the deterministic placeholder card.
func FallbackCard(title string) *CardPayload {
	if title == "" {
		title = "Metric"
	}
	return &CardPayload{
		Title:    title,
		Value:    noDataValue,
		Subtitle: "Data unavailable",
		Color:    ColorGray,
	}
}

// FallbackChart builds the deterministic "No Data" chart.
func FallbackChart(kind Kind, title string) *ChartPayload {
	if title == "" {
		title = "Chart"
	}
	return &ChartPayload{
		Title:           title,
		XAxisCategories: []string{},
		XAxisTitle:      "Categories",
		YAxisTitle:      "Values",
		Series:          []Series{{Name: noDataSeries, Data: []float64{}, Color: noDataColor}},
		ChartType:       kind.ChartType(),
		Fallback:        true,
	}
}

// FallbackTable builds the deterministic single-status table.
func FallbackTable(title string) *TablePayload {
	if title == "" {
		title = "Table"
	}
	return &TablePayload{
		Title:   title,
		Columns: []Column{fallbackColumn()},
		Rows:    []map[string]any{fallbackRow()},
	}
}

func fallbackColumn() Column {
	return Column{Key: "status", Label: "Status"}
}

func fallbackRow() map[string]any {
	return map[string]any{"status": noDataTableStatus}
}

// Fallback returns the placeholder payload for kind.
func Fallback(kind Kind, title string) any {
	switch {
	case kind == KindCard:
		return FallbackCard(title)
	case kind.IsChart():
		return FallbackChart(kind, title)
	case kind == KindTable:
		return FallbackTable(title)
	default:
		return nil
	}
}

// wireWidget is the JSON shape used by transports and pinned snapshots.
type wireWidget struct {
	ID        string          `json:"id"`
	Type      Kind            `json:"type"`
	Title     string          `json:"title"`
	Data      json.RawMessage `json:"data"`
	CreatedAt string          `json:"createdAt,omitempty"`
}

// MarshalJSON encodes the widget as {id,type,title,data,createdAt}.
func (w Widget) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(w.Payload())
	if err != nil {
		return nil, fmt.Errorf("liveboard: marshal %s payload: %w", w.Kind, err)
	}
	out := wireWidget{ID: w.ID, Type: w.Kind, Title: w.Title, Data: data}
	if !w.CreatedAt.IsZero() {
		out.CreatedAt = FormatTimestamp(w.CreatedAt)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the wire shape, selecting the payload by type.
func (w *Widget) UnmarshalJSON(b []byte) error {
	var in wireWidget
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	if !in.Type.Valid() {
		return fmt.Errorf("liveboard: unknown widget type %q", in.Type)
	}
	decoded := Widget{ID: in.ID, Kind: in.Type, Title: in.Title}
	if in.CreatedAt != "" {
		ts, err := ParseTimestamp(in.CreatedAt)
		if err != nil {
			return err
		}
		decoded.CreatedAt = ts
	}
	var target any
	switch {
	case in.Type == KindCard:
		decoded.Card = &CardPayload{}
		target = decoded.Card
	case in.Type.IsChart():
		decoded.Chart = &ChartPayload{}
		target = decoded.Chart
	default:
		decoded.Table = &TablePayload{}
		target = decoded.Table
	}
	if len(in.Data) > 0 {
		if err := json.Unmarshal(in.Data, target); err != nil {
			return fmt.Errorf("liveboard: decode %s payload: %w", in.Type, err)
		}
	}
	*w = decoded
	return nil
}

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t as an ISO-8601 UTC string with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// ParseTimestamp parses ISO-8601 timestamps, truncating to milliseconds.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("liveboard: parse timestamp %q: %w", s, err)
	}
	return t.UTC().Truncate(time.Millisecond), nil
}
