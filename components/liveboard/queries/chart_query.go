package queries

import (
	"context"
	"errors"
	"strings"

	gocommand "github.com/goliatone/go-command"
)

type chartService interface {
	ChartHTML(ctx context.Context, widgetID string) (string, error)
}

// ChartPreviewInput identifies a committed chart widget.
type ChartPreviewInput struct {
	WidgetID string
}

// ChartPreviewQuery renders a chart widget as a standalone HTML page.
type ChartPreviewQuery struct {
	service chartService
}

// NewChartPreviewQuery builds the query.
func NewChartPreviewQuery(service chartService) *ChartPreviewQuery {
	return &ChartPreviewQuery{service: service}
}

var _ gocommand.Querier[ChartPreviewInput, string] = (*ChartPreviewQuery)(nil)

// Query returns the chart HTML.
func (q *ChartPreviewQuery) Query(ctx context.Context, msg ChartPreviewInput) (string, error) {
	if q.service == nil {
		return "", errors.New("chart preview query requires service")
	}
	id := strings.TrimSpace(msg.WidgetID)
	if id == "" {
		return "", errors.New("widget id is required")
	}
	return q.service.ChartHTML(ctx, id)
}
