package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-liveboard/components/liveboard"
)

type catalogService interface {
	Registry() *liveboard.ToolRegistry
}

// ToolCatalogInput requests the registered tools.
type ToolCatalogInput struct{}

// ToolCatalogQuery exports the tool registry for chat runtimes.
type ToolCatalogQuery struct {
	service catalogService
}

// NewToolCatalogQuery builds the query.
func NewToolCatalogQuery(service catalogService) *ToolCatalogQuery {
	return &ToolCatalogQuery{service: service}
}

var _ gocommand.Querier[ToolCatalogInput, *liveboard.ToolCatalog] = (*ToolCatalogQuery)(nil)

// Query snapshots the catalog.
func (q *ToolCatalogQuery) Query(_ context.Context, _ ToolCatalogInput) (*liveboard.ToolCatalog, error) {
	if q.service == nil || q.service.Registry() == nil {
		return nil, errors.New("tool catalog query requires service")
	}
	return q.service.Registry().Catalog(), nil
}
