package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-liveboard/components/liveboard"
)

type planService interface {
	Plan(ctx context.Context) liveboard.RenderPlan
}

// RenderPlanInput requests the current render plan.
type RenderPlanInput struct{}

// RenderPlanQuery reconciles the board into the fixed layout.
type RenderPlanQuery struct {
	service planService
}

// NewRenderPlanQuery builds the query.
func NewRenderPlanQuery(service planService) *RenderPlanQuery {
	return &RenderPlanQuery{service: service}
}

var _ gocommand.Querier[RenderPlanInput, liveboard.RenderPlan] = (*RenderPlanQuery)(nil)

// Query returns the plan.
func (q *RenderPlanQuery) Query(ctx context.Context, _ RenderPlanInput) (liveboard.RenderPlan, error) {
	if q.service == nil {
		return liveboard.RenderPlan{}, errors.New("render plan query requires service")
	}
	return q.service.Plan(ctx), nil
}
