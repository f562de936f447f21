package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-liveboard/components/liveboard"
)

type pinsService interface {
	Pins(ctx context.Context) ([]liveboard.PinnedDashboard, error)
	PinnedDashboard(ctx context.Context, id string) (liveboard.PinnedDashboard, error)
}

// PinnedDashboardsInput lists every pin.
type PinnedDashboardsInput struct{}

// PinnedDashboardsQuery lists pinned dashboards.
type PinnedDashboardsQuery struct {
	service pinsService
}

// NewPinnedDashboardsQuery builds the query.
func NewPinnedDashboardsQuery(service pinsService) *PinnedDashboardsQuery {
	return &PinnedDashboardsQuery{service: service}
}

var _ gocommand.Querier[PinnedDashboardsInput, []liveboard.PinnedDashboard] = (*PinnedDashboardsQuery)(nil)

// Query returns the pins, oldest first.
func (q *PinnedDashboardsQuery) Query(ctx context.Context, _ PinnedDashboardsInput) ([]liveboard.PinnedDashboard, error) {
	if q.service == nil {
		return nil, errors.New("pinned dashboards query requires service")
	}
	return q.service.Pins(ctx)
}

// PinnedDashboardInput identifies a single pin.
type PinnedDashboardInput struct {
	ID string
}

// PinnedDashboardQuery fetches one pin.
type PinnedDashboardQuery struct {
	service pinsService
}

// NewPinnedDashboardQuery builds the query.
func NewPinnedDashboardQuery(service pinsService) *PinnedDashboardQuery {
	return &PinnedDashboardQuery{service: service}
}

var _ gocommand.Querier[PinnedDashboardInput, liveboard.PinnedDashboard] = (*PinnedDashboardQuery)(nil)

// Query returns the pin or liveboard.ErrPinNotFound.
func (q *PinnedDashboardQuery) Query(ctx context.Context, msg PinnedDashboardInput) (liveboard.PinnedDashboard, error) {
	if q.service == nil {
		return liveboard.PinnedDashboard{}, errors.New("pinned dashboard query requires service")
	}
	if msg.ID == "" {
		return liveboard.PinnedDashboard{}, errors.New("pin id is required")
	}
	return q.service.PinnedDashboard(ctx, msg.ID)
}
