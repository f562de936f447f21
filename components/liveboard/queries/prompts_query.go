package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-liveboard/components/liveboard"
)

type promptsService interface {
	Prompts() []liveboard.Prompt
	Preferences(ctx context.Context) (liveboard.Preferences, error)
}

// PromptsInput lists awaiting prompts.
type PromptsInput struct{}

// PromptsQuery returns prompts still waiting for the user.
type PromptsQuery struct {
	service promptsService
}

// NewPromptsQuery builds the query.
func NewPromptsQuery(service promptsService) *PromptsQuery {
	return &PromptsQuery{service: service}
}

var _ gocommand.Querier[PromptsInput, []liveboard.Prompt] = (*PromptsQuery)(nil)

func (q *PromptsQuery) Query(_ context.Context, _ PromptsInput) ([]liveboard.Prompt, error) {
	if q.service == nil {
		return nil, errors.New("prompts query requires service")
	}
	return q.service.Prompts(), nil
}

// PreferencesInput requests the submitted preferences.
type PreferencesInput struct{}

// PreferencesQuery reads back what the user submitted through prompts.
type PreferencesQuery struct {
	service promptsService
}

// NewPreferencesQuery builds the query.
func NewPreferencesQuery(service promptsService) *PreferencesQuery {
	return &PreferencesQuery{service: service}
}

var _ gocommand.Querier[PreferencesInput, liveboard.Preferences] = (*PreferencesQuery)(nil)

func (q *PreferencesQuery) Query(ctx context.Context, _ PreferencesInput) (liveboard.Preferences, error) {
	if q.service == nil {
		return liveboard.Preferences{}, errors.New("preferences query requires service")
	}
	return q.service.Preferences(ctx)
}
