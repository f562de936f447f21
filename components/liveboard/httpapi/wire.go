package httpapi

import (
	"github.com/goliatone/go-liveboard/components/liveboard"
	"github.com/goliatone/go-liveboard/components/liveboard/commands"
	"github.com/goliatone/go-liveboard/components/liveboard/queries"
)

// NewHandlers builds every command and query against one service. events
// may be nil to disable the SSE and websocket routes.
func NewHandlers(service *liveboard.Service, telemetry commands.Telemetry, events *liveboard.BroadcastHook) *Handlers {
	return &Handlers{
		Invoke:       commands.NewInvokeToolCommand(service, telemetry),
		Reset:        commands.NewResetBoardCommand(service, telemetry),
		Pin:          commands.NewPinDashboardCommand(service, telemetry),
		Unpin:        commands.NewUnpinDashboardCommand(service, telemetry),
		OpenPrompt:   commands.NewOpenPromptCommand(service, telemetry),
		SubmitPrompt: commands.NewSubmitPromptCommand(service, telemetry),
		Plan:         queries.NewRenderPlanQuery(service),
		Pins:         queries.NewPinnedDashboardsQuery(service),
		PinByID:      queries.NewPinnedDashboardQuery(service),
		Prompts:      queries.NewPromptsQuery(service),
		Preferences:  queries.NewPreferencesQuery(service),
		Catalog:      queries.NewToolCatalogQuery(service),
		Chart:        queries.NewChartPreviewQuery(service),
		Events:       events,
	}
}
