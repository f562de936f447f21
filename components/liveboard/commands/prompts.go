package commands

import (
	"context"
	"errors"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-liveboard/components/liveboard"
)

type promptService interface {
	OpenPrompt(ctx context.Context, purpose string, fields []string) liveboard.Prompt
	SubmitPrompt(ctx context.Context, id string, values map[string]any) (liveboard.Prompt, error)
}

// OpenPromptInput opens a preference form from the UI.
type OpenPromptInput struct {
	Context        string            `json:"context"`
	RequiredFields []string          `json:"requiredFields,omitempty"`
	Result         *liveboard.Prompt `json:"-"`
}

// OpenPromptCommand opens a manual preference prompt.
type OpenPromptCommand struct {
	service   promptService
	telemetry Telemetry
}

// NewOpenPromptCommand creates a command instance.
func NewOpenPromptCommand(service promptService, telemetry Telemetry) *OpenPromptCommand {
	return &OpenPromptCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[OpenPromptInput] = (*OpenPromptCommand)(nil)

// Execute opens the prompt.
func (c *OpenPromptCommand) Execute(ctx context.Context, msg OpenPromptInput) error {
	if c.service == nil {
		return errors.New("open prompt command requires service")
	}
	prompt := c.service.OpenPrompt(ctx, strings.TrimSpace(msg.Context), msg.RequiredFields)
	if msg.Result != nil {
		*msg.Result = prompt
	}
	c.telemetry.Record(ctx, "liveboard.command.prompt_open", map[string]any{
		"prompt_id": prompt.ID,
		"fields":    len(prompt.RequiredFields),
	})
	return nil
}

// SubmitPromptInput answers a prompt.
type SubmitPromptInput struct {
	PromptID string            `json:"promptId"`
	Values   map[string]any    `json:"values"`
	Result   *liveboard.Prompt `json:"-"`
}

// SubmitPromptCommand resolves a preference prompt.
type SubmitPromptCommand struct {
	service   promptService
	telemetry Telemetry
}

// NewSubmitPromptCommand creates a command instance.
func NewSubmitPromptCommand(service promptService, telemetry Telemetry) *SubmitPromptCommand {
	return &SubmitPromptCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SubmitPromptInput] = (*SubmitPromptCommand)(nil)

// Execute submits the values.
func (c *SubmitPromptCommand) Execute(ctx context.Context, msg SubmitPromptInput) error {
	if c.service == nil {
		return errors.New("submit prompt command requires service")
	}
	if msg.PromptID == "" {
		return errors.New("prompt id is required")
	}
	prompt, err := c.service.SubmitPrompt(ctx, msg.PromptID, msg.Values)
	if msg.Result != nil {
		*msg.Result = prompt
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "liveboard.command.prompt_submit", map[string]any{
		"prompt_id": prompt.ID,
		"source":    string(prompt.Source),
	})
	return nil
}
