package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-liveboard/components/liveboard"
)

type invokeService interface {
	Invoke(ctx context.Context, call liveboard.ToolCall) (liveboard.ToolResult, error)
}

// InvokeToolInput carries a tool call. Result, when set, receives the
// message the model should see.
type InvokeToolInput struct {
	Call   liveboard.ToolCall
	Result *liveboard.ToolResult
}

// InvokeToolCommand relays a tool call from a chat runtime to the board.
type InvokeToolCommand struct {
	service   invokeService
	telemetry Telemetry
}

// NewInvokeToolCommand creates a command instance.
func NewInvokeToolCommand(service invokeService, telemetry Telemetry) *InvokeToolCommand {
	return &InvokeToolCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[InvokeToolInput] = (*InvokeToolCommand)(nil)

// Execute runs the call. Rejected arguments are not an error: they are
// reported in the result message so the model can retry.
func (c *InvokeToolCommand) Execute(ctx context.Context, msg InvokeToolInput) error {
	if c.service == nil {
		return errors.New("invoke command requires service")
	}
	if msg.Call.Name == "" {
		return errors.New("tool name is required")
	}
	result, err := c.service.Invoke(ctx, msg.Call)
	if msg.Result != nil {
		*msg.Result = result
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "liveboard.command.invoke", map[string]any{
		"tool":   result.Tool,
		"status": string(result.Status),
	})
	return nil
}
