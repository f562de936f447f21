package commands

import (
	"context"
	"errors"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-liveboard/components/liveboard"
)

type pinService interface {
	Pin(ctx context.Context) (liveboard.PinnedDashboard, error)
}

type unpinService interface {
	Unpin(ctx context.Context, id string) error
}

// PinDashboardInput saves the current board. Result receives the new pin.
type PinDashboardInput struct {
	Result *liveboard.PinnedDashboard
}

// PinDashboardCommand persists the board under a name.
type PinDashboardCommand struct {
	service   pinService
	telemetry Telemetry
}

// NewPinDashboardCommand creates a command instance.
func NewPinDashboardCommand(service pinService, telemetry Telemetry) *PinDashboardCommand {
	return &PinDashboardCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[PinDashboardInput] = (*PinDashboardCommand)(nil)

// Execute pins the current board.
func (c *PinDashboardCommand) Execute(ctx context.Context, msg PinDashboardInput) error {
	if c.service == nil {
		return errors.New("pin command requires service")
	}
	pin, err := c.service.Pin(ctx)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = pin
	}
	c.telemetry.Record(ctx, "liveboard.command.pin", map[string]any{
		"pin_id": pin.ID,
		"name":   pin.Name,
	})
	return nil
}

// UnpinDashboardInput identifies the pin to delete.
type UnpinDashboardInput struct {
	ID string `json:"id"`
}

// UnpinDashboardCommand removes a pinned dashboard.
type UnpinDashboardCommand struct {
	service   unpinService
	telemetry Telemetry
}

// NewUnpinDashboardCommand creates a command instance.
func NewUnpinDashboardCommand(service unpinService, telemetry Telemetry) *UnpinDashboardCommand {
	return &UnpinDashboardCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UnpinDashboardInput] = (*UnpinDashboardCommand)(nil)

// Execute deletes the pin.
func (c *UnpinDashboardCommand) Execute(ctx context.Context, msg UnpinDashboardInput) error {
	if c.service == nil {
		return errors.New("unpin command requires service")
	}
	id := strings.TrimSpace(msg.ID)
	if id == "" {
		return errors.New("pin id is required")
	}
	if err := c.service.Unpin(ctx, id); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "liveboard.command.unpin", map[string]any{"pin_id": id})
	return nil
}
