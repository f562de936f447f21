package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

type resetService interface {
	Reset(ctx context.Context) error
}

// ResetBoardInput clears the live board.
type ResetBoardInput struct{}

// ResetBoardCommand starts a new report.
type ResetBoardCommand struct {
	service   resetService
	telemetry Telemetry
}

// NewResetBoardCommand creates a command instance.
func NewResetBoardCommand(service resetService, telemetry Telemetry) *ResetBoardCommand {
	return &ResetBoardCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ResetBoardInput] = (*ResetBoardCommand)(nil)

// Execute clears widgets, placeholders and the report name.
func (c *ResetBoardCommand) Execute(ctx context.Context, _ ResetBoardInput) error {
	if c.service == nil {
		return errors.New("reset command requires service")
	}
	if err := c.service.Reset(ctx); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "liveboard.command.reset", nil)
	return nil
}
