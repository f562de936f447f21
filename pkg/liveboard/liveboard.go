package liveboard

import (
	core "github.com/goliatone/go-liveboard/components/liveboard"
)

// Service exposes the underlying components/liveboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// ToolCall and ToolResult are the tool invocation contract.
type (
	ToolCall   = core.ToolCall
	ToolResult = core.ToolResult
	Args       = core.Args
)

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}
