package liveboard

import (
	"context"
	"log/slog"
	"sort"

	"github.com/goliatone/go-liveboard/pkg/logger"
)

// Telemetry records board events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// SlogTelemetry writes telemetry events through the context logger.
type SlogTelemetry struct {
	Level slog.Level
}

// Record logs event with the payload flattened into attributes in key order.
func (t SlogTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	log := logger.FromContext(ctx)
	if !log.Enabled(ctx, t.Level) {
		return
	}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, payload[k]))
	}
	log.LogAttrs(ctx, t.Level, event, attrs...)
}
