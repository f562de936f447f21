package liveboard

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goliatone/go-liveboard/pkg/logger"
)

type recordingTelemetry struct {
	mu       sync.Mutex
	events   []string
	payloads []map[string]any
}

func (r *recordingTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.payloads = append(r.payloads, payload)
}

func TestSlogTelemetryWritesThroughContextLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := logger.ToContext(context.Background(), logger.New(&buf, "info", "json"))

	SlogTelemetry{Level: slog.LevelInfo}.Record(ctx, "liveboard.tool.invoke", map[string]any{
		"tool":   "render_table",
		"status": "ok",
	})
	assert.Contains(t, buf.String(), `"msg":"liveboard.tool.invoke"`)
	assert.Contains(t, buf.String(), `"tool":"render_table"`)

	buf.Reset()
	SlogTelemetry{Level: slog.LevelDebug}.Record(ctx, "hidden", nil)
	assert.Empty(t, buf.String())
}

func TestNormalizeTelemetryDefaultsToNoop(t *testing.T) {
	tel := normalizeTelemetry(nil)
	assert.NotPanics(t, func() { tel.Record(context.Background(), "x", nil) })
}
