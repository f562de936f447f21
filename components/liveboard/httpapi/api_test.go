package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-liveboard/components/liveboard"
	"github.com/goliatone/go-liveboard/components/liveboard/commands"
	"github.com/goliatone/go-liveboard/components/liveboard/queries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
	fill  func(T)
}

func (s *stubCommander[T]) Execute(_ context.Context, msg T) error {
	s.last = msg
	s.calls++
	if s.fill != nil {
		s.fill(msg)
	}
	return s.err
}

type stubQuerier[T, R any] struct {
	last   T
	calls  int
	result R
	err    error
}

func (s *stubQuerier[T, R]) Query(_ context.Context, msg T) (R, error) {
	s.last = msg
	s.calls++
	return s.result, s.err
}

func newApp(t *testing.T, h *Handlers) *fiber.App {
	t.Helper()
	app := fiber.New()
	require.NoError(t, Register(app, h, RouteConfig{}))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHandleInvoke(t *testing.T) {
	invoke := &stubCommander[commands.InvokeToolInput]{
		fill: func(msg commands.InvokeToolInput) {
			*msg.Result = liveboard.ToolResult{Tool: msg.Call.Name, Status: liveboard.StatusOK, Message: "✅ done"}
		},
	}
	app := newApp(t, &Handlers{Invoke: invoke})

	resp := doJSON(t, app, http.MethodPost, "/tools/invoke", map[string]any{
		"name": "renderMetricCard",
		"args": map[string]any{"title": "Revenue", "value": "$1"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[liveboard.ToolResult](t, resp)
	assert.Equal(t, "✅ done", result.Message)
	assert.Equal(t, "renderMetricCard", invoke.last.Call.Name)
	assert.Equal(t, "Revenue", invoke.last.Call.Args["title"])

	resp = doJSON(t, app, http.MethodPost, "/tools/invoke", map[string]any{"args": map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 1, invoke.calls)
}

func TestHandleInvokeAgainstService(t *testing.T) {
	service := liveboard.NewService(liveboard.Options{})
	app := newApp(t, &Handlers{
		Invoke: commands.NewInvokeToolCommand(service, nil),
		Plan:   queries.NewRenderPlanQuery(service),
	})

	resp := doJSON(t, app, http.MethodPost, "/tools/invoke", map[string]any{
		"name": "render_pie_chart",
		"args": map[string]any{"title": "Share", "categories": []string{"A", "B"}, "values": []float64{1, 2}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[liveboard.ToolResult](t, resp)
	assert.Equal(t, `✅ Pie chart "Share" has been added to the dashboard.`, result.Message)

	resp = doJSON(t, app, http.MethodPost, "/tools/invoke", map[string]any{
		"name": "render_table",
		"args": map[string]any{"title": "Orders"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result = decode[liveboard.ToolResult](t, resp)
	assert.Equal(t, liveboard.StatusRejected, result.Status)
	assert.True(t, strings.HasPrefix(result.Message, "❌ Error:"))

	resp = doJSON(t, app, http.MethodGet, "/board", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	plan := decode[liveboard.RenderPlan](t, resp)
	slot, ok := plan.Slot("pie")
	require.True(t, ok)
	assert.Equal(t, liveboard.SlotWidget, slot.State)
}

func TestHandlePlanETag(t *testing.T) {
	plan := &stubQuerier[queries.RenderPlanInput, liveboard.RenderPlan]{
		result: liveboard.RenderPlan{Fingerprint: "abc"},
	}
	app := newApp(t, &Handlers{Plan: plan})

	resp := doJSON(t, app, http.MethodGet, "/board", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `"abc"`, resp.Header.Get(fiber.HeaderETag))

	req := httptest.NewRequest(http.MethodGet, "/board", nil)
	req.Header.Set(fiber.HeaderIfNoneMatch, `"abc"`)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
}

func TestHandleReset(t *testing.T) {
	reset := &stubCommander[commands.ResetBoardInput]{}
	app := newApp(t, &Handlers{Reset: reset})
	resp := doJSON(t, app, http.MethodPost, "/board/reset", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, reset.calls)
}

func TestPinRoutes(t *testing.T) {
	pin := &stubCommander[commands.PinDashboardInput]{
		fill: func(msg commands.PinDashboardInput) {
			*msg.Result = liveboard.PinnedDashboard{ID: "pin-1", Name: "Dashboard 1"}
		},
	}
	unpin := &stubCommander[commands.UnpinDashboardInput]{}
	list := &stubQuerier[queries.PinnedDashboardsInput, []liveboard.PinnedDashboard]{}
	byID := &stubQuerier[queries.PinnedDashboardInput, liveboard.PinnedDashboard]{err: liveboard.ErrPinNotFound}
	app := newApp(t, &Handlers{Pin: pin, Unpin: unpin, Pins: list, PinByID: byID})

	resp := doJSON(t, app, http.MethodPost, "/pins", nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "pin-1", decode[map[string]any](t, resp)["id"])

	resp = doJSON(t, app, http.MethodGet, "/pins", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]map[string]any](t, resp))

	resp = doJSON(t, app, http.MethodGet, "/pins/pin-9", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "pin-9", byID.last.ID)

	resp = doJSON(t, app, http.MethodDelete, "/pins/pin-1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "pin-1", unpin.last.ID)
}

func TestHandlePinEmptyBoard(t *testing.T) {
	pin := &stubCommander[commands.PinDashboardInput]{err: liveboard.ErrEmptyDashboard}
	app := newApp(t, &Handlers{Pin: pin})
	resp := doJSON(t, app, http.MethodPost, "/pins", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestPromptRoutesAgainstService(t *testing.T) {
	service := liveboard.NewService(liveboard.Options{})
	app := newApp(t, &Handlers{
		OpenPrompt:   commands.NewOpenPromptCommand(service, nil),
		SubmitPrompt: commands.NewSubmitPromptCommand(service, nil),
		Prompts:      queries.NewPromptsQuery(service),
		Preferences:  queries.NewPreferencesQuery(service),
	})

	resp := doJSON(t, app, http.MethodPost, "/prompts", map[string]any{
		"context":        "theme selection",
		"requiredFields": []string{"theme"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	prompt := decode[liveboard.Prompt](t, resp)
	assert.Equal(t, liveboard.TriggerManual, prompt.Source)

	resp = doJSON(t, app, http.MethodGet, "/prompts", nil)
	assert.Len(t, decode[[]liveboard.Prompt](t, resp), 1)

	resp = doJSON(t, app, http.MethodPost, "/prompts/"+prompt.ID, map[string]any{"values": map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/prompts/"+prompt.ID, map[string]any{"values": map[string]any{"theme": "dark"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, liveboard.PromptResolved, decode[liveboard.Prompt](t, resp).State)

	resp = doJSON(t, app, http.MethodPost, "/prompts/"+prompt.ID, map[string]any{"values": map[string]any{"theme": "light"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/prompts/prompt-missing", map[string]any{"values": map[string]any{"theme": "light"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/preferences", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	prefs := decode[liveboard.Preferences](t, resp)
	assert.Equal(t, "dark", prefs.Values["theme"])
}

func TestHandleCatalog(t *testing.T) {
	registry := liveboard.NewToolRegistry()
	catalog := &stubQuerier[queries.ToolCatalogInput, *liveboard.ToolCatalog]{result: registry.Catalog()}
	app := newApp(t, &Handlers{Catalog: catalog})

	resp := doJSON(t, app, http.MethodGet, "/tools", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := decode[liveboard.ToolCatalog](t, resp)
	assert.Len(t, doc.Tools, len(liveboard.DefaultToolDefinitions()))

	resp = doJSON(t, app, http.MethodGet, "/tools?format=schema", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tools := decode[[]map[string]any](t, resp)
	require.NotEmpty(t, tools)
	params, ok := tools[0]["parameters"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", params["type"])
}

func TestHandleChart(t *testing.T) {
	chart := &stubQuerier[queries.ChartPreviewInput, string]{result: "<html>chart</html>"}
	app := newApp(t, &Handlers{Chart: chart})

	resp := doJSON(t, app, http.MethodGet, "/charts/w-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/html")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "<html>chart</html>", string(body))
	assert.Equal(t, "w-1", chart.last.WidgetID)

	chart.err = liveboard.ErrWidgetNotFound
	resp = doJSON(t, app, http.MethodGet, "/charts/w-2", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRegisterSkipsNilHandlers(t *testing.T) {
	app := newApp(t, &Handlers{})
	resp := doJSON(t, app, http.MethodGet, "/board", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Error(t, Register(nil, &Handlers{}, RouteConfig{}))
	assert.Error(t, Register(fiber.New(), nil, RouteConfig{}))
}

func TestWebSocketRouteRequiresUpgrade(t *testing.T) {
	app := newApp(t, &Handlers{Events: liveboard.NewBroadcastHook()})
	resp := doJSON(t, app, http.MethodGet, "/ws", nil)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestStreamEventsWritesSSEFrames(t *testing.T) {
	events := make(chan liveboard.BoardEvent, 2)
	events <- liveboard.BoardEvent{Reason: liveboard.EventCommitted, WidgetID: "w-1", At: time.Unix(0, 0).UTC()}
	events <- liveboard.BoardEvent{Reason: liveboard.EventReset, At: time.Unix(0, 0).UTC()}
	close(events)

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, streamEvents(w, events, nil))

	out := buf.String()
	assert.Contains(t, out, "event: committed\ndata: {")
	assert.Contains(t, out, `"widgetId":"w-1"`)
	assert.Contains(t, out, "event: reset\n")
	assert.Equal(t, 2, strings.Count(out, "\n\n"))
}

func TestNewHandlersEndToEnd(t *testing.T) {
	hook := liveboard.NewBroadcastHook()
	service := liveboard.NewService(liveboard.Options{RefreshHook: hook})
	app := newApp(t, NewHandlers(service, nil, hook))

	events, cancel := hook.Subscribe()
	defer cancel()

	resp := doJSON(t, app, http.MethodPost, "/tools/invoke", map[string]any{
		"name": "set_report_name",
		"args": map[string]any{"name": "Quarterly"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	select {
	case event := <-events:
		assert.Equal(t, liveboard.EventReport, event.Reason)
		assert.Equal(t, "Quarterly", event.Title)
	case <-time.After(time.Second):
		t.Fatal("expected a report event")
	}

	resp = doJSON(t, app, http.MethodPost, "/pins", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/tools", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
