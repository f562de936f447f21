package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-liveboard/components/liveboard"
	"github.com/goliatone/go-liveboard/components/liveboard/commands"
	"github.com/goliatone/go-liveboard/components/liveboard/queries"
	"github.com/goliatone/go-liveboard/pkg/logger"
)

// Handlers exposes HTTP endpoints backed by shared commands and queries.
// Nil fields leave their route unregistered.
type Handlers struct {
	Invoke       gocommand.Commander[commands.InvokeToolInput]
	Reset        gocommand.Commander[commands.ResetBoardInput]
	Pin          gocommand.Commander[commands.PinDashboardInput]
	Unpin        gocommand.Commander[commands.UnpinDashboardInput]
	OpenPrompt   gocommand.Commander[commands.OpenPromptInput]
	SubmitPrompt gocommand.Commander[commands.SubmitPromptInput]

	Plan        gocommand.Querier[queries.RenderPlanInput, liveboard.RenderPlan]
	Pins        gocommand.Querier[queries.PinnedDashboardsInput, []liveboard.PinnedDashboard]
	PinByID     gocommand.Querier[queries.PinnedDashboardInput, liveboard.PinnedDashboard]
	Prompts     gocommand.Querier[queries.PromptsInput, []liveboard.Prompt]
	Preferences gocommand.Querier[queries.PreferencesInput, liveboard.Preferences]
	Catalog     gocommand.Querier[queries.ToolCatalogInput, *liveboard.ToolCatalog]
	Chart       gocommand.Querier[queries.ChartPreviewInput, string]

	// Events feeds the SSE and websocket streams.
	Events *liveboard.BroadcastHook
}

// invokeRequest mirrors the function-call payload sent by chat runtimes.
type invokeRequest struct {
	ID     string                  `json:"id"`
	Name   string                  `json:"name"`
	Args   liveboard.Args          `json:"args"`
	Source liveboard.TriggerSource `json:"source"`
}

func (h *Handlers) HandleInvoke(c *fiber.Ctx) error {
	var payload invokeRequest
	if err := c.BodyParser(&payload); err != nil {
		return respondError(c, http.StatusBadRequest, err)
	}
	if strings.TrimSpace(payload.Name) == "" {
		return respondError(c, http.StatusBadRequest, errors.New("tool name is required"))
	}
	var result liveboard.ToolResult
	err := h.Invoke.Execute(c.UserContext(), commands.InvokeToolInput{
		Call: liveboard.ToolCall{
			ID:     payload.ID,
			Name:   payload.Name,
			Args:   payload.Args,
			Source: payload.Source,
		},
		Result: &result,
	})
	if err != nil {
		return respondError(c, StatusFor(err), err)
	}
	return c.Status(http.StatusOK).JSON(result)
}

func (h *Handlers) HandlePlan(c *fiber.Ctx) error {
	plan, err := h.Plan.Query(c.UserContext(), queries.RenderPlanInput{})
	if err != nil {
		return respondError(c, StatusFor(err), err)
	}
	if match := c.Get(fiber.HeaderIfNoneMatch); match != "" && match == etag(plan.Fingerprint) {
		return c.SendStatus(http.StatusNotModified)
	}
	c.Set(fiber.HeaderETag, etag(plan.Fingerprint))
	return c.JSON(plan)
}

func (h *Handlers) HandleReset(c *fiber.Ctx) error {
	if err := h.Reset.Execute(c.UserContext(), commands.ResetBoardInput{}); err != nil {
		return respondError(c, StatusFor(err), err)
	}
	return c.JSON(fiber.Map{"status": "reset"})
}

func (h *Handlers) HandlePin(c *fiber.Ctx) error {
	var pin liveboard.PinnedDashboard
	if err := h.Pin.Execute(c.UserContext(), commands.PinDashboardInput{Result: &pin}); err != nil {
		return respondError(c, StatusFor(err), err)
	}
	return c.Status(http.StatusCreated).JSON(pin)
}

func (h *Handlers) HandleListPins(c *fiber.Ctx) error {
	pins, err := h.Pins.Query(c.UserContext(), queries.PinnedDashboardsInput{})
	if err != nil {
		return respondError(c, StatusFor(err), err)
	}
	if pins == nil {
		pins = []liveboard.PinnedDashboard{}
	}
	return c.JSON(pins)
}

func (h *Handlers) HandleGetPin(c *fiber.Ctx) error {
	pin, err := h.PinByID.Query(c.UserContext(), queries.PinnedDashboardInput{ID: strings.Clone(c.Params("id"))})
	if err != nil {
		return respondError(c, StatusFor(err), err)
	}
	return c.JSON(pin)
}

func (h *Handlers) HandleUnpin(c *fiber.Ctx) error {
	id := strings.Clone(c.Params("id"))
	if id == "" {
		return respondError(c, http.StatusBadRequest, errors.New("pin id is required"))
	}
	if err := h.Unpin.Execute(c.UserContext(), commands.UnpinDashboardInput{ID: id}); err != nil {
		return respondError(c, StatusFor(err), err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *Handlers) HandleListPrompts(c *fiber.Ctx) error {
	prompts, err := h.Prompts.Query(c.UserContext(), queries.PromptsInput{})
	if err != nil {
		return respondError(c, StatusFor(err), err)
	}
	if prompts == nil {
		prompts = []liveboard.Prompt{}
	}
	return c.JSON(prompts)
}

func (h *Handlers) HandleOpenPrompt(c *fiber.Ctx) error {
	var payload commands.OpenPromptInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return respondError(c, http.StatusBadRequest, err)
		}
	}
	var prompt liveboard.Prompt
	payload.Result = &prompt
	if err := h.OpenPrompt.Execute(c.UserContext(), payload); err != nil {
		return respondError(c, StatusFor(err), err)
	}
	return c.Status(http.StatusCreated).JSON(prompt)
}

func (h *Handlers) HandleSubmitPrompt(c *fiber.Ctx) error {
	var payload struct {
		Values map[string]any `json:"values"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return respondError(c, http.StatusBadRequest, err)
	}
	var prompt liveboard.Prompt
	err := h.SubmitPrompt.Execute(c.UserContext(), commands.SubmitPromptInput{
		PromptID: strings.Clone(c.Params("id")),
		Values:   payload.Values,
		Result:   &prompt,
	})
	if err != nil {
		return respondError(c, StatusFor(err), err)
	}
	return c.JSON(prompt)
}

func (h *Handlers) HandlePreferences(c *fiber.Ctx) error {
	prefs, err := h.Preferences.Query(c.UserContext(), queries.PreferencesInput{})
	if err != nil {
		return respondError(c, StatusFor(err), err)
	}
	return c.JSON(prefs)
}

func (h *Handlers) HandleCatalog(c *fiber.Ctx) error {
	catalog, err := h.Catalog.Query(c.UserContext(), queries.ToolCatalogInput{})
	if err != nil {
		return respondError(c, StatusFor(err), err)
	}
	if c.Query("format") == "schema" {
		tools := make([]fiber.Map, 0, len(catalog.Tools))
		for _, def := range catalog.Tools {
			tools = append(tools, fiber.Map{
				"name":        def.Name,
				"description": def.Description,
				"parameters":  def.Schema(),
			})
		}
		return c.JSON(tools)
	}
	return c.JSON(catalog)
}

func (h *Handlers) HandleChart(c *fiber.Ctx) error {
	html, err := h.Chart.Query(c.UserContext(), queries.ChartPreviewInput{WidgetID: strings.Clone(c.Params("id"))})
	if err != nil {
		return respondError(c, StatusFor(err), err)
	}
	c.Type("html", "utf-8")
	return c.SendString(html)
}

func etag(fingerprint string) string {
	return `"` + fingerprint + `"`
}

// StatusFor maps domain errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, liveboard.ErrPinNotFound),
		errors.Is(err, liveboard.ErrWidgetNotFound),
		errors.Is(err, liveboard.ErrUnknownPrompt):
		return http.StatusNotFound
	case errors.Is(err, liveboard.ErrPromptResolved):
		return http.StatusConflict
	case errors.Is(err, liveboard.ErrEmptyDashboard):
		return http.StatusUnprocessableEntity
	case liveboard.IsRejection(err), errors.Is(err, liveboard.ErrMissingPreference):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, status int, err error) error {
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
