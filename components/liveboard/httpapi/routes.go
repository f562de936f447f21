package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// RouteConfig names the endpoints. Empty fields use the defaults.
type RouteConfig struct {
	Invoke      string
	Plan        string
	Reset       string
	Pins        string
	PinID       string
	Prompts     string
	PromptID    string
	Preferences string
	Catalog     string
	Chart       string
	Events      string
	WebSocket   string
}

// Register wires the handlers onto a fiber router.
func Register(r fiber.Router, h *Handlers, routes RouteConfig) error {
	if r == nil {
		return errors.New("httpapi: router is required")
	}
	if h == nil {
		return errors.New("httpapi: handlers are required")
	}
	routes = routes.WithDefaults()

	if h.Invoke != nil {
		r.Post(routes.Invoke, h.HandleInvoke)
	}
	if h.Plan != nil {
		r.Get(routes.Plan, h.HandlePlan)
	}
	if h.Reset != nil {
		r.Post(routes.Reset, h.HandleReset)
	}
	if h.Pins != nil {
		r.Get(routes.Pins, h.HandleListPins)
	}
	if h.Pin != nil {
		r.Post(routes.Pins, h.HandlePin)
	}
	if h.PinByID != nil {
		r.Get(routes.PinID, h.HandleGetPin)
	}
	if h.Unpin != nil {
		r.Delete(routes.PinID, h.HandleUnpin)
	}
	if h.Prompts != nil {
		r.Get(routes.Prompts, h.HandleListPrompts)
	}
	if h.OpenPrompt != nil {
		r.Post(routes.Prompts, h.HandleOpenPrompt)
	}
	if h.SubmitPrompt != nil {
		r.Post(routes.PromptID, h.HandleSubmitPrompt)
	}
	if h.Preferences != nil {
		r.Get(routes.Preferences, h.HandlePreferences)
	}
	if h.Catalog != nil {
		r.Get(routes.Catalog, h.HandleCatalog)
	}
	if h.Chart != nil {
		r.Get(routes.Chart, h.HandleChart)
	}
	if h.Events != nil {
		r.Get(routes.Events, h.HandleEvents)
		r.Get(routes.WebSocket, requireUpgrade, h.HandleSocket())
	}
	return nil
}

// WithDefaults fills empty paths with the default routes.
func (routes RouteConfig) WithDefaults() RouteConfig {
	if routes.Invoke == "" {
		routes.Invoke = "/tools/invoke"
	}
	if routes.Plan == "" {
		routes.Plan = "/board"
	}
	if routes.Reset == "" {
		routes.Reset = "/board/reset"
	}
	if routes.Pins == "" {
		routes.Pins = "/pins"
	}
	if routes.PinID == "" {
		routes.PinID = "/pins/:id"
	}
	if routes.Prompts == "" {
		routes.Prompts = "/prompts"
	}
	if routes.PromptID == "" {
		routes.PromptID = "/prompts/:id"
	}
	if routes.Preferences == "" {
		routes.Preferences = "/preferences"
	}
	if routes.Catalog == "" {
		routes.Catalog = "/tools"
	}
	if routes.Chart == "" {
		routes.Chart = "/charts/:id"
	}
	if routes.Events == "" {
		routes.Events = "/events"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
