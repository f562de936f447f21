package gorouter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-liveboard/components/liveboard"
	"github.com/goliatone/go-liveboard/components/liveboard/commands"
	"github.com/goliatone/go-liveboard/components/liveboard/httpapi"
	"github.com/goliatone/go-liveboard/components/liveboard/queries"
)

// Config wires go-router with the liveboard commands, queries and event hook.
type Config[T any] struct {
	Router   router.Router[T]
	Handlers *httpapi.Handlers
	BasePath string
	Routes   httpapi.RouteConfig
}

// Register mounts the liveboard REST and WebSocket routes on a go-router
// router. SSE is only served by the native fiber transport.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Handlers == nil {
		return errors.New("gorouter: handlers are required")
	}
	routes := cfg.Routes.WithDefaults()
	base := cfg.BasePath
	if base == "" {
		base = "/api"
	}
	group := cfg.Router.Group(base)
	h := cfg.Handlers

	if h.Invoke != nil {
		group.Post(routes.Invoke, router.WrapHandler(func(ctx router.Context) error {
			var payload struct {
				ID     string                  `json:"id"`
				Name   string                  `json:"name"`
				Args   liveboard.Args          `json:"args"`
				Source liveboard.TriggerSource `json:"source"`
			}
			if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			if strings.TrimSpace(payload.Name) == "" {
				return respondError(ctx, http.StatusBadRequest, errors.New("tool name is required"))
			}
			var result liveboard.ToolResult
			err := h.Invoke.Execute(ctx.Context(), commands.InvokeToolInput{
				Call:   liveboard.ToolCall{ID: payload.ID, Name: payload.Name, Args: payload.Args, Source: payload.Source},
				Result: &result,
			})
			if err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, result)
		}))
	}

	if h.Plan != nil {
		group.Get(routes.Plan, router.WrapHandler(func(ctx router.Context) error {
			plan, err := h.Plan.Query(ctx.Context(), queries.RenderPlanInput{})
			if err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			ctx.SetHeader("ETag", `"`+plan.Fingerprint+`"`)
			return ctx.JSON(http.StatusOK, plan)
		}))
	}

	if h.Reset != nil {
		group.Post(routes.Reset, router.WrapHandler(func(ctx router.Context) error {
			if err := h.Reset.Execute(ctx.Context(), commands.ResetBoardInput{}); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, map[string]string{"status": "reset"})
		}))
	}

	registerPins(group, h, routes)
	registerPrompts(group, h, routes)

	if h.Catalog != nil {
		group.Get(routes.Catalog, router.WrapHandler(func(ctx router.Context) error {
			catalog, err := h.Catalog.Query(ctx.Context(), queries.ToolCatalogInput{})
			if err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, catalog)
		}))
	}

	if h.Chart != nil {
		group.Get(routes.Chart, router.WrapHandler(func(ctx router.Context) error {
			html, err := h.Chart.Query(ctx.Context(), queries.ChartPreviewInput{WidgetID: ctx.Param("id")})
			if err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
			return ctx.Send([]byte(html))
		}))
	}

	if h.Events != nil {
		registerWebSocket(group, h.Events, routes.WebSocket)
	}
	return nil
}

func registerPins[T any](r router.Router[T], h *httpapi.Handlers, routes httpapi.RouteConfig) {
	if h.Pins != nil {
		r.Get(routes.Pins, router.WrapHandler(func(ctx router.Context) error {
			pins, err := h.Pins.Query(ctx.Context(), queries.PinnedDashboardsInput{})
			if err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			if pins == nil {
				pins = []liveboard.PinnedDashboard{}
			}
			return ctx.JSON(http.StatusOK, pins)
		}))
	}
	if h.Pin != nil {
		r.Post(routes.Pins, router.WrapHandler(func(ctx router.Context) error {
			var pin liveboard.PinnedDashboard
			if err := h.Pin.Execute(ctx.Context(), commands.PinDashboardInput{Result: &pin}); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusCreated, pin)
		}))
	}
	if h.PinByID != nil {
		r.Get(routes.PinID, router.WrapHandler(func(ctx router.Context) error {
			pin, err := h.PinByID.Query(ctx.Context(), queries.PinnedDashboardInput{ID: ctx.Param("id")})
			if err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, pin)
		}))
	}
	if h.Unpin != nil {
		r.Delete(routes.PinID, router.WrapHandler(func(ctx router.Context) error {
			id := ctx.Param("id")
			if id == "" {
				return respondError(ctx, http.StatusBadRequest, errors.New("pin id is required"))
			}
			if err := h.Unpin.Execute(ctx.Context(), commands.UnpinDashboardInput{ID: id}); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, map[string]string{"status": "removed"})
		}))
	}
}

func registerPrompts[T any](r router.Router[T], h *httpapi.Handlers, routes httpapi.RouteConfig) {
	if h.Prompts != nil {
		r.Get(routes.Prompts, router.WrapHandler(func(ctx router.Context) error {
			prompts, err := h.Prompts.Query(ctx.Context(), queries.PromptsInput{})
			if err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			if prompts == nil {
				prompts = []liveboard.Prompt{}
			}
			return ctx.JSON(http.StatusOK, prompts)
		}))
	}
	if h.OpenPrompt != nil {
		r.Post(routes.Prompts, router.WrapHandler(func(ctx router.Context) error {
			var payload commands.OpenPromptInput
			if body := ctx.Body(); len(body) > 0 {
				if err := json.Unmarshal(body, &payload); err != nil {
					return respondError(ctx, http.StatusBadRequest, err)
				}
			}
			var prompt liveboard.Prompt
			payload.Result = &prompt
			if err := h.OpenPrompt.Execute(ctx.Context(), payload); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusCreated, prompt)
		}))
	}
	if h.SubmitPrompt != nil {
		r.Post(routes.PromptID, router.WrapHandler(func(ctx router.Context) error {
			var payload struct {
				Values map[string]any `json:"values"`
			}
			if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			var prompt liveboard.Prompt
			err := h.SubmitPrompt.Execute(ctx.Context(), commands.SubmitPromptInput{
				PromptID: ctx.Param("id"),
				Values:   payload.Values,
				Result:   &prompt,
			})
			if err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, prompt)
		}))
	}
	if h.Preferences != nil {
		r.Get(routes.Preferences, router.WrapHandler(func(ctx router.Context) error {
			prefs, err := h.Preferences.Query(ctx.Context(), queries.PreferencesInput{})
			if err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, prefs)
		}))
	}
}

func registerWebSocket[T any](r router.Router[T], hook *liveboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}
