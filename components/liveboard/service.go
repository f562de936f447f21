package liveboard

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Options configures the liveboard Service. Collaborators are interfaces so
// hosts can swap storage, hooks and telemetry.
type Options struct {
	Store           *Store
	Registry        *ToolRegistry
	Validator       ArgsValidator
	PreferenceStore PreferenceStore
	Storage         Storage
	RefreshHook     RefreshHook
	Telemetry       Telemetry
	Charts          *ChartRenderer
	Respond         RespondFunc
	Latency         time.Duration
}

// Service is the board facade used by commands, queries and transports.
type Service struct {
	opts       Options
	dispatcher *Dispatcher
	prompts    *PromptBroker
	pins       *PinStore
	reconciler *Reconciler
}

// NewService builds a Service with safe defaults.
func NewService(opts Options) *Service {
	if opts.Store == nil {
		opts.Store = NewStore()
	}
	if opts.Registry == nil {
		opts.Registry = NewToolRegistry()
	}
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	if opts.PreferenceStore == nil {
		opts.PreferenceStore = NewInMemoryPreferenceStore()
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Charts == nil {
		opts.Charts = NewChartRenderer()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)

	prompts := NewPromptBroker(opts.PreferenceStore, opts.Respond)
	svc := &Service{
		opts:       opts,
		prompts:    prompts,
		pins:       NewPinStore(opts.Storage),
		reconciler: NewReconciler(),
	}
	svc.dispatcher = NewDispatcher(DispatcherOptions{
		Store:       opts.Store,
		Registry:    opts.Registry,
		Normalizer:  NewNormalizer(),
		Validator:   opts.Validator,
		Prompts:     prompts,
		RefreshHook: opts.RefreshHook,
		Telemetry:   opts.Telemetry,
		Latency:     opts.Latency,
	})
	return svc
}

// Invoke runs a tool call.
func (s *Service) Invoke(ctx context.Context, call ToolCall) (ToolResult, error) {
	return s.dispatcher.Invoke(ctx, call)
}

// Tools lists the registered tool definitions.
func (s *Service) Tools() []ToolDefinition {
	return s.opts.Registry.Definitions()
}

// Registry exposes the tool registry for catalog export and overrides.
func (s *Service) Registry() *ToolRegistry {
	return s.opts.Registry
}

// Snapshot copies the board state.
func (s *Service) Snapshot() Snapshot {
	return s.opts.Store.Snapshot()
}

// Plan reconciles the current board into the fixed layout.
func (s *Service) Plan(ctx context.Context) RenderPlan {
	plan, changed := s.reconciler.Update(s.opts.Store.Snapshot())
	s.recordTelemetry(ctx, "liveboard.plan.resolve", map[string]any{
		"fingerprint": plan.Fingerprint,
		"changed":     changed,
	})
	return plan
}

// ChartHTML renders the preview HTML of a committed chart widget.
func (s *Service) ChartHTML(ctx context.Context, widgetID string) (string, error) {
	for _, w := range s.opts.Store.Snapshot().Widgets {
		if w.ID != widgetID {
			continue
		}
		html, err := s.opts.Charts.Render(w)
		if err != nil {
			s.recordTelemetry(ctx, "liveboard.chart.render_error", map[string]any{
				"widget_id": widgetID,
				"error":     err.Error(),
			})
			return "", err
		}
		return html, nil
	}
	return "", fmt.Errorf("%w: %s", ErrWidgetNotFound, widgetID)
}

// Reset clears widgets, placeholders and the report header.
func (s *Service) Reset(ctx context.Context) error {
	s.opts.Store.Reset()
	s.notify(ctx, BoardEvent{Reason: EventReset})
	s.recordTelemetry(ctx, "liveboard.board.reset", nil)
	return nil
}

// Pin saves the current board.
func (s *Service) Pin(ctx context.Context) (PinnedDashboard, error) {
	pin, err := s.pins.Pin(ctx, s.opts.Store.Snapshot())
	if err != nil {
		return PinnedDashboard{}, err
	}
	s.notify(ctx, BoardEvent{Reason: EventPinned, Title: pin.Name})
	s.recordTelemetry(ctx, "liveboard.pin.create", map[string]any{
		"pin_id":  pin.ID,
		"widgets": len(pin.Widgets),
	})
	return pin, nil
}

// Pins lists pinned dashboards.
func (s *Service) Pins(ctx context.Context) ([]PinnedDashboard, error) {
	return s.pins.List(ctx)
}

// PinnedDashboard fetches one pinned dashboard.
func (s *Service) PinnedDashboard(ctx context.Context, id string) (PinnedDashboard, error) {
	return s.pins.Get(ctx, id)
}

// Unpin deletes a pinned dashboard.
func (s *Service) Unpin(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("liveboard: pin id is required")
	}
	if err := s.pins.Delete(ctx, id); err != nil {
		return err
	}
	s.notify(ctx, BoardEvent{Reason: EventUnpinned, Title: id})
	s.recordTelemetry(ctx, "liveboard.pin.delete", map[string]any{"pin_id": id})
	return nil
}

// OpenPrompt opens a preference form from the UI rather than the model.
func (s *Service) OpenPrompt(ctx context.Context, purpose string, fields []string) Prompt {
	prompt := s.prompts.Open(TriggerManual, purpose, fields)
	s.notify(ctx, BoardEvent{Reason: EventPrompt, Title: prompt.ID})
	return prompt
}

// SubmitPrompt resolves a preference form.
func (s *Service) SubmitPrompt(ctx context.Context, id string, values map[string]any) (Prompt, error) {
	prompt, err := s.prompts.Submit(ctx, id, values)
	if err != nil {
		return prompt, err
	}
	s.notify(ctx, BoardEvent{Reason: EventPrompt, Title: prompt.ID})
	s.recordTelemetry(ctx, "liveboard.prompt.resolve", map[string]any{
		"prompt_id": prompt.ID,
		"source":    string(prompt.Source),
	})
	return prompt, nil
}

// Prompts lists prompts still awaiting a response.
func (s *Service) Prompts() []Prompt {
	return s.prompts.Awaiting()
}

// Prompt fetches a prompt by id.
func (s *Service) Prompt(id string) (Prompt, bool) {
	return s.prompts.Prompt(id)
}

// Preferences returns the submitted preferences.
func (s *Service) Preferences(ctx context.Context) (Preferences, error) {
	return s.prompts.Preferences(ctx)
}

func (s *Service) notify(ctx context.Context, event BoardEvent) {
	s.dispatcher.emit(ctx, event)
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}
