package liveboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-liveboard/pkg/logger"
)

// ToolStatus classifies a tool result.
type ToolStatus string

const (
	StatusOK       ToolStatus = "ok"
	StatusRejected ToolStatus = "rejected"
	StatusAwaiting ToolStatus = "awaiting_response"
	StatusFailed   ToolStatus = "failed"
)

// ToolCall is one tool invocation relayed by the chat runtime.
type ToolCall struct {
	ID     string        `json:"id,omitempty"`
	Name   string        `json:"name"`
	Args   Args          `json:"args"`
	Source TriggerSource `json:"source,omitempty"`
}

// ToolResult is what the model sees, plus bookkeeping for transports.
type ToolResult struct {
	Tool     string        `json:"tool"`
	Message  string        `json:"message"`
	Status   ToolStatus    `json:"status"`
	WidgetID string        `json:"widgetId,omitempty"`
	Commit   *CommitResult `json:"commit,omitempty"`
	Degraded bool          `json:"degraded,omitempty"`
	Prompt   *Prompt       `json:"prompt,omitempty"`
}

var widgetLabels = map[Kind]string{
	KindCard:      "Metric card",
	KindLineChart: "Line chart",
	KindBarChart:  "Bar chart",
	KindPieChart:  "Pie chart",
	KindTable:     "Table",
}

// DispatcherOptions wires a Dispatcher.
type DispatcherOptions struct {
	Store       *Store
	Registry    *ToolRegistry
	Normalizer  *Normalizer
	Validator   ArgsValidator
	Prompts     *PromptBroker
	RefreshHook RefreshHook
	Telemetry   Telemetry
	// Latency delays every widget commit, keeping the loading placeholder
	// visible. Zero disables the delay.
	Latency time.Duration
}

// Dispatcher routes tool calls to the normalizer, the store and the prompt
// broker. Every widget call that reaches the store ends in exactly one
// Commit or Discard of its placeholder.
type Dispatcher struct {
	opts DispatcherOptions
	now  func() time.Time
}

// NewDispatcher builds a dispatcher with safe defaults.
func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	if opts.Store == nil {
		opts.Store = NewStore()
	}
	if opts.Registry == nil {
		opts.Registry = NewToolRegistry()
	}
	if opts.Normalizer == nil {
		opts.Normalizer = NewNormalizer()
	}
	if opts.Validator == nil {
		opts.Validator = noopArgsValidator{}
	}
	if opts.Prompts == nil {
		opts.Prompts = NewPromptBroker(nil, nil)
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Dispatcher{opts: opts, now: time.Now}
}

// Invoke executes a tool call. Argument problems are reported in the result
// message with a nil error; an error is returned only when ctx is cancelled
// or the call could not be completed.
func (d *Dispatcher) Invoke(ctx context.Context, call ToolCall) (ToolResult, error) {
	log, ctx := logger.With(ctx, "tool", call.Name)
	name, ok := d.opts.Registry.Resolve(call.Name)
	if !ok {
		log.Warn("unknown tool")
		return d.finish(ctx, ToolResult{
			Tool:    call.Name,
			Message: fmt.Sprintf("❌ Error: Unknown tool %q.", call.Name),
			Status:  StatusRejected,
		}), nil
	}
	args := call.Args
	if args == nil {
		args = Args{}
	}
	if def, ok := d.opts.Registry.Definition(name); ok && def.Strict {
		if err := d.opts.Validator.Validate(def, args); err != nil {
			return d.rejected(ctx, name, err)
		}
	}

	switch name {
	case ToolSetReportName:
		return d.setReportName(ctx, args)
	case ToolCollectUserPrefs:
		return d.collectPreferences(ctx, call, args)
	default:
		return d.renderWidget(ctx, name, args)
	}
}

func (d *Dispatcher) rejected(ctx context.Context, tool string, err error) (ToolResult, error) {
	var rej *RejectionError
	if !errors.As(err, &rej) {
		return d.finish(ctx, ToolResult{Tool: tool, Message: "❌ Error: " + err.Error(), Status: StatusFailed}), err
	}
	logger.FromContext(ctx).Info("tool call rejected", "param", rej.Param)
	return d.finish(ctx, ToolResult{Tool: tool, Message: rej.Message, Status: StatusRejected}), nil
}

func (d *Dispatcher) setReportName(ctx context.Context, args Args) (ToolResult, error) {
	name, err := d.opts.Normalizer.ReportName(args)
	if err != nil {
		return d.rejected(ctx, ToolSetReportName, err)
	}
	d.opts.Store.SetReportName(name)
	d.opts.Store.TouchGeneratedAt(d.now())
	d.emit(ctx, BoardEvent{Reason: EventReport, Title: name})
	return d.finish(ctx, ToolResult{
		Tool:    ToolSetReportName,
		Message: fmt.Sprintf("✅ Report name set to %q.", name),
		Status:  StatusOK,
	}), nil
}

func (d *Dispatcher) collectPreferences(ctx context.Context, call ToolCall, args Args) (ToolResult, error) {
	fields, _ := stringSliceValue(args["requiredFields"])
	source := call.Source
	if source == "" {
		source = TriggerAI
	}
	prompt := d.opts.Prompts.Open(source, args.string("context"), fields)
	d.emit(ctx, BoardEvent{Reason: EventPrompt, Title: prompt.ID})
	return d.finish(ctx, ToolResult{
		Tool:    ToolCollectUserPrefs,
		Message: "⏳ Waiting for the user to submit their preferences.",
		Status:  StatusAwaiting,
		Prompt:  &prompt,
	}), nil
}

func (d *Dispatcher) renderWidget(ctx context.Context, tool string, args Args) (ToolResult, error) {
	log := logger.FromContext(ctx)
	kind, err := d.opts.Normalizer.Check(tool, args)
	if err != nil {
		return d.rejected(ctx, tool, err)
	}

	store := d.opts.Store
	loadingID := store.BeginLoading(kind, args.string("title"))
	d.emit(ctx, BoardEvent{Reason: EventLoading, LoadingID: loadingID, Kind: kind, Title: args.string("title")})
	settled := false
	defer func() {
		if !settled && store.Discard(loadingID) {
			d.emit(context.WithoutCancel(ctx), BoardEvent{Reason: EventDiscarded, LoadingID: loadingID, Kind: kind})
		}
	}()

	if err := d.wait(ctx); err != nil {
		log.Info("tool call cancelled", "error", err)
		return d.finish(ctx, ToolResult{
			Tool:    tool,
			Message: fmt.Sprintf("❌ Error: %s was cancelled.", widgetLabels[kind]),
			Status:  StatusFailed,
		}), err
	}

	built := d.opts.Normalizer.Build(kind, args)
	if built.Degraded {
		log.Warn("degraded tool input, using fallback payload", "reason", built.Reason)
	}
	commit := store.Commit(built.Widget, loadingID)
	settled = true
	if commit.Reason == CommitStale {
		log.Info("board reset while tool call was in flight", "loading_id", loadingID)
		d.emit(ctx, BoardEvent{Reason: EventDiscarded, LoadingID: loadingID, Kind: kind})
		return d.finish(ctx, ToolResult{
			Tool:    tool,
			Message: fmt.Sprintf("❌ Error: %s was discarded because the board was reset.", widgetLabels[kind]),
			Status:  StatusFailed,
			Commit:  &commit,
		}), nil
	}
	if !commit.Added {
		log.Debug("widget not added", "reason", commit.Reason, "title", built.Widget.Title)
	}
	store.TouchGeneratedAt(d.now())

	reason := EventCommitted
	if !commit.Added {
		reason = EventSkipped
	}
	d.emit(ctx, BoardEvent{
		Reason:    reason,
		WidgetID:  built.Widget.ID,
		LoadingID: loadingID,
		Kind:      kind,
		Title:     built.Widget.Title,
	})

	title := args.string("title")
	if title == "" {
		title = built.Widget.Title
	}
	result := ToolResult{
		Tool:     tool,
		Message:  fmt.Sprintf("✅ %s %q has been added to the dashboard.", widgetLabels[kind], title),
		Status:   StatusOK,
		Commit:   &commit,
		Degraded: built.Degraded,
	}
	if commit.Added {
		result.WidgetID = built.Widget.ID
	}
	return d.finish(ctx, result), nil
}

func (d *Dispatcher) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.opts.Latency <= 0 {
		return nil
	}
	timer := time.NewTimer(d.opts.Latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (d *Dispatcher) emit(ctx context.Context, event BoardEvent) {
	event.At = d.now().UTC()
	event.Fingerprint = Reconcile(d.opts.Store.Snapshot()).Fingerprint
	if err := d.opts.RefreshHook.BoardUpdated(ctx, event); err != nil {
		logger.FromContext(ctx).Warn("refresh hook failed", "reason", event.Reason, "error", err)
	}
}

func (d *Dispatcher) finish(ctx context.Context, result ToolResult) ToolResult {
	payload := map[string]any{
		"tool":   result.Tool,
		"status": string(result.Status),
	}
	if result.WidgetID != "" {
		payload["widget_id"] = result.WidgetID
	}
	if result.Commit != nil {
		payload["commit"] = string(result.Commit.Reason)
	}
	if result.Degraded {
		payload["degraded"] = true
	}
	d.opts.Telemetry.Record(ctx, "liveboard.tool.invoke", payload)
	return result
}
