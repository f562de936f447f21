package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	router "github.com/goliatone/go-router"
	"github.com/google/uuid"

	"github.com/goliatone/go-liveboard/components/liveboard"
	"github.com/goliatone/go-liveboard/components/liveboard/gorouter"
	"github.com/goliatone/go-liveboard/components/liveboard/httpapi"
	"github.com/goliatone/go-liveboard/internal/config"
	"github.com/goliatone/go-liveboard/pkg/logger"
)

// Globals are shared by every command.
type Globals struct {
	Config   string `type:"path" env:"LIVEBOARD_CONFIG" help:"Optional YAML config file."`
	LogLevel string `help:"Override the configured log level (debug, info, warn, error)."`

	Stdout io.Writer                      `kong:"-"`
	Lookup func(string) (string, bool) `kong:"-"`
}

type cli struct {
	Globals

	Serve   serveCmd   `cmd:"" help:"Run the HTTP, SSE and websocket server."`
	Call    callCmd    `cmd:"" help:"Replay tool calls against a fresh board and print the results."`
	Catalog catalogCmd `cmd:"" help:"Export the tool catalog as YAML."`
	Pins    pinsCmd    `cmd:"" help:"Inspect pinned dashboards."`
}

func main() {
	var root cli
	root.Stdout = os.Stdout
	ctx := kong.Parse(&root,
		kong.Name("liveboard"),
		kong.Description("Live dashboard driven by LLM tool calls."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&root.Globals)
	ctx.FatalIfErrorf(err)
}

// appRuntime is the wired application shared by the commands.
type appRuntime struct {
	cfg     config.Config
	log     *slog.Logger
	service *liveboard.Service
	events  *liveboard.BroadcastHook
}

func (g *Globals) load() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(g.Config, g.Lookup)
	if err != nil {
		return cfg, nil, err
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	return cfg, logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat), nil
}

func (g *Globals) runtime(storage liveboard.Storage) (*appRuntime, error) {
	cfg, log, err := g.load()
	if err != nil {
		return nil, err
	}
	if storage == nil {
		fs, err := liveboard.NewFileStorage(cfg.StorageDir)
		if err != nil {
			return nil, err
		}
		storage = fs
	}
	registry := liveboard.NewToolRegistry()
	if cfg.CatalogPath != "" {
		if _, err := registry.LoadCatalogFile(cfg.CatalogPath); err != nil {
			return nil, err
		}
	}
	chartOpts := []liveboard.ChartRendererOption{
		liveboard.WithChartCache(liveboard.NewChartCache(cfg.Charts.CacheTTL)),
	}
	if cfg.Charts.Theme != "" {
		chartOpts = append(chartOpts, liveboard.WithChartTheme(cfg.Charts.Theme))
	}
	if cfg.Charts.AssetsHost != "" {
		chartOpts = append(chartOpts, liveboard.WithChartAssetsHost(cfg.Charts.AssetsHost))
	}
	events := liveboard.NewBroadcastHook()
	service := liveboard.NewService(liveboard.Options{
		Registry:    registry,
		Storage:     storage,
		Charts:      liveboard.NewChartRenderer(chartOpts...),
		RefreshHook: events,
		Telemetry:   liveboard.SlogTelemetry{Level: slog.LevelDebug},
		Latency:     cfg.Latency,
		Respond: func(ctx context.Context, prompt liveboard.Prompt) error {
			logger.FromContext(ctx).Info("preferences submitted", "prompt_id", prompt.ID, "fields", len(prompt.Values))
			return nil
		},
	})
	return &appRuntime{cfg: cfg, log: log, service: service, events: events}, nil
}

func (g *Globals) out() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

type serveCmd struct {
	Addr    string `help:"Listen address; overrides the configured http.addr."`
	Adapter string `enum:"fiber,gorouter" default:"fiber" help:"HTTP stack: native fiber (REST, SSE, websocket) or go-router (REST, websocket)."`
}

// server is the subset of fiber.App and go-router servers serve needs.
type server interface {
	Listen(addr string) error
	ShutdownWithContext(ctx context.Context) error
}

type routerServer struct {
	srv router.Server[*fiber.App]
}

func (s routerServer) Listen(addr string) error { return s.srv.Serve(addr) }

func (s routerServer) ShutdownWithContext(ctx context.Context) error { return s.srv.Shutdown(ctx) }

func (cmd *serveCmd) Run(g *Globals) error {
	rt, err := g.runtime(nil)
	if err != nil {
		return err
	}
	if cmd.Addr != "" {
		rt.cfg.HTTP.Addr = cmd.Addr
	}
	var app server
	switch cmd.Adapter {
	case "gorouter":
		srv, err := newRouterServer(rt)
		if err != nil {
			return err
		}
		app = srv
	default:
		app = newApp(rt)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		rt.log.Info("liveboard listening", "addr", rt.cfg.HTTP.Addr, "adapter", cmd.Adapter)
		errCh <- app.Listen(rt.cfg.HTTP.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	rt.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

func newApp(rt *appRuntime) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "liveboard",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(func(c *fiber.Ctx) error {
		log := rt.log.With("request_id", uuid.NewString(), "method", c.Method(), "path", c.Path())
		c.SetUserContext(logger.ToContext(c.UserContext(), log))
		start := time.Now()
		err := c.Next()
		log.Debug("request", "status", c.Response().StatusCode(), "duration", time.Since(start))
		return err
	})
	api := app.Group("/api")
	handlers := httpapi.NewHandlers(rt.service, liveboard.SlogTelemetry{Level: slog.LevelDebug}, rt.events)
	if err := httpapi.Register(api, handlers, httpapi.RouteConfig{}); err != nil {
		rt.log.Error("register routes", "error", err)
	}
	return app
}

func newRouterServer(rt *appRuntime) (routerServer, error) {
	srv := router.NewFiberAdapter()
	handlers := httpapi.NewHandlers(rt.service, liveboard.SlogTelemetry{Level: slog.LevelDebug}, rt.events)
	err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:   srv.Router(),
		Handlers: handlers,
	})
	if err != nil {
		return routerServer{}, fmt.Errorf("liveboard: register routes: %w", err)
	}
	return routerServer{srv: srv}, nil
}

type callCmd struct {
	Script string `arg:"" type:"existingfile" help:"JSON file with an array of {name, args} tool calls."`
	Pin    bool   `help:"Pin the resulting board to storage."`
	Plan   bool   `help:"Print the final render plan as JSON."`
}

func (cmd *callCmd) Run(g *Globals) error {
	rt, err := g.runtime(nil)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(cmd.Script)
	if err != nil {
		return fmt.Errorf("liveboard: read script: %w", err)
	}
	var calls []liveboard.ToolCall
	if err := json.Unmarshal(data, &calls); err != nil {
		return fmt.Errorf("liveboard: parse script: %w", err)
	}
	ctx := logger.ToContext(context.Background(), rt.log)
	out := g.out()
	for _, call := range calls {
		result, err := rt.service.Invoke(ctx, call)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, result.Message)
	}
	if cmd.Pin {
		pin, err := rt.service.Pin(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "📌 Pinned %q as %s\n", pin.Name, pin.ID)
	}
	if cmd.Plan {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rt.service.Plan(ctx))
	}
	return nil
}

type catalogCmd struct {
	Out string `type:"path" help:"Write the catalog to this file instead of stdout."`
}

func (cmd *catalogCmd) Run(g *Globals) error {
	rt, err := g.runtime(liveboard.NewMemoryStorage())
	if err != nil {
		return err
	}
	doc := rt.service.Registry().Catalog()
	if cmd.Out == "" {
		return liveboard.EncodeCatalog(g.out(), doc)
	}
	f, err := os.Create(cmd.Out) //nolint:gosec
	if err != nil {
		return fmt.Errorf("liveboard: create %s: %w", cmd.Out, err)
	}
	if err := liveboard.EncodeCatalog(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type pinsCmd struct {
	List   pinsListCmd   `cmd:"" default:"1" help:"List pinned dashboards."`
	Delete pinsDeleteCmd `cmd:"" help:"Delete a pinned dashboard."`
	Diff   pinsDiffCmd   `cmd:"" help:"Show what changed between two pinned dashboards."`
}

type pinsListCmd struct{}

func (cmd *pinsListCmd) Run(g *Globals) error {
	rt, err := g.runtime(nil)
	if err != nil {
		return err
	}
	pins, err := rt.service.Pins(context.Background())
	if err != nil {
		return err
	}
	out := g.out()
	if len(pins) == 0 {
		fmt.Fprintln(out, "No pinned dashboards.")
		return nil
	}
	for _, pin := range pins {
		fmt.Fprintf(out, "%s\t%s\t%d widgets\t%s\n", pin.ID, pin.Name, len(pin.Widgets), liveboard.FormatTimestamp(pin.CreatedAt))
	}
	return nil
}

type pinsDeleteCmd struct {
	ID string `arg:"" help:"Pin id."`
}

func (cmd *pinsDeleteCmd) Run(g *Globals) error {
	rt, err := g.runtime(nil)
	if err != nil {
		return err
	}
	if err := rt.service.Unpin(context.Background(), cmd.ID); err != nil {
		if errors.Is(err, liveboard.ErrPinNotFound) {
			return fmt.Errorf("liveboard: no pinned dashboard %s", cmd.ID)
		}
		return err
	}
	fmt.Fprintf(g.out(), "Deleted %s\n", cmd.ID)
	return nil
}

type pinsDiffCmd struct {
	From string `arg:"" help:"Older pin id."`
	To   string `arg:"" help:"Newer pin id."`
}

func (cmd *pinsDiffCmd) Run(g *Globals) error {
	rt, err := g.runtime(nil)
	if err != nil {
		return err
	}
	diff, err := rt.service.ComparePins(context.Background(), cmd.From, cmd.To)
	if err != nil {
		return err
	}
	out := g.out()
	if !diff.Changed() {
		fmt.Fprintln(out, "No differences.")
		return nil
	}
	for _, line := range diff.Lines {
		switch line.Type {
		case liveboard.DiffAdded:
			fmt.Fprintln(out, "+"+line.Text)
		case liveboard.DiffRemoved:
			fmt.Fprintln(out, "-"+line.Text)
		default:
			fmt.Fprintln(out, " "+line.Text)
		}
	}
	return nil
}
