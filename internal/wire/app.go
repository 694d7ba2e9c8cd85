package wire

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alanyang/twig/internal/adapter/fs/source"
	"github.com/alanyang/twig/internal/adapter/memory"
	"github.com/alanyang/twig/internal/config"
	portprompt "github.com/alanyang/twig/internal/port/prompt"
	"github.com/alanyang/twig/internal/service/registry"

	promptsvc "github.com/alanyang/twig/internal/service/prompt"

	"github.com/alanyang/twig/internal/transport"
	mcptransport "github.com/alanyang/twig/internal/transport/mcp"
)

// Core is the transport-free part of the application, enough for one-shot
// CLI commands.
type Core struct {
	Registry  *registry.Registry
	PromptSvc *promptsvc.Service
	Bus       *memory.EventBus
}

// App holds the top-level resources needed to run and gracefully stop the server.
type App struct {
	Core
	Config    *config.Config
	MCPServer *mcptransport.Server
	Server    *http.Server // nil unless the http transport is selected
	Watcher   *Watcher     // nil unless watch is enabled
}

// NewSource picks the content source for the configured mode.
func NewSource(cfg *config.Config) portprompt.Source {
	if cfg.Mode == config.ModeDir {
		return source.NewDirSource(cfg.DataDir, cfg.DirLibrary)
	}
	return source.NewLibrarySource(cfg.DataDir)
}

// NewCore wires the registry and facade. The registry starts Empty.
func NewCore(cfg *config.Config) *Core {
	bus := memory.NewEventBus()
	reg := registry.New(NewSource(cfg), bus)
	return &Core{
		Registry:  reg,
		PromptSvc: promptsvc.NewService(reg),
		Bus:       bus,
	}
}

// BuildCore is NewCore followed by the initial load.
func BuildCore(ctx context.Context, cfg *config.Config) (*Core, error) {
	core := NewCore(cfg)
	if _, err := core.Registry.Reload(ctx); err != nil {
		return nil, fmt.Errorf("initial load: %w", err)
	}
	return core, nil
}

// Build is the composition root: the only place concrete types are wired to their
// interface dependencies.
func Build(ctx context.Context, cfg *config.Config, version string) (*App, error) {
	// ── Core ─────────────────────────────────────────────────────────────────
	core, err := BuildCore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// ── Transport ─────────────────────────────────────────────────────────────
	mcpServer := mcptransport.New(core.PromptSvc, version)
	if _, err := mcpServer.Follow(ctx, core.Bus); err != nil {
		return nil, fmt.Errorf("subscribe mcp to reload events: %w", err)
	}

	app := &App{
		Core:      *core,
		Config:    cfg,
		MCPServer: mcpServer,
	}

	if cfg.Transport == config.TransportHTTP {
		router := transport.NewRouter(ctx, core.PromptSvc, mcpServer, core.Bus)
		app.Server = &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: router,
		}
	}

	// ── Reload-on-change ──────────────────────────────────────────────────────
	if cfg.Watch {
		w, err := NewWatcher(cfg.DataDir, cfg.WatchDebounce, reloadFunc(core.PromptSvc))
		if err != nil {
			return nil, fmt.Errorf("start watcher: %w", err)
		}
		app.Watcher = w
	}

	slog.Info("application wired",
		"data_dir", cfg.DataDir,
		"mode", cfg.Mode,
		"transport", cfg.Transport,
		"watch", cfg.Watch,
		"prompts", len(core.Registry.List()),
	)
	return app, nil
}

func reloadFunc(svc *promptsvc.Service) func(context.Context) {
	return func(ctx context.Context) {
		if _, err := svc.Reload(ctx); err != nil {
			slog.ErrorContext(ctx, "watcher: reload failed", "error", err)
		}
	}
}
