package mcp

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alanyang/twig/internal/domain/event"
	porteventbus "github.com/alanyang/twig/internal/port/eventbus"
	promptsvc "github.com/alanyang/twig/internal/service/prompt"
)

// Server wraps the mark3labs/mcp-go MCPServer.
// [SRP] Server lifecycle only (stdio, streamable HTTP, reload following).
//
//	Prompt registration lives in prompts.go.
type Server struct {
	mcp     *mcpserver.MCPServer
	prompts *promptSet
}

// New creates the MCP transport server and registers the current prompt set.
func New(svc *promptsvc.Service, version string) *Server {
	hooks := &mcpserver.Hooks{}
	hooks.AddOnRegisterSession(func(ctx context.Context, session mcpserver.ClientSession) {
		slog.InfoContext(ctx, "mcp: session opened", "session_id", session.SessionID())
	})
	hooks.AddOnUnregisterSession(func(ctx context.Context, session mcpserver.ClientSession) {
		slog.InfoContext(ctx, "mcp: session closed", "session_id", session.SessionID())
	})

	// listChanged stays off: clients re-list on their own schedule.
	mcpSrv := mcpserver.NewMCPServer(
		"twig",
		version,
		mcpserver.WithPromptCapabilities(false),
		mcpserver.WithRecovery(),
		mcpserver.WithHooks(hooks),
	)

	s := &Server{
		mcp:     mcpSrv,
		prompts: newPromptSet(mcpSrv, svc),
	}
	s.prompts.sync()
	return s
}

// MCP returns the underlying mcp-go server.
func (s *Server) MCP() *mcpserver.MCPServer {
	return s.mcp
}

// Handler returns an http.Handler that serves the streamable HTTP endpoint.
func (s *Server) Handler() http.Handler {
	return mcpserver.NewStreamableHTTPServer(s.mcp)
}

// ServeStdio serves one client over in/out until ctx ends or in closes.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	return mcpserver.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

// Resync re-registers the prompt set from the facade.
func (s *Server) Resync() {
	s.prompts.sync()
}

// Follow resynchronises the prompt set after every successful reload.
func (s *Server) Follow(ctx context.Context, bus porteventbus.EventBus) (porteventbus.Subscription, error) {
	return bus.Subscribe(ctx, event.ChannelRegistry, func(ctx context.Context, e event.Event) {
		if e.Type != event.TypePromptsReloaded {
			return
		}
		slog.DebugContext(ctx, "mcp: resyncing prompts", "generation", e.Generation)
		s.prompts.sync()
	})
}
