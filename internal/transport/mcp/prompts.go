package mcp

import (
	"context"
	"sync"

	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	promptsvc "github.com/alanyang/twig/internal/service/prompt"
)

// promptSet mirrors the facade's prompt list onto the MCP server.
// [SRP] Prompt registration only; separated from server lifecycle.
type promptSet struct {
	srv *mcpserver.MCPServer
	svc *promptsvc.Service

	mu         sync.Mutex
	registered map[string]struct{}
}

func newPromptSet(srv *mcpserver.MCPServer, svc *promptsvc.Service) *promptSet {
	return &promptSet{srv: srv, svc: svc, registered: make(map[string]struct{})}
}

// sync replaces the registered prompts with the facade's current list.
func (p *promptSet) sync() {
	summaries := p.svc.ListPrompts()

	p.mu.Lock()
	defer p.mu.Unlock()

	next := make(map[string]struct{}, len(summaries))
	prompts := make([]mcpserver.ServerPrompt, 0, len(summaries))
	for _, s := range summaries {
		name := s.Name.String()
		next[name] = struct{}{}
		prompts = append(prompts, mcpserver.ServerPrompt{
			Prompt:  toMCPPrompt(s),
			Handler: promptHandler(name, p.svc),
		})
	}

	var stale []string
	for name := range p.registered {
		if _, ok := next[name]; !ok {
			stale = append(stale, name)
		}
	}
	if len(stale) > 0 {
		p.srv.DeletePrompts(stale...)
	}
	if len(prompts) > 0 {
		p.srv.AddPrompts(prompts...)
	}
	p.registered = next
}

func toMCPPrompt(s promptsvc.Summary) mcpmcp.Prompt {
	opts := []mcpmcp.PromptOption{mcpmcp.WithPromptDescription(s.Description)}
	for _, a := range s.Arguments {
		argOpts := []mcpmcp.ArgumentOption{mcpmcp.ArgumentDescription(a.Description)}
		if a.Required {
			argOpts = append(argOpts, mcpmcp.RequiredArgument())
		}
		opts = append(opts, mcpmcp.WithArgument(a.Name, argOpts...))
	}
	return mcpmcp.NewPrompt(s.Name.String(), opts...)
}

func promptHandler(name string, svc *promptsvc.Service) mcpserver.PromptHandlerFunc {
	return func(ctx context.Context, req mcpmcp.GetPromptRequest) (*mcpmcp.GetPromptResult, error) {
		res, err := svc.GetPromptStrings(ctx, name, req.Params.Arguments)
		if err != nil {
			// mcp-go replies INTERNAL_ERROR for any handler error, whatever
			// the kind; the message is the client's only signal.
			return nil, err
		}
		return mcpmcp.NewGetPromptResult(
			res.Description,
			[]mcpmcp.PromptMessage{
				mcpmcp.NewPromptMessage(
					mcpmcp.RoleUser,
					mcpmcp.TextContent{
						Type: "text",
						Text: res.Text,
					},
				),
			},
		), nil
	}
}
