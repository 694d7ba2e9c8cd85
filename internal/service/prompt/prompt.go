package prompt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainprompt "github.com/alanyang/twig/internal/domain/prompt"
	"github.com/alanyang/twig/internal/domain/template"
	portprompt "github.com/alanyang/twig/internal/port/prompt"
)

// Summary is one element of ListPrompts.
type Summary struct {
	Name        domainprompt.QualifiedName `json:"name"`
	Title       string                     `json:"title,omitempty"`
	Description string                     `json:"description"`
	Arguments   []domainprompt.Argument    `json:"arguments"`
}

// Result is a rendered prompt.
type Result struct {
	Name        domainprompt.QualifiedName `json:"name"`
	Description string                     `json:"description"`
	Text        string                     `json:"text"`
}

// Service is the facade the transports consume.
// [SRP] Name validation, argument coercion and error classification only.
// [DIP] Depends on the Registry port, not on service/registry.
type Service struct {
	registry portprompt.Registry
}

func NewService(registry portprompt.Registry) *Service {
	return &Service{registry: registry}
}

// ListPrompts returns every cached prompt. It never fails; an empty registry
// yields an empty slice.
func (s *Service) ListPrompts() []Summary {
	entries := s.registry.List()
	out := make([]Summary, 0, len(entries))
	for _, e := range entries {
		args := e.Metadata.Arguments
		if args == nil {
			args = []domainprompt.Argument{}
		}
		out = append(out, Summary{
			Name:        e.Name,
			Title:       e.Metadata.Title,
			Description: e.Metadata.Description,
			Arguments:   args,
		})
	}
	return out
}

// GetPrompt renders the prompt called name. Every failure is an *Error.
func (s *Service) GetPrompt(ctx context.Context, name string, raw map[string]any) (Result, error) {
	qn, err := domainprompt.ParseName(name)
	if err != nil {
		return Result{}, &Error{Kind: KindNotFound, Name: name, Err: err}
	}

	args, err := domainprompt.Values(raw)
	if err != nil {
		return Result{}, &Error{Kind: KindInternal, Name: name, Err: err}
	}
	return s.render(ctx, qn, args)
}

// GetPromptStrings is GetPrompt for callers whose arguments are already text.
func (s *Service) GetPromptStrings(ctx context.Context, name string, raw map[string]string) (Result, error) {
	qn, err := domainprompt.ParseName(name)
	if err != nil {
		return Result{}, &Error{Kind: KindNotFound, Name: name, Err: err}
	}
	return s.render(ctx, qn, domainprompt.StringValues(raw))
}

func (s *Service) render(ctx context.Context, name domainprompt.QualifiedName, args map[string]domainprompt.Value) (Result, error) {
	entry, ok := s.registry.Lookup(name)
	if !ok {
		return Result{}, &Error{Kind: KindNotFound, Name: name.String(), Err: domainprompt.ErrNotFound}
	}

	text, err := s.registry.GetRendered(ctx, name, args)
	if err != nil {
		return Result{}, classify(ctx, name, err)
	}
	return Result{Name: name, Description: entry.Metadata.Description, Text: text}, nil
}

// Reload rescans the content source.
func (s *Service) Reload(ctx context.Context) ([]domainprompt.QualifiedName, error) {
	names, err := s.registry.Reload(ctx)
	if err != nil {
		return nil, &Error{Kind: KindInternal, Err: fmt.Errorf("reload prompts: %w", err)}
	}
	return names, nil
}

func classify(ctx context.Context, name domainprompt.QualifiedName, err error) *Error {
	e := &Error{Name: name.String(), Err: err}
	var missing *domainprompt.MissingArgumentError
	switch {
	case errors.Is(err, domainprompt.ErrNotFound):
		e.Kind = KindNotFound
	case errors.As(err, &missing):
		e.Kind = KindMissingArgument
		e.Argument = missing.Argument
	case errors.Is(err, template.ErrTemplateSyntax), errors.Is(err, template.ErrTemplateExec):
		e.Kind = KindRender
	default:
		e.Kind = KindInternal
		slog.ErrorContext(ctx, "prompt service: get prompt failed", "name", name, "error", err)
	}
	return e
}
