// Package template renders prompt bodies with Jinja syntax.
//
// Autoescaping is off and undefined names are permissive: they render as ""
// and test false. Required-argument enforcement belongs to the registry, not
// here. A body is a single self-contained template, so include, import and
// extends fail. As in Jinja, one trailing newline of the source is dropped.
package template

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goph/emperror"
	"github.com/nikolalohinski/gonja"
	"github.com/nikolalohinski/gonja/config"
	"github.com/nikolalohinski/gonja/exec"
	"github.com/nikolalohinski/gonja/parser"
	"github.com/nikolalohinski/gonja/tokens"

	"github.com/alanyang/twig/internal/domain/prompt"
)

var (
	// ErrTemplateSyntax marks authoring defects found while parsing a body.
	ErrTemplateSyntax = errors.New("template: syntax error")

	// ErrTemplateExec marks failures raised while evaluating a parsed body,
	// such as a filter applied to a value it cannot handle.
	ErrTemplateExec = errors.New("template: render failed")

	errNoLoader = errors.New("prompt templates cannot load other templates")
)

// SyntaxError locates a parse failure. errors.Is(err, ErrTemplateSyntax) holds.
// Line is 0 when the parser reported no position.
type SyntaxError struct {
	Template string
	Line     int
	Msg      string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("template %q line %d: %s", e.Template, e.Line, e.Msg)
	}
	return fmt.Sprintf("template %q: %s", e.Template, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrTemplateSyntax }

// ExecError wraps an evaluation failure. errors.Is(err, ErrTemplateExec) holds.
type ExecError struct {
	Template string
	Err      error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("template %q: %v", e.Template, e.Err)
}

func (e *ExecError) Unwrap() []error { return []error{ErrTemplateExec, e.Err} }

// env is shared by every template; parsing and execution only read it.
var env = gonja.NewEnvironment(config.NewConfig(), noLoader{})

type noLoader struct{}

func (noLoader) Get(path string) (io.Reader, error) {
	return nil, fmt.Errorf("%w: %q", errNoLoader, path)
}

func (noLoader) Path(path string) (string, error) {
	return "", fmt.Errorf("%w: %q", errNoLoader, path)
}

// Template is a parsed body. It is safe for concurrent Execute.
type Template struct {
	name string
	tpl  *exec.Template
}

// Name returns the template name used in error messages.
func (t *Template) Name() string { return t.name }

// Parse compiles src. name only labels errors.
func Parse(name, src string) (*Template, error) {
	src = trimTrailingNewline(src)

	stream := tokens.NewStream(lex(src))
	p := parser.NewParser(name, env.Config, stream)
	p.Statements = *env.Statements
	p.TemplateParser = env.EvalConfig.GetTemplate

	root, err := p.Parse()
	if err != nil {
		return nil, &SyntaxError{Template: name, Line: errorLine(err, src), Msg: err.Error()}
	}
	return &Template{
		name: name,
		tpl: &exec.Template{
			Name:   name,
			Source: src,
			Env:    env.EvalConfig,
			Loader: env,
			Tokens: stream,
			Parser: p,
			Root:   root,
		},
	}, nil
}

// Execute renders t against args.
func (t *Template) Execute(args map[string]prompt.Value) (string, error) {
	ctx := make(map[string]any, len(args))
	for k, v := range args {
		ctx[k] = v.Native()
	}
	out, err := t.tpl.Execute(ctx)
	if err != nil {
		return "", &ExecError{Template: t.name, Err: err}
	}
	return out, nil
}

// Render parses and executes src in one step.
func Render(name, src string, args map[string]prompt.Value) (string, error) {
	t, err := Parse(name, src)
	if err != nil {
		return "", err
	}
	return t.Execute(args)
}

// lex drains the lexer completely so that no lexer goroutine outlives a
// parse that stops early on an error.
func lex(src string) []*tokens.Token {
	l := tokens.NewLexer(src)
	go l.Run()
	var toks []*tokens.Token
	for tok := range l.Tokens {
		toks = append(toks, tok)
	}
	return toks
}

func errorLine(err error, src string) int {
	kvs := emperror.Context(err)
	for i := 1; i < len(kvs); i += 2 {
		tok, ok := kvs[i].(*tokens.Token)
		if !ok || tok == nil {
			continue
		}
		if tok.Line > 0 {
			return tok.Line
		}
		if tok.Pos >= 0 && tok.Pos <= len(src) {
			line, _ := tokens.ReadablePosition(tok.Pos, src)
			return line
		}
	}
	return 0
}

func trimTrailingNewline(src string) string {
	if s, ok := strings.CutSuffix(src, "\r\n"); ok {
		return s
	}
	return strings.TrimSuffix(src, "\n")
}
