package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/alanyang/twig/internal/domain/event"
	domainprompt "github.com/alanyang/twig/internal/domain/prompt"
	"github.com/alanyang/twig/internal/domain/template"
	porteventbus "github.com/alanyang/twig/internal/port/eventbus"
	portprompt "github.com/alanyang/twig/internal/port/prompt"
)

var _ portprompt.Registry = (*Registry)(nil)

// State is the cache lifecycle: Empty until the first successful Reload.
type State int

const (
	StateEmpty State = iota
	StateLoaded
)

func (s State) String() string {
	if s == StateLoaded {
		return "loaded"
	}
	return "empty"
}

// snapshot is one immutable generation of the cache. It is never modified
// after it has been published.
type snapshot struct {
	generation uuid.UUID
	entries    map[domainprompt.QualifiedName]domainprompt.Entry
	order      []domainprompt.QualifiedName
}

// Registry caches prompt metadata and renders prompt bodies on demand.
// [SRP] Cache ownership and rendering only; discovery lives behind Source.
//
// Readers load the current snapshot pointer and never lock. Reload builds a
// complete new snapshot before swapping the pointer, so a reader sees either
// the old or the new generation in full.
type Registry struct {
	source portprompt.Source
	bus    porteventbus.EventBus

	reloadMu sync.Mutex
	current  atomic.Pointer[snapshot]
}

// New creates an Empty registry. bus may be nil.
func New(source portprompt.Source, bus porteventbus.EventBus) *Registry {
	return &Registry{source: source, bus: bus}
}

// Reload rescans the source and publishes a new generation. Items that fail
// to load are logged and skipped. The returned names are the entries that
// loaded, sorted.
func (r *Registry) Reload(ctx context.Context) ([]domainprompt.QualifiedName, error) {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	res, err := r.source.Scan(ctx)
	if err != nil {
		r.publish(ctx, event.ReloadFailed(err))
		return nil, fmt.Errorf("scan prompts: %w", err)
	}

	skipped := len(res.Failures)
	for _, f := range res.Failures {
		slog.WarnContext(ctx, "registry: skipped prompt source", "error", f)
	}

	next := &snapshot{
		generation: uuid.New(),
		entries:    make(map[domainprompt.QualifiedName]domainprompt.Entry, len(res.Entries)),
		order:      make([]domainprompt.QualifiedName, 0, len(res.Entries)),
	}
	for _, e := range res.Entries {
		if prev, dup := next.entries[e.Name]; dup {
			skipped++
			slog.WarnContext(ctx, "registry: duplicate prompt name, keeping first",
				"name", e.Name, "kept", prev.Path, "dropped", e.Path)
			continue
		}
		e.Metadata = e.Metadata.Clone()
		next.entries[e.Name] = e
		next.order = append(next.order, e.Name)
	}
	sort.Slice(next.order, func(i, j int) bool { return next.order[i] < next.order[j] })

	r.current.Store(next)

	slog.InfoContext(ctx, "registry: reloaded",
		"generation", next.generation, "loaded", len(next.order), "skipped", skipped)
	r.publish(ctx, event.Reloaded(next.generation, len(next.order), skipped))

	return append([]domainprompt.QualifiedName(nil), next.order...), nil
}

// List returns a copy of every cached entry, sorted by name. It performs no
// disk access.
func (r *Registry) List() []domainprompt.Entry {
	snap := r.current.Load()
	if snap == nil {
		return []domainprompt.Entry{}
	}
	out := make([]domainprompt.Entry, 0, len(snap.order))
	for _, name := range snap.order {
		e := snap.entries[name]
		e.Metadata = e.Metadata.Clone()
		out = append(out, e)
	}
	return out
}

// Lookup returns a copy of the cached entry for name.
func (r *Registry) Lookup(name domainprompt.QualifiedName) (domainprompt.Entry, bool) {
	snap := r.current.Load()
	if snap == nil {
		return domainprompt.Entry{}, false
	}
	e, ok := snap.entries[name]
	if !ok {
		return domainprompt.Entry{}, false
	}
	e.Metadata = e.Metadata.Clone()
	return e, true
}

// GetRendered re-reads the content file for name, checks the arguments it
// currently declares and renders the body. Missing arguments are reported
// one at a time, first in declaration order.
func (r *Registry) GetRendered(ctx context.Context, name domainprompt.QualifiedName, args map[string]domainprompt.Value) (string, error) {
	e, ok := r.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", domainprompt.ErrNotFound, name)
	}

	meta, body, err := r.source.ReadContent(ctx, e.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s: content file removed", domainprompt.ErrNotFound, name)
		}
		return "", fmt.Errorf("load prompt %s: %w", name, err)
	}

	for _, arg := range meta.Required() {
		if _, ok := args[arg]; !ok {
			return "", &domainprompt.MissingArgumentError{Argument: arg}
		}
	}

	out, err := template.Render(name.String(), body, args)
	if err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return out, nil
}

// State reports whether a generation has been published.
func (r *Registry) State() State {
	if r.current.Load() == nil {
		return StateEmpty
	}
	return StateLoaded
}

// Generation identifies the published snapshot; uuid.Nil while Empty.
func (r *Registry) Generation() uuid.UUID {
	if snap := r.current.Load(); snap != nil {
		return snap.generation
	}
	return uuid.Nil
}

func (r *Registry) publish(ctx context.Context, e event.Event) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(ctx, e); err != nil {
		slog.ErrorContext(ctx, "registry: publish event failed", "type", e.Type, "error", err)
	}
}
