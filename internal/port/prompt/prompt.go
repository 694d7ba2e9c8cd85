package prompt

import (
	"context"

	domainprompt "github.com/alanyang/twig/internal/domain/prompt"
)

// ScanResult is one full pass over a content source. Failures lists the
// items that were skipped; it never aborts the scan.
type ScanResult struct {
	Entries  []domainprompt.Entry
	Failures []error
}

// Source produces registry entries from wherever prompts live.
// [LSP] Library-directory and flat-directory sources are interchangeable.
type Source interface {
	// Scan reads metadata only. An unreadable root yields an empty result,
	// not an error; the error return is reserved for the context.
	Scan(ctx context.Context) (ScanResult, error)

	// ReadContent re-reads the content file at path and returns its current
	// metadata and template body. A file that is gone, or no longer declared,
	// yields an error wrapping fs.ErrNotExist.
	ReadContent(ctx context.Context, path string) (domainprompt.Metadata, string, error)
}

// Registry is the prompt cache as seen by the facade.
// [DIP] service/prompt depends on this interface, not on service/registry.
type Registry interface {
	Reload(ctx context.Context) ([]domainprompt.QualifiedName, error)
	List() []domainprompt.Entry
	Lookup(name domainprompt.QualifiedName) (domainprompt.Entry, bool)
	GetRendered(ctx context.Context, name domainprompt.QualifiedName, args map[string]domainprompt.Value) (string, error)
}
