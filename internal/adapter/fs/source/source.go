// Package source adapts on-disk prompt layouts to port/prompt.Source.
package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alanyang/twig/internal/adapter/fs/content"
	"github.com/alanyang/twig/internal/adapter/fs/library"
	domainprompt "github.com/alanyang/twig/internal/domain/prompt"
	portprompt "github.com/alanyang/twig/internal/port/prompt"
)

var (
	_ portprompt.Source = (*LibrarySource)(nil)
	_ portprompt.Source = (*DirSource)(nil)
)

// LibrarySource serves prompts declared by the libraries under Root. Each
// declared prompt "p" of library "lib" is read from <lib dir>/prompts/p.md and
// published as "lib:p".
//
// The library configuration is authoritative for description and arguments;
// the content file's frontmatter supplies the title and fills a description
// or argument list the configuration leaves empty.
type LibrarySource struct {
	root string
}

func NewLibrarySource(root string) *LibrarySource {
	return &LibrarySource{root: root}
}

func (s *LibrarySource) Root() string { return s.root }

func (s *LibrarySource) Scan(ctx context.Context) (portprompt.ScanResult, error) {
	libs, failures := library.Discover(s.root)
	res := portprompt.ScanResult{Failures: failures}

	for _, lib := range libs {
		names := make([]string, 0, len(lib.Prompts))
		for name := range lib.Prompts {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			if err := ctx.Err(); err != nil {
				return portprompt.ScanResult{}, err
			}
			def := lib.Prompts[name]
			path := filepath.Join(lib.Root, library.PromptsDir, name+content.Ext)
			f, err := content.Read(path)
			if err != nil {
				res.Failures = append(res.Failures, fmt.Errorf("library %q prompt %q: %w", lib.Name, name, err))
				continue
			}
			res.Entries = append(res.Entries, domainprompt.Entry{
				Name:     domainprompt.Qualify(lib.Name, name),
				Path:     path,
				Metadata: merge(def, f.Metadata),
				Modified: f.Modified,
			})
		}
	}
	return res, nil
}

// ReadContent re-reads both the library configuration and the content file,
// so edits to either are visible without a reload.
func (s *LibrarySource) ReadContent(_ context.Context, path string) (domainprompt.Metadata, string, error) {
	dir := filepath.Dir(filepath.Dir(path))
	name := strings.TrimSuffix(filepath.Base(path), content.Ext)

	lib, err := library.Load(dir)
	if err != nil {
		return domainprompt.Metadata{}, "", err
	}
	def, ok := lib.Prompts[name]
	if !ok {
		return domainprompt.Metadata{}, "", fmt.Errorf("%s: prompt %q no longer declared: %w", filepath.Join(dir, library.ConfigFile), name, fs.ErrNotExist)
	}
	f, err := content.Read(path)
	if err != nil {
		return domainprompt.Metadata{}, "", err
	}
	return merge(def, f.Metadata), f.Body, nil
}

func merge(def domainprompt.Definition, file domainprompt.Metadata) domainprompt.Metadata {
	m := domainprompt.Metadata{
		Title:       file.Title,
		Description: def.Description,
		Arguments:   def.Arguments,
	}
	if m.Description == "" {
		m.Description = file.Description
	}
	if len(m.Arguments) == 0 {
		m.Arguments = file.Arguments
	}
	return m.Clone()
}

// DirSource serves every *.md file directly inside Root, named by file stem
// and qualified with a fixed library identifier. Frontmatter is the only
// metadata source.
type DirSource struct {
	root    string
	library string
}

func NewDirSource(root, libraryName string) *DirSource {
	return &DirSource{root: root, library: library.Normalize(libraryName)}
}

func (s *DirSource) Root() string { return s.root }

func (s *DirSource) Scan(ctx context.Context) (portprompt.ScanResult, error) {
	var res portprompt.ScanResult

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return res, nil
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return portprompt.ScanResult{}, err
		}
		if entry.IsDir() || filepath.Ext(entry.Name()) != content.Ext {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), content.Ext)
		path := filepath.Join(s.root, entry.Name())
		if stem == "" || strings.Contains(stem, ":") {
			res.Failures = append(res.Failures, fmt.Errorf("%s: file name is not a valid prompt name", path))
			continue
		}
		f, err := content.Read(path)
		if err != nil {
			res.Failures = append(res.Failures, err)
			continue
		}
		res.Entries = append(res.Entries, domainprompt.Entry{
			Name:     domainprompt.Qualify(s.library, stem),
			Path:     path,
			Metadata: f.Metadata,
			Modified: f.Modified,
		})
	}
	return res, nil
}

func (s *DirSource) ReadContent(_ context.Context, path string) (domainprompt.Metadata, string, error) {
	f, err := content.Read(path)
	if err != nil {
		return domainprompt.Metadata{}, "", err
	}
	return f.Metadata, f.Body, nil
}
