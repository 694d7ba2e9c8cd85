// Package library discovers prompt libraries: immediate subdirectories of a
// root that carry a twig.toml configuration file.
package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"

	domainprompt "github.com/alanyang/twig/internal/domain/prompt"
)

// ConfigFile is the per-library configuration file name.
const ConfigFile = "twig.toml"

// PromptsDir holds a library's content files.
const PromptsDir = "prompts"

type config struct {
	Prompts map[string]domainprompt.Definition `toml:"prompts"`
}

// Normalize derives a library identifier from a directory name: lowercase,
// every rune that is not a letter, number or '_' becomes '_', then leading and
// trailing '_' are trimmed. Numbers include every Unicode number category, so
// "lib²" keeps its superscript. Normalize(Normalize(s)) == Normalize(s).
func Normalize(name string) string {
	mapped := strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		if r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		return '_'
	}, name)
	return strings.Trim(mapped, "_")
}

// Discover scans root and returns the libraries found, ordered by directory
// name. A missing or unreadable root yields no libraries and no failures.
// A subdirectory whose configuration is malformed, or whose identifier
// collides with an earlier one, is left out and reported in failures.
func Discover(root string) (libs []domainprompt.Library, failures []error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil
	}

	seen := make(map[string]string)
	for _, entry := range entries {
		dir := filepath.Join(root, entry.Name())
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}

		lib, err := Load(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			failures = append(failures, err)
			continue
		}
		if first, dup := seen[lib.Name]; dup {
			failures = append(failures, fmt.Errorf("library %q from %s: identifier already used by %s", lib.Name, dir, first))
			continue
		}
		seen[lib.Name] = dir
		libs = append(libs, lib)
	}
	return libs, failures
}

// Load reads the configuration of one library directory. It returns an error
// wrapping fs.ErrNotExist when dir has no configuration file.
func Load(dir string) (domainprompt.Library, error) {
	path := filepath.Join(dir, ConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return domainprompt.Library{}, fmt.Errorf("read %s: %w", path, err)
	}

	name := Normalize(filepath.Base(dir))
	if name == "" {
		return domainprompt.Library{}, fmt.Errorf("%w: %s: directory name %q normalizes to an empty identifier", domainprompt.ErrInvalidConfig, path, filepath.Base(dir))
	}

	var cfg config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return domainprompt.Library{}, fmt.Errorf("%w: %s: %v", domainprompt.ErrInvalidConfig, path, err)
	}
	if err := validate(cfg); err != nil {
		return domainprompt.Library{}, fmt.Errorf("%w: %s: %v", domainprompt.ErrInvalidConfig, path, err)
	}

	prompts := cfg.Prompts
	if prompts == nil {
		prompts = make(map[string]domainprompt.Definition)
	}
	return domainprompt.Library{Name: name, Root: dir, Prompts: prompts}, nil
}

func validate(cfg config) error {
	for name, def := range cfg.Prompts {
		if name == "" || strings.ContainsAny(name, `:/\`) || name == "." || name == ".." {
			return fmt.Errorf("invalid prompt name %q", name)
		}
		if err := domainprompt.ValidateArguments(def.Arguments); err != nil {
			return fmt.Errorf("prompt %q: %w", name, err)
		}
	}
	return nil
}
