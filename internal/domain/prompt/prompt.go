package prompt

import (
	"fmt"
	"time"
)

// Argument is a named parameter a prompt template accepts.
type Argument struct {
	Name        string `json:"name" toml:"name" yaml:"name"`
	Description string `json:"description,omitempty" toml:"description" yaml:"description"`
	Required    bool   `json:"required" toml:"required" yaml:"required"`
}

// Definition is a prompt declared in a library configuration file.
type Definition struct {
	Description string     `toml:"description"`
	Arguments   []Argument `toml:"arguments"`
}

// Library is a named collection of prompt definitions rooted at one directory.
// Name is already normalized (see library.Normalize).
type Library struct {
	Name    string
	Root    string
	Prompts map[string]Definition
}

// Metadata is the structured header of a content file.
type Metadata struct {
	Title       string     `json:"title,omitempty" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description"`
	Arguments   []Argument `json:"arguments,omitempty" yaml:"arguments"`
}

// Entry is a registry cache value. It never holds the template body; the body
// is read from Path on every render.
type Entry struct {
	Name     QualifiedName `json:"name"`
	Path     string        `json:"-"`
	Metadata Metadata      `json:"metadata"`
	Modified time.Time     `json:"modified"`
}

// Required returns the names of the required arguments in declaration order.
func (m Metadata) Required() []string {
	var out []string
	for _, a := range m.Arguments {
		if a.Required {
			out = append(out, a.Name)
		}
	}
	return out
}

// Clone returns a copy of m that shares no slices with the original.
func (m Metadata) Clone() Metadata {
	c := m
	if m.Arguments != nil {
		c.Arguments = append([]Argument(nil), m.Arguments...)
	}
	return c
}

// ValidateArguments checks argument names are present and unique.
func ValidateArguments(args []Argument) error {
	seen := make(map[string]bool, len(args))
	for i, a := range args {
		if a.Name == "" {
			return fmt.Errorf("argument %d has no name", i)
		}
		if seen[a.Name] {
			return fmt.Errorf("duplicate argument %q", a.Name)
		}
		seen[a.Name] = true
	}
	return nil
}
