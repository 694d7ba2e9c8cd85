package prompt

import (
	"fmt"
	"strings"
)

// QualifiedName is the "<library>:<prompt>" lookup key.
type QualifiedName string

// Qualify joins a library identifier and a prompt name.
func Qualify(library, name string) QualifiedName {
	return QualifiedName(library + ":" + name)
}

// ParseName checks s has exactly two non-empty parts separated by ':'.
func ParseName(s string) (QualifiedName, error) {
	lib, name, ok := strings.Cut(s, ":")
	if !ok || lib == "" || name == "" || strings.Contains(name, ":") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, s)
	}
	return QualifiedName(s), nil
}

// Library returns the library part of n.
func (n QualifiedName) Library() string {
	lib, _, _ := strings.Cut(string(n), ":")
	return lib
}

// Prompt returns the prompt part of n.
func (n QualifiedName) Prompt() string {
	_, name, _ := strings.Cut(string(n), ":")
	return name
}

func (n QualifiedName) String() string { return string(n) }
