// Package content reads prompt content files: an optional YAML frontmatter
// block delimited by "---" lines, followed by the template body.
package content

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	domainprompt "github.com/alanyang/twig/internal/domain/prompt"
)

// Ext is the content file extension.
const Ext = ".md"

const delimiter = "---"

// File is a parsed content file.
type File struct {
	Name     string
	Path     string
	Metadata domainprompt.Metadata
	Body     string
	Modified time.Time
}

// Read parses the content file at path.
func Read(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read prompt file %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat prompt file %s: %w", path, err)
	}

	meta, body, err := Split(string(data))
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return File{
		Name:     strings.TrimSuffix(filepath.Base(path), Ext),
		Path:     path,
		Metadata: meta,
		Body:     body,
		Modified: info.ModTime(),
	}, nil
}

// Split separates frontmatter from body. Text without an opening delimiter
// line is all body.
func Split(text string) (domainprompt.Metadata, string, error) {
	var meta domainprompt.Metadata

	first, rest, found := strings.Cut(text, "\n")
	if !isDelimiter(first) {
		return meta, text, nil
	}

	headerStart := len(first) + 1
	pos := headerStart
	for found {
		var line string
		line, rest, found = strings.Cut(rest, "\n")
		if isDelimiter(line) {
			header := text[headerStart:pos]
			body := ""
			if found {
				body = rest
			}
			if err := yaml.Unmarshal([]byte(header), &meta); err != nil {
				return domainprompt.Metadata{}, "", fmt.Errorf("%w: %v", domainprompt.ErrInvalidFrontmatter, err)
			}
			if err := domainprompt.ValidateArguments(meta.Arguments); err != nil {
				return domainprompt.Metadata{}, "", fmt.Errorf("%w: %v", domainprompt.ErrInvalidFrontmatter, err)
			}
			return meta, body, nil
		}
		pos += len(line) + 1
	}
	return meta, "", fmt.Errorf("%w: missing closing %q", domainprompt.ErrInvalidFrontmatter, delimiter)
}

func isDelimiter(line string) bool {
	return strings.TrimRight(line, " \t\r") == delimiter
}
