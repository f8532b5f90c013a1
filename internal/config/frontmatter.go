// ABOUTME: Generic YAML frontmatter parser with CRLF normalization
// ABOUTME: Lets a Markdown profile file carry its bindings in frontmatter and its notes in the body

package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// ParseFrontmatter extracts YAML frontmatter from Markdown content.
// It returns the parsed frontmatter as T and the remaining body.
// Content without an opening delimiter yields (zero T, content, nil); an
// opening delimiter without a closing one is an error.
func ParseFrontmatter[T any](content string) (T, string, error) {
	var zero T

	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, frontmatterDelimiter+"\n") {
		return zero, content, nil
	}
	rest := normalized[len(frontmatterDelimiter)+1:]

	var header, after string
	if rest == frontmatterDelimiter || strings.HasPrefix(rest, frontmatterDelimiter+"\n") {
		after = rest[len(frontmatterDelimiter):]
	} else {
		var ok bool
		header, after, ok = strings.Cut(rest, "\n"+frontmatterDelimiter)
		if !ok {
			return zero, "", errors.New("unterminated frontmatter: missing closing ---")
		}
	}

	var result T
	if err := yaml.Unmarshal([]byte(header), &result); err != nil {
		return zero, "", fmt.Errorf("parse frontmatter YAML: %w", err)
	}
	return result, strings.TrimPrefix(after, "\n"), nil
}
