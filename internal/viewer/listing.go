// ABOUTME: Markdown listing of built-in and file-based profiles for keyview -list-profiles
// ABOUTME: Built as plain Markdown, then rendered for the terminal through glamour

package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mauromedda/keyview/pkg/tui/width"
)

// ProfileInfo describes one profile for the listing.
type ProfileInfo struct {
	Name     string
	Summary  string
	Patterns int
	// Path is set for profiles loaded from a file.
	Path     string
	Notes    string
	Bindings []Binding
}

// Binding is one literal sequence of a file profile.
type Binding struct {
	Seq string
	Key string
}

// ListingMarkdown formats built-in profiles as a table followed by one
// section per profile file.
func ListingMarkdown(builtins, files []ProfileInfo) string {
	var b strings.Builder
	b.WriteString("# Profiles\n\n")
	b.WriteString("| Name | Patterns | Description |\n|---|---:|---|\n")
	for _, p := range builtins {
		fmt.Fprintf(&b, "| %s | %d | %s |\n", cell(p.Name), p.Patterns, cell(p.Summary))
	}

	if len(files) == 0 {
		return b.String()
	}
	b.WriteString("\n## Profile files\n")
	for _, p := range files {
		fmt.Fprintf(&b, "\n### %s\n\n`%s`\n\n", p.Name, p.Path)
		if p.Notes != "" {
			b.WriteString(p.Notes)
			b.WriteString("\n\n")
		}
		if len(p.Bindings) == 0 {
			b.WriteString("_no bindings_\n")
			continue
		}
		b.WriteString("| Sequence | Key |\n|---|---|\n")
		for _, bd := range p.Bindings {
			fmt.Fprintf(&b, "| `%s` | %s |\n", cell(width.Caret(bd.Seq)), cell(bd.Key))
		}
	}
	return b.String()
}

// cell escapes text for a Markdown table cell.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// RenderMarkdown renders md for a terminal of the given width. On renderer
// failure the raw Markdown is returned with the error.
func RenderMarkdown(md string, wrap int) (string, error) {
	if wrap <= 0 {
		wrap = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return md, fmt.Errorf("creating markdown renderer: %w", err)
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return md, fmt.Errorf("rendering markdown: %w", err)
	}
	return strings.TrimRight(rendered, "\n ") + "\n", nil
}
