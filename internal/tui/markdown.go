package tui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer provides Markdown to styled terminal output conversion.
// Uses glamour with auto-detected theme. Caches the renderer and only
// recreates it when width changes.
type markdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int // Cached width to avoid unnecessary recreation
}

// newMarkdownRenderer creates a renderer with terminal-appropriate styling.
// Returns nil renderer if initialization fails (graceful degradation).
func newMarkdownRenderer(width int) *markdownRenderer {
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		// Graceful degradation: caller will use plain text
		return nil
	}

	return &markdownRenderer{renderer: r, width: width}
}

// UpdateWidth recreates the renderer only if width has actually changed.
func (m *markdownRenderer) UpdateWidth(width int) bool {
	if m == nil || width <= 0 || m.width == width {
		return false
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		// Keep existing renderer on error
		return false
	}

	m.renderer = r
	m.width = width
	return true
}

// Render converts Markdown to styled terminal output.
// Returns original text if rendering fails.
func (m *markdownRenderer) Render(markdown string) string {
	if m == nil || m.renderer == nil {
		return markdown
	}

	rendered, err := m.renderer.Render(markdown)
	if err != nil {
		return markdown
	}

	return strings.TrimSuffix(rendered, "\n")
}

// hyperlinkRe matches [[bracketed link terms]] in generated articles.
var hyperlinkRe = regexp.MustCompile(`\[\[([^\]]+)\]\]`)

// extractLinks returns the distinct link terms in first-appearance order.
func extractLinks(content string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range hyperlinkRe.FindAllStringSubmatch(content, -1) {
		term := strings.TrimSpace(m[1])
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		out = append(out, term)
	}
	return out
}

// flattenLinks rewrites [[Term]] to **Term** so glamour renders link
// terms emphasized. The terms themselves are listed separately so the
// user can type one to follow it.
func flattenLinks(content string) string {
	return hyperlinkRe.ReplaceAllString(content, "**$1**")
}
