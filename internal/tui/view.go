package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/jama7777/Inifinite-wiki/internal/diagram"
	"github.com/jama7777/Inifinite-wiki/internal/i18n"
	"github.com/jama7777/Inifinite-wiki/internal/session"
)

// View implements tea.Model.
// Uses AltScreen with a viewport for the scrollable article area.
func (m *Model) View() tea.View {
	m.viewBuf.Reset()

	// Tab bar
	_, _ = m.viewBuf.WriteString(m.renderTabBar())
	_, _ = m.viewBuf.WriteString("\n")

	// Viewport (scrollable article area)
	_, _ = m.viewBuf.WriteString(m.viewport.View())
	_, _ = m.viewBuf.WriteString("\n")

	// Separator line above input
	_, _ = m.viewBuf.WriteString(m.renderSeparator())
	_, _ = m.viewBuf.WriteString("\n")

	// Input prompt; typing is always allowed, even mid-generation
	_, _ = m.viewBuf.WriteString(m.styles.Prompt.Render("> "))
	_, _ = m.viewBuf.WriteString(m.input.View())
	_, _ = m.viewBuf.WriteString("\n")

	// Separator line below input
	_, _ = m.viewBuf.WriteString(m.renderSeparator())
	_, _ = m.viewBuf.WriteString("\n")

	// Help bar (keyboard shortcuts)
	_, _ = m.viewBuf.WriteString(m.renderStatusBar())

	v := tea.NewView(m.viewBuf.String())
	v.AltScreen = true
	return v
}

// renderTabBar renders one cell per session, active one highlighted.
func (m *Model) renderTabBar() string {
	var b strings.Builder
	for i, t := range m.tabs {
		title := t.Title
		if title == "" {
			title = session.DefaultTitle
		}
		if t.Loading() {
			title = m.spinner.View() + title
		}
		cell := fmt.Sprintf("%d:%s", i+1, truncate(title, 18))
		if t.ID == m.active.ID {
			_, _ = b.WriteString(m.styles.TabActive.Render(cell))
		} else {
			_, _ = b.WriteString(m.styles.TabInactive.Render(cell))
		}
	}
	return b.String()
}

// rebuildViewportContent reconstructs the article view from the active
// session snapshot. Called on every store change hint.
//
//nolint:gocognit // Rendering walks every displayable session field
func (m *Model) rebuildViewportContent() {
	var b strings.Builder

	sess := m.active

	if sess.Topic == "" && sess.Content == "" && !sess.Document.Loaded() {
		// Fresh tab: banner and tips
		_, _ = b.WriteString(m.styles.RenderBanner())
		_, _ = b.WriteString("\n")
		_, _ = b.WriteString(m.styles.RenderWelcomeTips())
		m.links = nil
		m.viewport.SetContent(b.String())
		return
	}

	// Title line
	if sess.Topic != "" {
		_, _ = b.WriteString(m.styles.Title.Render(sess.Topic))
		_, _ = b.WriteString("\n")
	}
	if meta := m.renderMeta(sess); meta != "" {
		_, _ = b.WriteString(m.styles.System.Render(meta))
		_, _ = b.WriteString("\n")
	}
	_, _ = b.WriteString("\n")

	// Article body
	if sess.Content != "" {
		content := m.substituteDiagrams(sess)
		m.links = extractLinks(content)
		_, _ = b.WriteString(m.markdown.Render(flattenLinks(content)))
		_, _ = b.WriteString("\n")
	} else {
		m.links = nil
	}

	if sess.Loading() {
		_, _ = b.WriteString(m.spinner.View())
		_, _ = b.WriteString(" ")
		_, _ = b.WriteString(m.styles.System.Render(i18n.T("tab.loading")))
		_, _ = b.WriteString("\n")
	}

	if sess.Err != nil {
		_, _ = b.WriteString("\n")
		_, _ = b.WriteString(m.styles.Error.Render(i18n.Sprintf("error.generate", sess.Err)))
		_, _ = b.WriteString("\n")
	}

	// Grounding sources
	if len(sess.Sources) > 0 {
		_, _ = b.WriteString("\n")
		_, _ = b.WriteString(m.styles.Title.Render(i18n.T("tab.sources")))
		_, _ = b.WriteString("\n")
		for i, src := range sess.Sources {
			_, _ = b.WriteString(m.styles.Source.Render(fmt.Sprintf("  %d. %s — %s", i+1, src.Title, src.URI)))
			_, _ = b.WriteString("\n")
		}
	}

	// Related link terms the user can type to follow
	if len(m.links) > 0 && !sess.Loading() {
		_, _ = b.WriteString("\n")
		_, _ = b.WriteString(m.styles.System.Render("Related: " + strings.Join(m.links, " · ")))
		_, _ = b.WriteString("\n")
	}

	if m.notice != "" {
		_, _ = b.WriteString("\n")
		_, _ = b.WriteString(m.styles.System.Render(m.notice))
		_, _ = b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
}

// renderMeta builds the metadata line under the title: elapsed time,
// pagination position, language, active modes.
func (m *Model) renderMeta(sess session.Session) string {
	var parts []string
	if sess.Elapsed > 0 && !sess.Loading() {
		parts = append(parts, i18n.Sprintf("tab.elapsed", sess.Elapsed.Round(timeRound)))
	}
	if sess.EbookMode && sess.PageCount() > 0 {
		parts = append(parts, i18n.Sprintf("tab.page", sess.PageIndex+1, sess.PageCount()))
	}
	if sess.SectionIndex > 0 {
		parts = append(parts, i18n.Sprintf("tab.section", sess.SectionIndex+1))
	}
	if sess.Language != "" && sess.Language != "English" {
		parts = append(parts, i18n.Sprintf("tab.language", sess.Language))
	}
	if sess.SearchEnabled {
		parts = append(parts, i18n.T("mode.search.on"))
	}
	return strings.Join(parts, " · ")
}

// substituteDiagrams rewrites [DIAGRAM: x] markers according to the
// session's resolution state. Raster bytes cannot render in a terminal
// cell; resolved markers display as a ready indicator and the image stays
// in the session for export.
func (m *Model) substituteDiagrams(sess session.Session) string {
	return diagram.ReplaceMarkers(sess.Content, func(prompt string) string {
		if _, ok := sess.Diagrams[prompt]; ok {
			return "🖼 *" + prompt + "*"
		}
		return "◌ *" + prompt + "*"
	})
}

func (m *Model) renderSeparator() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	return m.styles.Separator.Render(strings.Repeat("─", width))
}

// renderStatusBar returns state-appropriate keyboard shortcut help.
func (m *Model) renderStatusBar() string {
	var bindings []key.Binding
	if m.active.Loading() {
		bindings = []key.Binding{
			m.keys.EscCancel, m.keys.Cancel,
			m.keys.ScrollUp, m.keys.ScrollDown,
		}
	} else {
		bindings = []key.Binding{
			m.keys.Submit, m.keys.Back, m.keys.Forward,
			m.keys.NewTab, m.keys.Quit, m.keys.ScrollUp,
		}
	}
	return m.help.ShortHelpView(bindings)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
