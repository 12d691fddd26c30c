package tui

import (
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/jama7777/Inifinite-wiki/internal/session"
)

// Update implements tea.Model.
//
//nolint:gocognit,gocyclo // Bubble Tea Update requires type switch on all message types
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Calculate viewport height: total - tab bar - input - separators - help
		inputHeight := m.input.Height() + promptLines
		fixedHeight := tabBarLines + separatorLines + inputHeight + helpLines
		vpHeight := max(msg.Height-fixedHeight, minViewport)

		m.viewport.SetWidth(msg.Width)
		m.viewport.SetHeight(vpHeight)
		m.input.SetWidth(msg.Width - 4) // Room for "> " prompt
		m.help.SetWidth(msg.Width)
		m.markdown.UpdateWidth(msg.Width)

		m.rebuildViewportContent()
		return m, nil

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.active.Loading() {
			m.rebuildViewportContent()
		}
		return m, cmd

	case sessionChangedMsg:
		wasLoading := m.active.Loading()
		m.refresh()
		// Keep the tail of the article in view while it streams in.
		if m.active.ID == msg.id && m.active.Loading() {
			m.viewport.GotoBottom()
		}
		cmds := []tea.Cmd{watchStore(m.watch)}
		if !wasLoading && m.active.Loading() {
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case watchClosedMsg:
		return m, m.cleanup()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// dispatch asks the fetcher to run a generation for the session's current
// fields. Errors surface as the notice line, never panic the UI.
func (m *Model) dispatch(id uuid.UUID, force bool) {
	if err := m.fetcher.Fetch(m.ctx, id, force); err != nil {
		m.notice = err.Error()
	}
}

// mutate applies fn to the active session and refreshes the view.
func (m *Model) mutate(fn func(*session.Session)) {
	if err := m.store.Update(m.active.ID, fn); err != nil {
		m.notice = err.Error()
		return
	}
	m.refresh()
}
