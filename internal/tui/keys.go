package tui

import (
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/jama7777/Inifinite-wiki/internal/i18n"
	"github.com/jama7777/Inifinite-wiki/internal/session"
)

// keyMap holds key bindings for help bar display.
type keyMap struct {
	Submit     key.Binding
	History    key.Binding
	Back       key.Binding
	Forward    key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	NewTab     key.Binding
	NextTab    key.Binding
	CloseTab   key.Binding
	Cancel     key.Binding
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	EscCancel  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "go")),
		History:    key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "history")),
		Back:       key.NewBinding(key.WithKeys("alt+left"), key.WithHelp("alt+←", "back")),
		Forward:    key.NewBinding(key.WithKeys("alt+right"), key.WithHelp("alt+→", "forward")),
		NextPage:   key.NewBinding(key.WithKeys("alt+n"), key.WithHelp("alt+n", "next page")),
		PrevPage:   key.NewBinding(key.WithKeys("alt+p"), key.WithHelp("alt+p", "prev page")),
		NewTab:     key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "new tab")),
		NextTab:    key.NewBinding(key.WithKeys("ctrl+right"), key.WithHelp("ctrl+→", "switch tab")),
		CloseTab:   key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("ctrl+w", "close tab")),
		Cancel:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "cancel")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "exit")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		EscCancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "stop")),
	}
}

//nolint:gocyclo // Keyboard handler requires branching for all key combinations
func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	if k.Mod&tea.ModCtrl != 0 {
		switch k.Code {
		case 'c':
			return m.handleCtrlC()
		case 'd':
			return m, m.cleanup()
		case 't':
			m.openTab()
			return m, nil
		case 'w':
			m.closeTab()
			return m, nil
		case tea.KeyRight:
			m.cycleTab(1)
			return m, nil
		case tea.KeyLeft:
			m.cycleTab(-1)
			return m, nil
		}
	}

	if k.Mod&tea.ModAlt != 0 {
		switch k.Code {
		case tea.KeyLeft:
			m.goBack()
			return m, nil
		case tea.KeyRight:
			m.goForward()
			return m, nil
		case 'n':
			m.pageForward()
			return m, nil
		case 'p':
			m.pageBackward()
			return m, nil
		}
	}

	switch k.Code {
	case tea.KeyEnter:
		return m.handleSubmit()

	case tea.KeyUp:
		return m.navigateHistory(-1)

	case tea.KeyDown:
		return m.navigateHistory(1)

	case tea.KeyEscape:
		if m.active.Loading() {
			m.cancelActive()
		}
		return m, nil

	case tea.KeyPgUp:
		m.viewport.PageUp()
		return m, nil

	case tea.KeyPgDown:
		m.viewport.PageDown()
		return m, nil
	}

	// Pass keys to the textarea for typing. Typing is allowed even while a
	// generation streams; the next submission supersedes it.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleCtrlC() (tea.Model, tea.Cmd) {
	now := time.Now()

	// Double Ctrl+C within a second = quit
	if now.Sub(m.lastCtrlC) < doubleCtrlCWindow {
		return m, m.cleanup()
	}
	m.lastCtrlC = now

	if m.active.Loading() {
		m.cancelActive()
		return m, nil
	}
	m.input.Reset()
	return m, nil
}

// cancelActive cooperatively cancels the active session's generation:
// bumping the sequence counter invalidates every write the in-flight
// stream will attempt. Partial content stays on screen.
func (m *Model) cancelActive() {
	m.mutate(func(s *session.Session) {
		s.Seq++
		s.State = session.StateReady
	})
	m.notice = i18n.T("error.canceled")
}

func (m *Model) handleSubmit() (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		return m, nil
	}

	if strings.HasPrefix(query, "/") {
		return m.handleSlashCommand(query)
	}

	// Input history (enforce maxHistory cap)
	m.history = append(m.history, query)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
	m.historyIdx = len(m.history)

	m.input.Reset()
	m.submitTopic(query)
	return m, m.spinner.Tick
}

// submitTopic records a fresh topic selection on the active session and
// dispatches a generation.
func (m *Model) submitTopic(topic string) {
	m.notice = ""
	m.mutate(func(s *session.Session) {
		s.Visit(topic)
		s.ResetGeneration()
	})
	m.dispatch(m.active.ID, false)
}

func (m *Model) navigateHistory(delta int) (tea.Model, tea.Cmd) {
	if len(m.history) == 0 {
		return m, nil
	}

	m.historyIdx += delta
	if m.historyIdx < 0 {
		m.historyIdx = 0
	}
	if m.historyIdx > len(m.history) {
		m.historyIdx = len(m.history)
	}

	if m.historyIdx == len(m.history) {
		m.input.SetValue("")
	} else {
		m.input.SetValue(m.history[m.historyIdx])
		m.input.CursorEnd()
	}
	return m, nil
}
