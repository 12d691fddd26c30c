package tui

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/jama7777/Inifinite-wiki/internal/document"
	"github.com/jama7777/Inifinite-wiki/internal/i18n"
	"github.com/jama7777/Inifinite-wiki/internal/session"
)

// Slash command constants.
const (
	cmdOpen    = "/open"
	cmdURL     = "/url"
	cmdSearch  = "/search"
	cmdLang    = "/lang"
	cmdRandom  = "/random"
	cmdBack    = "/back"
	cmdForward = "/forward"
	cmdNext    = "/next"
	cmdPrev    = "/prev"
	cmdSection = "/section"
	cmdTab     = "/tab"
	cmdClose   = "/close"
	cmdReload  = "/reload"
	cmdHelp    = "/help"
	cmdQuit    = "/quit"
	cmdExit    = "/exit"
)

// randomTopics seeds the /random command. Curated starting points rather
// than asking the model for a topic, which costs a round trip.
var randomTopics = []string{
	"Hypertext", "Voynich Manuscript", "Antikythera Mechanism",
	"Conway's Game of Life", "The Library of Babel", "Ship of Theseus",
	"Zipf's Law", "Damascus Steel", "Phantom Island", "Oulipo",
	"Carrington Event", "Baghdad Battery", "Rosetta Stone",
	"Halting Problem", "Tulip Mania", "Prisoner's Dilemma",
	"Dead Sea Scrolls", "Benford's Law", "Great Emu War",
	"Svalbard Global Seed Vault",
}

//nolint:gocyclo // Command dispatch requires a branch per command
func (m *Model) handleSlashCommand(raw string) (tea.Model, tea.Cmd) {
	m.input.Reset()
	m.notice = ""

	cmd, arg, _ := strings.Cut(raw, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case cmdHelp:
		m.notice = helpText()

	case cmdQuit, cmdExit:
		return m, m.cleanup()

	case cmdOpen:
		m.attachFile(arg)

	case cmdURL:
		if arg == "" {
			m.notice = i18n.T("help.url")
			break
		}
		m.submitTopic(arg)
		return m, m.spinner.Tick

	case cmdSearch:
		m.toggleSearch()

	case cmdLang:
		m.setLanguage(arg)
		return m, m.spinner.Tick

	case cmdRandom:
		m.submitTopic(randomTopics[rand.IntN(len(randomTopics))])
		return m, m.spinner.Tick

	case cmdBack:
		m.goBack()
		return m, m.spinner.Tick

	case cmdForward:
		m.goForward()
		return m, m.spinner.Tick

	case cmdNext:
		m.pageForward()
		return m, m.spinner.Tick

	case cmdPrev:
		m.pageBackward()
		return m, m.spinner.Tick

	case cmdSection:
		switch arg {
		case "-":
			m.sectionBackward()
		default:
			m.sectionForward()
		}
		return m, m.spinner.Tick

	case cmdTab:
		m.openTab()

	case cmdClose:
		m.closeTab()

	case cmdReload:
		m.mutate(func(s *session.Session) { s.ResetGeneration() })
		m.dispatch(m.active.ID, true)
		return m, m.spinner.Tick

	default:
		m.notice = fmt.Sprintf("Unknown command: %s (try %s)", cmd, cmdHelp)
	}
	return m, nil
}

func helpText() string {
	keys := []string{
		"help.title", "help.open", "help.url", "help.search", "help.lang",
		"help.random", "help.back", "help.pages", "help.section",
		"help.reload", "help.tab", "help.quit",
	}
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, i18n.T(k))
	}
	return strings.Join(lines, "\n")
}

// attachFile loads a document or image from disk into the active session.
// Extraction failure leaves the prior session state untouched.
func (m *Model) attachFile(path string) {
	if path == "" {
		m.notice = i18n.T("help.open")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		m.notice = i18n.Sprintf("error.attach", err)
		return
	}
	doc, err := document.Load(path, data)
	if err != nil {
		m.notice = i18n.Sprintf("error.attach", err)
		return
	}

	m.mutate(func(s *session.Session) {
		s.Document = doc
		s.PageIndex = 0
		s.EbookMode = true
		s.SearchEnabled = false // attachment turns search augmentation off
		s.Topic = ""
		s.ResetGeneration()
	})
	m.notice = i18n.Sprintf("mode.document", doc.Name)
	m.dispatch(m.active.ID, false)
}

func (m *Model) toggleSearch() {
	enabled := false
	m.mutate(func(s *session.Session) {
		s.SearchEnabled = !s.SearchEnabled
		enabled = s.SearchEnabled
	})
	if enabled {
		m.notice = i18n.T("mode.search.on")
	} else {
		m.notice = i18n.T("mode.search.off")
	}
}

// setLanguage switches the session output language. The fingerprint
// changes with it, so content is cleared and regenerated rather than
// reusing the previous language's cache entry.
func (m *Model) setLanguage(lang string) {
	if lang == "" {
		m.notice = i18n.Sprintf("lang.available", strings.Join(i18n.OutputLanguages(), ", "))
		return
	}
	matched := ""
	for _, l := range i18n.OutputLanguages() {
		if strings.EqualFold(l, lang) {
			matched = l
			break
		}
	}
	if matched == "" {
		m.notice = i18n.Sprintf("lang.unsupported", lang)
		return
	}

	m.mutate(func(s *session.Session) {
		s.Language = matched
		s.ResetGeneration()
	})
	m.notice = i18n.Sprintf("lang.changed", matched)
	m.dispatch(m.active.ID, false)
}

func (m *Model) goBack() {
	moved := false
	m.mutate(func(s *session.Session) {
		if moved = s.Back(); moved {
			s.ResetGeneration()
		}
	})
	if !moved {
		m.notice = i18n.T("error.navigation")
		return
	}
	m.dispatch(m.active.ID, false)
}

func (m *Model) goForward() {
	moved := false
	m.mutate(func(s *session.Session) {
		if moved = s.Forward(); moved {
			s.ResetGeneration()
		}
	})
	if !moved {
		m.notice = i18n.T("error.navigation")
		return
	}
	m.dispatch(m.active.ID, false)
}

// pageForward advances local pages when a paginated document is open,
// otherwise the remote section index.
func (m *Model) pageForward() {
	if m.active.EbookMode && m.active.PageCount() > 0 {
		moved := false
		m.mutate(func(s *session.Session) {
			if moved = s.NextPage(); moved {
				s.ResetGeneration()
			}
		})
		if moved {
			m.dispatch(m.active.ID, false)
		}
		return
	}
	m.sectionForward()
}

func (m *Model) pageBackward() {
	if m.active.EbookMode && m.active.PageCount() > 0 {
		moved := false
		m.mutate(func(s *session.Session) {
			if moved = s.PrevPage(); moved {
				s.ResetGeneration()
			}
		})
		if moved {
			m.dispatch(m.active.ID, false)
		}
		return
	}
	m.sectionBackward()
}

func (m *Model) sectionForward() {
	m.mutate(func(s *session.Session) {
		s.NextSection()
		s.ResetGeneration()
	})
	m.dispatch(m.active.ID, false)
}

func (m *Model) sectionBackward() {
	moved := false
	m.mutate(func(s *session.Session) {
		if moved = s.PrevSection(); moved {
			s.ResetGeneration()
		}
	})
	if moved {
		m.dispatch(m.active.ID, false)
	}
}

func (m *Model) openTab() {
	m.store.New()
	m.refresh()
	m.notice = i18n.Sprintf("tab.opened", len(m.tabs))
}

func (m *Model) closeTab() {
	closed := m.active.ID
	if _, err := m.store.Close(closed); err != nil {
		m.notice = err.Error()
		return
	}
	m.fetcher.Release(closed)
	m.refresh()
	m.notice = i18n.T("tab.closed")
}

func (m *Model) cycleTab(delta int) {
	if len(m.tabs) < 2 {
		return
	}
	idx := 0
	for i, t := range m.tabs {
		if t.ID == m.active.ID {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(m.tabs)) % len(m.tabs)
	if err := m.store.SetActive(m.tabs[idx].ID); err != nil {
		m.notice = err.Error()
		return
	}
	m.refresh()
}
