// Package tui provides the Bubble Tea terminal interface for Infinite
// Wiki: a tab bar, a scrollable article viewport and a command line that
// accepts topics, URLs and slash commands.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/google/uuid"

	"github.com/jama7777/Inifinite-wiki/internal/fetch"
	"github.com/jama7777/Inifinite-wiki/internal/session"
)

// Memory bounds to prevent unbounded growth.
const maxHistory = 100 // Maximum command history entries

// Layout constants for viewport height calculation.
const (
	tabBarLines    = 1 // Tab bar height
	separatorLines = 2 // Two separator lines (above and below input)
	helpLines      = 1 // Help bar height
	promptLines    = 1 // Prompt prefix line
	minViewport    = 3 // Minimum viewport height
)

// Model is the Bubble Tea model for the Infinite Wiki terminal interface.
// It renders snapshots of the session store and translates key presses
// into store updates plus fetch dispatches; all generation state lives in
// the store, not here.
type Model struct {
	// Input (textarea, single line)
	input      textarea.Model
	history    []string
	historyIdx int

	// Snapshot of the active session, refreshed on store change hints.
	active session.Session
	tabs   []session.Session

	// Links extracted from the last rendered article, in display order.
	links []string

	// Transient notice line (command feedback, errors from intents).
	notice string

	lastCtrlC time.Time

	// Output
	spinner spinner.Model
	viewBuf strings.Builder // Reusable buffer for View() to reduce allocations

	// Scrollable article viewport
	viewport viewport.Model

	// Help bar for keyboard shortcuts
	help help.Model
	keys keyMap

	// Dependencies (direct, no interface)
	store     *session.Store
	fetcher   *fetch.Fetcher
	watch     <-chan uuid.UUID
	ctx       context.Context
	ctxCancel context.CancelFunc // For canceling all operations on exit

	// Dimensions
	width  int
	height int

	// Styles
	styles Styles

	// Markdown rendering (nil = graceful degradation to plain text)
	markdown *markdownRenderer
}

// New creates a Model. Returns error if required dependencies are nil.
//
// IMPORTANT: ctx MUST be the same context passed to tea.WithContext()
// to ensure consistent cancellation behavior.
func New(ctx context.Context, store *session.Store, fetcher *fetch.Fetcher) (*Model, error) {
	if ctx == nil {
		return nil, errors.New("tui.New: ctx is required")
	}
	if store == nil {
		return nil, errors.New("tui.New: session store is required")
	}
	if fetcher == nil {
		return nil, errors.New("tui.New: fetcher is required")
	}

	ctx, cancel := context.WithCancel(ctx)

	ta := textarea.New()
	ta.Placeholder = "Search a topic, paste a URL, or /help..."
	ta.SetHeight(1)
	ta.SetWidth(120) // Updated on WindowSizeMsg
	ta.MaxWidth = 0
	ta.ShowLineNumbers = false

	cleanStyle := textarea.StyleState{
		Base:        lipgloss.NewStyle(),
		Text:        lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Prompt:      lipgloss.NewStyle(),
	}
	ta.SetStyles(textarea.Styles{
		Focused: cleanStyle,
		Blurred: cleanStyle,
	})
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	// Viewport keyboard handling is routed explicitly in handleKey to
	// avoid conflicts with the textarea.
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true
	vp.KeyMap = viewport.KeyMap{}

	h := help.New()

	return &Model{
		store:     store,
		fetcher:   fetcher,
		watch:     store.Watch(),
		ctx:       ctx,
		ctxCancel: cancel,
		input:     ta,
		spinner:   sp,
		viewport:  vp,
		help:      h,
		keys:      newKeyMap(),
		styles:    DefaultStyles(),
		history:   make([]string, 0, maxHistory),
		markdown:  newMarkdownRenderer(80),
		active:    store.Active(),
		tabs:      store.List(),
		width:     80, // Default until WindowSizeMsg arrives
	}, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.input.Focus(),
		watchStore(m.watch),
	)
}

// refresh re-reads store snapshots and rebuilds the article view.
func (m *Model) refresh() {
	m.active = m.store.Active()
	m.tabs = m.store.List()
	m.rebuildViewportContent()
}

// cleanup cancels all operations and returns the quit command.
func (m *Model) cleanup() tea.Cmd {
	if m.ctxCancel != nil {
		m.ctxCancel()
		m.ctxCancel = nil
	}
	return tea.Quit
}

// doubleCtrlCWindow is how fast the second Ctrl+C must follow the first
// to quit.
const doubleCtrlCWindow = time.Second

// timeRound is the display granularity for elapsed generation time.
const timeRound = 10 * time.Millisecond
