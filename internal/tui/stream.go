package tui

import (
	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"
)

// sessionChangedMsg is a change hint from the session store: the named
// session was mutated and its snapshot should be re-read.
type sessionChangedMsg struct {
	id uuid.UUID
}

// watchClosedMsg signals the store's watch channel was closed (shutdown).
type watchClosedMsg struct{}

// watchStore creates a command that waits for the next store change hint.
// The Update handler re-issues it after every hint, forming the refresh
// loop that mirrors generation progress into the view.
func watchStore(ch <-chan uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		id, ok := <-ch
		if !ok {
			return watchClosedMsg{}
		}
		return sessionChangedMsg{id: id}
	}
}
