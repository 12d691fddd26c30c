package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// notifyBuffer bounds the Watch channel. Notifications are coalescing hints
// ("session X changed, re-read it"), so dropping under backpressure is safe.
const notifyBuffer = 64

// Store owns the collection of sessions and the active-session selector.
//
// Invariants:
//   - The store is never empty: closing the last session synthesizes a
//     fresh default session.
//   - All mutation flows through Update/UpdateGeneration, serialized by the
//     store mutex and keyed by session identity.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	order    []uuid.UUID // tab display order
	active   uuid.UUID
	language string // default output language for new sessions
	logger   *slog.Logger
	watch    chan uuid.UUID
}

// NewStore creates a Store seeded with one default session.
// language is the default output language for new sessions.
func NewStore(language string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		sessions: make(map[uuid.UUID]*Session),
		language: language,
		logger:   logger,
		watch:    make(chan uuid.UUID, notifyBuffer),
	}
	first := s.newLocked()
	s.active = first.ID
	return s
}

// newLocked creates and registers a default session. Caller holds no lock
// requirement at construction; all other callers must hold s.mu.
func (s *Store) newLocked() *Session {
	sess := &Session{
		ID:       uuid.New(),
		Title:    DefaultTitle,
		State:    StateIdle,
		Language: s.language,
		Diagrams: make(map[string][]byte),
	}
	s.sessions[sess.ID] = sess
	s.order = append(s.order, sess.ID)
	return sess
}

// New opens a new session (tab), makes it active and returns a snapshot.
func (s *Store) New() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.newLocked()
	s.active = sess.ID
	s.logger.Debug("opened session", "id", sess.ID)
	return sess.clone()
}

// Get returns a snapshot of the session with the given ID.
func (s *Store) Get(id uuid.UUID) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("getting session %s: %w", id, ErrNotFound)
	}
	return sess.clone(), nil
}

// Active returns a snapshot of the active session.
func (s *Store) Active() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[s.active].clone()
}

// ActiveID returns the active session's ID.
func (s *Store) ActiveID() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// SetActive switches the active session.
func (s *Store) SetActive(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("activating session %s: %w", id, ErrNotFound)
	}
	s.active = id
	return nil
}

// List returns snapshots of all sessions in tab order.
func (s *Store) List() []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Session, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.sessions[id].clone())
	}
	return out
}

// Len returns the number of open sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Close removes a session. If it was the last one, a fresh default session
// is synthesized so the store is never empty. If the closed session was
// active, the nearest remaining tab becomes active. Returns the active
// session ID after removal.
func (s *Store) Close(id uuid.UUID) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return uuid.Nil, fmt.Errorf("closing session %s: %w", id, ErrNotFound)
	}

	idx := 0
	for i, oid := range s.order {
		if oid == id {
			idx = i
			break
		}
	}

	delete(s.sessions, id)
	s.order = append(s.order[:idx], s.order[idx+1:]...)

	if len(s.order) == 0 {
		replacement := s.newLocked()
		s.active = replacement.ID
		s.logger.Debug("closed last session, synthesized default", "id", replacement.ID)
		return s.active, nil
	}

	if s.active == id {
		if idx >= len(s.order) {
			idx = len(s.order) - 1
		}
		s.active = s.order[idx]
	}
	s.logger.Debug("closed session", "id", id, "active", s.active)
	return s.active, nil
}

// Update applies fn to the session with the given ID under the store lock.
// This is the single serialized mutation path: fn receives the live record
// scoped to exactly that session and must not retain it after returning.
func (s *Store) Update(id uuid.UUID, fn func(*Session)) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("updating session %s: %w", id, ErrNotFound)
	}
	fn(sess)
	s.mu.Unlock()

	s.notify(id)
	return nil
}

// UpdateGeneration applies fn only if the session's generation sequence
// counter still equals seq. A mismatch means the generation was superseded;
// the update is discarded and ErrSuperseded returned, leaving the session
// untouched. Every streaming write must pass this guard so that superseded
// work suppresses its own effects.
func (s *Store) UpdateGeneration(id uuid.UUID, seq uint64, fn func(*Session)) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("updating session %s: %w", id, ErrNotFound)
	}
	if sess.Seq != seq {
		s.mu.Unlock()
		return fmt.Errorf("updating session %s at seq %d (now %d): %w",
			id, seq, sess.Seq, ErrSuperseded)
	}
	fn(sess)
	s.mu.Unlock()

	s.notify(id)
	return nil
}

// Watch returns a channel of change hints: the ID of a session that was
// mutated. Consumers should re-read the session snapshot on receipt.
// Hints may be dropped under backpressure; they are never required for
// correctness.
func (s *Store) Watch() <-chan uuid.UUID {
	return s.watch
}

// notify emits a change hint without blocking.
func (s *Store) notify(id uuid.UUID) {
	select {
	case s.watch <- id:
	default: // drop under backpressure
	}
}
