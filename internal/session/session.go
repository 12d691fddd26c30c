package session

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTitle is the display title of a freshly created session.
const DefaultTitle = "New Tab"

// State is the per-session generation state machine.
// Transitions: StateIdle → StateFetching → StateReady | StateError, and back
// to StateFetching when a new generation starts.
type State int

// Generation states.
const (
	StateIdle State = iota
	StateFetching
	StateReady
	StateError
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Source is a web citation returned alongside search-augmented output.
type Source struct {
	URI   string
	Title string
}

// Document is an attached document or binary file.
// Either Text/Pages are populated (extraction succeeded) or Binary/MIME are
// (extraction not applicable; the raw bytes go to the generation service).
type Document struct {
	Name   string
	Text   string   // full extracted text, empty for binary attachments
	Pages  []string // pre-segmented local pages, nil for binary attachments
	Binary []byte   // raw bytes when extraction is not applicable
	MIME   string   // declared mime type of the binary attachment
}

// IsBinary reports whether the document is an opaque binary attachment.
func (d Document) IsBinary() bool {
	return len(d.Binary) > 0
}

// Loaded reports whether any document or attachment is present.
func (d Document) Loaded() bool {
	return d.Name != "" || d.Text != "" || len(d.Binary) > 0
}

// Session is one independent browsing context.
type Session struct {
	ID    uuid.UUID
	Title string

	// Topic is the current topic, question or URL.
	Topic string

	// Generation output.
	Content string
	Sources []Source
	Elapsed time.Duration
	Err     error
	State   State

	// Seq is the monotonic generation sequence counter. Every generation
	// captures the value current at its start; an event whose captured
	// sequence no longer matches has been superseded and must be discarded.
	Seq uint64

	// Mode flags.
	SearchEnabled bool
	EbookMode     bool

	// Attached document and local pagination. The zero Document means
	// nothing is loaded.
	Document  Document
	PageIndex int

	// Remote web resource and section pagination.
	ResourceURL  string
	SectionIndex int

	// Diagrams maps marker prompt text to a resolved encoded raster.
	Diagrams map[string][]byte

	// Language is the output language for generated content.
	Language string

	// Back/forward topic stacks.
	History []string
	Future  []string
}

// Loading reports whether a generation is currently in flight.
func (s Session) Loading() bool {
	return s.State == StateFetching
}

// ResetGeneration clears accumulated output before a new generation.
// Called whenever the effective fingerprint changes.
func (s *Session) ResetGeneration() {
	s.Content = ""
	s.Sources = nil
	s.Elapsed = 0
	s.Err = nil
}

// PageCount returns the number of local pages, 0 without an extracted document.
func (s Session) PageCount() int {
	return len(s.Document.Pages)
}

// CurrentPage returns the text of the current local page, empty when the
// session has no extracted document.
func (s Session) CurrentPage() string {
	if s.PageCount() == 0 {
		return ""
	}
	return s.Document.Pages[s.PageIndex]
}

// NextPage advances local pagination. No-op at the last page.
func (s *Session) NextPage() bool {
	if s.PageIndex >= s.PageCount()-1 {
		return false
	}
	s.PageIndex++
	return true
}

// PrevPage moves local pagination backwards. No-op at page 0.
func (s *Session) PrevPage() bool {
	if s.PageIndex <= 0 {
		return false
	}
	s.PageIndex--
	return true
}

// NextSection advances the remote section index. The index is unbounded
// upwards; the service, not the client, interprets out-of-range requests.
func (s *Session) NextSection() {
	s.SectionIndex++
}

// PrevSection moves the remote section index backwards, floored at 0.
func (s *Session) PrevSection() bool {
	if s.SectionIndex <= 0 {
		return false
	}
	s.SectionIndex--
	return true
}

// clone returns a snapshot safe to hand outside the store.
// Slices and the diagram map are copied. Diagram image bytes, document
// pages and attachment bytes are shared and treated as immutable once set.
func (s *Session) clone() Session {
	cp := *s
	if s.Sources != nil {
		cp.Sources = make([]Source, len(s.Sources))
		copy(cp.Sources, s.Sources)
	}
	if s.History != nil {
		cp.History = make([]string, len(s.History))
		copy(cp.History, s.History)
	}
	if s.Future != nil {
		cp.Future = make([]string, len(s.Future))
		copy(cp.Future, s.Future)
	}
	if s.Diagrams != nil {
		cp.Diagrams = make(map[string][]byte, len(s.Diagrams))
		for k, v := range s.Diagrams {
			cp.Diagrams[k] = v
		}
	}
	return cp
}
