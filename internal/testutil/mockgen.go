// Package testutil provides deterministic fakes for testing: a scripted
// generation service, a canned page fetcher and a discard logger.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jama7777/Inifinite-wiki/internal/gemini"
	"github.com/jama7777/Inifinite-wiki/internal/session"
	"github.com/jama7777/Inifinite-wiki/internal/webpage"
)

// MockGenerator provides deterministic generation responses for testing.
// It matches prompts against registered patterns and streams the
// corresponding scripted deltas.
//
// Thread-safe for concurrent use.
type MockGenerator struct {
	mu       sync.Mutex
	rules    []mockRule
	fallback []string
	calls    []MockCall

	// Gate, when non-nil, is received from before each streamed delta.
	// Tests use it to hold a stream mid-flight and interleave other work.
	Gate chan struct{}
}

type mockRule struct {
	pattern string // substring match, case-insensitive
	deltas  []string
	sources []session.Source
	err     error
}

// MockCall records a single operation invocation.
type MockCall struct {
	Op     string // operation name, e.g. "definition", "search"
	Prompt string // topic, query or text passed in
}

// NewMockGenerator creates a mock whose unmatched prompts stream the given
// fallback deltas.
func NewMockGenerator(fallback ...string) *MockGenerator {
	if len(fallback) == 0 {
		fallback = []string{"mock response"}
	}
	return &MockGenerator{fallback: fallback}
}

// Script registers a pattern and the deltas streamed when a prompt
// contains it. Patterns are checked in registration order; first match
// wins.
func (m *MockGenerator) Script(pattern string, deltas ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, mockRule{pattern: strings.ToLower(pattern), deltas: deltas})
}

// ScriptError registers a pattern whose stream delivers the given deltas
// and then terminates with err.
func (m *MockGenerator) ScriptError(pattern string, err error, deltas ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, mockRule{pattern: strings.ToLower(pattern), deltas: deltas, err: err})
}

// ScriptSources registers a pattern whose stream also carries citations.
func (m *MockGenerator) ScriptSources(pattern string, sources []session.Source, deltas ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, mockRule{pattern: strings.ToLower(pattern), deltas: deltas, sources: sources})
}

// Calls returns a copy of all recorded calls.
func (m *MockGenerator) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]MockCall, len(m.calls))
	copy(cp, m.calls)
	return cp
}

// CallCount returns how many calls were recorded for an operation; op ""
// counts everything.
func (m *MockGenerator) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if op == "" {
		return len(m.calls)
	}
	n := 0
	for _, c := range m.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (m *MockGenerator) match(op, prompt string) mockRule {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{Op: op, Prompt: prompt})
	lower := strings.ToLower(prompt)
	for _, r := range m.rules {
		if strings.Contains(lower, r.pattern) {
			return r
		}
	}
	return mockRule{deltas: m.fallback}
}

func (m *MockGenerator) stream(ctx context.Context, rule mockRule) <-chan gemini.Event {
	out := make(chan gemini.Event, len(rule.deltas)+2)
	gate := m.Gate
	go func() {
		defer close(out)
		for _, d := range rule.deltas {
			if gate != nil {
				select {
				case <-gate:
				case <-ctx.Done():
					out <- gemini.Event{Err: ctx.Err()}
					return
				}
			}
			select {
			case out <- gemini.Event{Delta: d}:
			case <-ctx.Done():
				out <- gemini.Event{Err: ctx.Err()}
				return
			}
		}
		if len(rule.sources) > 0 {
			out <- gemini.Event{Sources: rule.sources}
		}
		if rule.err != nil {
			out <- gemini.Event{Err: rule.err}
		}
	}()
	return out
}

func (m *MockGenerator) StreamDefinition(ctx context.Context, topic string, section int, language string) <-chan gemini.Event {
	return m.stream(ctx, m.match("definition", topic))
}

func (m *MockGenerator) Search(ctx context.Context, query, language string) (string, []session.Source, error) {
	rule := m.match("search", query)
	if rule.err != nil {
		return "", nil, rule.err
	}
	return strings.Join(rule.deltas, ""), rule.sources, nil
}

func (m *MockGenerator) StreamVideoSummary(ctx context.Context, url, language string) <-chan gemini.Event {
	return m.stream(ctx, m.match("video", url))
}

func (m *MockGenerator) StreamWebResource(ctx context.Context, url, title, pageText string, section int, language string) <-chan gemini.Event {
	return m.stream(ctx, m.match("web", url))
}

func (m *MockGenerator) StreamDocumentAnswer(ctx context.Context, doc session.Document, query, language string, withSearch bool) <-chan gemini.Event {
	op := "document"
	if withSearch {
		op = "docsearch"
	}
	return m.stream(ctx, m.match(op, query))
}

func (m *MockGenerator) StreamImageAnalysis(ctx context.Context, data []byte, mime, query, language string) <-chan gemini.Event {
	return m.stream(ctx, m.match("image", query))
}

func (m *MockGenerator) StreamTranslation(ctx context.Context, text, language string) <-chan gemini.Event {
	return m.stream(ctx, m.match("translate", text))
}

// MockImageGenerator returns canned diagram bytes and counts calls per
// prompt.
type MockImageGenerator struct {
	mu    sync.Mutex
	calls map[string]int
	Err   error // returned for every prompt when set

	// Block, when non-nil, is received from before returning. Tests use
	// it to keep a request outstanding.
	Block chan struct{}
}

func NewMockImageGenerator() *MockImageGenerator {
	return &MockImageGenerator{calls: make(map[string]int)}
}

func (m *MockImageGenerator) GenerateDiagram(ctx context.Context, prompt string) ([]byte, error) {
	m.mu.Lock()
	m.calls[prompt]++
	m.mu.Unlock()

	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return []byte("png:" + prompt), nil
}

// DiagramCalls returns the number of generation calls seen for a prompt.
func (m *MockImageGenerator) DiagramCalls(prompt string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[prompt]
}

// MockPageFetcher serves canned pages keyed by URL.
type MockPageFetcher struct {
	mu    sync.Mutex
	pages map[string]webpage.Page
}

func NewMockPageFetcher() *MockPageFetcher {
	return &MockPageFetcher{pages: make(map[string]webpage.Page)}
}

// Serve registers a page for a URL.
func (m *MockPageFetcher) Serve(url string, page webpage.Page) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[url] = page
}

func (m *MockPageFetcher) Fetch(ctx context.Context, url string) (webpage.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.pages[url]; ok {
		return p, nil
	}
	return webpage.Page{}, fmt.Errorf("no page registered for %s", url)
}
