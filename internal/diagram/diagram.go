// Package diagram resolves inline [DIAGRAM: ...] markers in generated
// content into rendered images, asynchronously and deduplicated per
// session.
package diagram

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jama7777/Inifinite-wiki/internal/session"
)

// markerRe matches inline image-request markers. The capture is the
// freeform prompt text, which also keys the session's diagram map.
var markerRe = regexp.MustCompile(`\[DIAGRAM:\s*([^\]]+)\]`)

// Markers extracts the distinct diagram prompts from content, in order of
// first appearance. Prompt text is whitespace-trimmed but otherwise kept
// exact, since it is the map key the renderer substitutes on.
func Markers(content string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range markerRe.FindAllStringSubmatch(content, -1) {
		p := strings.TrimSpace(m[1])
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// ReplaceMarkers rewrites every marker in content through fn, which
// receives the trimmed prompt text. Renderers use this to substitute
// resolved images or placeholders.
func ReplaceMarkers(content string, fn func(prompt string) string) string {
	return markerRe.ReplaceAllStringFunc(content, func(match string) string {
		sub := markerRe.FindStringSubmatch(match)
		return fn(strings.TrimSpace(sub[1]))
	})
}

// ImageGenerator renders one diagram prompt into an encoded image.
type ImageGenerator interface {
	GenerateDiagram(ctx context.Context, prompt string) ([]byte, error)
}

// Config contains all required parameters for the Resolver.
type Config struct {
	Store     *session.Store
	Generator ImageGenerator
	Logger    *slog.Logger

	// Concurrency bounds simultaneous outstanding image requests across
	// all sessions. Zero uses DefaultConcurrency.
	Concurrency int
}

// DefaultConcurrency bounds simultaneous diagram requests.
const DefaultConcurrency = 3

func (cfg Config) validate() error {
	if cfg.Store == nil {
		return errors.New("session store is required")
	}
	if cfg.Generator == nil {
		return errors.New("image generator is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

// Resolver watches content for diagram markers and fills the session's
// diagram map. Deduplication and failure tracking are scoped per session:
// the same prompt in two sessions yields two independent requests, and one
// session's failure never poisons another. Rendering itself shares a single
// concurrency bound across all sessions.
//
// A prompt that fails is marked terminally failed for that session and is
// not retried.
type Resolver struct {
	store  *session.Store
	gen    ImageGenerator
	logger *slog.Logger
	sem    chan struct{}

	mu      sync.Mutex
	pending map[uuid.UUID]map[string]bool
	failed  map[uuid.UUID]map[string]bool

	wg sync.WaitGroup
}

// New creates a Resolver with required configuration.
func New(cfg Config) (*Resolver, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	n := cfg.Concurrency
	if n <= 0 {
		n = DefaultConcurrency
	}
	return &Resolver{
		store:   cfg.Store,
		gen:     cfg.Generator,
		logger:  cfg.Logger,
		sem:     make(chan struct{}, n),
		pending: make(map[uuid.UUID]map[string]bool),
		failed:  make(map[uuid.UUID]map[string]bool),
	}, nil
}

// Scan inspects content for markers and launches resolution for every
// prompt the session has not already resolved, failed, or started. Safe to
// call repeatedly with overlapping content; duplicate prompts coalesce.
func (r *Resolver) Scan(ctx context.Context, id uuid.UUID, content string) {
	prompts := Markers(content)
	if len(prompts) == 0 {
		return
	}

	sess, err := r.store.Get(id)
	if err != nil {
		return // session closed between content write and scan
	}

	for _, prompt := range prompts {
		if _, ok := sess.Diagrams[prompt]; ok {
			continue
		}
		if !r.claim(id, prompt) {
			continue
		}
		r.wg.Add(1)
		go r.resolve(ctx, id, prompt)
	}
}

// claim records a prompt as in-flight for a session. Returns false if the
// prompt is already pending or terminally failed there.
func (r *Resolver) claim(id uuid.UUID, prompt string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failed[id][prompt] || r.pending[id][prompt] {
		return false
	}
	if r.pending[id] == nil {
		r.pending[id] = make(map[string]bool)
	}
	r.pending[id][prompt] = true
	return true
}

func (r *Resolver) resolve(ctx context.Context, id uuid.UUID, prompt string) {
	defer r.wg.Done()
	defer func() {
		r.mu.Lock()
		delete(r.pending[id], prompt)
		r.mu.Unlock()
	}()

	r.sem <- struct{}{}
	defer func() { <-r.sem }()

	img, err := r.gen.GenerateDiagram(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			// Shutdown, not a render failure. Leave the prompt
			// unclaimed so a later scan can retry it.
			r.logger.Debug("diagram render interrupted", "session", id, "prompt", prompt)
			return
		}
		r.mu.Lock()
		if r.failed[id] == nil {
			r.failed[id] = make(map[string]bool)
		}
		r.failed[id][prompt] = true
		r.mu.Unlock()
		r.logger.Warn("diagram generation failed", "session", id, "prompt", prompt, "error", err)
		return
	}

	err = r.store.Update(id, func(s *session.Session) {
		if s.Diagrams == nil {
			s.Diagrams = make(map[string][]byte)
		}
		s.Diagrams[prompt] = img
	})
	if err != nil {
		r.logger.Debug("discarding diagram for closed session", "session", id)
		return
	}
	r.logger.Debug("diagram resolved", "session", id, "prompt", prompt, "bytes", len(img))
}

// Forget drops the pending and failed bookkeeping for a closed session.
func (r *Resolver) Forget(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, id)
	delete(r.failed, id)
}

// Wait blocks until all in-flight resolutions finish. Used on shutdown.
func (r *Resolver) Wait() {
	r.wg.Wait()
}
