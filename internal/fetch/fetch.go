// Package fetch is the session orchestrator: it owns the lifecycle of the
// single active generation per session, routes requests to the right
// generation strategy, consults the result cache, streams partial output
// into session state and cancels superseded work.
package fetch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jama7777/Inifinite-wiki/internal/cache"
	"github.com/jama7777/Inifinite-wiki/internal/gemini"
	"github.com/jama7777/Inifinite-wiki/internal/session"
	"github.com/jama7777/Inifinite-wiki/internal/topic"
	"github.com/jama7777/Inifinite-wiki/internal/webpage"
)

// Generator is the slice of the generation service the orchestrator uses.
// Implemented by *gemini.Service.
type Generator interface {
	StreamDefinition(ctx context.Context, topic string, section int, language string) <-chan gemini.Event
	Search(ctx context.Context, query, language string) (string, []session.Source, error)
	StreamVideoSummary(ctx context.Context, url, language string) <-chan gemini.Event
	StreamWebResource(ctx context.Context, url, title, pageText string, section int, language string) <-chan gemini.Event
	StreamDocumentAnswer(ctx context.Context, doc session.Document, query, language string, withSearch bool) <-chan gemini.Event
	StreamImageAnalysis(ctx context.Context, data []byte, mime, query, language string) <-chan gemini.Event
	StreamTranslation(ctx context.Context, text, language string) <-chan gemini.Event
}

// PageFetcher downloads a URL and reduces it to readable text.
// Implemented by *webpage.Fetcher.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (webpage.Page, error)
}

// Scanner receives content for diagram-marker resolution. Forget drops a
// closed session's resolution bookkeeping.
// Implemented by *diagram.Resolver.
type Scanner interface {
	Scan(ctx context.Context, id uuid.UUID, content string)
	Forget(id uuid.UUID)
}

// DefaultTimeout bounds one generation end to end.
const DefaultTimeout = 5 * time.Minute

// BaseLanguage is the language articles are generated in by default.
// Local document pages displayed in any other language go through the
// translation strategy.
const BaseLanguage = "English"

// Config contains all required parameters for the Fetcher.
type Config struct {
	Store     *session.Store
	Cache     *cache.Cache
	Generator Generator
	Pages     PageFetcher
	Diagrams  Scanner // optional, nil disables diagram resolution
	Logger    *slog.Logger

	// Limiter throttles outgoing generation calls. Nil uses a default of
	// 10 requests/sec sustained, burst of 30.
	Limiter *rate.Limiter

	// Timeout bounds one generation. Zero uses DefaultTimeout.
	Timeout time.Duration
}

func (cfg Config) validate() error {
	if cfg.Store == nil {
		return errors.New("session store is required")
	}
	if cfg.Cache == nil {
		return errors.New("result cache is required")
	}
	if cfg.Generator == nil {
		return errors.New("generator is required")
	}
	if cfg.Pages == nil {
		return errors.New("page fetcher is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

// Fetcher drives generations. All state transitions go through the session
// Store's keyed update path; the Fetcher itself only tracks the last
// dispatched fingerprint per session, to suppress duplicate triggers.
type Fetcher struct {
	store    *session.Store
	cache    *cache.Cache
	gen      Generator
	pages    PageFetcher
	diagrams Scanner
	logger   *slog.Logger
	limiter  *rate.Limiter
	timeout  time.Duration

	mu   sync.Mutex
	last map[uuid.UUID]topic.Fingerprint

	wg sync.WaitGroup
}

// New creates a Fetcher with required configuration.
func New(cfg Config) (*Fetcher, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(10, 30)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		store:    cfg.Store,
		cache:    cfg.Cache,
		gen:      cfg.Generator,
		pages:    cfg.Pages,
		diagrams: cfg.Diagrams,
		logger:   cfg.Logger,
		limiter:  limiter,
		timeout:  timeout,
		last:     make(map[uuid.UUID]topic.Fingerprint),
	}, nil
}

// plan is everything one dispatch needs, resolved from a session snapshot
// before any state is touched.
type plan struct {
	strategy    topic.Strategy
	fingerprint topic.Fingerprint
	title       string
	cacheable   bool
	snap        session.Session
}

// Fetch dispatches a generation for the session's current fields. force
// bypasses both the duplicate-trigger suppression and the cache (reload).
//
// ctx should be the application lifecycle context, not a per-keystroke
// one: the stream must outlive the UI event that started it.
func (f *Fetcher) Fetch(ctx context.Context, id uuid.UUID, force bool) error {
	snap, err := f.store.Get(id)
	if err != nil {
		return err
	}

	p := f.resolve(snap)

	if !force {
		f.mu.Lock()
		dup := f.last[id] == p.fingerprint && snap.State == session.StateFetching
		f.mu.Unlock()
		if dup {
			// Same fingerprint already streaming; overlapping change
			// notifications must not double-trigger.
			return nil
		}
	}
	f.mu.Lock()
	f.last[id] = p.fingerprint
	f.mu.Unlock()

	// Local page display in the base language needs no generation at all.
	if p.strategy == topic.StrategyDocument && snap.EbookMode && len(snap.Document.Pages) > 0 && snap.Topic == "" && snap.Language == BaseLanguage {
		return f.showLocalPage(id, snap)
	}

	if !force && snap.Content == "" {
		if entry, ok := f.cache.Get(p.fingerprint); ok {
			f.logger.Debug("cache hit", "session", id, "fingerprint", p.fingerprint)
			return f.hydrate(id, p, entry)
		}
	}

	return f.begin(ctx, id, p)
}

// resolve classifies the snapshot into a strategy, fingerprint and title.
func (f *Fetcher) resolve(snap session.Session) plan {
	strategy := topic.Classify(topic.Request{
		Query:          snap.Topic,
		AttachmentMIME: snap.Document.MIME,
		DocumentLoaded: snap.Document.Loaded(),
		SearchEnabled:  snap.SearchEnabled,
	})

	section := snap.SectionIndex
	query := snap.Topic
	title := snap.Topic

	switch strategy {
	case topic.StrategyDocument, topic.StrategyDocumentSearch:
		if snap.EbookMode && len(snap.Document.Pages) > 0 && snap.Topic == "" {
			// Reading a local page; non-base languages translate it.
			if snap.Language != BaseLanguage {
				strategy = topic.StrategyTranslate
			}
			section = snap.PageIndex
		}
		title = snap.Document.Name
	case topic.StrategyImage:
		title = snap.Document.Name
	case topic.StrategyWebResource, topic.StrategyVideo:
		title = snap.Topic
	}

	fp := topic.NewFingerprint(strategy, snap.Document.Name, query, section, snap.Language)
	return plan{
		strategy:    strategy,
		fingerprint: fp,
		title:       title,
		cacheable:   true,
		snap:        snap,
	}
}

// showLocalPage displays the current document page directly.
func (f *Fetcher) showLocalPage(id uuid.UUID, snap session.Session) error {
	return f.store.Update(id, func(s *session.Session) {
		s.Content = s.CurrentPage()
		s.Err = nil
		s.Sources = nil
		s.Elapsed = 0
		s.State = session.StateReady
		s.Title = s.Document.Name
	})
}

// hydrate fills session fields from a cache entry. No network call.
func (f *Fetcher) hydrate(id uuid.UUID, p plan, entry cache.Entry) error {
	err := f.store.Update(id, func(s *session.Session) {
		s.Content = entry.Content
		s.Sources = append([]session.Source(nil), entry.Sources...)
		s.Elapsed = entry.Elapsed
		s.Err = nil
		s.State = session.StateReady
		if p.title != "" {
			s.Title = p.title
		}
	})
	if err != nil {
		return err
	}
	if f.diagrams != nil {
		f.diagrams.Scan(context.Background(), id, entry.Content)
	}
	return nil
}

// begin starts a generation: bumps the session's sequence counter, captures
// it as this generation's identity, resets accumulation state and launches
// the strategy call. Everything after the bump writes through the
// sequence-guarded path, so a later generation automatically invalidates
// this one.
func (f *Fetcher) begin(ctx context.Context, id uuid.UUID, p plan) error {
	var seq uint64
	err := f.store.Update(id, func(s *session.Session) {
		s.Seq++
		seq = s.Seq
		s.ResetGeneration()
		s.State = session.StateFetching
	})
	if err != nil {
		return err
	}

	f.logger.Debug("generation started",
		"session", id,
		"seq", seq,
		"strategy", p.strategy.String(),
		"fingerprint", p.fingerprint,
	)

	f.wg.Add(1)
	go f.run(ctx, id, seq, p)
	return nil
}

// Release drops all per-session bookkeeping for a closed session: the
// duplicate-suppression fingerprint and the diagram resolver's pending and
// failed sets. Called when a tab closes.
func (f *Fetcher) Release(id uuid.UUID) {
	f.mu.Lock()
	delete(f.last, id)
	f.mu.Unlock()
	if f.diagrams != nil {
		f.diagrams.Forget(id)
	}
}

// Wait blocks until all in-flight generations finish. Used on shutdown.
func (f *Fetcher) Wait() {
	f.wg.Wait()
}
