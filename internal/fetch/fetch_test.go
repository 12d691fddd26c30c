package fetch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/time/rate"

	"github.com/jama7777/Inifinite-wiki/internal/cache"
	"github.com/jama7777/Inifinite-wiki/internal/diagram"
	"github.com/jama7777/Inifinite-wiki/internal/gemini"
	"github.com/jama7777/Inifinite-wiki/internal/session"
	"github.com/jama7777/Inifinite-wiki/internal/testutil"
	"github.com/jama7777/Inifinite-wiki/internal/topic"
	"github.com/jama7777/Inifinite-wiki/internal/webpage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	store *session.Store
	cache *cache.Cache
	gen   *testutil.MockGenerator
	pages *testutil.MockPageFetcher
	f     *Fetcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{
		store: session.NewStore("English", testutil.DiscardLogger()),
		cache: cache.New(0),
		gen:   testutil.NewMockGenerator(),
		pages: testutil.NewMockPageFetcher(),
	}
	f, err := New(Config{
		Store:     fx.store,
		Cache:     fx.cache,
		Generator: fx.gen,
		Pages:     fx.pages,
		Logger:    testutil.DiscardLogger(),
		Limiter:   rate.NewLimiter(rate.Inf, 1),
		Timeout:   5 * time.Second,
	})
	require.NoError(t, err)
	fx.f = f
	return fx
}

func (fx *fixture) waitState(t *testing.T, id uuid.UUID, want session.State) session.Session {
	t.Helper()
	var snap session.Session
	require.Eventually(t, func() bool {
		s, err := fx.store.Get(id)
		if err != nil {
			return false
		}
		snap = s
		return s.State == want
	}, 2*time.Second, 5*time.Millisecond)
	return snap
}

func (fx *fixture) submit(t *testing.T, id uuid.UUID, topic string) {
	t.Helper()
	require.NoError(t, fx.store.Update(id, func(s *session.Session) {
		s.Visit(topic)
		s.ResetGeneration()
	}))
}

func TestFetch_DefinitionStream(t *testing.T) {
	fx := newFixture(t)
	fx.gen.Script("hypertext", "Hypertext is ", "text with [[links]].")
	id := fx.store.ActiveID()
	fx.submit(t, id, "Hypertext")

	require.NoError(t, fx.f.Fetch(context.Background(), id, false))
	snap := fx.waitState(t, id, session.StateReady)
	fx.f.Wait()

	assert.Equal(t, "Hypertext is text with [[links]].", snap.Content)
	assert.Equal(t, "Hypertext", snap.Title)
	assert.NoError(t, snap.Err)
	assert.Positive(t, snap.Elapsed)
	assert.Equal(t, 1, fx.gen.CallCount("definition"))
}

func TestFetch_CompletionIsCached(t *testing.T) {
	fx := newFixture(t)
	fx.gen.Script("hypertext", "article body")
	id := fx.store.ActiveID()
	fx.submit(t, id, "Hypertext")

	require.NoError(t, fx.f.Fetch(context.Background(), id, false))
	first := fx.waitState(t, id, session.StateReady)
	fx.f.Wait()

	fp := topic.NewFingerprint(topic.StrategyDefinition, "", "Hypertext", 0, "English")
	entry, ok := fx.cache.Get(fp)
	require.True(t, ok)
	assert.Equal(t, first.Content, entry.Content)

	// Revisit: same fingerprint with cleared content hydrates from cache,
	// no second call to the service.
	require.NoError(t, fx.store.Update(id, func(s *session.Session) {
		s.ResetGeneration()
	}))
	require.NoError(t, fx.f.Fetch(context.Background(), id, false))
	second := fx.waitState(t, id, session.StateReady)

	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, 1, fx.gen.CallCount("definition"))
}

func TestFetch_ForceBypassesCache(t *testing.T) {
	fx := newFixture(t)
	fx.gen.Script("hypertext", "article body")
	id := fx.store.ActiveID()
	fx.submit(t, id, "Hypertext")

	require.NoError(t, fx.f.Fetch(context.Background(), id, false))
	fx.waitState(t, id, session.StateReady)
	fx.f.Wait()

	require.NoError(t, fx.store.Update(id, func(s *session.Session) {
		s.ResetGeneration()
	}))
	require.NoError(t, fx.f.Fetch(context.Background(), id, true))
	fx.waitState(t, id, session.StateReady)
	fx.f.Wait()

	assert.Equal(t, 2, fx.gen.CallCount("definition"), "reload regenerates")
}

func TestFetch_DuplicateTriggerSuppressed(t *testing.T) {
	fx := newFixture(t)
	fx.gen.Gate = make(chan struct{})
	fx.gen.Script("hypertext", "slow article")
	id := fx.store.ActiveID()
	fx.submit(t, id, "Hypertext")

	require.NoError(t, fx.f.Fetch(context.Background(), id, false))
	fx.waitState(t, id, session.StateFetching)

	// Overlapping change hint while streaming: same fingerprint, no-op.
	require.NoError(t, fx.f.Fetch(context.Background(), id, false))

	close(fx.gen.Gate)
	fx.waitState(t, id, session.StateReady)
	fx.f.Wait()

	assert.Equal(t, 1, fx.gen.CallCount("definition"))
}

func TestFetch_SupersededStreamDiscarded(t *testing.T) {
	fx := newFixture(t)
	fx.gen.Gate = make(chan struct{})
	fx.gen.Script("alpha", "ALPHA CONTENT")
	fx.gen.Script("beta", "beta content")
	id := fx.store.ActiveID()

	fx.submit(t, id, "alpha")
	require.NoError(t, fx.f.Fetch(context.Background(), id, false))
	fx.waitState(t, id, session.StateFetching)

	// User moves on before the first delta lands.
	fx.submit(t, id, "beta")
	require.NoError(t, fx.f.Fetch(context.Background(), id, false))

	close(fx.gen.Gate)
	fx.f.Wait()

	snap := fx.waitState(t, id, session.StateReady)
	assert.Equal(t, "beta content", snap.Content)
	assert.NotContains(t, snap.Content, "ALPHA")
	assert.Equal(t, 2, fx.gen.CallCount("definition"))
}

func TestFetch_SessionIsolation(t *testing.T) {
	fx := newFixture(t)
	fx.gen.Gate = make(chan struct{})
	fx.gen.Script("alpha", "alpha body")
	fx.gen.Script("beta", "beta body")

	a := fx.store.ActiveID()
	b := fx.store.New()

	fx.submit(t, a, "alpha")
	fx.submit(t, b.ID, "beta")
	require.NoError(t, fx.f.Fetch(context.Background(), a, false))
	require.NoError(t, fx.f.Fetch(context.Background(), b.ID, false))
	fx.waitState(t, a, session.StateFetching)
	fx.waitState(t, b.ID, session.StateFetching)

	// Cancel A's generation mid-flight.
	require.NoError(t, fx.store.Update(a, func(s *session.Session) {
		s.Seq++
		s.State = session.StateReady
	}))

	close(fx.gen.Gate)
	fx.f.Wait()

	snapB := fx.waitState(t, b.ID, session.StateReady)
	assert.Equal(t, "beta body", snapB.Content, "cancel of one session never touches another")

	snapA, err := fx.store.Get(a)
	require.NoError(t, err)
	assert.Empty(t, snapA.Content, "cancelled stream writes nothing")
	assert.Equal(t, session.StateReady, snapA.State)
}

func TestFetch_ErrorRetainsPartialContent(t *testing.T) {
	fx := newFixture(t)
	boom := errors.New("service unavailable")
	fx.gen.ScriptError("doomed", boom, "partial output ")
	id := fx.store.ActiveID()
	fx.submit(t, id, "doomed")

	require.NoError(t, fx.f.Fetch(context.Background(), id, false))
	snap := fx.waitState(t, id, session.StateError)
	fx.f.Wait()

	assert.Equal(t, "partial output ", snap.Content, "partial output stays on screen")
	assert.ErrorIs(t, snap.Err, boom)
	assert.Equal(t, 0, fx.cache.Len(), "failed generations never enter the cache")
}

func TestFetch_SearchOneShot(t *testing.T) {
	fx := newFixture(t)
	sources := []session.Source{
		{URI: "https://go.dev/blog", Title: "The Go Blog"},
	}
	fx.gen.ScriptSources("go release", sources, "Go 1.25 shipped in August.")
	id := fx.store.ActiveID()
	require.NoError(t, fx.store.Update(id, func(s *session.Session) {
		s.SearchEnabled = true
		s.Visit("latest go release")
	}))

	require.NoError(t, fx.f.Fetch(context.Background(), id, false))
	snap := fx.waitState(t, id, session.StateReady)
	fx.f.Wait()

	assert.Equal(t, "Go 1.25 shipped in August.", snap.Content)
	assert.Equal(t, sources, snap.Sources)
	assert.Equal(t, 1, fx.gen.CallCount("search"))
	assert.Equal(t, 0, fx.gen.CallCount("definition"))

	fp := topic.NewFingerprint(topic.StrategySearch, "", "latest go release", 0, "English")
	_, ok := fx.cache.Get(fp)
	assert.True(t, ok)
}

func TestFetch_LocalPageDisplay(t *testing.T) {
	fx := newFixture(t)
	id := fx.store.ActiveID()
	require.NoError(t, fx.store.Update(id, func(s *session.Session) {
		s.Document = session.Document{
			Name:  "book.txt",
			Text:  "page one\n\npage two",
			Pages: []string{"page one", "page two"},
		}
		s.EbookMode = true
		s.Topic = ""
	}))

	require.NoError(t, fx.f.Fetch(context.Background(), id, false))
	snap := fx.waitState(t, id, session.StateReady)

	assert.Equal(t, "page one", snap.Content)
	assert.Equal(t, "book.txt", snap.Title)
	assert.Equal(t, 0, fx.gen.CallCount(""), "local display needs no generation")

	// Turning the page shows the next one, still locally.
	require.NoError(t, fx.store.Update(id, func(s *session.Session) {
		s.NextPage()
	}))
	require.NoError(t, fx.f.Fetch(context.Background(), id, false))
	require.Eventually(t, func() bool {
		s, err := fx.store.Get(id)
		return err == nil && s.Content == "page two"
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, fx.gen.CallCount(""))
}

func TestFetch_LocalPageTranslated(t *testing.T) {
	fx := newFixture(t)
	fx.gen.Script("page one", "page un")
	id := fx.store.ActiveID()
	require.NoError(t, fx.store.Update(id, func(s *session.Session) {
		s.Document = session.Document{
			Name:  "book.txt",
			Text:  "page one\n\npage two",
			Pages: []string{"page one", "page two"},
		}
		s.EbookMode = true
		s.Language = "Français"
	}))

	require.NoError(t, fx.f.Fetch(context.Background(), id, false))
	snap := fx.waitState(t, id, session.StateReady)
	fx.f.Wait()

	assert.Equal(t, "page un", snap.Content)
	assert.Equal(t, 1, fx.gen.CallCount("translate"))

	// The translation is cached per page and language.
	fp := topic.NewFingerprint(topic.StrategyTranslate, "book.txt", "", 0, "Français")
	entry, ok := fx.cache.Get(fp)
	require.True(t, ok)
	assert.Equal(t, "page un", entry.Content)
}

func TestFetch_DocumentQuestion(t *testing.T) {
	fx := newFixture(t)
	fx.gen.Script("who wrote", "The author is unknown.")
	id := fx.store.ActiveID()
	require.NoError(t, fx.store.Update(id, func(s *session.Session) {
		s.Document = session.Document{Name: "paper.pdf", Text: "body", Pages: []string{"body"}}
		s.Visit("who wrote this")
	}))

	require.NoError(t, fx.f.Fetch(context.Background(), id, false))
	snap := fx.waitState(t, id, session.StateReady)
	fx.f.Wait()

	assert.Equal(t, "The author is unknown.", snap.Content)
	assert.Equal(t, "paper.pdf", snap.Title, "document questions keep the document title")
	assert.Equal(t, 1, fx.gen.CallCount("document"))
}

func TestFetch_DocumentSearchQuestion(t *testing.T) {
	fx := newFixture(t)
	fx.gen.Script("compare", "Compared against current sources.")
	id := fx.store.ActiveID()
	require.NoError(t, fx.store.Update(id, func(s *session.Session) {
		s.Document = session.Document{Name: "paper.pdf", Text: "body"}
		s.SearchEnabled = true
		s.Visit("compare with recent work")
	}))

	require.NoError(t, fx.f.Fetch(context.Background(), id, false))
	fx.waitState(t, id, session.StateReady)
	fx.f.Wait()

	assert.Equal(t, 1, fx.gen.CallCount("docsearch"))
	assert.Equal(t, 0, fx.gen.CallCount("search"))
}

func TestFetch_WebResource(t *testing.T) {
	fx := newFixture(t)
	const url = "https://example.com/article"
	fx.pages.Serve(url, webpage.Page{
		URL:   url,
		Title: "An Article",
		Text:  "readable article text",
	})
	fx.gen.Script("example.com", "summary of the article")
	id := fx.store.ActiveID()
	fx.submit(t, id, url)

	require.NoError(t, fx.f.Fetch(context.Background(), id, false))
	snap := fx.waitState(t, id, session.StateReady)
	fx.f.Wait()

	assert.Equal(t, "summary of the article", snap.Content)
	assert.Equal(t, 1, fx.gen.CallCount("web"))
}

func TestFetch_WebResourceDownloadFailure(t *testing.T) {
	fx := newFixture(t)
	id := fx.store.ActiveID()
	fx.submit(t, id, "https://unreachable.example/page")

	require.NoError(t, fx.f.Fetch(context.Background(), id, false))
	snap := fx.waitState(t, id, session.StateError)
	fx.f.Wait()

	assert.Error(t, snap.Err)
	assert.Equal(t, 0, fx.gen.CallCount("web"), "no generation without page text")
}

func TestFetch_VideoSummary(t *testing.T) {
	fx := newFixture(t)
	fx.gen.Script("youtu.be", "The video explains goroutine scheduling.")
	id := fx.store.ActiveID()
	fx.submit(t, id, "https://youtu.be/abc123")

	require.NoError(t, fx.f.Fetch(context.Background(), id, false))
	snap := fx.waitState(t, id, session.StateReady)
	fx.f.Wait()

	assert.Equal(t, "The video explains goroutine scheduling.", snap.Content)
	assert.Equal(t, 1, fx.gen.CallCount("video"))
}

func TestFetch_ImageAnalysis(t *testing.T) {
	fx := newFixture(t)
	fx.gen.Script("", "The image shows a diagram.")
	id := fx.store.ActiveID()
	require.NoError(t, fx.store.Update(id, func(s *session.Session) {
		s.Document = session.Document{Name: "shot.png", Binary: []byte{0x89}, MIME: "image/png"}
	}))

	require.NoError(t, fx.f.Fetch(context.Background(), id, false))
	snap := fx.waitState(t, id, session.StateReady)
	fx.f.Wait()

	assert.Equal(t, "The image shows a diagram.", snap.Content)
	assert.Equal(t, "shot.png", snap.Title)
	assert.Equal(t, 1, fx.gen.CallCount("image"))
}

func TestFetch_DiagramOutlivesStream(t *testing.T) {
	fx := newFixture(t)
	img := testutil.NewMockImageGenerator()
	img.Block = make(chan struct{})
	resolver, err := diagram.New(diagram.Config{
		Store:     fx.store,
		Generator: img,
		Logger:    testutil.DiscardLogger(),
	})
	require.NoError(t, err)
	fx.f.diagrams = resolver
	defer resolver.Wait()

	fx.gen.Script("adder", "Start with [DIAGRAM: full adder]", " then carry logic.")
	id := fx.store.ActiveID()
	fx.submit(t, id, "Adder")

	require.NoError(t, fx.f.Fetch(context.Background(), id, false))
	snap := fx.waitState(t, id, session.StateReady)
	fx.f.Wait()

	// Text stream finished while the render is still outstanding.
	require.Empty(t, snap.Diagrams)
	close(img.Block)

	require.Eventually(t, func() bool {
		s, err := fx.store.Get(id)
		return err == nil && s.Diagrams["full adder"] != nil
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, img.DiagramCalls("full adder"))
}

// floodGenerator streams deltas until cancelled, then sends the terminal
// error unconditionally, matching the real client's producer.
type floodGenerator struct {
	*testutil.MockGenerator
}

func (g *floodGenerator) StreamDefinition(ctx context.Context, topic string, section int, language string) <-chan gemini.Event {
	out := make(chan gemini.Event)
	go func() {
		defer close(out)
		for {
			select {
			case out <- gemini.Event{Delta: "chunk "}:
			case <-ctx.Done():
				out <- gemini.Event{Err: ctx.Err()}
				return
			}
		}
	}()
	return out
}

func TestFetch_SupersededStreamProducerExits(t *testing.T) {
	store := session.NewStore("English", testutil.DiscardLogger())
	f, err := New(Config{
		Store:     store,
		Cache:     cache.New(0),
		Generator: &floodGenerator{MockGenerator: testutil.NewMockGenerator()},
		Pages:     testutil.NewMockPageFetcher(),
		Logger:    testutil.DiscardLogger(),
		Limiter:   rate.NewLimiter(rate.Inf, 1),
		Timeout:   5 * time.Second,
	})
	require.NoError(t, err)

	id := store.ActiveID()
	require.NoError(t, store.Update(id, func(s *session.Session) {
		s.Visit("Flood")
		s.ResetGeneration()
	}))
	require.NoError(t, f.Fetch(context.Background(), id, false))

	require.Eventually(t, func() bool {
		s, err := store.Get(id)
		return err == nil && s.Content != ""
	}, 2*time.Second, time.Millisecond)

	// Supersede mid-stream. The abandoned producer must still be able to
	// deliver its terminal send and exit; goleak verifies at exit.
	require.NoError(t, store.Update(id, func(s *session.Session) {
		s.Seq++
		s.State = session.StateReady
	}))
	f.Wait()
}

type recordingScanner struct {
	mu     sync.Mutex
	forgot []uuid.UUID
}

func (r *recordingScanner) Scan(ctx context.Context, id uuid.UUID, content string) {}

func (r *recordingScanner) Forget(id uuid.UUID) {
	r.mu.Lock()
	r.forgot = append(r.forgot, id)
	r.mu.Unlock()
}

func TestFetcher_ReleaseDropsBookkeeping(t *testing.T) {
	fx := newFixture(t)
	rec := &recordingScanner{}
	fx.f.diagrams = rec

	fx.gen.Script("hypertext", "body")
	id := fx.store.ActiveID()
	fx.submit(t, id, "Hypertext")
	require.NoError(t, fx.f.Fetch(context.Background(), id, false))
	fx.waitState(t, id, session.StateReady)
	fx.f.Wait()

	fx.f.mu.Lock()
	_, tracked := fx.f.last[id]
	fx.f.mu.Unlock()
	require.True(t, tracked)

	fx.f.Release(id)

	fx.f.mu.Lock()
	_, tracked = fx.f.last[id]
	fx.f.mu.Unlock()
	assert.False(t, tracked)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []uuid.UUID{id}, rec.forgot)
}

func TestFetch_UnknownSession(t *testing.T) {
	fx := newFixture(t)
	err := fx.f.Fetch(context.Background(), uuid.New(), false)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestConfig_Validate(t *testing.T) {
	store := session.NewStore("English", testutil.DiscardLogger())
	c := cache.New(0)
	gen := testutil.NewMockGenerator()
	pages := testutil.NewMockPageFetcher()
	logger := testutil.DiscardLogger()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing store", Config{Cache: c, Generator: gen, Pages: pages, Logger: logger}},
		{"missing cache", Config{Store: store, Generator: gen, Pages: pages, Logger: logger}},
		{"missing generator", Config{Store: store, Cache: c, Pages: pages, Logger: logger}},
		{"missing pages", Config{Store: store, Cache: c, Generator: gen, Logger: logger}},
		{"missing logger", Config{Store: store, Cache: c, Generator: gen, Pages: pages}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.Error(t, err)
		})
	}
}
