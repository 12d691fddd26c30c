package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jama7777/Inifinite-wiki/internal/cache"
	"github.com/jama7777/Inifinite-wiki/internal/gemini"
	"github.com/jama7777/Inifinite-wiki/internal/session"
	"github.com/jama7777/Inifinite-wiki/internal/topic"
)

// run executes one generation to completion. All session writes go through
// UpdateGeneration with the captured seq; once the session moves on, every
// remaining write fails with ErrSuperseded and the stream is abandoned.
func (f *Fetcher) run(ctx context.Context, id uuid.UUID, seq uint64, p plan) {
	defer f.wg.Done()

	// Diagram renders outlive the text stream, so scans get the caller's
	// lifecycle context rather than the generation timeout.
	scanCtx := ctx

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()

	if err := f.limiter.Wait(ctx); err != nil {
		f.fail(id, seq, start, fmt.Errorf("rate limit wait: %w", err))
		return
	}

	// Standalone search is one-shot: text and sources land atomically.
	if p.strategy == topic.StrategySearch {
		f.runSearch(ctx, id, seq, p, start)
		return
	}

	events, err := f.open(ctx, p)
	if err != nil {
		f.fail(id, seq, start, err)
		return
	}

	f.consume(scanCtx, cancel, id, seq, p, start, events)
}

// open invokes the strategy-appropriate streaming operation.
func (f *Fetcher) open(ctx context.Context, p plan) (<-chan gemini.Event, error) {
	snap := p.snap
	switch p.strategy {
	case topic.StrategyDefinition:
		return f.gen.StreamDefinition(ctx, snap.Topic, snap.SectionIndex, snap.Language), nil

	case topic.StrategyVideo:
		return f.gen.StreamVideoSummary(ctx, snap.Topic, snap.Language), nil

	case topic.StrategyWebResource:
		page, err := f.pages.Fetch(ctx, snap.Topic)
		if err != nil {
			return nil, fmt.Errorf("fetching resource: %w", err)
		}
		return f.gen.StreamWebResource(ctx, page.URL, page.Title, page.Text, snap.SectionIndex, snap.Language), nil

	case topic.StrategyDocument:
		return f.gen.StreamDocumentAnswer(ctx, f.docContext(snap), snap.Topic, snap.Language, false), nil

	case topic.StrategyDocumentSearch:
		return f.gen.StreamDocumentAnswer(ctx, f.docContext(snap), snap.Topic, snap.Language, true), nil

	case topic.StrategyImage:
		return f.gen.StreamImageAnalysis(ctx, snap.Document.Binary, snap.Document.MIME, snap.Topic, snap.Language), nil

	case topic.StrategyTranslate:
		return f.gen.StreamTranslation(ctx, snap.CurrentPage(), snap.Language), nil

	default:
		return nil, fmt.Errorf("no operation for strategy %q", p.strategy)
	}
}

// docContext narrows the document sent with a query: in ebook mode the
// question is about the page on screen, so only that page travels.
func (f *Fetcher) docContext(snap session.Session) session.Document {
	doc := snap.Document
	if snap.EbookMode && len(doc.Pages) > 0 && !doc.IsBinary() {
		doc.Text = snap.CurrentPage()
	}
	return doc
}

// runSearch handles the one-shot grounded search strategy.
func (f *Fetcher) runSearch(ctx context.Context, id uuid.UUID, seq uint64, p plan, start time.Time) {
	text, sources, err := f.gen.Search(ctx, p.snap.Topic, p.snap.Language)
	if err != nil {
		f.fail(id, seq, start, err)
		return
	}

	elapsed := time.Since(start)
	err = f.store.UpdateGeneration(id, seq, func(s *session.Session) {
		s.Content = text
		s.Sources = sources
		s.Elapsed = elapsed
		s.State = session.StateReady
		if p.title != "" {
			s.Title = p.title
		}
	})
	if err != nil {
		f.logger.Debug("search result discarded", "session", id, "seq", seq, "reason", err)
		return
	}

	f.finish(id, p, text, sources, elapsed)
}

// consume applies stream events in receipt order. Append-only: deltas are
// concatenated, never reordered. A failed sequence check means this
// generation was superseded; the stream is cancelled, drained and abandoned
// without touching session state. scanCtx is the caller's lifecycle context,
// not the generation's, so in-flight diagram renders survive stream
// completion.
func (f *Fetcher) consume(scanCtx context.Context, cancel context.CancelFunc, id uuid.UUID, seq uint64, p plan, start time.Time, events <-chan gemini.Event) {
	var (
		content strings.Builder
		sources []session.Source
	)

	for ev := range events {
		switch {
		case ev.Err != nil:
			f.fail(id, seq, start, ev.Err)
			cancel()
			drain(events)
			return

		case ev.Delta != "":
			content.WriteString(ev.Delta)
			err := f.store.UpdateGeneration(id, seq, func(s *session.Session) {
				s.Content += ev.Delta
			})
			if err != nil {
				f.logger.Debug("stream superseded", "session", id, "seq", seq)
				cancel()
				drain(events)
				return
			}
			if f.diagrams != nil {
				f.diagrams.Scan(scanCtx, id, content.String())
			}

		case len(ev.Sources) > 0:
			sources = mergeSources(sources, ev.Sources)
			merged := sources
			err := f.store.UpdateGeneration(id, seq, func(s *session.Session) {
				s.Sources = append([]session.Source(nil), merged...)
			})
			if err != nil {
				cancel()
				drain(events)
				return
			}
		}
	}

	elapsed := time.Since(start)
	final := content.String()
	err := f.store.UpdateGeneration(id, seq, func(s *session.Session) {
		s.Elapsed = elapsed
		s.State = session.StateReady
		if p.title != "" {
			s.Title = p.title
		}
	})
	if err != nil {
		return
	}

	f.finish(id, p, final, sources, elapsed)
}

// finish writes the completed generation into the result cache and hands
// the final content to the diagram side-channel. Only complete, successful
// generations reach here.
func (f *Fetcher) finish(id uuid.UUID, p plan, content string, sources []session.Source, elapsed time.Duration) {
	if p.cacheable {
		f.cache.Put(p.fingerprint, cache.Entry{
			Content:  content,
			Sources:  sources,
			Elapsed:  elapsed,
			Language: p.snap.Language,
		})
	}
	if f.diagrams != nil {
		f.diagrams.Scan(context.Background(), id, content)
	}
	f.logger.Debug("generation finished",
		"session", id,
		"fingerprint", p.fingerprint,
		"elapsed", elapsed,
		"sources", len(sources),
		"bytes", len(content),
	)
}

// fail marks the generation failed. Partial content already streamed stays
// on screen next to the error; nothing is cached.
func (f *Fetcher) fail(id uuid.UUID, seq uint64, start time.Time, cause error) {
	elapsed := time.Since(start)
	err := f.store.UpdateGeneration(id, seq, func(s *session.Session) {
		s.Err = cause
		s.Elapsed = elapsed
		s.State = session.StateError
	})
	if err != nil {
		if !errors.Is(err, session.ErrSuperseded) && !errors.Is(err, session.ErrNotFound) {
			f.logger.Warn("recording generation failure", "session", id, "error", err)
		}
		return
	}
	f.logger.Warn("generation failed", "session", id, "seq", seq, "error", cause, "elapsed", elapsed)
}

// drain discards the remainder of an abandoned stream. The producer's
// terminal error send is unconditional, so without a receiver it would
// block forever once the event buffer fills.
func drain(events <-chan gemini.Event) {
	go func() {
		for range events {
		}
	}()
}

// mergeSources appends new citations, deduplicated by URI.
func mergeSources(have, add []session.Source) []session.Source {
	seen := make(map[string]bool, len(have))
	for _, s := range have {
		seen[s.URI] = true
	}
	for _, s := range add {
		if s.URI == "" || seen[s.URI] {
			continue
		}
		seen[s.URI] = true
		have = append(have, s)
	}
	return have
}
