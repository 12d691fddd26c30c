// Package topic classifies user requests into generation strategies and
// derives deterministic cache fingerprints from them.
//
// Classification is pure: it never consults the network or mutates session
// state, so the same inputs always resolve to the same strategy. Ambiguity
// is never fatal; the precedence order resolves every request to exactly
// one strategy.
package topic

import (
	"net/url"
	"regexp"
	"strings"
)

// Strategy identifies one of the content-generation paths.
type Strategy int

// Generation strategies, in no particular order. Classification precedence
// is defined by Classify, not by these values.
const (
	// StrategyDefinition produces a dictionary-style definition of a topic.
	StrategyDefinition Strategy = iota

	// StrategySearch produces a grounded web-search answer with citations.
	StrategySearch

	// StrategyVideo summarizes a YouTube video.
	StrategyVideo

	// StrategyWebResource reads a generic web page section by section.
	StrategyWebResource

	// StrategyDocument answers a question against a loaded document.
	StrategyDocument

	// StrategyDocumentSearch answers a document question with web-search
	// augmentation.
	StrategyDocumentSearch

	// StrategyImage analyzes an attached binary image.
	StrategyImage

	// StrategyTranslate translates a locally paginated document page. It is
	// selected by the pagination flow, never by Classify.
	StrategyTranslate
)

// String returns the strategy's fingerprint mode tag.
func (s Strategy) String() string {
	switch s {
	case StrategyDefinition:
		return "wiki"
	case StrategySearch:
		return "search"
	case StrategyVideo:
		return "video"
	case StrategyWebResource:
		return "web"
	case StrategyDocument:
		return "doc"
	case StrategyDocumentSearch:
		return "docsearch"
	case StrategyImage:
		return "image"
	case StrategyTranslate:
		return "translate"
	default:
		return "unknown"
	}
}

// Request carries the classification inputs for one user intent.
type Request struct {
	// Query is the raw topic, question or URL entered by the user.
	Query string

	// AttachmentMIME is the declared mime type of an attached binary file,
	// empty when no binary attachment is present.
	AttachmentMIME string

	// DocumentLoaded reports whether the session currently has a document
	// (extracted text or binary attachment).
	DocumentLoaded bool

	// SearchEnabled reports whether web-search mode is on for the session.
	SearchEnabled bool
}

// youtubeRe matches YouTube URLs: optional scheme, optional www, host
// youtube.com or youtu.be, non-empty path.
var youtubeRe = regexp.MustCompile(`^(?:https?://)?(?:www\.)?(?:youtube\.com|youtu\.be)/\S+$`)

// Classify resolves a request to exactly one strategy.
//
// Precedence (first match wins):
//  1. Binary attachment with an image mime type → image analysis.
//  2. YouTube URL → video summary.
//  3. Generic http(s) URL, and no document loaded → paginated web resource.
//     An already-loaded document outranks URL detection so an in-document
//     question quoting a URL-shaped string isn't misrouted.
//  4. Web-search mode on → document search if a document is loaded,
//     standalone search otherwise. URL detection outranks this toggle so
//     pasting a link always opens reader mode.
//  5. Document loaded → document query.
//  6. Otherwise → definition lookup.
func Classify(req Request) Strategy {
	if strings.HasPrefix(req.AttachmentMIME, "image/") {
		return StrategyImage
	}

	query := strings.TrimSpace(req.Query)

	if IsYouTubeURL(query) {
		return StrategyVideo
	}

	if IsWebURL(query) && !req.DocumentLoaded {
		return StrategyWebResource
	}

	if req.SearchEnabled {
		if req.DocumentLoaded {
			return StrategyDocumentSearch
		}
		return StrategySearch
	}

	if req.DocumentLoaded {
		return StrategyDocument
	}

	return StrategyDefinition
}

// IsYouTubeURL reports whether s looks like a YouTube video link.
func IsYouTubeURL(s string) bool {
	return youtubeRe.MatchString(strings.TrimSpace(s))
}

// IsWebURL reports whether s is a generic web URL: required http(s) scheme
// and a host containing a dot.
func IsWebURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return strings.Contains(u.Host, ".")
}
