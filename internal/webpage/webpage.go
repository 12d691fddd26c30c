// Package webpage fetches a URL and reduces it to readable article text,
// which then grounds the web-resource summary prompt.
package webpage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const (
	fetchTimeout = 30 * time.Second
	maxBodyBytes = 4 << 20 // pages past 4 MiB are truncated, not rejected
	userAgent    = "infinitewiki/1.0 (+https://github.com/jama7777/Inifinite-wiki)"
)

// ErrNotHTML is returned when the URL serves something other than a page,
// such as a binary download.
var ErrNotHTML = errors.New("webpage: not an HTML page")

// Page is the readable reduction of a fetched URL.
type Page struct {
	URL     string
	Title   string
	Byline  string
	Text    string // article body, plain text
	Excerpt string
}

// Fetcher downloads pages. The zero value is not usable; use New.
type Fetcher struct {
	client *http.Client
}

func New() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: fetchTimeout},
	}
}

// Fetch downloads rawURL and extracts its readable content. Redirects are
// followed; the returned Page carries the final URL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Page{}, fmt.Errorf("parsing url %q: %w", rawURL, err)
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Page{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Page{}, fmt.Errorf("fetching %s: status %d", u, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return Page{}, fmt.Errorf("fetching %s: content-type %q: %w", u, ct, ErrNotHTML)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Page{}, fmt.Errorf("reading %s: %w", u, err)
	}

	final := resp.Request.URL
	page := Page{URL: final.String()}

	article, err := readability.FromReader(strings.NewReader(string(body)), final)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		page.Title = article.Title
		page.Byline = article.Byline
		page.Text = strings.TrimSpace(article.TextContent)
		page.Excerpt = article.Excerpt
		return page, nil
	}

	// Readability gave up (thin or non-article markup). Fall back to a
	// direct parse: title tag plus visible body text.
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return Page{}, fmt.Errorf("parsing %s: %w", u, err)
	}
	page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("script, style, noscript, nav, footer, header").Remove()
	page.Text = condense(doc.Find("body").Text())
	if page.Text == "" {
		return Page{}, fmt.Errorf("fetching %s: no readable content", u)
	}
	return page, nil
}

// condense collapses runs of whitespace left behind by tag removal.
func condense(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
