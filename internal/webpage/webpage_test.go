package webpage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>The Memex - Example Journal</title></head>
<body>
<article>
<h1>The Memex</h1>
<p>Vannevar Bush imagined a desk-sized device that stored books, records
and communications, mechanized so it may be consulted with exceeding
speed and flexibility. Trails of association between documents were the
core idea, a precursor of the hyperlink.</p>
<p>The essay As We May Think appeared in The Atlantic in July 1945 and
shaped generations of hypertext researchers, from Engelbart to Nelson.
Its influence on modern information systems is hard to overstate.</p>
</article>
</body>
</html>`

func TestFetch_Article(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "infinitewiki")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	page, err := New().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Contains(t, page.Title, "Memex")
	assert.Contains(t, page.Text, "Vannevar Bush")
	assert.Contains(t, page.Text, "As We May Think")
	assert.NotContains(t, page.Text, "<p>", "text is plain, not markup")
	assert.Equal(t, srv.URL, page.URL)
}

func TestFetch_FallbackParse(t *testing.T) {
	// Markup too thin for readability extraction; the goquery fallback
	// still pulls the title and visible text, dropping script bodies.
	thin := `<html><head><title>Thin Page</title>
<script>console.log("noise")</script></head>
<body><nav>menu</nav><div>visible   text
here</div></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(thin))
	}))
	defer srv.Close()

	page, err := New().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Thin Page", page.Title)
	assert.Contains(t, page.Text, "visible")
	assert.Contains(t, page.Text, "here")
	assert.NotContains(t, page.Text, "noise", "script bodies never count as text")
}

func TestFetch_Errors(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		_, err := New().Fetch(context.Background(), srv.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("non-html content type", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.7"))
		}))
		defer srv.Close()

		_, err := New().Fetch(context.Background(), srv.URL)
		assert.ErrorIs(t, err, ErrNotHTML)
	})

	t.Run("empty page", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body></body></html>"))
		}))
		defer srv.Close()

		_, err := New().Fetch(context.Background(), srv.URL)
		assert.Error(t, err)
	})

	t.Run("unparseable url", func(t *testing.T) {
		_, err := New().Fetch(context.Background(), "http://[::bad")
		assert.Error(t, err)
	})
}

func TestCondense(t *testing.T) {
	in := "  first   line \n\n\n second\tline  \n   \n"
	assert.Equal(t, "first line\nsecond line", condense(in))
}

func TestFetch_TruncatesHugePages(t *testing.T) {
	big := "<html><head><title>Big</title></head><body><div>" +
		strings.Repeat("word ", maxBodyBytes/4) + "</div></body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(big))
	}))
	defer srv.Close()

	page, err := New().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(page.Text), maxBodyBytes)
}
