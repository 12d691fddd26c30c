package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLinks(t *testing.T) {
	t.Run("distinct terms in first-appearance order", func(t *testing.T) {
		content := "The [[Memex]] inspired [[hypertext]], and the [[Memex]] again."
		assert.Equal(t, []string{"Memex", "hypertext"}, extractLinks(content))
	})

	t.Run("trims inner whitespace", func(t *testing.T) {
		assert.Equal(t, []string{"Ted Nelson"}, extractLinks("see [[ Ted Nelson ]]"))
	})

	t.Run("no links", func(t *testing.T) {
		assert.Nil(t, extractLinks("plain prose, single [brackets] ignored"))
	})
}

func TestFlattenLinks(t *testing.T) {
	got := flattenLinks("The [[Memex]] stored [[trails of association]].")
	assert.Equal(t, "The **Memex** stored **trails of association**.", got)
}

func TestMarkdownRenderer(t *testing.T) {
	t.Run("nil renderer degrades to plain text", func(t *testing.T) {
		var r *markdownRenderer
		assert.Equal(t, "# raw", r.Render("# raw"))
	})

	t.Run("renders headings", func(t *testing.T) {
		r := newMarkdownRenderer(60)
		require.NotNil(t, r)
		out := r.Render("# Title\n\nbody")
		assert.Contains(t, out, "Title")
		assert.Contains(t, out, "body")
	})

	t.Run("width updates only on change", func(t *testing.T) {
		r := newMarkdownRenderer(60)
		require.NotNil(t, r)
		assert.False(t, r.UpdateWidth(60))
		assert.True(t, r.UpdateWidth(100))
		assert.False(t, r.UpdateWidth(0))
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exact", truncate("exact", 5))
	assert.Equal(t, "long…", truncate("longer title", 5))
	assert.Equal(t, "多言語テキス…", truncate("多言語テキストの題名", 7))
}
