package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_BackForwardSymmetry(t *testing.T) {
	s := &Session{}
	topics := []string{"Hypertext", "Memex", "Vannevar Bush", "Ted Nelson"}
	for _, tp := range topics {
		s.Visit(tp)
	}
	require.Equal(t, "Ted Nelson", s.Topic)
	require.Len(t, s.History, 3)

	// Walk all the way back, then all the way forward.
	for i := len(topics) - 2; i >= 0; i-- {
		require.True(t, s.Back())
		assert.Equal(t, topics[i], s.Topic)
	}
	assert.False(t, s.Back(), "history exhausted")

	for i := 1; i < len(topics); i++ {
		require.True(t, s.Forward())
		assert.Equal(t, topics[i], s.Topic)
	}
	assert.False(t, s.Forward(), "future exhausted")
	assert.Equal(t, "Ted Nelson", s.Topic)
}

func TestHistory_VisitClearsFuture(t *testing.T) {
	s := &Session{}
	s.Visit("alpha")
	s.Visit("beta")
	require.True(t, s.Back())
	require.Len(t, s.Future, 1)

	s.Visit("gamma")
	assert.Empty(t, s.Future, "diverging visit discards the forward stack")
	assert.Equal(t, []string{"alpha"}, s.History)
}

func TestHistory_VisitSameTopicNotStacked(t *testing.T) {
	s := &Session{}
	s.Visit("alpha")
	s.Visit("alpha")
	assert.Empty(t, s.History)
}

func TestHistory_NavigationResetsSection(t *testing.T) {
	s := &Session{}
	s.Visit("alpha")
	s.Visit("beta")
	s.SectionIndex = 3

	require.True(t, s.Back())
	assert.Equal(t, 0, s.SectionIndex)

	s.SectionIndex = 2
	require.True(t, s.Forward())
	assert.Equal(t, 0, s.SectionIndex)
}

func TestPagination_Bounds(t *testing.T) {
	s := &Session{Document: Document{
		Name:  "book.txt",
		Text:  "one two three",
		Pages: []string{"one", "two", "three"},
	}}

	assert.False(t, s.PrevPage(), "already at first page")
	assert.Equal(t, 0, s.PageIndex)

	require.True(t, s.NextPage())
	require.True(t, s.NextPage())
	assert.Equal(t, "three", s.CurrentPage())

	assert.False(t, s.NextPage(), "already at last page")
	assert.Equal(t, 2, s.PageIndex)
}

func TestPagination_NoDocument(t *testing.T) {
	s := &Session{}
	assert.Equal(t, 0, s.PageCount())
	assert.Equal(t, "", s.CurrentPage())
	assert.False(t, s.NextPage())
	assert.False(t, s.PrevPage())
}

func TestSection_Bounds(t *testing.T) {
	s := &Session{}
	assert.False(t, s.PrevSection(), "floored at zero")

	s.NextSection()
	s.NextSection()
	assert.Equal(t, 2, s.SectionIndex)

	require.True(t, s.PrevSection())
	require.True(t, s.PrevSection())
	assert.False(t, s.PrevSection())
	assert.Equal(t, 0, s.SectionIndex)
}

func TestResetGeneration(t *testing.T) {
	s := &Session{
		Topic:   "alpha",
		Content: "partial text",
		Sources: []Source{{URI: "https://example.com"}},
		Elapsed: time.Second,
		Err:     errors.New("boom"),
	}
	s.ResetGeneration()

	assert.Empty(t, s.Content)
	assert.Nil(t, s.Sources)
	assert.Zero(t, s.Elapsed)
	assert.NoError(t, s.Err)
	assert.Equal(t, "alpha", s.Topic, "topic survives a reset")
}

func TestDocument_Loaded(t *testing.T) {
	assert.False(t, Document{}.Loaded())
	assert.True(t, Document{Name: "a.txt"}.Loaded())
	assert.True(t, Document{Text: "body"}.Loaded())
	assert.True(t, Document{Binary: []byte{1}, MIME: "image/png"}.Loaded())

	assert.False(t, Document{Text: "body"}.IsBinary())
	assert.True(t, Document{Binary: []byte{1}}.IsBinary())
}

func TestClone_Isolation(t *testing.T) {
	s := &Session{
		Sources:  []Source{{URI: "https://a.example"}},
		History:  []string{"alpha"},
		Diagrams: map[string][]byte{"graph": {1, 2}},
	}
	cp := s.clone()

	cp.Sources[0].URI = "https://mutated.example"
	cp.History[0] = "mutated"
	cp.Diagrams["extra"] = []byte{9}

	assert.Equal(t, "https://a.example", s.Sources[0].URI)
	assert.Equal(t, "alpha", s.History[0])
	assert.NotContains(t, s.Diagrams, "extra")
}
