package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jama7777/Inifinite-wiki/internal/session"
	"github.com/jama7777/Inifinite-wiki/internal/topic"
)

func TestCache_PutGet(t *testing.T) {
	c := New(0)
	fp := topic.NewFingerprint(topic.StrategyDefinition, "", "Hypertext", 0, "English")

	_, ok := c.Get(fp)
	require.False(t, ok, "miss before put")

	want := Entry{
		Content:  "Hypertext is text with [[links]].",
		Sources:  []session.Source{{URI: "https://example.com", Title: "Example"}},
		Elapsed:  1200 * time.Millisecond,
		Language: "English",
	}
	c.Put(fp, want)

	got, ok := c.Get(fp)
	require.True(t, ok)
	assert.Equal(t, want, got)

	// Repeated reads are stable.
	again, ok := c.Get(fp)
	require.True(t, ok)
	assert.Equal(t, got, again)
	assert.Equal(t, 1, c.Len())
}

func TestCache_KeyedByFingerprint(t *testing.T) {
	c := New(0)
	en := topic.NewFingerprint(topic.StrategyDefinition, "", "Hypertext", 0, "English")
	fr := topic.NewFingerprint(topic.StrategyDefinition, "", "Hypertext", 0, "Français")

	c.Put(en, Entry{Content: "english body", Language: "English"})

	_, ok := c.Get(fr)
	assert.False(t, ok, "language is part of the key")
}

func TestCache_Overwrite(t *testing.T) {
	c := New(0)
	fp := topic.NewFingerprint(topic.StrategySearch, "", "go release", 0, "English")

	c.Put(fp, Entry{Content: "first"})
	c.Put(fp, Entry{Content: "second"})

	got, ok := c.Get(fp)
	require.True(t, ok)
	assert.Equal(t, "second", got.Content)
	assert.Equal(t, 1, c.Len())
}

func TestCache_TTLExpiry(t *testing.T) {
	c := New(20 * time.Millisecond)
	fp := topic.NewFingerprint(topic.StrategyDefinition, "", "ephemeral", 0, "English")
	c.Put(fp, Entry{Content: "short lived"})

	_, ok := c.Get(fp)
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)
	_, ok = c.Get(fp)
	assert.False(t, ok, "entry expired")
}
