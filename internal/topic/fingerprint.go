package topic

import (
	"fmt"
	"strings"
)

// Fingerprint is a deterministic cache key for one generation:
// strategy mode, document identity, normalized topic, section index and
// output language. Two requests with the same fingerprint are guaranteed to
// ask the service for the same content.
type Fingerprint string

// NewFingerprint derives the cache key for a generation.
//
// Format: "<mode>:<doc>:<topic>:<section>:<language>".
// The document component is empty when no document is loaded, e.g.
// a plain definition lookup yields "wiki::hypertext:0:English".
func NewFingerprint(strategy Strategy, document, query string, section int, language string) Fingerprint {
	return Fingerprint(fmt.Sprintf("%s:%s:%s:%d:%s",
		strategy, NormalizeTopic(document), NormalizeTopic(query), section, language))
}

// NormalizeTopic canonicalizes a topic for fingerprinting: trimmed,
// lowercased, inner whitespace collapsed to single spaces.
func NormalizeTopic(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
