// Package session provides the in-memory data model for browsing sessions
// ("tabs") and the Store that owns them.
//
// A Session is one independent browsing context: its topic, streamed content,
// mode flags, attached document, pagination cursors, resolved diagrams,
// output language and back/forward history. The Store is the only shared
// mutable structure in the application; every mutation flows through its
// single serialized update path, keyed by session identity, so an update
// intended for session A can never be applied to session B.
//
// The Store guarantees at least one session always exists: closing the last
// session synthesizes a fresh default one.
//
// Thread safety: Store is safe for concurrent use. Session values returned
// by Store accessors are snapshots; mutate only through Store.Update or
// Store.UpdateGeneration.
package session
