// Package reveal tracks which spoiler spans are currently revealed.
//
// State is keyed by (documentID, spanIndex) where a document is one rendered
// post body or comment body. The whole-body gate is a separate layer: it
// hides the entire rendered block, while inline spans hide only their own
// text run once the body is visible. Revealing one never touches the other.
//
// Nothing here is ever persisted; a store lives exactly as long as the view
// that owns it and is reset when the selection moves to a different entity.
package reveal

import "sync"

type docState struct {
	spans map[int]bool
	whole bool
}

// Store holds reveal state for the documents of one rendered view.
// Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*docState
}

// New returns an empty store: every span hidden, every whole-body gate shut.
func New() *Store {
	return &Store{docs: make(map[string]*docState)}
}

// IsRevealed reports whether the given inline span is revealed.
// Unknown documents and spans default to hidden.
func (s *Store) IsRevealed(docID string, span int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[docID]
	return ok && d.spans[span]
}

// Toggle flips exactly one span's state, leaving all others untouched,
// and returns the new state.
func (s *Store) Toggle(docID string, span int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.doc(docID)
	d.spans[span] = !d.spans[span]
	return d.spans[span]
}

// RevealWhole opens the whole-body gate for a document. Inline spans nested
// inside remain individually hidden.
func (s *Store) RevealWhole(docID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc(docID).whole = true
}

// WholeRevealed reports whether the whole-body gate is open.
func (s *Store) WholeRevealed(docID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[docID]
	return ok && d.whole
}

// Drop discards all state for one document.
func (s *Store) Drop(docID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, docID)
}

// Reset discards everything. Called when the selected entity changes, so no
// reveal state leaks across documents.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]*docState)
}

func (s *Store) doc(docID string) *docState {
	d, ok := s.docs[docID]
	if !ok {
		d = &docState{spans: make(map[int]bool)}
		s.docs[docID] = d
	}
	return d
}
