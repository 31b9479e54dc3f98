package view

import "sync"

// Guard implements the stale-response rule: a fetch result is applied only
// if no newer fetch has been issued since. Last-writer-wins is decided by
// issuance order, not completion order, so no cancellation primitive is
// needed; losers are simply discarded.
type Guard struct {
	mu     sync.Mutex
	issued uint64
	key    string
}

// Ticket identifies one issued fetch.
type Ticket struct {
	seq uint64
	key string
}

// Key returns the key the ticket was issued for.
func (t Ticket) Key() string { return t.key }

// Begin registers a fetch for the given key (e.g. the filter state or the
// selected entity id) and returns its ticket.
func (g *Guard) Begin(key string) Ticket {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
	g.key = key
	return Ticket{seq: g.issued, key: key}
}

// Commit reports whether the ticket's result may be applied. False means a
// newer fetch superseded it (or the guard was invalidated) and the result
// must be discarded.
func (g *Guard) Commit(t Ticket) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return t.seq == g.issued && t.key == g.key
}

// Invalidate discards all outstanding tickets without issuing a fetch.
// Used when the selection is cleared: a comment list arriving afterwards
// belongs to an entity the user has already left.
func (g *Guard) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
	g.key = ""
}
