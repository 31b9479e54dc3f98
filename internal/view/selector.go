// Package view derives which item set must be fetched from the three filter
// dimensions (board filter, all/mine scope, selected entity) and decides
// when a refetch is required. Transitions are named and each declares its
// side effect, so fetch timing is explicit rather than implied by reactive
// dependencies.
package view

import (
	"sync"

	"forum-server/internal/forum"
)

// Scope selects "all posts" vs. "only the current identity's posts".
type Scope int

const (
	ScopeAll Scope = iota
	ScopeMine
)

// SpecKind enumerates the three possible fetch shapes.
type SpecKind int

const (
	FetchAll SpecKind = iota
	FetchByBoard
	FetchByUser
)

// FetchSpec tells the data layer which post list to load.
type FetchSpec struct {
	Kind    SpecKind
	BoardID int64
	UserID  int64
}

// Query converts the fetch description to the REST client's query shape.
func (f FetchSpec) Query() forum.PostQuery {
	switch f.Kind {
	case FetchByBoard:
		b := f.BoardID
		return forum.PostQuery{BoardID: &b}
	case FetchByUser:
		u := f.UserID
		return forum.PostQuery{UserID: &u}
	default:
		return forum.PostQuery{}
	}
}

// ResolveQuery maps (board filter, scope, identity) to a FetchSpec.
// When both a board filter and scope=mine are set, mine takes precedence:
// the history view ignores the board filter. scope=mine without an identity
// resolves to the all-posts spec and reports Unauthorized.
func ResolveQuery(boardFilter *int64, scope Scope, ident *forum.Identity) (FetchSpec, error) {
	if scope == ScopeMine {
		if ident == nil {
			return FetchSpec{Kind: FetchAll}, forum.ErrUnauthorized
		}
		return FetchSpec{Kind: FetchByUser, UserID: ident.ID}, nil
	}
	if boardFilter != nil {
		return FetchSpec{Kind: FetchByBoard, BoardID: *boardFilter}, nil
	}
	return FetchSpec{Kind: FetchAll}, nil
}

// Effect is the declared side effect of one transition. At most one of the
// two fetches fires per transition.
type Effect struct {
	RefetchList   bool
	FetchComments bool
}

// State is a snapshot of the selector.
type State struct {
	BoardFilter *int64
	Scope       Scope
	Selected    *int64
}

// Selector is the view-state machine. Single writer (the component driving
// user interaction); renders take snapshots.
type Selector struct {
	mu          sync.Mutex
	boardFilter *int64
	scope       Scope
	selected    *int64
}

// NewSelector starts in Viewing(all) with nothing selected.
func NewSelector() *Selector {
	return &Selector{}
}

// State returns a copy of the current state.
func (s *Selector) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{Scope: s.scope}
	if s.boardFilter != nil {
		b := *s.boardFilter
		st.BoardFilter = &b
	}
	if s.selected != nil {
		e := *s.selected
		st.Selected = &e
	}
	return st
}

// Resolve applies ResolveQuery to the current state.
func (s *Selector) Resolve(ident *forum.Identity) (FetchSpec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ResolveQuery(s.boardFilter, s.scope, ident)
}

// SelectBoard moves to Viewing(board=b) and clears the selection.
// Re-selecting the current board still refetches; that is the manual-retry
// path for a failed load.
func (s *Selector) SelectBoard(b int64) Effect {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boardFilter = &b
	s.scope = ScopeAll
	s.selected = nil
	return Effect{RefetchList: true}
}

// SelectAll moves to Viewing(all) and clears the selection.
func (s *Selector) SelectAll() Effect {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boardFilter = nil
	s.scope = ScopeAll
	s.selected = nil
	return Effect{RefetchList: true}
}

// SelectMine moves to Viewing(mine), which ignores and clears the board
// filter. Without an identity the transition fails with Unauthorized and
// the selector reverts to Viewing(all); the error is reported, not fatal.
// A refetch fires only when the filter state actually changed.
func (s *Selector) SelectMine(ident *forum.Identity) (Effect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ident == nil {
		changed := s.boardFilter != nil || s.scope != ScopeAll
		s.boardFilter = nil
		s.scope = ScopeAll
		s.selected = nil
		return Effect{RefetchList: changed}, forum.ErrUnauthorized
	}
	s.boardFilter = nil
	s.scope = ScopeMine
	s.selected = nil
	return Effect{RefetchList: true}, nil
}

// SelectEntity sets the selection within the current filter state. It
// triggers exactly one comment fetch and never refetches the list.
func (s *Selector) SelectEntity(id int64) Effect {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = &id
	return Effect{FetchComments: true}
}

// ClearSelection drops the selection without touching the filter state.
func (s *Selector) ClearSelection() Effect {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
	return Effect{}
}

// IdentityCleared handles the external logout/expiry event. While in
// Viewing(mine) it forces a transition to Viewing(all); in any other state
// it is a no-op.
func (s *Selector) IdentityCleared() Effect {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scope != ScopeMine {
		return Effect{}
	}
	s.boardFilter = nil
	s.scope = ScopeAll
	s.selected = nil
	return Effect{RefetchList: true}
}
