package view

import (
	"testing"

	"forum-server/internal/forum"
)

func TestResolveQueryPrecedence(t *testing.T) {
	ident := &forum.Identity{ID: 7, Username: "alice"}
	board := int64(3)

	// Mine wins over a board filter.
	spec, err := ResolveQuery(&board, ScopeMine, ident)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if spec.Kind != FetchByUser || spec.UserID != 7 {
		t.Errorf("expected user fetch for user 7, got %#v", spec)
	}

	// Board filter alone.
	spec, err = ResolveQuery(&board, ScopeAll, nil)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if spec.Kind != FetchByBoard || spec.BoardID != 3 {
		t.Errorf("expected board fetch for board 3, got %#v", spec)
	}

	// Nothing selected.
	spec, err = ResolveQuery(nil, ScopeAll, nil)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if spec.Kind != FetchAll {
		t.Errorf("expected fetch-all, got %#v", spec)
	}
}

func TestResolveQueryMineWithoutIdentity(t *testing.T) {
	_, err := ResolveQuery(nil, ScopeMine, nil)
	if !forum.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestSelectMineWithoutIdentityReverts(t *testing.T) {
	s := NewSelector()
	s.SelectBoard(3)
	s.SelectEntity(42)

	effect, err := s.SelectMine(nil)
	if !forum.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	// The filter state changed (board 3 -> all), so a refetch fires.
	if !effect.RefetchList {
		t.Error("revert from a board filter should refetch")
	}

	st := s.State()
	if st.BoardFilter != nil || st.Scope != ScopeAll {
		t.Errorf("expected Viewing(all) after revert, got %#v", st)
	}
	if st.Selected != nil {
		t.Errorf("selection should be cleared, got %v", *st.Selected)
	}
}

func TestSelectMineWithoutIdentityFromAllNoRefetch(t *testing.T) {
	s := NewSelector()
	effect, err := s.SelectMine(nil)
	if !forum.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	// Already Viewing(all): nothing changed, nothing to refetch.
	if effect.RefetchList {
		t.Error("no-op revert should not refetch")
	}
}

func TestSelectBoardClearsSelection(t *testing.T) {
	s := NewSelector()
	s.SelectEntity(10)
	effect := s.SelectBoard(2)
	if !effect.RefetchList {
		t.Error("board change should refetch")
	}
	if st := s.State(); st.Selected != nil {
		t.Errorf("selection should be cleared, got %v", *st.Selected)
	}
}

func TestReselectSameBoardStillRefetches(t *testing.T) {
	// Re-selecting the current filter is the manual-retry path for a
	// failed load, so it must refetch.
	s := NewSelector()
	s.SelectBoard(2)
	if !s.SelectBoard(2).RefetchList {
		t.Error("re-selecting the same board should still refetch")
	}
}

func TestSelectEntityFetchesCommentsOnly(t *testing.T) {
	s := NewSelector()
	s.SelectBoard(1)
	effect := s.SelectEntity(99)
	if !effect.FetchComments {
		t.Error("entity selection should fetch comments")
	}
	if effect.RefetchList {
		t.Error("entity selection must not refetch the list")
	}
	st := s.State()
	if st.BoardFilter == nil || *st.BoardFilter != 1 {
		t.Error("entity selection must not disturb the board filter")
	}
}

func TestIdentityCleared(t *testing.T) {
	ident := &forum.Identity{ID: 5, Username: "bob"}

	// While in mine: forced transition to Viewing(all).
	s := NewSelector()
	if _, err := s.SelectMine(ident); err != nil {
		t.Fatalf("select mine failed: %v", err)
	}
	s.SelectEntity(8)
	effect := s.IdentityCleared()
	if !effect.RefetchList {
		t.Error("clearing identity in mine should refetch")
	}
	st := s.State()
	if st.Scope != ScopeAll || st.Selected != nil {
		t.Errorf("expected Viewing(all) with no selection, got %#v", st)
	}

	// In any other state: a no-op.
	s2 := NewSelector()
	s2.SelectBoard(4)
	if s2.IdentityCleared().RefetchList {
		t.Error("clearing identity outside mine should be a no-op")
	}
	if st := s2.State(); st.BoardFilter == nil || *st.BoardFilter != 4 {
		t.Error("board filter should survive identity loss")
	}
}

func TestFetchSpecQuery(t *testing.T) {
	q := FetchSpec{Kind: FetchByBoard, BoardID: 9}.Query()
	if q.BoardID == nil || *q.BoardID != 9 || q.UserID != nil {
		t.Errorf("board spec produced wrong query: %#v", q)
	}
	q = FetchSpec{Kind: FetchByUser, UserID: 12}.Query()
	if q.UserID == nil || *q.UserID != 12 || q.BoardID != nil {
		t.Errorf("user spec produced wrong query: %#v", q)
	}
	q = FetchSpec{Kind: FetchAll}.Query()
	if q.BoardID != nil || q.UserID != nil {
		t.Errorf("all spec produced wrong query: %#v", q)
	}
}
