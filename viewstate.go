package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"forum-server/internal/forum"
	"forum-server/internal/reveal"
	"forum-server/internal/view"
)

// sessionView is the per-session view state: the selector state machine,
// the stale-response guards, the reveal store, and the currently held
// lists. One instance per browser session, looked up by the vsid cookie.
type sessionView struct {
	mu       sync.Mutex
	selector *view.Selector
	reveal   *reveal.Store

	listGuard    view.Guard
	commentGuard view.Guard

	posts     []forum.Post
	comments  []forum.Comment
	fetched   bool
	listError bool

	// votes holds this session's local vote tallies per post. The backend
	// accepts votes but does not report counts back, so the tallies only
	// reflect what this session has cast.
	votes map[int64]voteTally

	inflight map[string]bool
	lastSeen time.Time
}

type voteTally struct {
	Up   int
	Down int
}

func newSessionView() *sessionView {
	return &sessionView{
		selector: view.NewSelector(),
		reveal:   reveal.New(),
		votes:    make(map[int64]voteTally),
		inflight: make(map[string]bool),
		lastSeen: time.Now(),
	}
}

// refreshList fetches the post list for spec under the stale-response
// guard. The network call runs outside the state lock so overlapping
// requests race, and only the newest issued fetch may commit. A failed
// fetch degrades to an empty list with the error flag set.
func (sv *sessionView) refreshList(ctx context.Context, spec view.FetchSpec) {
	key := fmt.Sprintf("list:%d:%d:%d", spec.Kind, spec.BoardID, spec.UserID)
	ticket := sv.listGuard.Begin(key)

	posts, err := apiClient.WithToken(currentCredential(ctx)).ListPosts(ctx, spec.Query())
	CountAPICall(err != nil)

	if !sv.listGuard.Commit(ticket) {
		CountStaleDiscard()
		return
	}

	sv.mu.Lock()
	defer sv.mu.Unlock()
	sv.fetched = true
	if err != nil {
		LoggerFromContext(ctx).Warn("post list fetch failed", "error", err)
		sv.posts = nil
		sv.listError = true
		return
	}
	sv.posts = posts
	sv.listError = false
}

// refreshComments fetches the comment list for the selected entity under
// its own guard. A result arriving after the user moved to a different
// entity is discarded.
func (sv *sessionView) refreshComments(ctx context.Context, postID int64) {
	key := fmt.Sprintf("comments:%d", postID)
	ticket := sv.commentGuard.Begin(key)

	comments, err := apiClient.ListComments(ctx, postID)
	CountAPICall(err != nil)

	if !sv.commentGuard.Commit(ticket) {
		CountStaleDiscard()
		return
	}

	sv.mu.Lock()
	defer sv.mu.Unlock()
	if err != nil {
		LoggerFromContext(ctx).Warn("comment list fetch failed", "post_id", postID, "error", err)
		sv.comments = nil
		return
	}
	sv.comments = comments
}

// applyFilterTransition runs the bookkeeping shared by every transition
// that changes the filter state: the selection and its comments are
// invalidated and reveal state is dropped.
func (sv *sessionView) applyFilterTransition() {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	sv.comments = nil
	sv.reveal.Reset()
	sv.commentGuard.Invalidate()
}

// selectEntity moves the selection. Held comments and reveal state are
// dropped only when the selection actually moves to a different entity;
// re-rendering the currently selected entity keeps spoiler reveals intact,
// which is what the toggle endpoints rely on when they bounce back to the
// detail page.
func (sv *sessionView) selectEntity(id int64) view.Effect {
	prev := sv.selector.State().Selected
	effect := sv.selector.SelectEntity(id)
	if prev != nil && *prev == id {
		return effect
	}
	sv.mu.Lock()
	sv.comments = nil
	sv.reveal.Reset()
	sv.mu.Unlock()
	return effect
}

// IdentityCleared handles logout or credential expiry. The refetch the
// transition demands is deferred to the next render by marking the held
// list invalid.
func (sv *sessionView) IdentityCleared() {
	effect := sv.selector.IdentityCleared()
	if !effect.RefetchList {
		return
	}
	sv.applyFilterTransition()
	sv.mu.Lock()
	sv.fetched = false
	sv.mu.Unlock()
}

// beginAction marks a single-flight action (upload, profile save) as in
// flight. Returns false when the same action is already running for this
// session, in which case re-submission must be rejected.
func (sv *sessionView) beginAction(name string) bool {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	if sv.inflight[name] {
		return false
	}
	sv.inflight[name] = true
	inflightActions.Add(1)
	return true
}

func (sv *sessionView) endAction(name string) {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	if sv.inflight[name] {
		delete(sv.inflight, name)
		inflightActions.Add(-1)
	}
}

func (sv *sessionView) recordVote(postID int64, dir int) {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	t := sv.votes[postID]
	if dir > 0 {
		t.Up++
	} else {
		t.Down++
	}
	sv.votes[postID] = t
}

func (sv *sessionView) voteTally(postID int64) voteTally {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	return sv.votes[postID]
}

// snapshot returns the held lists and flags under the lock.
func (sv *sessionView) snapshot() (posts []forum.Post, comments []forum.Comment, fetched, listError bool) {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	return sv.posts, sv.comments, sv.fetched, sv.listError
}

// =============================================================================
// Session view registry
// =============================================================================

const vsidCookie = "vsid"

var viewRegistry = struct {
	mu sync.Mutex
	m  map[string]*sessionView
}{m: make(map[string]*sessionView)}

// viewStateFor returns the view state of the request's session, creating it
// (and the vsid cookie) on first contact. Passing a nil writer skips cookie
// assignment and returns a throwaway state for requests without one.
func viewStateFor(w http.ResponseWriter, r *http.Request) *sessionView {
	id := ""
	if c, err := r.Cookie(vsidCookie); err == nil && c.Value != "" {
		id = c.Value
	} else if w != nil {
		id = uuid.NewString()
		SetLaxCookie(w, r, vsidCookie, id, 60*60*24*30)
		// Make the fresh id visible to later lookups within this request.
		r.AddCookie(&http.Cookie{Name: vsidCookie, Value: id})
	}
	if id == "" {
		return newSessionView()
	}

	viewRegistry.mu.Lock()
	defer viewRegistry.mu.Unlock()
	sv, ok := viewRegistry.m[id]
	if !ok {
		sv = newSessionView()
		viewRegistry.m[id] = sv
	}
	sv.lastSeen = time.Now()
	return sv
}

// startViewReaper evicts view state idle longer than maxIdle.
func startViewReaper(maxIdle time.Duration) {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-maxIdle)
			viewRegistry.mu.Lock()
			for id, sv := range viewRegistry.m {
				if sv.lastSeen.Before(cutoff) {
					delete(viewRegistry.m, id)
				}
			}
			viewRegistry.mu.Unlock()
		}
	}()
}
