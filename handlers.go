package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"forum-server/internal/forum"
	"forum-server/internal/util"
	"forum-server/internal/view"
)

// appConfig is set once in main before the server starts listening.
var appConfig Config

// =============================================================================
// Request helpers
// =============================================================================

// backHref returns the same-origin page to bounce back to after an action,
// defaulting to the home view.
func backHref(r *http.Request) string {
	ref := r.Header.Get("Referer")
	if ref == "" {
		return "/"
	}
	if strings.HasPrefix(ref, "/") && !strings.HasPrefix(ref, "//") {
		return ref
	}
	if u, err := r.URL.Parse(ref); err == nil && u.Host == r.Host {
		target := u.Path
		if u.RawQuery != "" {
			target += "?" + u.RawQuery
		}
		if target == "" || !strings.HasPrefix(target, "/") {
			return "/"
		}
		return target
	}
	return "/"
}

// basePageData assembles the fields every page shares. Boards degrade to an
// empty tab strip when the upstream is down.
func basePageData(r *http.Request, sv *sessionView, title string) *PageData {
	ident := CurrentIdentity(r)
	st := sv.selector.State()
	return &PageData{
		Title:       title,
		User:        ident,
		CSRFToken:   generateCSRFToken(csrfSessionID(r)),
		Boards:      fetchBoards(r.Context()),
		ActiveBoard: st.BoardFilter,
		ScopeMine:   st.Scope == view.ScopeMine,
	}
}

// =============================================================================
// List and detail pages
// =============================================================================

func buildPostView(p *forum.Post, sv *sessionView, boardNames map[int64]string, user *forum.Identity, csrfToken string) PostView {
	tally := sv.voteTally(p.ID)
	author := p.Owner.DisplayName()
	if author == "" {
		author = fmt.Sprintf("user %d", p.OwnerID)
	}
	return PostView{
		ID:            p.ID,
		Title:         p.Title,
		AuthorName:    author,
		BoardName:     boardNames[p.BoardID],
		Age:           util.RelTime(p.CreatedAt.Time, time.Now()),
		Up:            tally.Up,
		Down:          tally.Down,
		SpoilerTagged: p.IsSpoiler,
		CanDelete:     user != nil && user.ID == p.OwnerID,
		CSRFToken:     csrfToken,
		BodyHTML: renderBody(p.Content, renderOptions{
			DocID:        fmt.Sprintf("post:%d", p.ID),
			WholeSpoiler: p.IsSpoiler,
			Extended:     true,
			Store:        sv.reveal,
		}),
	}
}

func buildCommentView(c *forum.Comment, sv *sessionView) CommentView {
	author := c.User.DisplayName()
	if author == "" {
		author = fmt.Sprintf("user %d", c.UserID)
	}
	return CommentView{
		ID:         c.ID,
		AuthorName: author,
		Age:        util.RelTime(c.CreatedAt.Time, time.Now()),
		BodyHTML: renderBody(c.Content, renderOptions{
			DocID:        fmt.Sprintf("comment:%d", c.ID),
			WholeSpoiler: c.IsSpoiler,
			Store:        sv.reveal,
		}),
	}
}

func boardNameIndex(boards []forum.Board) map[int64]string {
	idx := make(map[int64]string, len(boards))
	for _, b := range boards {
		idx[b.ID] = b.Name
	}
	return idx
}

// homeHandler renders whatever filter state the session currently holds,
// fetching the list on first contact or after an invalidating event.
func homeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		util.RespondNotFound(w, "page not found")
		return
	}
	sv := viewStateFor(w, r)
	ident := CurrentIdentity(r)

	_, _, fetched, _ := sv.snapshot()
	if !fetched {
		spec, err := sv.selector.Resolve(ident)
		if err == nil {
			sv.refreshList(r.Context(), spec)
		}
	}

	renderListPage(w, r, sv, ident)
}

func renderListPage(w http.ResponseWriter, r *http.Request, sv *sessionView, ident *forum.Identity) {
	data := basePageData(r, sv, "Home")
	data.User = ident
	data.RetryHref = "/"

	posts, _, _, listError := sv.snapshot()
	data.ListError = listError
	names := boardNameIndex(data.Boards)
	for i := range posts {
		data.Posts = append(data.Posts, buildPostView(&posts[i], sv, names, ident, data.CSRFToken))
	}
	renderPage(w, r, postsPageTmpl, data)
}

// viewAllHandler, viewBoardHandler and viewMineHandler are the three filter
// transitions. Each one redirects home after updating state so a reload
// never replays the transition.
func viewAllHandler(w http.ResponseWriter, r *http.Request) {
	sv := viewStateFor(w, r)
	effect := sv.selector.SelectAll()
	sv.applyFilterTransition()
	if effect.RefetchList {
		ident := CurrentIdentity(r)
		if spec, err := sv.selector.Resolve(ident); err == nil {
			sv.refreshList(r.Context(), spec)
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func viewBoardHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		util.RespondBadRequest(w, "invalid board id")
		return
	}
	sv := viewStateFor(w, r)
	effect := sv.selector.SelectBoard(id)
	sv.applyFilterTransition()
	if effect.RefetchList {
		ident := CurrentIdentity(r)
		if spec, err := sv.selector.Resolve(ident); err == nil {
			sv.refreshList(r.Context(), spec)
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func viewMineHandler(w http.ResponseWriter, r *http.Request) {
	sv := viewStateFor(w, r)
	ident := CurrentIdentity(r)

	effect, err := sv.selector.SelectMine(ident)
	sv.applyFilterTransition()
	if err != nil {
		// Reverted to Viewing(all); tell the user why.
		if effect.RefetchList {
			if spec, rerr := sv.selector.Resolve(nil); rerr == nil {
				sv.refreshList(r.Context(), spec)
			}
		}
		redirectWithError(w, r, "/", "Log in to see your posts")
		return
	}
	if effect.RefetchList {
		if spec, rerr := sv.selector.Resolve(ident); rerr == nil {
			sv.refreshList(r.Context(), spec)
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// postDetailHandler renders one post with its comments. The post itself
// comes from the held list; the comment fetch is scoped to the selection
// and discarded if the selection moves before it lands.
func postDetailHandler(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/posts/")
	if strings.HasSuffix(idStr, "/comments") {
		commentCreateHandler(w, r)
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		util.RespondNotFound(w, "post not found")
		return
	}

	sv := viewStateFor(w, r)
	ident := CurrentIdentity(r)

	_, _, fetched, _ := sv.snapshot()
	if !fetched {
		if spec, rerr := sv.selector.Resolve(ident); rerr == nil {
			sv.refreshList(r.Context(), spec)
		}
	}

	posts, _, _, _ := sv.snapshot()
	var post *forum.Post
	for i := range posts {
		if posts[i].ID == id {
			post = &posts[i]
			break
		}
	}

	data := basePageData(r, sv, "Post")
	data.User = ident
	if post == nil {
		renderPage(w, r, threadPageTmpl, data)
		return
	}

	effect := sv.selectEntity(id)
	if effect.FetchComments {
		sv.refreshComments(r.Context(), id)
	}

	names := boardNameIndex(data.Boards)
	pv := buildPostView(post, sv, names, ident, data.CSRFToken)
	data.Title = post.Title
	data.Post = &pv
	_, comments, _, _ := sv.snapshot()
	for i := range comments {
		data.Comments = append(data.Comments, buildCommentView(&comments[i], sv))
	}
	renderPage(w, r, threadPageTmpl, data)
}

// =============================================================================
// Content actions
// =============================================================================

func postCreateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		util.RespondMethodNotAllowed(w, "POST required")
		return
	}
	if !requireCSRF(w, r) {
		return
	}
	token := currentCredential(r.Context())
	if token == "" {
		redirectWithError(w, r, "/login", "Log in to post")
		return
	}

	boardID, err := strconv.ParseInt(r.FormValue("board_id"), 10, 64)
	if err != nil {
		util.RespondBadRequest(w, "invalid board")
		return
	}
	in := forum.PostCreate{
		Title:     strings.TrimSpace(r.FormValue("title")),
		Content:   r.FormValue("content"),
		BoardID:   boardID,
		IsSpoiler: r.FormValue("is_spoiler") != "",
	}
	if in.Title == "" || strings.TrimSpace(in.Content) == "" {
		redirectWithError(w, r, "/", "Title and content are required")
		return
	}

	_, err = apiClient.WithToken(token).CreatePost(r.Context(), in)
	CountAPICall(err != nil)
	if err != nil {
		handleActionError(w, r, err, "Could not create post")
		return
	}

	sv := viewStateFor(w, r)
	if spec, rerr := sv.selector.Resolve(CurrentIdentity(r)); rerr == nil {
		sv.refreshList(r.Context(), spec)
	}
	redirectWithSuccess(w, r, "/", "Posted")
}

func postDeleteHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		util.RespondMethodNotAllowed(w, "POST required")
		return
	}
	if !requireCSRF(w, r) {
		return
	}
	token := currentCredential(r.Context())
	if token == "" {
		redirectWithError(w, r, "/login", "Log in first")
		return
	}
	id, err := strconv.ParseInt(r.FormValue("post_id"), 10, 64)
	if err != nil {
		util.RespondBadRequest(w, "invalid post id")
		return
	}

	err = apiClient.WithToken(token).DeletePost(r.Context(), id)
	CountAPICall(err != nil)
	if err != nil {
		handleActionError(w, r, err, "Could not delete post")
		return
	}

	sv := viewStateFor(w, r)
	st := sv.selector.State()
	if st.Selected != nil && *st.Selected == id {
		sv.selector.ClearSelection()
	}
	if spec, rerr := sv.selector.Resolve(CurrentIdentity(r)); rerr == nil {
		sv.refreshList(r.Context(), spec)
	}
	redirectWithSuccess(w, r, "/", "Post deleted")
}

func voteHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		util.RespondMethodNotAllowed(w, "POST required")
		return
	}
	if !requireCSRF(w, r) {
		return
	}
	token := currentCredential(r.Context())
	if token == "" {
		redirectWithError(w, r, "/login", "Log in to vote")
		return
	}
	id, err := strconv.ParseInt(r.FormValue("post_id"), 10, 64)
	if err != nil {
		util.RespondBadRequest(w, "invalid post id")
		return
	}
	dir, err := strconv.Atoi(r.FormValue("dir"))
	if err != nil || (dir != 1 && dir != -1) {
		util.RespondBadRequest(w, "invalid vote direction")
		return
	}

	err = apiClient.WithToken(token).Vote(r.Context(), id, dir)
	CountAPICall(err != nil)
	if err != nil {
		handleActionError(w, r, err, "Vote failed")
		return
	}
	viewStateFor(w, r).recordVote(id, dir)
	http.Redirect(w, r, backHref(r), http.StatusSeeOther)
}

func commentCreateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		util.RespondMethodNotAllowed(w, "POST required")
		return
	}
	if !requireCSRF(w, r) {
		return
	}
	idStr := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/posts/"), "/comments")
	postID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		util.RespondNotFound(w, "post not found")
		return
	}
	token := currentCredential(r.Context())
	if token == "" {
		redirectWithError(w, r, "/login", "Log in to comment")
		return
	}
	content := strings.TrimSpace(r.FormValue("content"))
	if content == "" {
		redirectWithError(w, r, fmt.Sprintf("/posts/%d", postID), "Comment cannot be empty")
		return
	}

	_, err = apiClient.WithToken(token).CreateComment(r.Context(), postID, content, r.FormValue("is_spoiler") != "")
	CountAPICall(err != nil)
	if err != nil {
		handleActionError(w, r, err, "Could not post comment")
		return
	}

	sv := viewStateFor(w, r)
	st := sv.selector.State()
	if st.Selected != nil && *st.Selected == postID {
		sv.refreshComments(r.Context(), postID)
	}
	http.Redirect(w, r, fmt.Sprintf("/posts/%d#comments", postID), http.StatusSeeOther)
}

// handleActionError maps a write failure to user feedback. An expired
// credential clears the session and bounces through login.
func handleActionError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	ctx := r.Context()
	if forum.IsUnauthorized(err) {
		invalidateIdentity(ctx, currentCredential(ctx))
		clearCredential(ctx)
		viewStateFor(nil, r).IdentityCleared()
		redirectWithError(w, r, "/login", "Your session expired, please log in again")
		return
	}
	LoggerFromContext(ctx).Warn("action failed", "path", r.URL.Path, "error", err)
	msg := fallback
	var rejected *forum.ActionRejected
	if errors.As(err, &rejected) && rejected.Detail != "" {
		msg = rejected.Detail
	}
	redirectWithError(w, r, backHref(r), msg)
}

// =============================================================================
// Profile and upload
// =============================================================================

func profileHandler(w http.ResponseWriter, r *http.Request) {
	sv := viewStateFor(w, r)
	ident := CurrentIdentity(r)
	if ident == nil {
		redirectWithError(w, r, "/login", "Log in to edit your profile")
		return
	}

	if r.Method == http.MethodPost {
		profileSaveHandler(w, r, sv)
		return
	}

	data := basePageData(r, sv, "Profile")
	data.User = ident
	renderPage(w, r, profilePageTmpl, data)
}

// profileSaveHandler is single-flight per session: while one save is in
// flight, re-submission is rejected rather than queued.
func profileSaveHandler(w http.ResponseWriter, r *http.Request, sv *sessionView) {
	if !requireCSRF(w, r) {
		return
	}
	if !sv.beginAction("profile") {
		redirectWithError(w, r, "/profile", "A save is already in progress")
		return
	}
	defer sv.endAction("profile")

	token := currentCredential(r.Context())
	upd := forum.ProfileUpdate{
		Nickname: strings.TrimSpace(r.FormValue("nickname")),
		BgLeft:   strings.TrimSpace(r.FormValue("bg_left")),
		BgMiddle: strings.TrimSpace(r.FormValue("bg_middle")),
		BgRight:  strings.TrimSpace(r.FormValue("bg_right")),
	}
	_, err := apiClient.WithToken(token).UpdateProfile(r.Context(), upd)
	CountAPICall(err != nil)
	if err != nil {
		handleActionError(w, r, err, "Could not save profile")
		return
	}
	invalidateIdentity(r.Context(), token)
	redirectWithSuccess(w, r, "/profile", "Profile saved")
}

func uploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		util.RespondMethodNotAllowed(w, "POST required")
		return
	}
	if !requireCSRF(w, r) {
		return
	}
	token := currentCredential(r.Context())
	if token == "" {
		redirectWithError(w, r, "/login", "Log in to upload")
		return
	}

	sv := viewStateFor(w, r)
	if !sv.beginAction("upload") {
		redirectWithError(w, r, "/profile", "An upload is already in progress")
		return
	}
	defer sv.endAction("upload")

	file, header, err := r.FormFile("file")
	if err != nil {
		redirectWithError(w, r, "/profile", "Choose a file to upload")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		redirectWithError(w, r, "/profile", "Only image uploads are supported")
		return
	}

	imgURL, err := apiClient.WithToken(token).UploadImage(r.Context(), header.Filename, contentType, file)
	CountAPICall(err != nil)
	if err != nil {
		handleActionError(w, r, err, "Upload failed")
		return
	}
	redirectWithSuccess(w, r, "/profile", fmt.Sprintf("Uploaded. Paste into a post: ![](%s)", imgURL))
}

// =============================================================================
// Auth
// =============================================================================

func loginHandler(w http.ResponseWriter, r *http.Request) {
	sv := viewStateFor(w, r)
	if CurrentIdentity(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	loginURL := buildLoginURL(appConfig)
	data := basePageData(r, sv, "Log in")
	data.LoginURL = loginURL
	data.LoginQR = template.URL(generateQRCodeDataURL(loginURL))
	renderPage(w, r, loginPageTmpl, data)
}

func generateQRCodeDataURL(content string) string {
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		slog.Error("failed to generate QR code", "error", err)
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// authCallbackHandler receives the bearer token the backend appends to the
// redirect after finishing the Google code exchange. The token is opaque to
// us; it is validated by the identity fetch on the next render.
func authCallbackHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		redirectWithError(w, r, "/login", "Login failed, no token received")
		return
	}
	if err := storeCredential(r.Context(), token); err != nil {
		LoggerFromContext(r.Context()).Error("storing credential failed", "error", err)
		redirectWithError(w, r, "/login", "Login failed, please try again")
		return
	}
	redirectWithSuccess(w, r, "/", "Logged in")
}

func logoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		util.RespondMethodNotAllowed(w, "POST required")
		return
	}
	if !requireCSRF(w, r) {
		return
	}
	ctx := r.Context()
	invalidateIdentity(ctx, currentCredential(ctx))
	clearCredential(ctx)
	if err := sessionManager.Destroy(ctx); err != nil {
		LoggerFromContext(ctx).Warn("session destroy failed", "error", err)
	}
	viewStateFor(nil, r).IdentityCleared()
	redirectWithSuccess(w, r, "/", "Logged out")
}

// =============================================================================
// Spoiler reveal
// =============================================================================

// spoilerToggleHandler flips one inline span and bounces back to the page
// the link lived on. Toggling is per session and never persisted.
func spoilerToggleHandler(w http.ResponseWriter, r *http.Request) {
	doc := r.URL.Query().Get("doc")
	span, err := strconv.Atoi(r.URL.Query().Get("span"))
	if doc == "" || err != nil || span < 0 {
		util.RespondBadRequest(w, "invalid spoiler reference")
		return
	}
	viewStateFor(w, r).reveal.Toggle(doc, span)
	http.Redirect(w, r, backHref(r), http.StatusSeeOther)
}

// spoilerWholeHandler opens the whole-body gate. Inline spans inside the
// body stay hidden until toggled individually.
func spoilerWholeHandler(w http.ResponseWriter, r *http.Request) {
	doc := r.URL.Query().Get("doc")
	if doc == "" {
		util.RespondBadRequest(w, "invalid spoiler reference")
		return
	}
	viewStateFor(w, r).reveal.RevealWhole(doc)
	http.Redirect(w, r, backHref(r), http.StatusSeeOther)
}

// =============================================================================
// Health
// =============================================================================

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","uptime_seconds":%d}`, int(time.Since(serverStartTime).Seconds()))
}
