package forum

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestBearerHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(Identity{ID: 1, Username: "alice"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL).WithToken("tok123")
	ident, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if gotAuth != "Bearer tok123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if ident.Username != "alice" {
		t.Errorf("identity = %#v", ident)
	}
}

func TestWithTokenDoesNotMutateReceiver(t *testing.T) {
	base := NewClient("http://example.invalid")
	derived := base.WithToken("x")
	if base.token != "" {
		t.Error("WithToken mutated the receiver")
	}
	if derived.token != "x" {
		t.Error("derived client missing token")
	}
}

func TestMeWithoutTokenIsUnauthorized(t *testing.T) {
	c := NewClient("http://example.invalid")
	_, err := c.Me(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestUnauthorizedMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL).WithToken("stale")
	if _, err := c.Me(context.Background()); !IsUnauthorized(err) {
		t.Errorf("read path: expected unauthorized, got %v", err)
	}
	if err := c.Vote(context.Background(), 1, 1); !IsUnauthorized(err) {
		t.Errorf("write path: expected unauthorized, got %v", err)
	}
}

func TestReadFailureIsFetchFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ListBoards(context.Background())
	var ff *FetchFailed
	if !errors.As(err, &ff) {
		t.Fatalf("expected FetchFailed, got %v", err)
	}
}

func TestWriteFailureCarriesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"detail":"not your post"}`)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).WithToken("t").DeletePost(context.Background(), 5)
	var rejected *ActionRejected
	if !errors.As(err, &rejected) {
		t.Fatalf("expected ActionRejected, got %v", err)
	}
	if rejected.Status != http.StatusForbidden || rejected.Detail != "not your post" {
		t.Errorf("rejection = %#v", rejected)
	}
}

func TestListPostsQueryMapping(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		io.WriteString(w, "[]")
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	board := int64(3)
	user := int64(7)

	if _, err := c.ListPosts(context.Background(), PostQuery{}); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if gotQuery != "" {
		t.Errorf("unfiltered list sent query %q", gotQuery)
	}

	if _, err := c.ListPosts(context.Background(), PostQuery{BoardID: &board}); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if gotQuery != "board_id=3" {
		t.Errorf("board filter query = %q", gotQuery)
	}

	// UserID wins when both are set.
	if _, err := c.ListPosts(context.Background(), PostQuery{BoardID: &board, UserID: &user}); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if gotQuery != "user_id=7" {
		t.Errorf("user filter query = %q", gotQuery)
	}
}

func TestVoteValidatesDirection(t *testing.T) {
	c := NewClient("http://example.invalid")
	if err := c.Vote(context.Background(), 1, 0); err == nil {
		t.Error("dir=0 should be rejected locally")
	}
	if err := c.Vote(context.Background(), 1, 2); err == nil {
		t.Error("dir=2 should be rejected locally")
	}
}

func TestVoteWire(t *testing.T) {
	var gotPath, gotDir string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotDir = r.URL.Query().Get("dir")
	}))
	defer srv.Close()

	if err := NewClient(srv.URL).WithToken("t").Vote(context.Background(), 42, -1); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if gotPath != "/posts/42/vote" || gotDir != "-1" {
		t.Errorf("vote hit %s?dir=%s", gotPath, gotDir)
	}
}

func TestCreateCommentQueryParams(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(Comment{ID: 9, Content: "hi"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL).WithToken("t")
	comment, err := c.CreateComment(context.Background(), 5, "hi ||there||", true)
	if err != nil {
		t.Fatalf("create comment failed: %v", err)
	}
	if comment.ID != 9 {
		t.Errorf("comment = %#v", comment)
	}
	if got := gotQuery["content"]; len(got) != 1 || got[0] != "hi ||there||" {
		t.Errorf("content param = %v", got)
	}
	if got := gotQuery["is_spoiler"]; len(got) != 1 || got[0] != "true" {
		t.Errorf("is_spoiler param = %v", got)
	}
}

func TestUploadImageMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("not multipart: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		if header.Filename != "pic.png" {
			t.Errorf("filename = %q", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("part content type = %q", ct)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "pngbytes" {
			t.Errorf("file body = %q", data)
		}
		io.WriteString(w, `{"url":"https://cdn.example.com/pic.png"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL).WithToken("t")
	url, err := c.UploadImage(context.Background(), "pic.png", "image/png", strings.NewReader("pngbytes"))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if url != "https://cdn.example.com/pic.png" {
		t.Errorf("url = %q", url)
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		ident *Identity
		want  string
	}{
		{&Identity{Username: "alice", Nickname: "Ali"}, "Ali"},
		{&Identity{Username: "alice", Nickname: ""}, "alice"},
		{&Identity{Username: "alice", Nickname: "   "}, "alice"},
		{nil, ""},
	}
	for _, c := range cases {
		if got := c.ident.DisplayName(); got != c.want {
			t.Errorf("DisplayName(%#v) = %q, want %q", c.ident, got, c.want)
		}
	}
}

func TestTimestampParsing(t *testing.T) {
	// The backend emits naive ISO 8601 without a zone.
	cases := []string{
		`"2026-03-14T09:26:53.589793"`,
		`"2026-03-14T09:26:53"`,
		`"2026-03-14T09:26:53Z"`,
	}
	for _, raw := range cases {
		var ts Timestamp
		if err := json.Unmarshal([]byte(raw), &ts); err != nil {
			t.Errorf("unmarshal %s failed: %v", raw, err)
			continue
		}
		if ts.Year() != 2026 || ts.Month() != time.March {
			t.Errorf("parsed %s into %v", raw, ts.Time)
		}
	}

	var zero Timestamp
	if err := json.Unmarshal([]byte("null"), &zero); err != nil {
		t.Errorf("null should parse: %v", err)
	}
	if !zero.IsZero() {
		t.Errorf("null should yield the zero time, got %v", zero.Time)
	}

	var bad Timestamp
	if err := json.Unmarshal([]byte(`"yesterday"`), &bad); err == nil {
		t.Error("garbage timestamp should fail")
	}
}
