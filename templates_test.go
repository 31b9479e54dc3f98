package main

import (
	"html/template"
	"strings"
	"testing"

	"forum-server/internal/forum"
)

func samplePageData() *PageData {
	board := int64(2)
	return &PageData{
		Title:     "Home",
		User:      &forum.Identity{ID: 1, Username: "alice", Nickname: "Ali"},
		CSRFToken: "tok",
		Boards: []forum.Board{
			{ID: 1, Name: "Anime"},
			{ID: 2, Name: "Games"},
		},
		ActiveBoard: &board,
		Posts: []PostView{
			{
				ID:         10,
				Title:      "First post",
				AuthorName: "Ali",
				BoardName:  "Games",
				Age:        "3h",
				Up:         2,
				BodyHTML:   template.HTML("<p>hello</p>"),
				CanDelete:  true,
				CSRFToken:  "tok",
			},
		},
	}
}

func execute(t *testing.T, tmpl *template.Template, data *PageData) string {
	t.Helper()
	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, "base", data); err != nil {
		t.Fatalf("execute %s failed: %v", tmpl.Name(), err)
	}
	return b.String()
}

func TestPostsPageRenders(t *testing.T) {
	initTemplates()
	out := execute(t, postsPageTmpl, samplePageData())

	if !strings.Contains(out, "First post") {
		t.Error("post title missing")
	}
	if !strings.Contains(out, `href="/posts/10"`) {
		t.Error("post link missing")
	}
	if !strings.Contains(out, "Ali") {
		t.Error("nickname missing")
	}
	// Active board tab carries the active class.
	if !strings.Contains(out, `/view/board?id=2" class="tab active"`) {
		t.Errorf("active tab marker missing:\n%s", out)
	}
	// Logged-in users see the composer and the delete control.
	if !strings.Contains(out, `action="/posts/create"`) {
		t.Error("composer missing for logged-in user")
	}
	if !strings.Contains(out, `action="/posts/delete"`) {
		t.Error("delete control missing for owner")
	}
}

func TestPostsPageAnonymous(t *testing.T) {
	initTemplates()
	data := samplePageData()
	data.User = nil
	data.Posts[0].CanDelete = false
	out := execute(t, postsPageTmpl, data)

	if strings.Contains(out, `action="/posts/create"`) {
		t.Error("composer should be hidden for anonymous visitors")
	}
	if !strings.Contains(out, `href="/login"`) {
		t.Error("login link missing")
	}
}

func TestBackgroundRegionsRender(t *testing.T) {
	initTemplates()
	data := samplePageData()
	data.User.BgLeft = "https://img.example.com/l.png"
	data.User.BgMiddle = "https://img.example.com/m.png"
	data.User.BgRight = "https://img.example.com/r.png"
	out := execute(t, postsPageTmpl, data)

	// All three profile background regions must be visible: middle on the
	// body, left and right as side panels.
	if !strings.Contains(out, `<body style="background-image: url('https://img.example.com/m.png')">`) {
		t.Error("middle background missing from body")
	}
	if !strings.Contains(out, `class="bg-side bg-side-left" style="background-image: url('https://img.example.com/l.png')"`) {
		t.Error("left side panel missing")
	}
	if !strings.Contains(out, `class="bg-side bg-side-right" style="background-image: url('https://img.example.com/r.png')"`) {
		t.Error("right side panel missing")
	}

	data.User = nil
	out = execute(t, postsPageTmpl, data)
	if strings.Contains(out, "bg-side") {
		t.Error("side panels rendered for anonymous visitor")
	}
}

func TestThreadPageRenders(t *testing.T) {
	initTemplates()
	data := samplePageData()
	pv := data.Posts[0]
	data.Post = &pv
	data.Comments = []CommentView{
		{ID: 5, AuthorName: "bob", Age: "1h", BodyHTML: template.HTML("<p>nice</p>")},
	}
	out := execute(t, threadPageTmpl, data)

	if !strings.Contains(out, "1 Comments") {
		t.Error("comment count missing")
	}
	if !strings.Contains(out, "bob") {
		t.Error("comment author missing")
	}
	if !strings.Contains(out, `action="/posts/10/comments"`) {
		t.Error("reply form missing")
	}
}

func TestThreadPageMissingPost(t *testing.T) {
	initTemplates()
	data := samplePageData()
	data.Post = nil
	out := execute(t, threadPageTmpl, data)
	if !strings.Contains(out, "Post not found") {
		t.Error("missing-post notice absent")
	}
}

func TestLoginPageRenders(t *testing.T) {
	initTemplates()
	data := &PageData{
		Title:    "Log in",
		LoginURL: "https://accounts.google.com/o/oauth2/v2/auth?client_id=x",
		LoginQR:  template.URL("data:image/png;base64,AAAA"),
	}
	out := execute(t, loginPageTmpl, data)
	if !strings.Contains(out, "accounts.google.com") {
		t.Error("login URL missing")
	}
	if !strings.Contains(out, "data:image/png;base64,AAAA") {
		t.Error("QR image missing")
	}
}

func TestProfilePageRenders(t *testing.T) {
	initTemplates()
	data := samplePageData()
	data.User.BgLeft = "https://img.example.com/l.png"
	out := execute(t, profilePageTmpl, data)
	if !strings.Contains(out, `name="nickname"`) {
		t.Error("nickname field missing")
	}
	if !strings.Contains(out, "https://img.example.com/l.png") {
		t.Error("background URL value missing")
	}
	if !strings.Contains(out, `action="/upload"`) {
		t.Error("upload form missing")
	}
}
