package main

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"forum-server/internal/forum"
	"forum-server/internal/util"
	"forum-server/templates"
)

// PageData is the shared template payload. Page-specific fields stay nil
// for pages that do not use them.
type PageData struct {
	Title       string
	User        *forum.Identity
	Flash       FlashMessages
	CSRFToken   string
	Boards      []forum.Board
	ActiveBoard *int64
	ScopeMine   bool
	Posts       []PostView
	ListError   bool
	RetryHref   string
	Post        *PostView
	Comments    []CommentView
	LoginURL    string
	LoginQR     template.URL
}

// PostView wraps a post with everything the templates need pre-computed.
type PostView struct {
	ID            int64
	Title         string
	BodyHTML      template.HTML
	AuthorName    string
	BoardName     string
	Age           string
	Up            int
	Down          int
	SpoilerTagged bool
	CanDelete     bool
	CSRFToken     string
}

type CommentView struct {
	ID         int64
	AuthorName string
	Age        string
	BodyHTML   template.HTML
}

var (
	postsPageTmpl   *template.Template
	threadPageTmpl  *template.Template
	profilePageTmpl *template.Template
	loginPageTmpl   *template.Template
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"siteConfig":  GetSiteConfig,
		"displayName": func(u *forum.Identity) string { return u.DisplayName() },
		"deref":       func(p *int64) int64 { return *p },
		"relTime":     func(t time.Time) string { return util.RelTime(t, time.Now()) },
		"truncate":    util.Truncate,
	}
}

func initTemplates() {
	funcs := templateFuncs()
	base := templates.GetBaseTemplates()
	postsPageTmpl = util.MustCompileTemplate("posts", funcs, base+templates.GetPostsTemplate())
	threadPageTmpl = util.MustCompileTemplate("thread", funcs, base+templates.GetThreadTemplate())
	profilePageTmpl = util.MustCompileTemplate("profile", funcs, base+templates.GetProfileTemplate())
	loginPageTmpl = util.MustCompileTemplate("login", funcs, base+templates.GetLoginTemplate())
}

func renderPage(w http.ResponseWriter, r *http.Request, tmpl *template.Template, data *PageData) {
	if data.Flash.Success == "" && data.Flash.Error == "" {
		data.Flash = getFlashMessages(w, r)
	}

	var buf strings.Builder
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		LoggerFromContext(r.Context()).Error("template render failed", "template", tmpl.Name(), "error", err)
		util.RespondInternalError(w, "something went wrong")
		return
	}
	util.WriteHTML(w, buf.String())
}
