package templates

// Base template - shared structure for all HTML pages.
// Page templates define "content". The header shows the filter tabs (the
// three filter dimensions live server-side; tabs are plain links to the
// transition endpoints).

func GetBaseTemplates() string {
	return baseTemplate + headerTemplate + footerTemplate
}

var baseTemplate = `{{define "base"}}{{$site := siteConfig}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <meta name="description" content="{{$site.Site.Description}}">
  <title>{{.Title}} - {{$site.Site.Name}}</title>
  <link rel="icon" href="{{$site.Links.Favicon}}">
  <link rel="stylesheet" href="{{$site.Links.Stylesheet}}">
</head>
<body{{if .User}}{{if .User.BgMiddle}} style="background-image: url('{{.User.BgMiddle}}')"{{end}}{{end}}>
  {{if .User}}{{if .User.BgLeft}}<div class="bg-side bg-side-left" style="background-image: url('{{.User.BgLeft}}')"></div>{{end}}{{if .User.BgRight}}<div class="bg-side bg-side-right" style="background-image: url('{{.User.BgRight}}')"></div>{{end}}{{end}}
  <div class="container">
    {{template "header" .}}
    {{if .Flash.Error}}<div class="flash flash-error" role="alert">{{.Flash.Error}}</div>{{end}}
    {{if .Flash.Success}}<div class="flash flash-success" role="status">{{.Flash.Success}}</div>{{end}}
    <main id="main-content">
      {{template "content" .}}
    </main>
    {{template "footer" .}}
  </div>
</body>
</html>{{end}}
`

var headerTemplate = `{{define "header"}}
<header>
  <nav>
    <a href="/" class="site-name">{{(siteConfig).Site.Name}}</a>
    <span class="board-tabs">
      <a href="/view/all" class="tab{{if and (not .ActiveBoard) (not .ScopeMine)}} active{{end}}">All</a>
      {{$active := .ActiveBoard}}{{range .Boards}}<a href="/view/board?id={{.ID}}" class="tab{{if $active}}{{if eq .ID (deref $active)}} active{{end}}{{end}}" title="{{.Description}}">{{.Name}}</a>{{end}}
      {{if .User}}<a href="/view/mine" class="tab{{if .ScopeMine}} active{{end}}">My Posts</a>{{end}}
    </span>
    <span class="nav-user">
      {{if .User}}
      <a href="/profile" class="nav-link">{{displayName .User}}</a>
      <form method="POST" action="/logout" class="inline-form">
        <input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
        <button type="submit" class="ghost-btn">Log out</button>
      </form>
      {{else}}
      <a href="/login" class="btn-primary">Log in</a>
      {{end}}
    </span>
  </nav>
</header>
{{end}}`

var footerTemplate = `{{define "footer"}}
<footer>
<a href="#main-content" class="scroll-top" aria-label="Back to top">↑</a>
</footer>
{{end}}`
