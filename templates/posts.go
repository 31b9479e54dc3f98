package templates

// Post list page (the home view). Shows the composer when logged in, then
// the post cards for whatever filter is currently selected.

func GetPostsTemplate() string {
	return postsTemplate + postCardTemplate
}

var postsTemplate = `{{define "content"}}
{{if .User}}
<section class="composer">
  <form method="POST" action="/posts/create">
    <input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
    <input type="text" name="title" placeholder="Title" required maxlength="300">
    <textarea name="content" rows="4" placeholder="Write something. Wrap spoilers in ||double pipes||." required></textarea>
    <div class="composer-row">
      <select name="board_id">
        {{$active := .ActiveBoard}}{{range .Boards}}<option value="{{.ID}}"{{if $active}}{{if eq .ID (deref $active)}} selected{{end}}{{end}}>{{.Name}}</option>{{end}}
      </select>
      <label class="check"><input type="checkbox" name="is_spoiler" value="1"> Spoiler post</label>
      <button type="submit" class="btn-primary">Post</button>
    </div>
  </form>
</section>
{{end}}

{{if .ListError}}
<div class="notice notice-error">
  Could not load posts. <a href="{{.RetryHref}}">Retry</a>
</div>
{{else if not .Posts}}
<div class="notice">No posts here yet.</div>
{{else}}
<section class="post-list">
  {{range .Posts}}{{template "post-card" .}}{{end}}
</section>
{{end}}
{{end}}
`

var postCardTemplate = `{{define "post-card"}}
<article class="post-card">
  <div class="vote-col">
    <form method="POST" action="/posts/vote" class="inline-form">
      <input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
      <input type="hidden" name="post_id" value="{{.ID}}">
      <input type="hidden" name="dir" value="1">
      <button type="submit" class="vote-btn" aria-label="Upvote">▲ {{.Up}}</button>
    </form>
    <form method="POST" action="/posts/vote" class="inline-form">
      <input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
      <input type="hidden" name="post_id" value="{{.ID}}">
      <input type="hidden" name="dir" value="-1">
      <button type="submit" class="vote-btn" aria-label="Downvote">▼ {{.Down}}</button>
    </form>
  </div>
  <div class="post-main">
    <h2 class="post-title"><a href="/posts/{{.ID}}">{{.Title}}</a></h2>
    <div class="post-meta">
      <span class="author">{{.AuthorName}}</span>
      {{if .BoardName}}<span class="board-chip">{{.BoardName}}</span>{{end}}
      <span class="age">{{.Age}}</span>
      {{if .SpoilerTagged}}<span class="spoiler-chip">spoiler</span>{{end}}
      <a href="/posts/{{.ID}}" class="comment-link">comments</a>
    </div>
    <div class="post-body">{{.BodyHTML}}</div>
    {{if .CanDelete}}
    <form method="POST" action="/posts/delete" class="inline-form">
      <input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
      <input type="hidden" name="post_id" value="{{.ID}}">
      <button type="submit" class="ghost-btn danger">Delete</button>
    </form>
    {{end}}
  </div>
</article>
{{end}}`
