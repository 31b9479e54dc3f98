package templates

// Post detail page: the post itself, its comments in arrival order, and a
// reply form. Comments are append-only; there is no edit or delete surface.

func GetThreadTemplate() string {
	return threadTemplate + commentTemplate
}

var threadTemplate = `{{define "content"}}
{{if .Post}}
<article class="post-full">
  <h1 class="post-title">{{.Post.Title}}</h1>
  <div class="post-meta">
    <span class="author">{{.Post.AuthorName}}</span>
    {{if .Post.BoardName}}<span class="board-chip">{{.Post.BoardName}}</span>{{end}}
    <span class="age">{{.Post.Age}}</span>
    {{if .Post.SpoilerTagged}}<span class="spoiler-chip">spoiler</span>{{end}}
  </div>
  <div class="post-body">{{.Post.BodyHTML}}</div>
  <div class="post-actions">
    <form method="POST" action="/posts/vote" class="inline-form">
      <input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
      <input type="hidden" name="post_id" value="{{.Post.ID}}">
      <input type="hidden" name="dir" value="1">
      <button type="submit" class="vote-btn" aria-label="Upvote">▲ {{.Post.Up}}</button>
    </form>
    <form method="POST" action="/posts/vote" class="inline-form">
      <input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
      <input type="hidden" name="post_id" value="{{.Post.ID}}">
      <input type="hidden" name="dir" value="-1">
      <button type="submit" class="vote-btn" aria-label="Downvote">▼ {{.Post.Down}}</button>
    </form>
    {{if .Post.CanDelete}}
    <form method="POST" action="/posts/delete" class="inline-form">
      <input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
      <input type="hidden" name="post_id" value="{{.Post.ID}}">
      <button type="submit" class="ghost-btn danger">Delete</button>
    </form>
    {{end}}
  </div>
</article>

<section class="comments" id="comments">
  <h2>{{len .Comments}} Comments</h2>
  {{if .User}}
  <form method="POST" action="/posts/{{.Post.ID}}/comments" class="comment-form">
    <input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
    <textarea name="content" rows="3" placeholder="Add a comment" required></textarea>
    <div class="composer-row">
      <label class="check"><input type="checkbox" name="is_spoiler" value="1"> Spoiler</label>
      <button type="submit" class="btn-primary">Reply</button>
    </div>
  </form>
  {{else}}
  <p class="notice"><a href="/login">Log in</a> to comment.</p>
  {{end}}
  {{range .Comments}}{{template "comment" .}}{{end}}
</section>
{{else}}
<div class="notice notice-error">Post not found. <a href="/">Back</a></div>
{{end}}
{{end}}
`

var commentTemplate = `{{define "comment"}}
<div class="comment" id="comment-{{.ID}}">
  <div class="comment-meta">
    <span class="author">{{.AuthorName}}</span>
    <span class="age">{{.Age}}</span>
  </div>
  <div class="comment-body">{{.BodyHTML}}</div>
</div>
{{end}}`
