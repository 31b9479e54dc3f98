package templates

// Profile page: nickname and the three background image slots, plus an
// image upload form that flashes back a ready-to-paste markdown snippet.

func GetProfileTemplate() string {
	return profileTemplate
}

var profileTemplate = `{{define "content"}}
<section class="profile">
  <h1>Profile</h1>
  <div class="profile-identity">
    <span class="username">@{{.User.Username}}</span>
    <span class="email">{{.User.Email}}</span>
  </div>

  <form method="POST" action="/profile" class="profile-form">
    <input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
    <label>
      Nickname
      <input type="text" name="nickname" value="{{.User.Nickname}}" maxlength="60" placeholder="Shown instead of your username">
    </label>
    <fieldset>
      <legend>Background images</legend>
      <label>Left <input type="url" name="bg_left" value="{{.User.BgLeft}}" placeholder="https://"></label>
      <label>Middle <input type="url" name="bg_middle" value="{{.User.BgMiddle}}" placeholder="https://"></label>
      <label>Right <input type="url" name="bg_right" value="{{.User.BgRight}}" placeholder="https://"></label>
    </fieldset>
    <button type="submit" class="btn-primary">Save</button>
  </form>

  <section class="upload">
    <h2>Upload image</h2>
    <form method="POST" action="/upload" enctype="multipart/form-data">
      <input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
      <input type="file" name="file" accept="image/*" required>
      <button type="submit">Upload</button>
    </form>
    <p class="hint">On success the image URL is shown as a markdown snippet you can paste into a post.</p>
  </section>
</section>
{{end}}
`
