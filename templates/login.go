package templates

// Login page. The actual Google exchange happens on the API backend; we
// only send the browser to the authorize URL and show a QR for phones.

func GetLoginTemplate() string {
	return loginTemplate
}

var loginTemplate = `{{define "content"}}
<section class="login">
  <h1>Log in</h1>
  <p>Sign in with your Google account. You will be sent back here once the
  backend has issued a token.</p>
  <a href="{{.LoginURL}}" class="btn-primary btn-google" rel="nofollow">Continue with Google</a>
  {{if .LoginQR}}
  <div class="login-qr">
    <p>Or scan to log in on another device:</p>
    <img src="{{.LoginQR}}" alt="Login QR code" width="256" height="256">
  </div>
  {{end}}
</section>
{{end}}
`
