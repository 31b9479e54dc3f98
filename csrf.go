package main

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// CSRF tokens protect the POST actions (create, delete, vote, comment,
// profile, logout, upload). A token is an HMAC-signed timestamp bound to
// the view-state session cookie, so it stops verifying when the session
// is reaped or the cookie changes. Wire format: "<unix-seconds>.<base64 hmac>".

const csrfTokenMaxAge = time.Hour

var (
	csrfSecret     []byte
	csrfSecretOnce sync.Once
)

func getCSRFSecret() []byte {
	csrfSecretOnce.Do(func() {
		if s := os.Getenv("CSRF_SECRET"); s != "" {
			csrfSecret = []byte(s)
			return
		}
		// No secret configured: generate one per process. Tokens issued
		// before a restart stop verifying, which only costs a form reload.
		csrfSecret = make([]byte, 32)
		if _, err := rand.Read(csrfSecret); err != nil {
			panic("csrf secret: " + err.Error())
		}
	})
	return csrfSecret
}

// csrfSessionID is the per-session key input for token signing: the vsid
// cookie value, or empty for a request that has none yet.
func csrfSessionID(r *http.Request) string {
	if c, err := r.Cookie(vsidCookie); err == nil {
		return c.Value
	}
	return ""
}

// generateCSRFToken issues a token bound to the given session ID.
func generateCSRFToken(sessionID string) string {
	now := time.Now().Unix()
	return fmt.Sprintf("%d.%s", now, signCSRF(sessionID, now))
}

// validateCSRFToken reports whether token was issued for sessionID within
// the max age. Comparison is constant-time.
func validateCSRFToken(sessionID, token string) bool {
	issued, sig, ok := strings.Cut(token, ".")
	if !ok {
		return false
	}
	ts, err := strconv.ParseInt(issued, 10, 64)
	if err != nil {
		return false
	}
	if time.Now().Unix()-ts > int64(csrfTokenMaxAge.Seconds()) {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(signCSRF(sessionID, ts)))
}

func signCSRF(sessionID string, ts int64) string {
	h := hmac.New(sha256.New, getCSRFSecret())
	fmt.Fprintf(h, "%s.%d", sessionID, ts)
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}

// requireCSRF validates the csrf_token form value of a POST action.
// Returns false after responding; callers must bail out.
func requireCSRF(w http.ResponseWriter, r *http.Request) bool {
	if !validateCSRFToken(csrfSessionID(r), r.FormValue("csrf_token")) {
		LoggerFromContext(r.Context()).Warn("csrf validation failed", "path", r.URL.Path)
		redirectWithError(w, r, "/", "Your session expired, please try again")
		return false
	}
	return true
}
