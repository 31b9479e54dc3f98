package main

import (
	"net/http"
	"strings"
)

// =============================================================================
// Cookie Helpers
// =============================================================================

// shouldSecureCookie reports whether the Secure flag must be set, based on
// the request's transport (direct TLS or a terminating proxy).
func shouldSecureCookie(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// SetCookie sets an HTTP cookie with standard security defaults.
// Uses the request to determine if the Secure flag should be set.
func SetCookie(w http.ResponseWriter, r *http.Request, name, value, path string, maxAge int, sameSite http.SameSite) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   shouldSecureCookie(r),
		SameSite: sameSite,
	})
}

// SetLaxCookie sets a cookie with lax security (allows cross-site top-level
// navigation). Suitable for flash messages and preferences.
func SetLaxCookie(w http.ResponseWriter, r *http.Request, name, value string, maxAge int) {
	SetCookie(w, r, name, value, "/", maxAge, http.SameSiteLaxMode)
}

// DeleteCookie deletes a cookie by setting MaxAge to -1.
func DeleteCookie(w http.ResponseWriter, r *http.Request, name, path string) {
	SetCookie(w, r, name, "", path, -1, http.SameSiteStrictMode)
}
