package main

import (
	"net/http"
	"net/url"
)

// Flash message cookie names
const (
	flashSuccessCookie = "flash_success"
	flashErrorCookie   = "flash_error"
)

// setFlashSuccess sets a success flash message cookie
func setFlashSuccess(w http.ResponseWriter, r *http.Request, message string) {
	SetLaxCookie(w, r, flashSuccessCookie, url.QueryEscape(message), 60)
}

// setFlashError sets an error flash message cookie
func setFlashError(w http.ResponseWriter, r *http.Request, message string) {
	SetLaxCookie(w, r, flashErrorCookie, url.QueryEscape(message), 60)
}

// FlashMessages holds success and error messages read from cookies
type FlashMessages struct {
	Success string
	Error   string
}

// getFlashMessages reads and clears flash message cookies.
// Call this once per request, early in the handler.
func getFlashMessages(w http.ResponseWriter, r *http.Request) FlashMessages {
	var messages FlashMessages

	if cookie, err := r.Cookie(flashSuccessCookie); err == nil {
		if decoded, err := url.QueryUnescape(cookie.Value); err == nil {
			messages.Success = decoded
		}
		http.SetCookie(w, &http.Cookie{
			Name:     flashSuccessCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
	}

	if cookie, err := r.Cookie(flashErrorCookie); err == nil {
		if decoded, err := url.QueryUnescape(cookie.Value); err == nil {
			messages.Error = decoded
		}
		http.SetCookie(w, &http.Cookie{
			Name:     flashErrorCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
	}

	return messages
}

// redirectWithSuccess redirects to a URL and sets a success flash message
func redirectWithSuccess(w http.ResponseWriter, r *http.Request, url string, message string) {
	setFlashSuccess(w, r, message)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// redirectWithError redirects to a URL and sets an error flash message
func redirectWithError(w http.ResponseWriter, r *http.Request, url string, message string) {
	setFlashError(w, r, message)
	http.Redirect(w, r, url, http.StatusSeeOther)
}
