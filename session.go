package main

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"

	"forum-server/internal/forum"
)

// Session keys. The only persisted local state is the bearer credential; it
// survives reloads until explicit logout or validation failure.
const credentialKey = "credential"

var sessionManager *scs.SessionManager

// InitSessionManager configures the scs session store holding the bearer
// credential.
func InitSessionManager(cfg Config) {
	sessionManager = scs.New()
	sessionManager.Lifetime = time.Duration(cfg.SessionHours) * time.Hour
	sessionManager.Cookie.Name = "forum_session"
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Persist = true
}

// currentCredential returns the stored bearer credential, or "" when the
// session is anonymous.
func currentCredential(ctx context.Context) string {
	return sessionManager.GetString(ctx, credentialKey)
}

// storeCredential persists a freshly delivered credential. The session token
// is renewed so a pre-login session cannot be fixated onto the account.
func storeCredential(ctx context.Context, token string) error {
	if err := sessionManager.RenewToken(ctx); err != nil {
		return err
	}
	sessionManager.Put(ctx, credentialKey, token)
	return nil
}

// clearCredential drops the stored credential, synchronously. Used by both
// logout and validation failure; never retried.
func clearCredential(ctx context.Context) {
	sessionManager.Remove(ctx, credentialKey)
}

// CurrentIdentity resolves the session's identity by validating the stored
// credential against the identity endpoint. Anonymous sessions and stale
// credentials both yield nil; a stale credential is cleared on the spot and
// the view state is told the identity went away. Read paths never surface
// this as an error.
func CurrentIdentity(r *http.Request) *forum.Identity {
	ctx := r.Context()
	token := currentCredential(ctx)
	if token == "" {
		return nil
	}

	ident, err := restoreIdentity(ctx, token)
	if err != nil {
		if forum.IsUnauthorized(err) {
			clearCredential(ctx)
			viewStateFor(nil, r).IdentityCleared()
		} else {
			LoggerFromContext(ctx).Warn("identity restore failed", "error", err)
		}
		return nil
	}
	return ident
}

// buildLoginURL constructs the external Google authorization URL. The code
// exchange happens on the backend; the callback delivers a bearer token to
// /auth/callback.
func buildLoginURL(cfg Config) string {
	params := url.Values{}
	params.Set("client_id", cfg.GoogleClientID)
	params.Set("redirect_uri", cfg.OAuthRedirectURI)
	params.Set("response_type", "code")
	params.Set("scope", "email profile")
	params.Set("access_type", "offline")
	params.Set("state", uuid.NewString())
	return "https://accounts.google.com/o/oauth2/v2/auth?" + params.Encode()
}
