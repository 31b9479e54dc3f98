package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"forum-server/internal/cache"
	"forum-server/internal/forum"
)

// Singleflight groups for deduplicating concurrent requests against the
// upstream API. Boards and identity snapshots are the hot paths: every page
// render wants them, and they rarely change.
var (
	boardsGroup   singleflight.Group
	identityGroup singleflight.Group
)

// Shared infrastructure, wired in main.
var (
	apiClient        *forum.Client
	dataCache        cache.Backend
	cacheConfig      = cache.DefaultConfig()
	cacheBackendType = "memory"
)

// fetchBoards returns the board list, read through the cache with
// singleflight dedup. A fetch failure degrades to an empty list; boards are
// chrome, not content, and the next render retries.
func fetchBoards(ctx context.Context) []forum.Board {
	if data, ok, err := dataCache.Get(ctx, "boards"); err == nil && ok {
		IncrementCacheHit()
		var boards []forum.Board
		if err := json.Unmarshal(data, &boards); err == nil {
			return boards
		}
	}
	IncrementCacheMiss()

	v, err, shared := boardsGroup.Do("boards", func() (interface{}, error) {
		boards, err := apiClient.ListBoards(ctx)
		CountAPICall(err != nil)
		if err != nil {
			return nil, err
		}
		if data, merr := json.Marshal(boards); merr == nil {
			if cerr := dataCache.Set(ctx, "boards", data, cacheConfig.BoardsTTL); cerr != nil {
				slog.Warn("board cache write failed", "error", cerr)
			}
		}
		return boards, nil
	})
	if shared {
		slog.Debug("singleflight: shared board list fetch")
	}
	if err != nil {
		LoggerFromContext(ctx).Warn("board list fetch failed", "error", err)
		return nil
	}
	return v.([]forum.Board)
}

// credentialCacheKey hashes the bearer token so raw credentials never appear
// as cache keys.
func credentialCacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "me:" + hex.EncodeToString(sum[:8])
}

// restoreIdentity validates a credential against GET /users/me, with
// singleflight dedup per credential and a short cache so every page render
// does not hit the identity endpoint. ErrUnauthorized propagates so the
// caller can clear the stored credential.
func restoreIdentity(ctx context.Context, token string) (*forum.Identity, error) {
	key := credentialCacheKey(token)

	if data, ok, err := dataCache.Get(ctx, key); err == nil && ok {
		IncrementCacheHit()
		var ident forum.Identity
		if err := json.Unmarshal(data, &ident); err == nil {
			return &ident, nil
		}
	}
	IncrementCacheMiss()

	v, err, shared := identityGroup.Do(key, func() (interface{}, error) {
		ident, err := apiClient.WithToken(token).Me(ctx)
		CountAPICall(err != nil)
		if err != nil {
			return nil, err
		}
		if data, merr := json.Marshal(ident); merr == nil {
			if cerr := dataCache.Set(ctx, key, data, cacheConfig.IdentityTTL); cerr != nil {
				slog.Warn("identity cache write failed", "error", cerr)
			}
		}
		return ident, nil
	})
	if shared {
		slog.Debug("singleflight: shared identity restore")
	}
	if err != nil {
		return nil, err
	}
	return v.(*forum.Identity), nil
}

// invalidateIdentity drops the cached identity snapshot for a credential,
// used after a profile save so the next render shows the new nickname.
func invalidateIdentity(ctx context.Context, token string) {
	if err := dataCache.Delete(ctx, credentialCacheKey(token)); err != nil {
		slog.Warn("identity cache invalidation failed", "error", err)
	}
}
