package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"forum-server/internal/cache"
	"forum-server/internal/forum"
)

// Request body size limits
const (
	maxBodySize   = 64 * 1024        // 64KB for POST requests
	maxUploadSize = 10 * 1024 * 1024 // 10MB for image uploads
)

// limitBody wraps an HTTP handler to limit request body size
func limitBody(next http.HandlerFunc, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		next(w, r)
	}
}

// securityHeaders wraps an HTTP handler to add security headers
func securityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Content Security Policy - defense in depth against XSS
		// - img-src * data:: uploaded images and the login QR data URL
		// - style-src allows inline styles for user background images
		csp := "default-src 'self'; " +
			"img-src * data:; " +
			"style-src 'self' 'unsafe-inline'; " +
			"script-src 'self'"
		w.Header().Set("Content-Security-Policy", csp)
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next(w, r)
	}
}

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}
	appConfig = cfg

	InitLogger(cfg.LogLevel)
	InitSessionManager(cfg)
	initTemplates()

	switch cfg.CacheBackend {
	case "redis":
		redis, err := cache.NewRedis(cfg.RedisURL, "forum")
		if err != nil {
			slog.Error("redis cache unavailable", "error", err)
			os.Exit(1)
		}
		dataCache = redis
		cacheBackendType = "redis"
	default:
		dataCache = cache.NewMemory(10_000, 5*time.Minute)
		cacheBackendType = "memory"
	}

	apiClient = forum.NewClient(cfg.APIBaseURL)

	startViewReaper(2 * time.Hour)

	mux := http.NewServeMux()

	mux.HandleFunc("/", securityHeaders(homeHandler))
	mux.HandleFunc("/view/all", securityHeaders(viewAllHandler))
	mux.HandleFunc("/view/board", securityHeaders(viewBoardHandler))
	mux.HandleFunc("/view/mine", securityHeaders(viewMineHandler))
	mux.HandleFunc("/posts/", securityHeaders(limitBody(postDetailHandler, maxBodySize)))
	mux.HandleFunc("/posts/create", securityHeaders(limitBody(postCreateHandler, maxBodySize)))
	mux.HandleFunc("/posts/delete", securityHeaders(limitBody(postDeleteHandler, maxBodySize)))
	mux.HandleFunc("/posts/vote", securityHeaders(limitBody(voteHandler, maxBodySize)))
	mux.HandleFunc("/profile", securityHeaders(limitBody(profileHandler, maxBodySize)))
	mux.HandleFunc("/upload", securityHeaders(limitBody(uploadHandler, maxUploadSize)))
	mux.HandleFunc("/login", securityHeaders(loginHandler))
	mux.HandleFunc("/auth/callback", securityHeaders(authCallbackHandler))
	mux.HandleFunc("/logout", securityHeaders(limitBody(logoutHandler, maxBodySize)))
	mux.HandleFunc("/spoiler/toggle", securityHeaders(spoilerToggleHandler))
	mux.HandleFunc("/spoiler/whole", securityHeaders(spoilerWholeHandler))
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/metrics", metricsHandler)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	handler := RequestLoggingMiddleware(sessionManager.LoadAndSave(mux))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server starting", "port", cfg.Port, "api", cfg.APIBaseURL, "cache", cacheBackendType)
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
