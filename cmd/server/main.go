package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/bluesky-social/indigo/xrpc"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"Skylark/internal/api/routes"
	"Skylark/internal/atproto/appview"
	"Skylark/internal/core/engagement"
	"Skylark/internal/core/feeds"
	"Skylark/internal/core/threads"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	// AppView configuration
	host := os.Getenv("APPVIEW_HOST")
	if host == "" {
		host = appview.DefaultHost
	}

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8090"
	}

	// Session handling is outside this service; an already-issued access
	// token can be injected for authenticated modes and mutations.
	var auth *xrpc.AuthInfo
	if did := os.Getenv("SESSION_DID"); did != "" {
		auth = &xrpc.AuthInfo{
			Did:       did,
			Handle:    os.Getenv("SESSION_HANDLE"),
			AccessJwt: os.Getenv("SESSION_ACCESS_JWT"),
		}
	}

	client := appview.NewClient(host, auth, logger)

	feedService := feeds.NewService(client, logger)
	threadService := threads.NewService(client, logger)
	engagementService := engagement.NewService(client, logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)

	routes.RegisterFeedViewRoutes(r, feedService, threadService, engagementService)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	logger.Info("server listening", "addr", addr, "appview", host, "authenticated", auth != nil)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
