package routes

import (
	"time"

	"github.com/go-chi/chi/v5"

	engagementHandlers "Skylark/internal/api/handlers/engagement"
	feedHandlers "Skylark/internal/api/handlers/feed"
	threadHandlers "Skylark/internal/api/handlers/thread"
	"Skylark/internal/api/middleware"
	"Skylark/internal/core/engagement"
	"Skylark/internal/core/feeds"
	"Skylark/internal/core/threads"
)

// RegisterFeedViewRoutes registers the engine's XRPC-style endpoints.
func RegisterFeedViewRoutes(
	r chi.Router,
	feedService feeds.Service,
	threadService threads.Service,
	engagementService engagement.Service,
) {
	getFeedHandler := feedHandlers.NewGetFeedHandler(feedService)
	getThreadHandler := threadHandlers.NewGetThreadHandler(threadService)
	toggleLikeHandler := engagementHandlers.NewToggleHandler(engagementService, engagement.KindLike)
	toggleRepostHandler := engagementHandlers.NewToggleHandler(engagementService, engagement.KindRepost)
	createPostHandler := engagementHandlers.NewCreatePostHandler(engagementService)

	// GET /xrpc/app.skylark.feed.getFeed?mode=...&cursor=...
	r.Get("/xrpc/app.skylark.feed.getFeed", getFeedHandler.HandleGetFeed)

	// GET /xrpc/app.skylark.thread.getThread?uri=...
	r.Get("/xrpc/app.skylark.thread.getThread", getThreadHandler.HandleGetThread)

	// Mutations require the server to run with a configured session. They
	// write to the upstream repository, so they sit behind their own rate
	// limit.
	mutationLimiter := middleware.NewRateLimiter(30, time.Minute)
	r.Group(func(r chi.Router) {
		r.Use(mutationLimiter.Middleware)
		r.Post("/xrpc/app.skylark.engagement.toggleLike", toggleLikeHandler.HandleToggle)
		r.Post("/xrpc/app.skylark.engagement.toggleRepost", toggleRepostHandler.HandleToggle)
		r.Post("/xrpc/app.skylark.engagement.createPost", createPostHandler.HandleCreatePost)
	})
}
