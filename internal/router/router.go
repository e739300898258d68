package router

import (
	"github.com/anonto42/future-media/backend/internal/auth"
	"github.com/anonto42/future-media/backend/internal/handlers"
	"github.com/anonto42/future-media/backend/internal/middleware"
	"github.com/anonto42/future-media/backend/internal/services"
	"github.com/anonto42/future-media/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options are the optional parts of the HTTP surface.
type Options struct {
	HealthChecks   map[string]handlers.HealthCheck
	MetricsEnabled bool
}

// SetupRoutes registers every route of the API. Requests under /api/v1 carrying a bearer
// token are authenticated; routes that need a signed-in caller also require one.
func SetupRoutes(e *echo.Echo, svcs *services.Services, tokens *auth.TokenManager, opts Options) {
	health := handlers.NewHealthHandler(opts.HealthChecks)
	e.GET("/health", health.Health)
	if opts.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	authHandler := handlers.NewAuthHandler(svcs.Auth)
	authHandler.RegisterAuthRoutes(e.Group("/api/v1/auth"))

	api := e.Group("/api/v1", middleware.Authenticate(tokens))
	authed := middleware.RequireAuth()

	handlers.NewUserHandler(svcs.Users, svcs.Follows).RegisterUserRoutes(api, authed)
	handlers.NewPostHandler(svcs.Posts).RegisterPostRoutes(api, authed)
	handlers.NewCommentHandler(svcs.Comments).RegisterCommentRoutes(api, authed)
	handlers.NewLikeHandler(svcs.Likes).RegisterLikeRoutes(api, authed)
	handlers.NewSavedPostHandler(svcs.SavedPosts).RegisterSavedPostRoutes(api, authed)
	handlers.NewStoryHandler(svcs.Stories).RegisterStoryRoutes(api, authed)
	handlers.NewReelHandler(svcs.Reels).RegisterReelRoutes(api, authed)
	handlers.NewReactionHandler(svcs.Reactions).RegisterReactionRoutes(api, authed)
	handlers.NewMessageHandler(svcs.Messages).RegisterMessageRoutes(api, authed)
	handlers.NewNotificationHandler(svcs.Notifications).RegisterNotificationRoutes(api, authed)
	handlers.NewActivityHandler(svcs.Activity).RegisterActivityRoutes(api, authed)

	logger.Log.Info("routes configured")
}
