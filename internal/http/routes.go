package http

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/sujalbistaa/whisphaven/internal/config"
	"github.com/sujalbistaa/whisphaven/internal/logging"
	"github.com/sujalbistaa/whisphaven/internal/ws"
)

const limiterCleanupInterval = 10 * time.Minute

// SetupRoutes configures all application routes and middleware. Background
// work started here stops when ctx is done.
func SetupRoutes(ctx context.Context, router *gin.Engine, env *Env, hub *ws.Hub, cfg *config.Config) {
	env.Log = logging.OrNop(env.Log)

	// --- Middleware ---
	router.Use(logging.GinLogger(env.Log))
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: cfg.CORSOrigin != "*",
	}))

	// --- Rate Limiter Setup ---
	limiter := NewIPRateLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	go limiter.RunCleanup(ctx, limiterCleanupInterval)
	limited := RateLimitMiddleware(limiter)

	// --- API Routes ---
	api := router.Group("/api", OptionalAuth(env.Tokens, env.Identity))
	{
		api.POST("/auth/login", env.Login)
		api.POST("/auth/logout", RequireAuth(), env.Logout)

		api.GET("/me", RequireAuth(), env.Me)
		api.POST("/me/incognito", RequireAuth(), env.ToggleIncognito)
		api.DELETE("/me", RequireAuth(), env.DeleteAccount)

		api.GET("/posts", env.GetPosts)
		api.GET("/users/:id/posts", env.GetUserPosts)
		api.POST("/posts", limited, env.CreatePost)
		api.GET("/posts/:id", env.GetPost)
		api.DELETE("/posts/:id", env.DeletePost)
		api.POST("/posts/:id/flag", env.FlagPost)
		api.POST("/posts/:id/like", env.ToggleLike)
		api.POST("/posts/:id/reactions", RequireAuth(), env.AddReaction)

		api.GET("/posts/:id/comments", env.GetComments)
		api.POST("/posts/:id/comments", limited, env.AddComment)
		api.DELETE("/comments/:id", env.DeleteComment)
	}

	if cfg.AdminToken != "" {
		admin := router.Group("/api/admin", AdminAuthMiddleware(cfg.AdminToken))
		admin.POST("/reset", env.ResetFeed)
	}

	// --- WebSocket Route ---
	router.GET("/ws", func(c *gin.Context) {
		ws.ServeWs(hub, c.Writer, c.Request)
	})
}
