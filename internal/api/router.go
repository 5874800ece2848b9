package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/CodingKingM/relay/internal/auth"
	"github.com/CodingKingM/relay/internal/cache"
	"github.com/CodingKingM/relay/internal/db"
	"github.com/CodingKingM/relay/internal/service"
	"github.com/CodingKingM/relay/pkg/config"
	"github.com/CodingKingM/relay/pkg/logging"
)

// Router wires the REST routes to the core services
type Router struct {
	identity *service.IdentityService
	relation *service.RelationService
	content  *service.ContentService
	reaction *service.ReactionService
	feed     *service.FeedService
	sessions *auth.SessionStore
	cfg      *config.Config
	database *db.DB
	cache    *cache.Cache
	logger   *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(database *db.DB, redisCache *cache.Cache, cfg *config.Config) *Router {
	cascade := service.NewCascadeService()

	return &Router{
		identity: service.NewIdentityService(database, cascade),
		relation: service.NewRelationService(database),
		content:  service.NewContentService(database, cascade),
		reaction: service.NewReactionService(database),
		feed:     service.NewFeedService(database),
		sessions: auth.NewSessionStore(redisCache, cfg.Session.TTL),
		cfg:      cfg,
		database: database,
		cache:    redisCache,
		logger:   logging.GetLogger().With(zap.String("component", "api-router")),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	users := engine.Group("/api/users")
	{
		users.POST("/register", r.register)
		users.POST("/login", r.login)
		users.POST("/logout", r.requireAuth(), r.logout)

		users.GET("/search", r.optionalAuth(), r.searchUsers)
		users.GET("/me", r.requireAuth(), r.getCurrentUser)
		users.PUT("/me", r.requireAuth(), r.updateCurrentUser)
		users.DELETE("/me", r.requireAuth(), r.deleteCurrentUser)

		users.GET("/:username", r.optionalAuth(), r.getUser)
		users.GET("/:username/followers", r.optionalAuth(), r.listFollowers)
		users.GET("/:username/following", r.optionalAuth(), r.listFollowing)

		users.POST("/:username/follow", r.requireAuth(), r.follow)
		users.DELETE("/:username/follow", r.requireAuth(), r.unfollow)
		users.GET("/:username/follow", r.requireAuth(), r.isFollowing)
	}

	posts := engine.Group("/api/posts")
	{
		posts.POST("", r.requireAuth(), r.createPost)
		posts.GET("/timeline", r.requireAuth(), r.timeline)
		posts.GET("/user/:username", r.optionalAuth(), r.userPosts)
		posts.DELETE("/:postId", r.requireAuth(), r.deletePost)

		posts.POST("/:postId/like", r.requireAuth(), r.likePost)
		posts.DELETE("/:postId/like", r.requireAuth(), r.unlikePost)

		posts.GET("/:postId/comments", r.optionalAuth(), r.listComments)
		posts.POST("/:postId/comments", r.requireAuth(), r.addComment)
		posts.DELETE("/comments/:commentId", r.requireAuth(), r.deleteComment)
	}
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "OK",
		"service": "relay-api",
	})
}
