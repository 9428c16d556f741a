package routes

import (
	"net/http"
	"strings"
	"time"

	"sociomate/auth"
	"sociomate/handlers"
	"sociomate/logging"
	"sociomate/metrics"
	"sociomate/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Options struct {
	CORSOrigins    []string
	UploadDir      string // served under /uploads when set
	MaxUploadBytes int64
}

func SetupRouter(h *handlers.Handler, tokens *auth.Tokens, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), logging.RequestLogger(), metrics.Middleware())

	router.Use(cors.New(corsConfig(opts.CORSOrigins)))

	router.GET("/api/health", handlers.Health)
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	router.GET("/metrics", metrics.Handler())

	if opts.UploadDir != "" {
		router.Static("/uploads", opts.UploadDir)
	}

	// Public routes
	public := router.Group("/api/auth")
	public.POST("/register", h.Register)
	public.POST("/login", h.Login)

	api := router.Group("/api", middleware.Authenticate(tokens))

	posts := api.Group("/posts")
	posts.GET("", h.GetPosts)
	posts.POST("", middleware.LimitBody(opts.MaxUploadBytes), h.CreatePost)
	posts.GET("/user/:userId", h.GetUserPosts)
	posts.PUT("/:id/like", h.LikePost)
	posts.POST("/:id/comment", h.CommentOnPost)
	posts.DELETE("/:id", h.DeletePost)
	posts.DELETE("/:id/comments/:commentId", h.DeleteComment)

	users := api.Group("/users")
	users.GET("/profile/:id", h.GetProfile)
	users.PUT("/profile", middleware.LimitBody(opts.MaxUploadBytes), h.UpdateProfile)
	users.PUT("/:id/follow", h.FollowUser)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "Endpoint not found",
				"path":    c.Request.URL.Path,
			})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})

	return router
}

// corsConfig allows the listed origins with credentials. No origins, or a
// lone "*", opens CORS to everyone without credentials.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With", logging.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Type", logging.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
