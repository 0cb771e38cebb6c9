package api

import (
	"github.com/labstack/echo/v4"

	"nomod-backend/internal/auth"
	"nomod-backend/internal/config"
	"nomod-backend/internal/database"
)

// Package-level collaborators, wired once at startup.
var (
	authService    *auth.Service
	loginLimiter   *auth.RateLimiter
	userRepo       *database.UserRepo
	sessionRepo    *database.SessionRepo
	postRepo       *database.PostRepo
	categoryRepo   *database.CategoryRepo
	mediaRepo      *database.MediaRepo
	newsletterRepo *database.NewsletterRepo
	analyticsRepo  *database.AnalyticsRepo
	auditRepo      *database.AuditRepo

	mediaDir       string
	maxUploadBytes int64
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(api *echo.Group, authSvc *auth.Service, cfg *config.Config) {
	authService = authSvc
	loginLimiter = auth.NewRateLimiter()
	userRepo = database.NewUserRepo()
	sessionRepo = database.NewSessionRepo()
	postRepo = database.NewPostRepo()
	categoryRepo = database.NewCategoryRepo()
	mediaRepo = database.NewMediaRepo()
	newsletterRepo = database.NewNewsletterRepo()
	analyticsRepo = database.NewAnalyticsRepo()
	auditRepo = database.NewAuditRepo()

	mediaDir = cfg.MediaDir
	maxUploadBytes = cfg.MaxUploadBytes

	// Cross-site mutations are refused before anything else runs.
	api.Use(auth.SameOriginMiddleware())

	// Health check (public)
	api.GET("/health", healthCheck)

	// Auth routes (login is public; the rate limiter runs inside the handler
	// so it can tell failed attempts from successful ones)
	authGroup := api.Group("/auth")
	authGroup.POST("/login", loginHandler)
	authGroup.POST("/logout", logoutHandler)
	authGroup.GET("/session", sessionInfoHandler)
	authGroup.GET("/me", getCurrentUser, auth.RequireAuth(authSvc))

	// Public site surface: newsletter capture and pageview beacons
	api.POST("/newsletter/subscribe", subscribeHandler)
	api.POST("/analytics/pageview", recordPageViewHandler)

	// Admin user management (admin role only)
	users := api.Group("/users")
	users.Use(auth.RequireAuth(authSvc))
	users.Use(auth.RequireAdmin())
	users.GET("", listUsersHandler)
	users.POST("", createUserHandler)
	users.GET("/:id", getUserHandler)
	users.GET("/:id/sessions", listUserSessionsHandler)
	users.PUT("/:id", updateUserHandler)
	users.DELETE("/:id", deleteUserHandler)

	// Content authoring (admins and editors)
	posts := api.Group("/posts")
	posts.Use(auth.RequireAuth(authSvc))
	posts.GET("", listPostsHandler)
	posts.POST("", createPostHandler)
	posts.GET("/:id", getPostHandler)
	posts.GET("/slug/:slug", getPostBySlugHandler)
	posts.PUT("/:id", updatePostHandler)
	posts.DELETE("/:id", deletePostHandler)

	categories := api.Group("/categories")
	categories.Use(auth.RequireAuth(authSvc))
	categories.GET("", listCategoriesHandler)
	categories.POST("", createCategoryHandler)
	categories.PUT("/:id", updateCategoryHandler)
	categories.DELETE("/:id", deleteCategoryHandler)

	// Media library
	media := api.Group("/media")
	media.Use(auth.RequireAuth(authSvc))
	media.GET("", listMediaHandler)
	media.POST("/upload", uploadMediaHandler)
	media.DELETE("/:id", deleteMediaHandler)

	// Newsletter administration
	newsletter := api.Group("/newsletter")
	newsletter.Use(auth.RequireAuth(authSvc))
	newsletter.GET("/subscribers", listSubscribersHandler)
	newsletter.GET("/export", exportSubscribersHandler)
	newsletter.DELETE("/subscribers/:email", deleteSubscriberHandler, auth.RequireAdmin())

	// Analytics dashboard
	analytics := api.Group("/analytics")
	analytics.Use(auth.RequireAuth(authSvc))
	analytics.GET("/stats", analyticsStatsHandler)

	// Audit log (admin only)
	audit := api.Group("/audit")
	audit.Use(auth.RequireAuth(authSvc))
	audit.Use(auth.RequireAdmin())
	audit.GET("", listAuditLogsHandler)
}
