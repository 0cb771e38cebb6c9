package main

import (
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"nomod-backend/internal/api"
	"nomod-backend/internal/auth"
	"nomod-backend/internal/config"
	"nomod-backend/internal/database"
	"nomod-backend/internal/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Initializing database at %s", cfg.DBPath)
	if err := database.Open(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	if err := seedDefaultAdmin(cfg); err != nil {
		log.Printf("Warning: failed to seed default admin: %v", err)
	}

	// Pageviews older than a year carry no value for the stats dashboard.
	if pruned, err := database.NewAnalyticsRepo().DeleteOlderThan(time.Now().AddDate(-1, 0, 0)); err != nil {
		log.Printf("Warning: failed to prune old pageviews: %v", err)
	} else if pruned > 0 {
		log.Printf("Pruned %d pageviews older than one year", pruned)
	}

	authSvc := auth.NewService(cfg.AuthSecret, cfg.IsProduction())

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	apiGroup := e.Group("/api")
	api.RegisterRoutes(apiGroup, authSvc, cfg)

	// Uploaded assets are served read-only from the media directory.
	e.Static("/media", cfg.MediaDir)

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"service": "nomod-backend"})
	})

	log.Printf("Starting nomod backend on port %s", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

// seedDefaultAdmin creates the first admin account when the users table is
// empty. Requires the default credentials to be configured; without them the
// instance starts with no way to log in, so we warn loudly.
func seedDefaultAdmin(cfg *config.Config) error {
	userRepo := database.NewUserRepo()

	count, err := userRepo.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if cfg.DefaultAdminPassword == "" {
		log.Println("No users exist and NOMOD_ADMIN_PASSWORD is not set; skipping admin seed")
		return nil
	}
	if len(cfg.DefaultAdminPassword) < 8 {
		log.Println("NOMOD_ADMIN_PASSWORD is shorter than 8 characters; skipping admin seed")
		return nil
	}

	log.Printf("Creating default admin user %s - change this password after first login", cfg.DefaultAdminEmail)

	hash, salt, err := auth.HashPassword(cfg.DefaultAdminPassword, "")
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:        cfg.DefaultAdminEmail,
		Name:         "Administrator",
		Role:         models.RoleAdmin,
		PasswordHash: hash,
		PasswordSalt: salt,
		IsActive:     true,
	}

	return userRepo.Create(admin)
}
