package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/linkdex/linkdex/pkg/linkdex/auth"
	"github.com/linkdex/linkdex/pkg/linkdex/config"
	"github.com/linkdex/linkdex/pkg/linkdex/database"
	"github.com/linkdex/linkdex/pkg/linkdex/links"
	"github.com/linkdex/linkdex/pkg/linkdex/models"
	"github.com/linkdex/linkdex/pkg/linkdex/search"
	"github.com/linkdex/linkdex/pkg/linkdex/tags"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "github.com/linkdex/linkdex/api/swagger"
)

// @title Linkdex API
// @version 1.0
// @description A personal bookmark manager with tag-based organization and search.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token. Format: "Bearer {token}"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var handler slog.Handler
	if cfg.AppEnv == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	auth.Configure(cfg.JWTSecret, time.Duration(cfg.JWTExpiryMinutes)*time.Minute)

	if err := database.Connect(cfg.DBPath); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := models.AutoMigrate(database.GetDB()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("Database migrations completed")

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := SetupRouter(database.GetDB())

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exiting")
	return nil
}

// SetupRouter assembles the Gin engine with all routes registered
func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(cors.Default())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"service": "linkdex",
			})
		})

		// Auth routes (public)
		authHandler := auth.NewHandler(db)
		authHandler.RegisterRoutes(api.Group("/auth"))

		bearerAuth := auth.AuthMiddleware(db)

		// Links routes (protected)
		linksHandler := links.NewHandler(db)
		linksHandler.RegisterRoutes(api.Group("", bearerAuth))

		// Tags routes (protected)
		tagsHandler := tags.NewHandler(db)
		tagsHandler.RegisterRoutes(api.Group("", bearerAuth))

		// Search routes (protected)
		searchHandler := search.NewHandler(db)
		searchHandler.RegisterRoutes(api.Group("", bearerAuth))
	}

	return r
}
