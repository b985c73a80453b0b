package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "resumebuilder/docs"
	"resumebuilder/internal/config"
	"resumebuilder/internal/handlers"
	"resumebuilder/internal/models"
	"resumebuilder/internal/pdf"
	"resumebuilder/internal/repositories"
	"resumebuilder/internal/routes"
	"resumebuilder/internal/services"
	"resumebuilder/internal/storage"
	"resumebuilder/migrations"
)

func Run() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Logger = logger

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close database")
		}
	}()
	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("database is unreachable")
	}
	if err := migrations.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	resumeRepo := repositories.NewResumeRepository(db)
	templateRepo := repositories.NewTemplateRepository(db)

	// === Services ===
	authService := services.NewAuthService(cfg.Auth)
	emailService := services.NewEmailService(cfg.Email)
	userService := services.NewUserService(userRepo, emailService, authService, cfg.Auth.ResetTokenTTL, logger)

	pdfGen := pdf.NewGenerator()

	// Photo store is optional: without an endpoint the profile photo upload
	// responds with an error but everything else works.
	var photoStore storage.PhotoStore
	if cfg.Photos.Endpoint != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		photoStore, err = storage.NewPhotoStore(ctx, cfg.Photos)
		cancel()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect photo store")
		}
	} else {
		logger.Warn().Msg("photo store not configured, photo uploads disabled")
	}

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, authService, logger)
	userHandler := handlers.NewUserHandler(userService, authService, photoStore, logger)
	resumeHandler := handlers.NewResumeHandler(resumeRepo, pdfGen, logger)
	templateHandler := handlers.NewResource[models.Template](templateRepo)
	adminUserHandler := handlers.NewResource[models.User](userRepo)

	// === Gin ===
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		authService,
		userService,
		authHandler,
		userHandler,
		resumeHandler,
		templateHandler,
		adminUserHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info().Str("addr", listenAddr).Msg("server listening")
	if err := router.Run(listenAddr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
