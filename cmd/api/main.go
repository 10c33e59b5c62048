package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"savelog/internal/blobstore"
	"savelog/internal/config"
	"savelog/internal/database"
	"savelog/internal/metrics"
	"savelog/internal/middleware"
	"savelog/internal/modules/auth"
	"savelog/internal/modules/logs"
	"savelog/internal/pkg/token"
	"savelog/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	blobs, err := blobstore.New(cfg.LogsDir)
	if err != nil {
		log.Fatal(err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	userRepo := repository.NewUserRepository(db)
	logRepo := repository.NewLogRepository(db)

	tokens := token.New()

	authService := auth.NewService(userRepo, tokens)
	authHandler := auth.NewHandler(authService)

	logService := logs.NewService(logRepo, blobs, cfg.BaseURL, m)
	logHandler := logs.NewHandler(logService)

	r := gin.Default()
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// public
	authHandler.RegisterRoutes(&r.RouterGroup)
	logHandler.RegisterPublicRoutes(&r.RouterGroup)

	// token optional: anonymous callers allowed, private access decided downstream
	optional := r.Group("/")
	optional.Use(middleware.OptionalAuth(authService))
	logHandler.RegisterOptionalAuthRoutes(optional)

	// token required
	protected := r.Group("/")
	protected.Use(middleware.RequireAuth(authService))
	logHandler.RegisterProtectedRoutes(protected)

	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}
