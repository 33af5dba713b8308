package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(cfg *config.Config, db api.Pinger, deps api.Dependencies, log logrus.FieldLogger) *gin.Engine {
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORS(cfg.CORSOrigins))

	router.GET("/health", api.HealthCheck(db, log))

	api.SetupAPI(router.Group("/api"), deps, log)

	// Locally stored recipe images; S3 serves its own.
	if cfg.S3BucketName == "" && cfg.MediaDir != "" {
		router.Static("/media", cfg.MediaDir)
	}

	return router
}
