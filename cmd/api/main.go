package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	log.WithField("environment", cfg.Environment).Info("starting foodgram API")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db, log); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Rate limiting is skipped when Redis is not configured or unreachable.
	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = database.NewRedisClient(cfg, log)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, recipe rate limiting disabled")
		} else {
			defer redisClient.Close()
		}
	}

	images, err := newImageStore(ctx, cfg, log)
	if err != nil {
		log.Fatalf("Failed to set up image storage: %v", err)
	}

	services := service.NewServices(db.DB, images, cfg.JWTSecret, cfg.TokenTTL, log)
	deps := api.DependenciesFor(services)
	if redisClient != nil {
		deps.CreationLimiter = middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeCreateLimit, cfg.RateLimitWindow, log)
		deps.ModificationLimiter = middleware.NewRecipeModificationRateLimiter(redisClient, cfg.RecipeModifyLimit, cfg.RateLimitWindow, log)
	}

	srv := server.New(cfg, router.SetupRouter(cfg, db, deps, log), log)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case <-ctx.Done():
		log.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown error: %v", err)
	}
	log.Info("Server stopped")
}

// newImageStore uses S3 when a bucket is configured and the local media
// directory otherwise.
func newImageStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (service.ImageStore, error) {
	if cfg.S3BucketName == "" {
		log.WithField("dir", cfg.MediaDir).Info("storing recipe images locally")
		return service.NewLocalImageStore(cfg.MediaDir, "/media"), nil
	}

	s3cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.WithField("bucket", s3cfg.BucketName).Info("storing recipe images in S3")
	return service.NewS3ImageStore(s3cfg, log.WithField("component", "images")), nil
}
