package database

import (
	"context"
	"fmt"

	"github.com/pageza/foodgram/backend/internal/database/migrations"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

// Migrate brings the schema up to date. Postgres runs the embedded goose
// migrations; sqlite, used for development and tests, is auto-migrated
// from the models.
func Migrate(ctx context.Context, db *DB, log logrus.FieldLogger) error {
	if db.Dialector.Name() == "sqlite" {
		log.Info("Using GORM auto-migration for SQLite")
		if err := db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
		return nil
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	setupGoose(log)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Rollback reverts the latest postgres migration.
func Rollback(ctx context.Context, db *DB, log logrus.FieldLogger) error {
	if db.Dialector.Name() == "sqlite" {
		log.Info("Dropping all tables for SQLite")
		migrator := db.WithContext(ctx).Migrator()
		if err := migrator.DropTable("recipe_tags"); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
		tables := models.All()
		for i := len(tables) - 1; i >= 0; i-- {
			if err := migrator.DropTable(tables[i]); err != nil {
				return fmt.Errorf("failed to drop table: %w", err)
			}
		}
		return nil
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	setupGoose(log)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.DownContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

func setupGoose(log logrus.FieldLogger) {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(log)
}
