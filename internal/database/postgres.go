package database

import (
	"context"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mercatto/marketplace-api/internal/config"
	"github.com/mercatto/marketplace-api/internal/observability"
)

func Open(cfg *config.Config) (*gorm.DB, error) {
	start := time.Now()
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		observability.RecordDatabaseStartupEvent(context.Background(), "open", "error")
		return nil, err
	}
	observability.RecordDatabaseStartupEvent(context.Background(), "open", "success")
	observability.RecordDatabaseStartupDuration(context.Background(), "open", time.Since(start))
	return db, nil
}
