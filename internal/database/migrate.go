package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mercatto/marketplace-api/internal/domain"
	"github.com/mercatto/marketplace-api/internal/observability"
)

func Migrate(db *gorm.DB) error {
	start := time.Now()
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Product{},
		&domain.Session{},
	)
	status := "success"
	if err != nil {
		status = "error"
	}
	observability.RecordDatabaseStartupEvent(context.Background(), "migrate", status)
	observability.RecordDatabaseStartupDuration(context.Background(), "migrate", time.Since(start))
	return err
}
