package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/sifan077/blt/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultGormConnLifetime = 5 * time.Minute

// NewGorm returns a gorm.DB used for schema migration and transactional event writes.
func NewGorm(cfg config.PostgresConfig) (*gorm.DB, error) {
	dsn := ConnString(cfg)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Warn),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: open gorm connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres: retrieve sql db: %w", err)
	}

	if cfg.MaxConns > 0 {
		sqlDB.SetMaxOpenConns(int(cfg.MaxConns))
	}
	if cfg.MinConns > 0 {
		sqlDB.SetMaxIdleConns(int(cfg.MinConns))
	}
	sqlDB.SetConnMaxLifetime(parseDuration(cfg.MaxConnLifetime, defaultGormConnLifetime))
	if idle := parseDuration(cfg.MaxConnIdleTime, 0); idle > 0 {
		sqlDB.SetConnMaxIdleTime(idle)
	}

	return db, nil
}

// AutoMigrate creates or updates the tracking schema for the provided models.
func AutoMigrate(ctx context.Context, db *gorm.DB, models ...interface{}) error {
	if db == nil || len(models) == 0 {
		return nil
	}

	if err := db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("postgres: auto migrate: %w", err)
	}

	return nil
}
