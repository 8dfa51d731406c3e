package database

import (
	"fmt"
	"log/slog"

	"portal/internal/config"
	"portal/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(cfg config.DBConfig, production bool) (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}
	if production {
		gormCfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

// Migrate creates or updates the portal tables. Roles come first so users can reference them.
func Migrate(db *gorm.DB, log *slog.Logger) error {
	err := db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.ProductCategory{},
		&model.Product{},
		&model.Bulletin{},
		&model.RefreshToken{},
		&model.ContactSubmission{},
		&model.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	log.Info("database schema migrated")
	return nil
}
