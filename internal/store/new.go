package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nguyentantai21042004/protocol-flow/internal/logger"
)

type implRepository struct {
	db *gorm.DB
	l  logger.Logger
}

// New returns a Repository over an opened database.
func New(db *gorm.DB, l logger.Logger) Repository {
	return &implRepository{db: db, l: l}
}

// Open connects to the SQLite database at path and migrates the schema.
// ":memory:" opens a private in-memory database.
func Open(ctx context.Context, path string, l logger.Logger) (*gorm.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: newGormLogger(l),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	// SQLite allows a single writer; one connection also keeps an in-memory
	// database shared across queries.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	for _, model := range allModels() {
		if err := db.WithContext(ctx).AutoMigrate(model); err != nil {
			return nil, fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	l.Info(ctx, "Database ready at %s", path)
	return db, nil
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
