// Package db opens the local sqlite database used for users and portfolios.
package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authentity "github.com/k1300k/smart-stocks/internal/feature/auth/domain/entity"
	portfolioadapters "github.com/k1300k/smart-stocks/internal/feature/portfolio/adapters"
)

// Open opens (or creates) the sqlite database at path and runs migrations.
// Pass ":memory:" for tests.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	if err := db.AutoMigrate(
		&authentity.User{},
		&portfolioadapters.PortfolioModel{},
		&portfolioadapters.HoldingModel{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}
