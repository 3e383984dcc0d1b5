// Package adapters provides the persistence layer for the portfolio feature.
package adapters

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/k1300k/smart-stocks/internal/feature/portfolio/codec"
	"github.com/k1300k/smart-stocks/internal/feature/portfolio/domain/entity"
	"github.com/k1300k/smart-stocks/internal/feature/portfolio/usecase"
)

// schemaVersionCurrent tags rows written in the dual-currency shape.
// Version 1 rows carry a single price pair plus a currency column and are
// migrated on load.
const schemaVersionCurrent = 2

// PortfolioModel is the gorm row for a portfolio aggregate.
type PortfolioModel struct {
	ID            string         `gorm:"primaryKey;size:36"`
	UserID        uint           `gorm:"uniqueIndex;not null"`
	Name          string         `gorm:"size:255;not null"`
	SchemaVersion int            `gorm:"not null;default:2"`
	Holdings      []HoldingModel `gorm:"foreignKey:PortfolioID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HoldingModel is the gorm row for one holding. It keeps the legacy v1
// columns so old databases can still be read and migrated.
type HoldingModel struct {
	ID          uint   `gorm:"primaryKey"`
	PortfolioID string `gorm:"size:36;index;uniqueIndex:idx_portfolio_symbol,priority:1"`
	Symbol      string `gorm:"size:32;uniqueIndex:idx_portfolio_symbol,priority:2"`
	Name        string `gorm:"size:255"`
	Quantity    float64

	AvgPriceKrw     float64
	AvgPriceUsd     float64
	CurrentPriceKrw float64
	CurrentPriceUsd float64

	// Legacy v1 columns; meaningful only when the owning portfolio row has
	// SchemaVersion 1.
	AvgPrice     float64
	CurrentPrice float64
	Currency     string `gorm:"size:8"`

	DayChangeRate *float64
	Sector        string `gorm:"size:255"`
	Tags          string `gorm:"size:1024"` // ";"-joined, insertion order
}

// portfolioGorm implements usecase.PortfolioRepository on gorm.
type portfolioGorm struct {
	db    *gorm.DB
	rates usecase.RateProvider
}

var _ usecase.PortfolioRepository = (*portfolioGorm)(nil)

// NewPortfolioGorm creates the gorm-backed portfolio repository. rates is
// consulted when legacy rows must be upgraded to the dual-currency shape.
func NewPortfolioGorm(db *gorm.DB, rates usecase.RateProvider) *portfolioGorm {
	return &portfolioGorm{db: db, rates: rates}
}

// FindByUserID loads the user's portfolio, migrating legacy rows in place.
// Returns usecase.ErrPortfolioNotFound when the user has none yet.
func (r *portfolioGorm) FindByUserID(ctx context.Context, userID uint) (*entity.Portfolio, error) {
	var model PortfolioModel
	err := r.db.WithContext(ctx).Preload("Holdings").
		Where("user_id = ?", userID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrPortfolioNotFound
		}
		return nil, err
	}

	p := r.toEntity(&model)

	// Upgrade-and-persist: once a v1 portfolio is read, write it back in the
	// current shape so migration happens exactly once.
	if model.SchemaVersion < schemaVersionCurrent {
		if err := r.Save(ctx, p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Save replaces the stored portfolio wholesale. The portfolio is always
// written in the current schema version.
func (r *portfolioGorm) Save(ctx context.Context, p *entity.Portfolio) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := PortfolioModel{
			ID:            p.ID,
			UserID:        p.UserID,
			Name:          p.Name,
			SchemaVersion: schemaVersionCurrent,
		}
		if err := tx.Save(&model).Error; err != nil {
			return err
		}
		if err := tx.Where("portfolio_id = ?", p.ID).Delete(&HoldingModel{}).Error; err != nil {
			return err
		}
		if len(p.Holdings) == 0 {
			return nil
		}
		rows := make([]HoldingModel, 0, len(p.Holdings))
		for _, h := range p.Holdings {
			rows = append(rows, HoldingModel{
				PortfolioID:     p.ID,
				Symbol:          h.Symbol,
				Name:            h.Name,
				Quantity:        h.Quantity,
				AvgPriceKrw:     h.AvgPriceKrw,
				AvgPriceUsd:     h.AvgPriceUsd,
				CurrentPriceKrw: h.CurrentPriceKrw,
				CurrentPriceUsd: h.CurrentPriceUsd,
				DayChangeRate:   h.DayChangeRate,
				Sector:          h.Sector,
				Tags:            strings.Join(h.Tags, ";"),
			})
		}
		return tx.Create(&rows).Error
	})
}

// toEntity converts a stored portfolio into the domain shape, upgrading
// legacy rows through the live exchange rate.
func (r *portfolioGorm) toEntity(model *PortfolioModel) *entity.Portfolio {
	holdings := make([]entity.Holding, 0, len(model.Holdings))
	for _, row := range model.Holdings {
		var h entity.Holding
		if model.SchemaVersion < schemaVersionCurrent {
			h = upgradeLegacyRow(row, r.rates.Rate())
		} else {
			h = entity.Holding{
				Symbol:          row.Symbol,
				Name:            row.Name,
				Quantity:        row.Quantity,
				AvgPriceKrw:     row.AvgPriceKrw,
				AvgPriceUsd:     row.AvgPriceUsd,
				CurrentPriceKrw: row.CurrentPriceKrw,
				CurrentPriceUsd: row.CurrentPriceUsd,
				DayChangeRate:   row.DayChangeRate,
				Sector:          row.Sector,
				Tags:            splitTags(row.Tags),
			}
			h.Normalize()
		}
		if h.Valid() {
			holdings = append(holdings, h)
		}
	}

	p := &entity.Portfolio{
		ID:       model.ID,
		UserID:   model.UserID,
		Name:     model.Name,
		Holdings: holdings,
	}
	p.RecalculateTotals()
	return p
}

// upgradeLegacyRow converts a v1 row through the same migration the codecs
// apply to legacy files.
func upgradeLegacyRow(row HoldingModel, usdToKrw float64) entity.Holding {
	rec := codec.LegacyHolding{
		Symbol:       row.Symbol,
		Name:         row.Name,
		Quantity:     row.Quantity,
		AvgPrice:     row.AvgPrice,
		CurrentPrice: row.CurrentPrice,
		Currency:     strings.ToUpper(row.Currency),
		Sector:       row.Sector,
		Tags:         splitTags(row.Tags),
	}
	return rec.Upgrade(usdToKrw)
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
