package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/k1300k/smart-stocks/internal/feature/portfolio/domain/entity"
	"github.com/k1300k/smart-stocks/internal/feature/portfolio/usecase"
)

type stubRate float64

func (r stubRate) Rate() float64 { return float64(r) }

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&PortfolioModel{}, &HoldingModel{})
	require.NoError(t, err, "failed to migrate tables")

	return db
}

func TestPortfolioGorm_SaveAndFindByUserID(t *testing.T) {
	t.Run("round trip preserves holdings", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPortfolioGorm(db, stubRate(1300))

		change := 1.5
		p := entity.NewPortfolio(1)
		require.NoError(t, p.AddHolding(entity.Holding{
			Symbol: "005930", Name: "삼성전자", Quantity: 10,
			AvgPriceKrw: 65000, AvgPriceUsd: 50,
			CurrentPriceKrw: 70000, CurrentPriceUsd: 53.85,
			DayChangeRate: &change,
			Sector:        "IT", Tags: []string{"반도체", "배당"},
		}))
		require.NoError(t, p.AddHolding(entity.Holding{
			Symbol: "AAPL", Name: "Apple Inc.", Quantity: 2.5,
			AvgPriceKrw: 234000, AvgPriceUsd: 180,
			CurrentPriceKrw: 247000, CurrentPriceUsd: 190,
			Sector:          "IT",
		}))

		require.NoError(t, repo.Save(context.Background(), p))

		found, err := repo.FindByUserID(context.Background(), 1)
		require.NoError(t, err, "failed to load portfolio")

		assert.Equal(t, p.ID, found.ID, "ID does not match")
		assert.Equal(t, entity.DefaultPortfolioName, found.Name, "name does not match")
		require.Len(t, found.Holdings, 2, "holding count does not match")

		samsung, err := found.FindHolding("005930")
		require.NoError(t, err)
		assert.Equal(t, 10.0, samsung.Quantity, "quantity does not match")
		assert.Equal(t, []string{"반도체", "배당"}, samsung.Tags, "tags do not match")
		require.NotNil(t, samsung.DayChangeRate, "day change rate was dropped")
		assert.Equal(t, 1.5, *samsung.DayChangeRate, "day change rate does not match")

		apple, err := found.FindHolding("AAPL")
		require.NoError(t, err)
		assert.Equal(t, 2.5, apple.Quantity, "fractional quantity does not match")

		assert.Equal(t, p.TotalValue, found.TotalValue, "totals were not recomputed")
	})

	t.Run("save replaces previous holdings", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPortfolioGorm(db, stubRate(1300))

		p := entity.NewPortfolio(1)
		require.NoError(t, p.AddHolding(entity.Holding{
			Symbol: "005930", Name: "삼성전자", Quantity: 10,
			AvgPriceKrw: 65000, CurrentPriceKrw: 70000,
		}))
		require.NoError(t, repo.Save(context.Background(), p))

		p.SetHoldings([]entity.Holding{{
			Symbol: "000660", Name: "SK하이닉스", Quantity: 5,
			AvgPriceKrw: 100000, CurrentPriceKrw: 110000,
		}})
		require.NoError(t, repo.Save(context.Background(), p))

		found, err := repo.FindByUserID(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, found.Holdings, 1, "old holdings should be gone")
		assert.Equal(t, "000660", found.Holdings[0].Symbol, "symbol does not match")
	})

	t.Run("not found error", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPortfolioGorm(db, stubRate(1300))

		found, err := repo.FindByUserID(context.Background(), 999)

		assert.Nil(t, found, "portfolio should be nil")
		assert.ErrorIs(t, err, usecase.ErrPortfolioNotFound, "should return ErrPortfolioNotFound")
	})
}

func TestPortfolioGorm_LegacyMigration(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPortfolioGorm(db, stubRate(1300))

	// Seed a v1 portfolio directly: single price pair plus a currency column.
	model := PortfolioModel{
		ID:            "legacy-portfolio",
		UserID:        7,
		Name:          entity.DefaultPortfolioName,
		SchemaVersion: 1,
		Holdings: []HoldingModel{
			{Symbol: "AAPL", Name: "Apple Inc.", Quantity: 2, AvgPrice: 180, CurrentPrice: 190, Currency: "usd", Sector: "IT"},
			{Symbol: "005930", Name: "삼성전자", Quantity: 10, AvgPrice: 65000, CurrentPrice: 70000, Currency: "KRW", Sector: "IT"},
		},
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed legacy rows")

	found, err := repo.FindByUserID(context.Background(), 7)
	require.NoError(t, err, "failed to load legacy portfolio")
	require.Len(t, found.Holdings, 2)

	apple, err := found.FindHolding("AAPL")
	require.NoError(t, err)
	assert.Equal(t, 180.0, apple.AvgPriceUsd, "USD side should carry over")
	assert.Equal(t, 234000.0, apple.AvgPriceKrw, "KRW side should derive at 1300")
	assert.Equal(t, 247000.0, apple.CurrentPriceKrw, "KRW current should derive at 1300")

	samsung, err := found.FindHolding("005930")
	require.NoError(t, err)
	assert.Equal(t, 70000.0, samsung.CurrentPriceKrw, "KRW side should carry over")
	assert.Equal(t, 53.85, samsung.CurrentPriceUsd, "USD side should derive at 1300")

	// The migration is persisted: the row is now in the current shape.
	var stored PortfolioModel
	require.NoError(t, db.Where("user_id = ?", 7).First(&stored).Error)
	assert.Equal(t, 2, stored.SchemaVersion, "schema version should be upgraded")
}
