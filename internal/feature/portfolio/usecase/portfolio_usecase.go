// Package usecase implements the business logic of the portfolio feature.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/k1300k/smart-stocks/internal/feature/portfolio/codec"
	"github.com/k1300k/smart-stocks/internal/feature/portfolio/domain/entity"
)

// PortfolioRepository abstracts portfolio persistence.
// Defined by the consumer, implemented by adapters.
type PortfolioRepository interface {
	// FindByUserID loads the user's portfolio, or ErrPortfolioNotFound.
	FindByUserID(ctx context.Context, userID uint) (*entity.Portfolio, error)

	// Save stores the portfolio, replacing any previous state atomically.
	Save(ctx context.Context, p *entity.Portfolio) error
}

// RateProvider supplies the current USD→KRW exchange rate.
type RateProvider interface {
	Rate() float64
}

// Quote is a provider price point for one instrument. Currency tells which
// side of the dual-currency pair the price belongs to.
type Quote struct {
	Price      float64
	Currency   string // "KRW" or "USD"
	ChangeRate float64
}

// PriceProvider resolves a current price for a symbol. Implementations may
// fail or return nothing; callers treat absent data as "keep last known".
type PriceProvider interface {
	GetPrice(ctx context.Context, symbol string) (*Quote, error)
}

// ImportMode selects how imported holdings combine with existing ones.
type ImportMode int

const (
	// ImportReplace discards existing holdings.
	ImportReplace ImportMode = iota
	// ImportMerge keeps existing holdings; imported duplicates are skipped.
	ImportMerge
)

// portfolioUsecase implements the portfolio operations.
type portfolioUsecase struct {
	repo   PortfolioRepository
	rates  RateProvider
	prices PriceProvider
}

// NewPortfolioUsecase creates a new portfolioUsecase instance.
func NewPortfolioUsecase(repo PortfolioRepository, rates RateProvider, prices PriceProvider) *portfolioUsecase {
	return &portfolioUsecase{repo: repo, rates: rates, prices: prices}
}

// Get loads the user's portfolio, creating an empty one on first access.
// An empty portfolio is a valid state, not an error.
func (u *portfolioUsecase) Get(ctx context.Context, userID uint) (*entity.Portfolio, error) {
	p, err := u.repo.FindByUserID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrPortfolioNotFound) {
		return nil, err
	}

	p = entity.NewPortfolio(userID)
	if err := u.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("create portfolio: %w", err)
	}
	return p, nil
}

// AddHolding adds a holding. When only one currency side of a price pair was
// entered, the other side is computed from the exchange rate at entry time.
func (u *portfolioUsecase) AddHolding(ctx context.Context, userID uint, h entity.Holding) (*entity.Portfolio, error) {
	p, err := u.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	u.fillMissingCurrency(&h)
	if err := p.AddHolding(h); err != nil {
		return nil, err
	}
	if err := u.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateHolding applies a partial update to the holding identified by symbol.
func (u *portfolioUsecase) UpdateHolding(ctx context.Context, userID uint, symbol string, upd entity.HoldingUpdate) (*entity.Portfolio, error) {
	p, err := u.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := p.UpdateHolding(symbol, upd); err != nil {
		return nil, err
	}
	if err := u.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RemoveHolding deletes the holding identified by symbol.
func (u *portfolioUsecase) RemoveHolding(ctx context.Context, userID uint, symbol string) (*entity.Portfolio, error) {
	p, err := u.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := p.RemoveHolding(symbol); err != nil {
		return nil, err
	}
	if err := u.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ExportCSV renders the portfolio as a CSV document.
func (u *portfolioUsecase) ExportCSV(ctx context.Context, userID uint) (string, error) {
	p, err := u.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return codec.ExportCSV(p.Holdings)
}

// ExportJSON renders the portfolio as a versioned JSON document.
func (u *portfolioUsecase) ExportJSON(ctx context.Context, userID uint) ([]byte, error) {
	p, err := u.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return codec.ExportJSON(p.Holdings)
}

// ImportCSV parses a CSV document and applies it to the user's portfolio.
// It returns the number of holdings applied.
func (u *portfolioUsecase) ImportCSV(ctx context.Context, userID uint, content string, mode ImportMode) (int, error) {
	holdings, err := codec.ImportCSV(content, u.rates.Rate())
	if err != nil {
		return 0, err
	}
	return u.applyImport(ctx, userID, holdings, mode)
}

// ImportJSON parses a JSON export and applies it to the user's portfolio.
// It returns the number of holdings applied.
func (u *portfolioUsecase) ImportJSON(ctx context.Context, userID uint, data []byte, mode ImportMode) (int, error) {
	holdings, err := codec.ImportJSON(data, u.rates.Rate())
	if err != nil {
		return 0, err
	}
	return u.applyImport(ctx, userID, holdings, mode)
}

func (u *portfolioUsecase) applyImport(ctx context.Context, userID uint, holdings []entity.Holding, mode ImportMode) (int, error) {
	p, err := u.Get(ctx, userID)
	if err != nil {
		return 0, err
	}

	switch mode {
	case ImportMerge:
		existing := make(map[string]struct{}, len(p.Holdings))
		for _, h := range p.Holdings {
			existing[h.Symbol] = struct{}{}
		}
		merged := p.Holdings
		for _, h := range holdings {
			if _, dup := existing[h.Symbol]; dup {
				continue
			}
			merged = append(merged, h)
		}
		p.SetHoldings(merged)
	default:
		p.SetHoldings(holdings)
	}

	if err := u.repo.Save(ctx, p); err != nil {
		return 0, err
	}
	return len(p.Holdings), nil
}

// RefreshPrices updates current prices from the price provider. Holdings the
// provider cannot resolve keep their last known prices; a refresh never fails
// the whole portfolio. It returns the number of holdings updated.
func (u *portfolioUsecase) RefreshPrices(ctx context.Context, userID uint) (*entity.Portfolio, int, error) {
	p, err := u.Get(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	rate := u.rates.Rate()
	updated := 0
	for i := range p.Holdings {
		h := &p.Holdings[i]
		quote, err := u.prices.GetPrice(ctx, h.Symbol)
		if err != nil || quote == nil {
			slog.Warn("price refresh skipped", "symbol", h.Symbol, "error", err)
			continue
		}

		if quote.Currency == "USD" {
			h.CurrentPriceUsd = roundCents(quote.Price)
			h.CurrentPriceKrw = math.Round(quote.Price * rate)
		} else {
			h.CurrentPriceKrw = math.Round(quote.Price)
			h.CurrentPriceUsd = roundCents(quote.Price / rate)
		}
		change := quote.ChangeRate
		h.DayChangeRate = &change
		updated++
	}

	p.RecalculateTotals()
	if err := u.repo.Save(ctx, p); err != nil {
		return nil, 0, err
	}
	return p, updated, nil
}

// fillMissingCurrency computes the absent side of each price pair from the
// live exchange rate. Both-zero pairs are left untouched.
func (u *portfolioUsecase) fillMissingCurrency(h *entity.Holding) {
	rate := u.rates.Rate()
	if rate <= 0 {
		return
	}
	if h.AvgPriceKrw > 0 && h.AvgPriceUsd == 0 {
		h.AvgPriceUsd = roundCents(h.AvgPriceKrw / rate)
	} else if h.AvgPriceUsd > 0 && h.AvgPriceKrw == 0 {
		h.AvgPriceKrw = math.Round(h.AvgPriceUsd * rate)
	}
	if h.CurrentPriceKrw > 0 && h.CurrentPriceUsd == 0 {
		h.CurrentPriceUsd = roundCents(h.CurrentPriceKrw / rate)
	} else if h.CurrentPriceUsd > 0 && h.CurrentPriceKrw == 0 {
		h.CurrentPriceKrw = math.Round(h.CurrentPriceUsd * rate)
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
