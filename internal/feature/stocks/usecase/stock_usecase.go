// Package usecase implements symbol search and quote lookup across the
// configured market data providers.
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/k1300k/smart-stocks/internal/feature/stocks/domain"
	"github.com/k1300k/smart-stocks/internal/shared/ratelimiter"
)

// Search returns at most this many rows.
const maxSearchResults = 10

// ErrStockNotFound is returned when no provider nor the builtin catalog
// knows the symbol.
var ErrStockNotFound = errors.New("stock not found")

// MarketProvider is a remote quote source for one market segment. Configured
// reports whether credentials are present; an unconfigured provider is
// skipped without being called.
type MarketProvider interface {
	Configured() bool
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
	Price(ctx context.Context, symbol string) (*domain.StockInfo, error)
}

// StockUsecase provides symbol search and current-price lookup.
type StockUsecase interface {
	Search(ctx context.Context, query, market string) ([]domain.SearchResult, error)
	GetPrice(ctx context.Context, symbol string) (*domain.StockInfo, error)
}

type stockUsecase struct {
	korean  MarketProvider
	foreign MarketProvider
	limiter ratelimiter.Limiter
}

// NewStockUsecase creates a StockUsecase. Either provider may be nil; lookup
// then falls back to the builtin catalog for that segment.
func NewStockUsecase(korean, foreign MarketProvider, limiter ratelimiter.Limiter) StockUsecase {
	return &stockUsecase{korean: korean, foreign: foreign, limiter: limiter}
}

var _ StockUsecase = (*stockUsecase)(nil)

// Search matches listings by symbol, name, or Korean alias. Queries shorter
// than two characters return no rows. Provider results come first; the
// builtin catalog fills the remainder, deduplicated by symbol.
func (u *stockUsecase) Search(ctx context.Context, query, market string) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < 2 {
		return []domain.SearchResult{}, nil
	}

	var results []domain.SearchResult
	seen := make(map[string]bool)

	appendRows := func(rows []domain.SearchResult) {
		for _, r := range rows {
			if !seen[r.Symbol] {
				seen[r.Symbol] = true
				results = append(results, r)
			}
		}
	}

	if market == "" || market == "KRX" {
		appendRows(u.providerSearch(ctx, u.korean, query))
	}
	if market == "" || market == "NYSE" || market == "NASDAQ" {
		appendRows(u.providerSearch(ctx, u.foreign, query))
	}
	appendRows(domain.SearchCatalog(query, market))

	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	return results, nil
}

// providerSearch queries one provider, treating any failure as an empty
// result so the catalog fallback still applies.
func (u *stockUsecase) providerSearch(ctx context.Context, p MarketProvider, query string) []domain.SearchResult {
	if p == nil || !p.Configured() {
		return nil
	}
	u.limiter.WaitIfNeeded()
	rows, err := p.Search(ctx, query)
	if err != nil {
		slog.Warn("provider search failed, falling back to catalog", "error", err)
		return nil
	}
	return rows
}

// GetPrice returns the current quote for symbol. KRX symbols go to the
// Korean provider, everything else to the foreign one. When the provider is
// unconfigured or fails, the builtin catalog's base price is served so
// offline refreshes stay deterministic.
func (u *stockUsecase) GetPrice(ctx context.Context, symbol string) (*domain.StockInfo, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, ErrStockNotFound
	}

	provider := u.foreign
	if domain.IsKoreanSymbol(symbol) {
		provider = u.korean
	}

	if provider != nil && provider.Configured() {
		u.limiter.WaitIfNeeded()
		info, err := provider.Price(ctx, symbol)
		if err == nil {
			fillFromCatalog(info)
			return info, nil
		}
		slog.Warn("provider price failed, falling back to catalog",
			"symbol", symbol, "error", err)
	}

	listing, ok := domain.FindListing(symbol)
	if !ok {
		return nil, ErrStockNotFound
	}
	return &domain.StockInfo{
		Symbol:       listing.Symbol,
		Name:         listing.Name,
		CurrentPrice: listing.BasePrice,
		Currency:     listing.Currency(),
		Sector:       listing.Sector,
		Market:       listing.Market,
	}, nil
}

// fillFromCatalog backfills name and sector when the provider omits them.
func fillFromCatalog(info *domain.StockInfo) {
	listing, ok := domain.FindListing(info.Symbol)
	if !ok {
		return
	}
	if info.Name == "" {
		info.Name = listing.Name
	}
	if info.Sector == "" {
		info.Sector = listing.Sector
	}
	if info.Market == "" {
		info.Market = listing.Market
	}
}
