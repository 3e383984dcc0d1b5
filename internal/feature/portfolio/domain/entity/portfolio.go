package entity

import (
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrDuplicateSymbol is returned when adding a holding whose symbol
	// already exists in the portfolio.
	ErrDuplicateSymbol = errors.New("holding with same symbol already exists")

	// ErrHoldingNotFound is returned when no holding matches the symbol.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrInvalidHolding is returned for holdings missing symbol or name.
	ErrInvalidHolding = errors.New("invalid holding")
)

// DefaultPortfolioName is the display name of a user's portfolio.
const DefaultPortfolioName = "나의 포트폴리오"

// Portfolio owns a user's holdings plus cached KRW totals.
// TotalValue and TotalProfitLoss are derived state: they are recomputed from
// the holdings on every mutation and never mutated independently.
type Portfolio struct {
	ID              string    `json:"id"`
	UserID          uint      `json:"userId"`
	Name            string    `json:"name"`
	Holdings        []Holding `json:"holdings"`
	TotalValue      float64   `json:"totalValue"`
	TotalProfitLoss float64   `json:"totalProfitLoss"`
}

// NewPortfolio creates an empty portfolio for the given user.
func NewPortfolio(userID uint) *Portfolio {
	return &Portfolio{
		ID:       uuid.New().String(),
		UserID:   userID,
		Name:     DefaultPortfolioName,
		Holdings: make([]Holding, 0),
	}
}

// AddHolding appends a holding, rejecting duplicate symbols, and refreshes
// the derived totals.
func (p *Portfolio) AddHolding(h Holding) error {
	h.Normalize()
	if !h.Valid() {
		return ErrInvalidHolding
	}
	for _, existing := range p.Holdings {
		if existing.Symbol == h.Symbol {
			return ErrDuplicateSymbol
		}
	}
	p.Holdings = append(p.Holdings, h)
	p.RecalculateTotals()
	return nil
}

// HoldingUpdate is a partial update; nil fields are left unchanged.
type HoldingUpdate struct {
	Name            *string   `json:"name,omitempty"`
	Quantity        *float64  `json:"quantity,omitempty"`
	AvgPriceKrw     *float64  `json:"avgPriceKrw,omitempty"`
	AvgPriceUsd     *float64  `json:"avgPriceUsd,omitempty"`
	CurrentPriceKrw *float64  `json:"currentPriceKrw,omitempty"`
	CurrentPriceUsd *float64  `json:"currentPriceUsd,omitempty"`
	DayChangeRate   *float64  `json:"dayChangeRate,omitempty"`
	Sector          *string   `json:"sector,omitempty"`
	Tags            *[]string `json:"tags,omitempty"`
}

// UpdateHolding merges the non-nil fields of upd into the holding identified
// by symbol and refreshes the derived totals.
func (p *Portfolio) UpdateHolding(symbol string, upd HoldingUpdate) error {
	for i := range p.Holdings {
		if p.Holdings[i].Symbol != symbol {
			continue
		}
		h := &p.Holdings[i]
		if upd.Name != nil {
			h.Name = *upd.Name
		}
		if upd.Quantity != nil {
			h.Quantity = *upd.Quantity
		}
		if upd.AvgPriceKrw != nil {
			h.AvgPriceKrw = *upd.AvgPriceKrw
		}
		if upd.AvgPriceUsd != nil {
			h.AvgPriceUsd = *upd.AvgPriceUsd
		}
		if upd.CurrentPriceKrw != nil {
			h.CurrentPriceKrw = *upd.CurrentPriceKrw
		}
		if upd.CurrentPriceUsd != nil {
			h.CurrentPriceUsd = *upd.CurrentPriceUsd
		}
		if upd.DayChangeRate != nil {
			h.DayChangeRate = upd.DayChangeRate
		}
		if upd.Sector != nil {
			h.Sector = *upd.Sector
		}
		if upd.Tags != nil {
			h.Tags = *upd.Tags
		}
		h.Normalize()
		p.RecalculateTotals()
		return nil
	}
	return ErrHoldingNotFound
}

// RemoveHolding deletes the holding identified by symbol and refreshes the
// derived totals.
func (p *Portfolio) RemoveHolding(symbol string) error {
	for i := range p.Holdings {
		if p.Holdings[i].Symbol == symbol {
			p.Holdings = append(p.Holdings[:i], p.Holdings[i+1:]...)
			p.RecalculateTotals()
			return nil
		}
	}
	return ErrHoldingNotFound
}

// SetHoldings replaces the holding list wholesale (used by import) and
// refreshes the derived totals. Invalid rows are dropped; later duplicates of
// a symbol are skipped.
func (p *Portfolio) SetHoldings(holdings []Holding) {
	next := make([]Holding, 0, len(holdings))
	seen := make(map[string]struct{}, len(holdings))
	for _, h := range holdings {
		h.Normalize()
		if !h.Valid() {
			continue
		}
		if _, dup := seen[h.Symbol]; dup {
			continue
		}
		seen[h.Symbol] = struct{}{}
		next = append(next, h)
	}
	p.Holdings = next
	p.RecalculateTotals()
}

// FindHolding returns a pointer to the holding with the given symbol.
func (p *Portfolio) FindHolding(symbol string) (*Holding, error) {
	for i := range p.Holdings {
		if p.Holdings[i].Symbol == symbol {
			return &p.Holdings[i], nil
		}
	}
	return nil, ErrHoldingNotFound
}

// RecalculateTotals recomputes TotalValue and TotalProfitLoss (both KRW)
// from the current holdings.
func (p *Portfolio) RecalculateTotals() {
	agg := AggregateHoldings(p.Holdings)
	p.TotalValue = agg.ValueKrw
	p.TotalProfitLoss = agg.ProfitLossKrw
}
