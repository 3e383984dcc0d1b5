// Package entity defines the domain entities for the portfolio feature.
package entity

import (
	"math"
	"strings"
)

// DefaultSector is assigned to holdings without a sector.
const DefaultSector = "기타"

// Holding is a user's position in one instrument.
//
// The KRW and USD price fields for the same price point are kept
// independently: the user may enter either currency and have the other
// computed from the exchange rate at entry time, so the pair can drift from
// the live rate afterwards.
type Holding struct {
	Symbol          string   `json:"symbol"`
	Name            string   `json:"name"`
	Quantity        float64  `json:"quantity"`
	AvgPriceKrw     float64  `json:"avgPriceKrw"`
	AvgPriceUsd     float64  `json:"avgPriceUsd"`
	CurrentPriceKrw float64  `json:"currentPriceKrw"`
	CurrentPriceUsd float64  `json:"currentPriceUsd"`
	// DayChangeRate is the day-over-day change in percent, set only when a
	// price provider supplied it.
	DayChangeRate *float64 `json:"dayChangeRate,omitempty"`
	Sector        string   `json:"sector"`
	Tags          []string `json:"tags"`
}

// Normalize trims identifiers, applies the sector default, deduplicates tags
// (keeping insertion order) and coerces malformed numerics to zero. Quantity
// is rounded to six decimal places.
func (h *Holding) Normalize() {
	h.Symbol = strings.TrimSpace(h.Symbol)
	h.Name = strings.TrimSpace(h.Name)
	if h.Sector == "" {
		h.Sector = DefaultSector
	}

	h.Quantity = sanitize(h.Quantity)
	h.Quantity = math.Round(h.Quantity*1e6) / 1e6
	h.AvgPriceKrw = sanitize(h.AvgPriceKrw)
	h.AvgPriceUsd = sanitize(h.AvgPriceUsd)
	h.CurrentPriceKrw = sanitize(h.CurrentPriceKrw)
	h.CurrentPriceUsd = sanitize(h.CurrentPriceUsd)

	seen := make(map[string]struct{}, len(h.Tags))
	tags := make([]string, 0, len(h.Tags))
	for _, t := range h.Tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	h.Tags = tags
}

// Valid reports whether the holding carries the minimum identifying fields.
func (h *Holding) Valid() bool {
	return h.Symbol != "" && h.Name != ""
}

// sanitize maps negative, NaN and infinite values to zero.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
