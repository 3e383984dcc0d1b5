// Package codec implements the CSV and JSON import/export formats for
// portfolio holdings, including detection and migration of the legacy
// single-currency format.
package codec

import (
	"math"

	"github.com/k1300k/smart-stocks/internal/feature/portfolio/domain/entity"
)

// FormatVersion tags the current dual-currency record shape.
const FormatVersion = "2.0"

// LegacyHolding is the single-currency v1 record shape: one price pair
// plus a currency marker. It is shared by the CSV/JSON codecs and the
// persistence layer's row migration.
type LegacyHolding struct {
	Symbol       string
	Name         string
	Quantity     float64
	AvgPrice     float64
	CurrentPrice float64
	Currency     string // "KRW" or "USD"; anything else is treated as KRW
	Sector       string
	Tags         []string
}

// Upgrade converts the v1 record into the dual-currency shape using the
// supplied USD→KRW rate. KRW amounts are rounded to whole won, USD amounts
// to cents, mirroring how the records were originally captured.
func (l LegacyHolding) Upgrade(usdToKrw float64) entity.Holding {
	var avgKrw, curKrw, avgUsd, curUsd float64
	if l.Currency == "USD" {
		avgKrw = math.Round(l.AvgPrice * usdToKrw)
		curKrw = math.Round(l.CurrentPrice * usdToKrw)
		avgUsd = roundCents(l.AvgPrice)
		curUsd = roundCents(l.CurrentPrice)
	} else {
		avgKrw = math.Round(l.AvgPrice)
		curKrw = math.Round(l.CurrentPrice)
		avgUsd = roundCents(avgKrw / usdToKrw)
		curUsd = roundCents(curKrw / usdToKrw)
	}

	h := entity.Holding{
		Symbol:          l.Symbol,
		Name:            l.Name,
		Quantity:        l.Quantity,
		AvgPriceKrw:     avgKrw,
		AvgPriceUsd:     avgUsd,
		CurrentPriceKrw: curKrw,
		CurrentPriceUsd: curUsd,
		Sector:          l.Sector,
		Tags:            l.Tags,
	}
	h.Normalize()
	return h
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
