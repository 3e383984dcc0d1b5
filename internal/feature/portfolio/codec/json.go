package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/k1300k/smart-stocks/internal/feature/portfolio/domain/entity"
)

// jsonEnvelope is the export wrapper. Version is an explicit schema tag so
// importers do not have to sniff field shapes on tagged payloads.
type jsonEnvelope struct {
	Version    string            `json:"version"`
	ExportedAt time.Time         `json:"exportedAt"`
	Holdings   []json.RawMessage `json:"holdings"`
}

// ErrNoHoldings is returned when the payload carries no usable records.
var ErrNoHoldings = errors.New("no valid holdings in payload")

// ExportJSON renders the holdings inside a versioned envelope.
func ExportJSON(holdings []entity.Holding) ([]byte, error) {
	raw := make([]json.RawMessage, 0, len(holdings))
	for _, h := range holdings {
		b, err := json.Marshal(h)
		if err != nil {
			return nil, err
		}
		raw = append(raw, b)
	}
	return json.MarshalIndent(jsonEnvelope{
		Version:    FormatVersion,
		ExportedAt: time.Now().UTC(),
		Holdings:   raw,
	}, "", "  ")
}

// rawHolding covers both record shapes; pointers distinguish absent fields
// from zero values when the envelope carries no version tag.
type rawHolding struct {
	Symbol   string   `json:"symbol"`
	Name     string   `json:"name"`
	Quantity float64  `json:"quantity"`
	Sector   string   `json:"sector"`
	Tags     []string `json:"tags"`

	// v2 fields
	AvgPriceKrw     *float64 `json:"avgPriceKrw"`
	AvgPriceUsd     *float64 `json:"avgPriceUsd"`
	CurrentPriceKrw *float64 `json:"currentPriceKrw"`
	CurrentPriceUsd *float64 `json:"currentPriceUsd"`

	// v1 fields
	AvgPrice     *float64 `json:"avgPrice"`
	CurrentPrice *float64 `json:"currentPrice"`
	Currency     string   `json:"currency"`
}

// ImportJSON parses an exported JSON document. The envelope's version tag
// decides the record shape; untagged legacy payloads fall back to per-record
// field detection. Records without symbol or name are dropped.
func ImportJSON(data []byte, usdToKrw float64) ([]entity.Holding, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if len(env.Holdings) == 0 {
		return nil, ErrNoHoldings
	}

	holdings := make([]entity.Holding, 0, len(env.Holdings))
	for _, rawMsg := range env.Holdings {
		var raw rawHolding
		if err := json.Unmarshal(rawMsg, &raw); err != nil {
			continue
		}

		var h entity.Holding
		switch {
		case env.Version == FormatVersion, raw.isDualCurrency():
			h = entity.Holding{
				Symbol:          raw.Symbol,
				Name:            raw.Name,
				Quantity:        raw.Quantity,
				AvgPriceKrw:     deref(raw.AvgPriceKrw),
				AvgPriceUsd:     deref(raw.AvgPriceUsd),
				CurrentPriceKrw: deref(raw.CurrentPriceKrw),
				CurrentPriceUsd: deref(raw.CurrentPriceUsd),
				Sector:          raw.Sector,
				Tags:            raw.Tags,
			}
			h.Normalize()
		case raw.AvgPrice != nil || raw.CurrentPrice != nil:
			rec := LegacyHolding{
				Symbol:       raw.Symbol,
				Name:         raw.Name,
				Quantity:     raw.Quantity,
				AvgPrice:     deref(raw.AvgPrice),
				CurrentPrice: deref(raw.CurrentPrice),
				Currency:     raw.Currency,
				Sector:       raw.Sector,
				Tags:         raw.Tags,
			}
			h = rec.Upgrade(usdToKrw)
		default:
			continue
		}

		if h.Valid() {
			holdings = append(holdings, h)
		}
	}

	if len(holdings) == 0 {
		return nil, ErrNoHoldings
	}
	return holdings, nil
}

// isDualCurrency reports whether all four dual-currency fields are present.
func (r rawHolding) isDualCurrency() bool {
	return r.AvgPriceKrw != nil && r.AvgPriceUsd != nil &&
		r.CurrentPriceKrw != nil && r.CurrentPriceUsd != nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
