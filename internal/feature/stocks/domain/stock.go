// Package domain defines stock listing and quote types.
package domain

// StockInfo is a point-in-time quote for a single listing.
type StockInfo struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	CurrentPrice float64 `json:"currentPrice"`
	ChangeRate   float64 `json:"changeRate"`
	ChangeAmount float64 `json:"changeAmount"`
	Volume       int64   `json:"volume"`
	Currency     string  `json:"currency"`
	Sector       string  `json:"sector,omitempty"`
	Market       string  `json:"market,omitempty"`
}

// SearchResult is one row of a symbol search.
type SearchResult struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	NameKo string `json:"nameKo,omitempty"`
	Market string `json:"market"`
	Sector string `json:"sector,omitempty"`
}

// IsKoreanSymbol reports whether symbol looks like a KRX ticker
// (six digits, e.g. "005930").
func IsKoreanSymbol(symbol string) bool {
	if len(symbol) != 6 {
		return false
	}
	for _, r := range symbol {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
