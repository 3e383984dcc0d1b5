package entity

// Valuation carries the computed per-holding figures in both currencies.
//
// ProfitLossRate is derived from the KRW figures only: the KRW and USD price
// pairs may drift from the live exchange rate, and using a single currency
// keeps the percentage unambiguous.
type Valuation struct {
	ValueKrw       float64 `json:"valueKrw"`
	ValueUsd       float64 `json:"valueUsd"`
	ProfitLossKrw  float64 `json:"profitLossKrw"`
	ProfitLossUsd  float64 `json:"profitLossUsd"`
	ProfitLossRate float64 `json:"profitLossRate"`
}

// Valuate computes the holding's value and profit/loss figures.
func Valuate(h Holding) Valuation {
	v := Valuation{
		ValueKrw:      h.CurrentPriceKrw * h.Quantity,
		ValueUsd:      h.CurrentPriceUsd * h.Quantity,
		ProfitLossKrw: (h.CurrentPriceKrw - h.AvgPriceKrw) * h.Quantity,
		ProfitLossUsd: (h.CurrentPriceUsd - h.AvgPriceUsd) * h.Quantity,
	}
	if h.AvgPriceKrw > 0 {
		v.ProfitLossRate = (h.CurrentPriceKrw - h.AvgPriceKrw) / h.AvgPriceKrw * 100
	}
	return v
}

// Aggregate carries the summed figures for a set of holdings.
type Aggregate struct {
	ValueKrw       float64
	ProfitLossKrw  float64
	ProfitLossRate float64
}

// AggregateHoldings sums value and profit/loss over the holdings.
//
// The aggregate rate is NOT a weighted average of per-holding rates: it is the
// profit relative to the reconstructed cost basis,
// profitLoss / (value - profitLoss) * 100, yielding 0 when the reconstructed
// basis is zero or negative.
func AggregateHoldings(holdings []Holding) Aggregate {
	var agg Aggregate
	for _, h := range holdings {
		agg.ValueKrw += h.CurrentPriceKrw * h.Quantity
		agg.ProfitLossKrw += (h.CurrentPriceKrw - h.AvgPriceKrw) * h.Quantity
	}
	agg.ProfitLossRate = RateFromAggregate(agg.ValueKrw, agg.ProfitLossKrw)
	return agg
}

// RateFromAggregate reconstructs a percentage rate from aggregate value and
// profit/loss, guarding against a zero or negative cost basis.
func RateFromAggregate(valueKrw, profitLossKrw float64) float64 {
	costBasis := valueKrw - profitLossKrw
	if costBasis <= 0 {
		return 0
	}
	return profitLossKrw / costBasis * 100
}
