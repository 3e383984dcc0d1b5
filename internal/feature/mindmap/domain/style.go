package domain

import (
	"fmt"
	"math"
)

// Node sizing constants; radius scales with the square root of the node's
// share of the portfolio so area tracks value.
const (
	BaseNodeSize = 30
	MinNodeSize  = 15
	MaxNodeSize  = 80
)

// NeutralColor is used for flat (0%) or unknown returns.
const NeutralColor = "#9CA3AF"

// Radius returns the node radius for a value within a portfolio total.
// A zero total means an empty portfolio; every node gets the minimum.
func Radius(value, total float64) float64 {
	if total == 0 {
		return MinNodeSize
	}
	size := BaseNodeSize * math.Sqrt(value/total)
	return math.Max(MinNodeSize, math.Min(MaxNodeSize, size))
}

// ColorByProfitLossRate maps a return rate (percent) to a fill color.
// Gains ramp from light to dark green, losses from light to dark red; the
// gradient saturates at ±50%. Exactly zero is neutral gray.
func ColorByProfitLossRate(rate float64) string {
	if rate == 0 {
		return NeutralColor
	}

	if rate > 0 {
		// #22C55E to #15803D
		intensity := math.Min(rate/50, 1)
		return hexColor(
			math.Round(34-21*intensity),
			math.Round(197-151*intensity),
			math.Round(94-61*intensity),
		)
	}

	// #EF4444 to #DC2626
	intensity := math.Min(math.Abs(rate)/50, 1)
	return hexColor(
		math.Round(239-19*intensity),
		math.Round(68-38*intensity),
		math.Round(68-38*intensity),
	)
}

func hexColor(r, g, b float64) string {
	return fmt.Sprintf("#%02X%02X%02X", int(r), int(g), int(b))
}
