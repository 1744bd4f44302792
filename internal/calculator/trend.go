package calculator

import (
	"slices"

	"PadelTracker/internal/model"
)

// Trend is the direction of the latest price move.
type Trend string

const (
	TrendDown Trend = "down"
	TrendUp   Trend = "up"
	TrendFlat Trend = "flat"
)

// TrendOf compares the current price with the previous history point.
func TrendOf(c model.Competitor) Trend {
	prev, ok := c.PreviousPrice()
	switch {
	case !ok:
		return TrendFlat
	case c.CurrentPrice < prev:
		return TrendDown
	case c.CurrentPrice > prev:
		return TrendUp
	default:
		return TrendFlat
	}
}

// SortByPrice returns a copy of competitors ordered cheapest first. Equal
// prices keep their input order.
func SortByPrice(competitors []model.Competitor) []model.Competitor {
	sorted := slices.Clone(competitors)
	slices.SortStableFunc(sorted, func(a, b model.Competitor) int {
		return a.CurrentPrice - b.CurrentPrice
	})
	return sorted
}
