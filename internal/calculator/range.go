package calculator

import (
	"errors"
	"math"

	"PadelTracker/internal/model"
)

// HistoryDays is the retained history window in days. A history spans
// HistoryDays+1 points, today included.
const HistoryDays = 30

// PriceRange scans the most recent window points of history and returns the
// high and low. A window <= 0 scans the whole history.
func PriceRange(history []model.PricePoint, window int) (high, low int, err error) {
	if len(history) == 0 {
		return 0, 0, errors.New("no price history provided")
	}
	n := len(history)
	start := 0
	if window > 0 && n > window {
		start = n - window
	}
	high = math.MinInt
	low = math.MaxInt
	for i := start; i < n; i++ {
		if history[i].Price > high {
			high = history[i].Price
		}
		if history[i].Price < low {
			low = history[i].Price
		}
	}
	return high, low, nil
}

// Cheapest returns the competitor with the lowest current price. Ties keep the
// first competitor in input order.
func Cheapest(competitors []model.Competitor) (model.Competitor, error) {
	if len(competitors) == 0 {
		return model.Competitor{}, errors.New("no competitors provided")
	}
	best := competitors[0]
	for _, c := range competitors[1:] {
		if c.CurrentPrice < best.CurrentPrice {
			best = c
		}
	}
	return best, nil
}
