package analyst

import (
	"encoding/json"
	"errors"
	"fmt"

	"PadelTracker/internal/calculator"
	"PadelTracker/internal/model"
)

// DefaultCategory names the product kind in the prompt.
const DefaultCategory = "padel racket"

// Stats derives current, lowest and highest price per vendor over the
// retained history.
func Stats(data *model.MarketData) ([]model.VendorStats, error) {
	if data == nil {
		return nil, errors.New("no market data")
	}
	if len(data.Competitors) == 0 {
		return nil, errors.New("market data has no competitors")
	}
	stats := make([]model.VendorStats, 0, len(data.Competitors))
	for _, c := range data.Competitors {
		high, low, err := calculator.PriceRange(c.History, calculator.HistoryDays+1)
		if err != nil {
			return nil, fmt.Errorf("competitor %s: %w", c.ID, err)
		}
		stats = append(stats, model.VendorStats{
			Store:                  c.Name,
			CurrentPrice:           c.CurrentPrice,
			LowestPriceLast30Days:  low,
			HighestPriceLast30Days: high,
		})
	}
	return stats, nil
}

// BuildPrompt renders the analyst instruction with the vendor statistics
// embedded as JSON.
func BuildPrompt(category, productName string, stats []model.VendorStats) (string, error) {
	if category == "" {
		category = DefaultCategory
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return "", fmt.Errorf("marshal vendor stats: %w", err)
	}
	return fmt.Sprintf(`You are an expert e-commerce pricing analyst.
Analyze the following pricing data for the %s "%s".

Data Context:
%s

Tasks:
1. Determine if the user should BUY now or WAIT based on the lowest current price versus historical lows.
2. Write a short, punchy summary of the market situation (max 2 sentences).
3. Identify the absolute best deal (Store Name + Price).

Return ONLY JSON.`, category, productName, data), nil
}
