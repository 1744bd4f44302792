package dashboard

import (
	"PadelTracker/internal/calculator"
	"PadelTracker/internal/model"
)

// CompetitorRow is one line of the cheapest-first vendor list.
type CompetitorRow struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	URL          string           `json:"url"`
	Color        string           `json:"color"`
	CurrentPrice int              `json:"currentPrice"`
	Trend        calculator.Trend `json:"trend"`
	IsBest       bool             `json:"isBest"`
}

// CompetitorList is the vendor list ordered by current price.
type CompetitorList struct {
	BestPrice   int             `json:"bestPrice"`
	Competitors []CompetitorRow `json:"competitors"`
}

// BuildCompetitorList sorts competitors cheapest first and flags every vendor
// matching the best price.
func BuildCompetitorList(snap *model.MarketData) CompetitorList {
	sorted := calculator.SortByPrice(snap.Competitors)
	list := CompetitorList{Competitors: make([]CompetitorRow, 0, len(sorted))}
	if len(sorted) == 0 {
		return list
	}
	list.BestPrice = sorted[0].CurrentPrice
	for _, c := range sorted {
		list.Competitors = append(list.Competitors, CompetitorRow{
			ID:           c.ID,
			Name:         c.Name,
			URL:          c.URL,
			Color:        c.Color,
			CurrentPrice: c.CurrentPrice,
			Trend:        calculator.TrendOf(c),
			IsBest:       c.CurrentPrice == list.BestPrice,
		})
	}
	return list
}
