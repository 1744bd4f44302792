package calculator

import (
	"sort"

	"PadelTracker/internal/model"
)

// ChartRow holds every vendor's price on one day, keyed by vendor name.
type ChartRow struct {
	Date   string         `json:"date"`
	Prices map[string]int `json:"prices"`
}

// MergeHistories pivots per-vendor histories into one row per date, ordered
// by date. Vendors without a point on a given date are absent from that row.
func MergeHistories(competitors []model.Competitor) []ChartRow {
	byDate := make(map[string]map[string]int)
	for _, c := range competitors {
		for _, p := range c.History {
			key := p.Date.Format(model.DateLayout)
			row, ok := byDate[key]
			if !ok {
				row = make(map[string]int)
				byDate[key] = row
			}
			row[c.Name] = p.Price
		}
	}

	rows := make([]ChartRow, 0, len(byDate))
	for date, prices := range byDate {
		rows = append(rows, ChartRow{Date: date, Prices: prices})
	}
	// DateLayout sorts lexicographically in date order.
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return rows
}
