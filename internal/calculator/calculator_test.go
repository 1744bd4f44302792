package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PadelTracker/internal/model"
)

var start = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

func history(prices ...int) []model.PricePoint {
	points := make([]model.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = model.PricePoint{Date: start.AddDate(0, 0, i), Price: p}
	}
	return points
}

func TestPriceRange(t *testing.T) {
	h := history(300, 280, 310, 290)

	high, low, err := PriceRange(h, 0)
	require.NoError(t, err)
	assert.Equal(t, 310, high)
	assert.Equal(t, 280, low)

	high, low, err = PriceRange(h, 2)
	require.NoError(t, err)
	assert.Equal(t, 310, high)
	assert.Equal(t, 290, low)

	_, _, err = PriceRange(nil, 0)
	assert.Error(t, err)
}

func TestCheapest_SixVendorScenario(t *testing.T) {
	prices := map[string]int{
		"JustPadel":       280,
		"PassaSports":     300,
		"HollandPadel":    275,
		"Tennis Voordeel": 265,
		"Decathlon":       250,
		"Padel Nuestro":   295,
	}
	order := []string{"JustPadel", "PassaSports", "HollandPadel", "Tennis Voordeel", "Decathlon", "Padel Nuestro"}
	var competitors []model.Competitor
	for _, name := range order {
		competitors = append(competitors, model.NewCompetitor(name, name, "", "", history(prices[name])))
	}

	best, err := Cheapest(competitors)
	require.NoError(t, err)
	assert.Equal(t, "Decathlon", best.Name)
	assert.Equal(t, 250, best.CurrentPrice)

	sorted := SortByPrice(competitors)
	assert.Equal(t, "Decathlon", sorted[0].Name)
	assert.Equal(t, "PassaSports", sorted[len(sorted)-1].Name)
	assert.Equal(t, "JustPadel", competitors[0].Name, "input must not be reordered")
}

func TestCheapest_Empty(t *testing.T) {
	_, err := Cheapest(nil)
	assert.Error(t, err)
}

func TestTrendOf(t *testing.T) {
	tests := []struct {
		name   string
		prices []int
		want   Trend
	}{
		{"single point", []int{100}, TrendFlat},
		{"dropped", []int{120, 100}, TrendDown},
		{"rose", []int{100, 120}, TrendUp},
		{"unchanged", []int{100, 90, 90}, TrendFlat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := model.NewCompetitor("x", "X", "", "", history(tt.prices...))
			assert.Equal(t, tt.want, TrendOf(c))
		})
	}
}

func TestMergeHistories(t *testing.T) {
	a := model.NewCompetitor("a", "A", "", "", history(10, 11, 12))
	b := model.Competitor{ID: "b", Name: "B", History: []model.PricePoint{
		{Date: start.AddDate(0, 0, 1), Price: 20},
		{Date: start.AddDate(0, 0, 3), Price: 21},
	}}

	rows := MergeHistories([]model.Competitor{b, a})
	require.Len(t, rows, 4)
	assert.Equal(t, "2025-05-01", rows[0].Date)
	assert.Equal(t, map[string]int{"A": 10}, rows[0].Prices)
	assert.Equal(t, map[string]int{"A": 11, "B": 20}, rows[1].Prices)
	assert.Equal(t, "2025-05-04", rows[3].Date)
	assert.Equal(t, map[string]int{"B": 21}, rows[3].Prices)
}
