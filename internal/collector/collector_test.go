package collector

import (
	"context"
	"encoding/json"
	"math"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PadelTracker/internal/calculator"
	"PadelTracker/internal/model"
)

func TestGenerateHistory_Invariants(t *testing.T) {
	today := time.Date(2025, 3, 31, 15, 4, 5, 0, time.UTC)
	for _, base := range []int{260, 270, 285, 290, 295, 300, 1} {
		for seed := uint64(0); seed < 20; seed++ {
			rng := rand.New(rand.NewPCG(seed, base2seed(base)))
			h := GenerateHistory(rng, base, 30, today)

			require.Len(t, h, 31)
			assert.Equal(t, model.Day(today), h[len(h)-1].Date)
			assert.Equal(t, model.Day(today).AddDate(0, 0, -30), h[0].Date)

			lo := int(math.Round(float64(base) * 0.85))
			hi := int(math.Round(float64(base) * 1.10))
			for i, p := range h {
				if i > 0 {
					assert.True(t, p.Date.After(h[i-1].Date), "dates must strictly increase")
				}
				assert.GreaterOrEqual(t, p.Price, 0)
				assert.GreaterOrEqual(t, p.Price, lo, "base %d", base)
				assert.LessOrEqual(t, p.Price, hi, "base %d", base)
			}
		}
	}
}

func base2seed(base int) uint64 { return uint64(base) * 7919 }

func TestGenerateHistory_ZeroDays(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	h := GenerateHistory(rng, 100, 0, time.Now())
	assert.Len(t, h, 1)
}

func TestMockProvider_Fetch(t *testing.T) {
	p := NewMockProvider("", "", 0, 42)
	snap, err := p.Fetch(context.Background())
	require.NoError(t, err)
	require.NoError(t, snap.Validate())

	assert.Equal(t, DefaultProductName, snap.ProductName)
	assert.Equal(t, DefaultImageURL, snap.ImageURL)
	require.Len(t, snap.Competitors, 6)
	for _, c := range snap.Competitors {
		require.Len(t, c.History, calculator.HistoryDays+1)
		assert.Equal(t, c.History[len(c.History)-1].Price, c.CurrentPrice, c.ID)
	}
	_, ok := snap.Competitor("decathlon")
	assert.True(t, ok)

	again, err := p.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snap.Competitors, again.Competitors, "catalog is constant within a day")
}

func TestMockProvider_RebuildsCatalogOnNewDay(t *testing.T) {
	clock := time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC)
	p := NewMockProvider("", "", 0, 3)
	p.now = func() time.Time { return clock }

	first, err := p.Fetch(context.Background())
	require.NoError(t, err)
	lastDay := func(s *model.MarketData) time.Time {
		h := s.Competitors[0].History
		return h[len(h)-1].Date
	}
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), lastDay(first))

	clock = clock.Add(20 * time.Minute)
	same, err := p.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Competitors, same.Competitors)

	clock = clock.Add(time.Hour)
	next, err := p.Fetch(context.Background())
	require.NoError(t, err)
	require.NoError(t, next.Validate())
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), lastDay(next))
	assert.Len(t, next.Competitors[0].History, calculator.HistoryDays+1)
	assert.Equal(t, clock, next.FetchedAt)
}

func TestMockProvider_LatencyHonoursContext(t *testing.T) {
	p := NewMockProvider("Racket", "", time.Hour, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.Fetch(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPProvider_Fetch(t *testing.T) {
	payload := map[string]any{
		"productName": "Racket",
		"imageUrl":    "https://img",
		"lowestPrice": 240,
		"competitors": []map[string]any{{
			"id":           "shop",
			"name":         "Shop",
			"currentPrice": 999,
			"history": []map[string]any{
				{"date": "2025-01-02", "price": 240},
				{"date": "2025-01-01", "price": 250},
			},
		}},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/market", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL+"/", "secret", "")
	snap, err := p.Fetch(context.Background())
	require.NoError(t, err)
	require.NoError(t, snap.Validate())

	c := snap.Competitors[0]
	assert.Equal(t, 240, c.CurrentPrice, "current price re-derived from the latest point")
	assert.True(t, c.History[0].Date.Before(c.History[1].Date))
	assert.False(t, snap.FetchedAt.IsZero())
}

func TestHTTPProvider_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPProvider(srv.URL, "", "").Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

type stubProvider struct {
	snap *model.MarketData
	err  error
}

func (s stubProvider) Name() string { return "stub" }
func (s stubProvider) Fetch(context.Context) (*model.MarketData, error) {
	return s.snap, s.err
}

func TestCollector_RejectsInvalidSnapshot(t *testing.T) {
	c := NewCollector(stubProvider{snap: &model.MarketData{ProductName: "empty"}}, nil)
	_, err := c.Collect(context.Background())
	assert.ErrorIs(t, err, model.ErrInvalidMarketData)
}

func TestCollector_WrapsProviderError(t *testing.T) {
	c := NewCollector(stubProvider{err: context.Canceled}, nil)
	_, err := c.Collect(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "stub")
}
