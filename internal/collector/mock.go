package collector

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"PadelTracker/internal/calculator"
	"PadelTracker/internal/model"
)

const (
	DefaultProductName = "Siux Electra ST4 Pro"
	DefaultImageURL    = "https://picsum.photos/400/500"
)

// Daily random-walk bounds, as fractions of the base price.
const (
	minOffset = -0.15
	maxOffset = 0.10
)

type catalogEntry struct {
	id, name, url, color string
	basePrice            int
}

var defaultCatalog = []catalogEntry{
	{"justpadel", "JustPadel", "https://justpadel.com/products/siux-electra-st4-pro", "#ef4444", 290},
	{"passasports", "PassaSports", "https://www.passasports.nl/siux-electra-stupa-pro-st4-112639", "#3b82f6", 300},
	{"hollandpadel", "HollandPadel", "https://hollandpadel.com/collections/siux/products/siux-electra-stupa-pro-st4-2025", "#f97316", 285},
	{"tennis-voordeel", "Tennis Voordeel", "https://www.tennis-voordeel.nl/siux-electra-pro-st4/", "#10b981", 270},
	{"decathlon", "Decathlon", "https://www.decathlon.nl/sporten/padel/padel-racket-volwassenen?pdt-highlight=dff12a42-2531-4069-b253-281e869ee61b", "#0082c3", 260},
	{"padelnuestro", "Padel Nuestro", "https://www.padelnuestro.com/int/siux-electra-stupa-pro-st4-2025", "#8b5cf6", 295},
}

// GenerateHistory produces days+1 daily price points ending today. Each price
// is basePrice * (1 + u) with u uniform in [-0.15, +0.10), rounded to a whole
// currency unit.
func GenerateHistory(rng *rand.Rand, basePrice, days int, today time.Time) []model.PricePoint {
	if days < 0 {
		days = 0
	}
	end := model.Day(today)
	base := decimal.NewFromInt(int64(basePrice))
	spread := maxOffset - minOffset

	history := make([]model.PricePoint, 0, days+1)
	for i := days; i >= 0; i-- {
		volatility := rng.Float64()*spread + minOffset
		price := base.Mul(decimal.NewFromFloat(1 + volatility)).Round(0)
		history = append(history, model.PricePoint{
			Date:  end.AddDate(0, 0, -i),
			Price: int(price.IntPart()),
		})
	}
	return history
}

// BuildCatalog generates the static snapshot served by MockProvider.
func BuildCatalog(rng *rand.Rand, productName, imageURL string, today time.Time) *model.MarketData {
	competitors := make([]model.Competitor, 0, len(defaultCatalog))
	for _, e := range defaultCatalog {
		h := GenerateHistory(rng, e.basePrice, calculator.HistoryDays, today)
		competitors = append(competitors, model.NewCompetitor(e.id, e.name, e.url, e.color, h))
	}
	return &model.MarketData{
		ProductName: productName,
		ImageURL:    imageURL,
		Competitors: competitors,
	}
}

// MockProvider serves a fixed snapshot after an artificial delay. The
// catalog is regenerated once per UTC day so the history keeps ending today.
type MockProvider struct {
	Latency time.Duration

	mu          sync.Mutex
	rng         *rand.Rand
	productName string
	imageURL    string
	data        *model.MarketData
	day         time.Time
	now         func() time.Time
}

// NewMockProvider builds the catalog for the current day.
func NewMockProvider(productName, imageURL string, latency time.Duration, seed uint64) *MockProvider {
	if productName == "" {
		productName = DefaultProductName
	}
	if imageURL == "" {
		imageURL = DefaultImageURL
	}
	return &MockProvider{
		Latency:     latency,
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		productName: productName,
		imageURL:    imageURL,
		now:         time.Now,
	}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Fetch(ctx context.Context) (*model.MarketData, error) {
	if m.Latency > 0 {
		timer := time.NewTimer(m.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	now := m.now()
	data := m.catalog(now)
	snap := *data
	snap.Competitors = slices.Clone(data.Competitors)
	snap.FetchedAt = now
	return &snap, nil
}

// catalog returns today's catalog, building it on the first call of each day.
func (m *MockProvider) catalog(now time.Time) *model.MarketData {
	m.mu.Lock()
	defer m.mu.Unlock()
	today := model.Day(now.UTC())
	if m.data == nil || !today.Equal(m.day) {
		m.data = BuildCatalog(m.rng, m.productName, m.imageURL, today)
		m.day = today
	}
	return m.data
}
