package collector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"PadelTracker/internal/calculator"
	"PadelTracker/internal/model"
)

// Collector fetches snapshots from a Provider and checks them before use.
type Collector struct {
	Provider Provider
	logger   *zap.Logger
}

// NewCollector creates a new Collector.
func NewCollector(provider Provider, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{Provider: provider, logger: logger}
}

// Collect fetches one snapshot and validates the model invariants.
func (c *Collector) Collect(ctx context.Context) (*model.MarketData, error) {
	snap, err := c.Provider.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch from %s: %w", c.Provider.Name(), err)
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("validate snapshot from %s: %w", c.Provider.Name(), err)
	}

	best, _ := calculator.Cheapest(snap.Competitors)
	c.logger.Info("market snapshot collected",
		zap.String("provider", c.Provider.Name()),
		zap.String("product", snap.ProductName),
		zap.Int("vendors", len(snap.Competitors)),
		zap.String("cheapest_vendor", best.Name),
		zap.Int("lowest_price", best.CurrentPrice))
	return snap, nil
}
