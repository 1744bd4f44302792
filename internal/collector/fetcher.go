package collector

import (
	"context"

	"PadelTracker/internal/model"
)

// Provider supplies market snapshots.
type Provider interface {
	Fetch(ctx context.Context) (*model.MarketData, error)
	Name() string
}
