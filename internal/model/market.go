package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format of a PricePoint date.
const DateLayout = "2006-01-02"

// ErrInvalidMarketData is returned by Validate for snapshots that break the model invariants.
var ErrInvalidMarketData = errors.New("invalid market data")

// PricePoint is a vendor's price on a single calendar day.
type PricePoint struct {
	Date  time.Time
	Price int
}

type pricePointJSON struct {
	Date  string `json:"date"`
	Price int    `json:"price"`
}

func (p PricePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(pricePointJSON{Date: p.Date.Format(DateLayout), Price: p.Price})
}

func (p *PricePoint) UnmarshalJSON(data []byte) error {
	var raw pricePointJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d, err := time.Parse(DateLayout, raw.Date)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", raw.Date, err)
	}
	p.Date = d
	p.Price = raw.Price
	return nil
}

// Day returns the date truncated to a UTC calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Competitor is one vendor selling the tracked product.
type Competitor struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	URL          string       `json:"url"`
	Color        string       `json:"color"`
	CurrentPrice int          `json:"currentPrice"`
	History      []PricePoint `json:"history"`
}

// NewCompetitor builds a Competitor whose current price is the price of the
// latest history point.
func NewCompetitor(id, name, url, color string, history []PricePoint) Competitor {
	c := Competitor{ID: id, Name: name, URL: url, Color: color, History: history}
	if n := len(history); n > 0 {
		c.CurrentPrice = history[n-1].Price
	}
	return c
}

// PreviousPrice returns the price of the second-latest history point.
func (c Competitor) PreviousPrice() (int, bool) {
	if len(c.History) < 2 {
		return 0, false
	}
	return c.History[len(c.History)-2].Price, true
}

// MarketData is an immutable point-in-time snapshot of all vendor prices.
type MarketData struct {
	ProductName string       `json:"productName"`
	ImageURL    string       `json:"imageUrl"`
	Competitors []Competitor `json:"competitors"`
	FetchedAt   time.Time    `json:"fetchedAt"`
}

// Competitor looks up a competitor by id.
func (m *MarketData) Competitor(id string) (Competitor, bool) {
	for _, c := range m.Competitors {
		if c.ID == id {
			return c, true
		}
	}
	return Competitor{}, false
}

// Validate checks that competitor ids are unique, histories are non-empty and
// strictly ascending by date, prices are non-negative and every current price
// matches the latest history point.
func (m *MarketData) Validate() error {
	if len(m.Competitors) == 0 {
		return fmt.Errorf("%w: no competitors", ErrInvalidMarketData)
	}
	seen := make(map[string]bool, len(m.Competitors))
	for _, c := range m.Competitors {
		if c.ID == "" {
			return fmt.Errorf("%w: competitor %q has no id", ErrInvalidMarketData, c.Name)
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate competitor id %q", ErrInvalidMarketData, c.ID)
		}
		seen[c.ID] = true

		if len(c.History) == 0 {
			return fmt.Errorf("%w: competitor %q has no price history", ErrInvalidMarketData, c.ID)
		}
		for i, p := range c.History {
			if p.Price < 0 {
				return fmt.Errorf("%w: competitor %q has negative price on %s", ErrInvalidMarketData, c.ID, p.Date.Format(DateLayout))
			}
			if i > 0 && !p.Date.After(c.History[i-1].Date) {
				return fmt.Errorf("%w: competitor %q history is not ascending at %s", ErrInvalidMarketData, c.ID, p.Date.Format(DateLayout))
			}
		}
		if last := c.History[len(c.History)-1].Price; c.CurrentPrice != last {
			return fmt.Errorf("%w: competitor %q current price %d differs from latest history price %d",
				ErrInvalidMarketData, c.ID, c.CurrentPrice, last)
		}
	}
	return nil
}
