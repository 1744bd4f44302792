package model

// Recommendation is the verdict on purchase timing.
type Recommendation string

const (
	RecommendationBuy     Recommendation = "BUY"
	RecommendationWait    Recommendation = "WAIT"
	RecommendationNeutral Recommendation = "NEUTRAL"
)

// Recommendations lists every valid verdict in schema order.
var Recommendations = []Recommendation{RecommendationBuy, RecommendationWait, RecommendationNeutral}

// Valid reports whether r is one of the known verdicts.
func (r Recommendation) Valid() bool {
	switch r {
	case RecommendationBuy, RecommendationWait, RecommendationNeutral:
		return true
	}
	return false
}

// AIAnalysisResult is the structured output of one market analysis.
type AIAnalysisResult struct {
	Recommendation Recommendation `json:"recommendation"`
	Summary        string         `json:"summary"`
	BestDeal       string         `json:"bestDeal"`
}

// VendorStats summarizes one vendor's history for the analysis prompt.
type VendorStats struct {
	Store                  string `json:"store"`
	CurrentPrice           int    `json:"currentPrice"`
	LowestPriceLast30Days  int    `json:"lowestPriceLast30Days"`
	HighestPriceLast30Days int    `json:"highestPriceLast30Days"`
}
