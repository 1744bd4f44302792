package analyst

import (
	"google.golang.org/genai"

	"PadelTracker/internal/model"
)

// ResponseMIMEType asks the service for a JSON payload instead of prose.
const ResponseMIMEType = "application/json"

// ResponseSchema declares the AIAnalysisResult shape: three required string
// fields, recommendation restricted to the known verdicts.
func ResponseSchema() *genai.Schema {
	verdicts := make([]string, len(model.Recommendations))
	for i, r := range model.Recommendations {
		verdicts[i] = string(r)
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"recommendation": {Type: genai.TypeString, Enum: verdicts},
			"summary":        {Type: genai.TypeString, Description: "Market situation in at most two sentences"},
			"bestDeal":       {Type: genai.TypeString, Description: "Store name and price of the best deal"},
		},
		Required:         []string{"recommendation", "summary", "bestDeal"},
		PropertyOrdering: []string{"recommendation", "summary", "bestDeal"},
	}
}
