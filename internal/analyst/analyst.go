package analyst

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"PadelTracker/internal/model"
)

const (
	DefaultModel = "gemini-3-flash-preview"

	FallbackSummary  = "AI Analysis unavailable currently. Please check the graph manually."
	FallbackBestDeal = "Check list below"
)

// Fallback is the fixed result substituted for any failed analysis.
func Fallback() model.AIAnalysisResult {
	return model.AIAnalysisResult{
		Recommendation: model.RecommendationNeutral,
		Summary:        FallbackSummary,
		BestDeal:       FallbackBestDeal,
	}
}

// Outcome is the terminal state of one analysis run.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// Report describes one analysis run. Result is always usable; Err is set
// when Outcome is OutcomeFailed.
type Report struct {
	ID        string
	Model     string
	Prompt    string
	Result    model.AIAnalysisResult
	Outcome   Outcome
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

// Analyzer turns a market snapshot into a buy/wait recommendation.
type Analyzer struct {
	generator Generator
	model     string
	category  string
	logger    *zap.Logger
}

// NewAnalyzer creates an Analyzer. A nil generator behaves like Unavailable.
func NewAnalyzer(gen Generator, modelName, category string, logger *zap.Logger) *Analyzer {
	if gen == nil {
		gen = Unavailable()
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	if category == "" {
		category = DefaultCategory
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{generator: gen, model: modelName, category: category, logger: logger}
}

// Analyze returns the recommendation for data, or Fallback on any failure.
func (a *Analyzer) Analyze(ctx context.Context, data *model.MarketData) model.AIAnalysisResult {
	return a.AnalyzeDetailed(ctx, data).Result
}

// AnalyzeDetailed runs one idle -> requesting -> succeeded|failed cycle.
// It never retries.
func (a *Analyzer) AnalyzeDetailed(ctx context.Context, data *model.MarketData) (report Report) {
	report = Report{ID: uuid.NewString(), Model: a.model, StartedAt: time.Now()}

	defer func() {
		if r := recover(); r != nil {
			report.Err = fmt.Errorf("analysis panicked: %v", r)
		}
		report.Duration = time.Since(report.StartedAt)
		if report.Err != nil {
			a.logger.Error("Gemini analysis failed",
				zap.String("analysis_id", report.ID),
				zap.String("model", report.Model),
				zap.Error(report.Err))
			report.Result = Fallback()
			report.Outcome = OutcomeFailed
			return
		}
		report.Outcome = OutcomeSucceeded
		a.logger.Info("Gemini analysis completed",
			zap.String("analysis_id", report.ID),
			zap.String("recommendation", string(report.Result.Recommendation)),
			zap.Duration("duration", report.Duration))
	}()

	report.Prompt, report.Result, report.Err = a.request(ctx, data)
	return report
}

func (a *Analyzer) request(ctx context.Context, data *model.MarketData) (string, model.AIAnalysisResult, error) {
	stats, err := Stats(data)
	if err != nil {
		return "", model.AIAnalysisResult{}, err
	}
	prompt, err := BuildPrompt(a.category, data.ProductName, stats)
	if err != nil {
		return "", model.AIAnalysisResult{}, err
	}

	text, err := a.generator.Generate(ctx, Request{
		Model:    a.model,
		Prompt:   prompt,
		MIMEType: ResponseMIMEType,
		Schema:   ResponseSchema(),
	})
	if err != nil {
		return prompt, model.AIAnalysisResult{}, err
	}
	a.logger.Debug("Gemini analysis response", zap.String("response", text))

	result, err := ParseResult(text)
	if err != nil {
		return prompt, model.AIAnalysisResult{}, fmt.Errorf("parse analysis response: %w", err)
	}
	return prompt, result, nil
}

var fencePattern = regexp.MustCompile("(?s)^\\s*```(?:json|JSON)?\\s*\\n?(.*?)\\n?\\s*```\\s*$")

// ParseResult decodes a structured response. All three fields are required
// and the recommendation must be a known verdict.
func ParseResult(text string) (model.AIAnalysisResult, error) {
	text = strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(text); len(m) > 1 {
		text = strings.TrimSpace(m[1])
	}
	if text == "" {
		return model.AIAnalysisResult{}, ErrEmptyResponse
	}

	var raw struct {
		Recommendation *string `json:"recommendation"`
		Summary        *string `json:"summary"`
		BestDeal       *string `json:"bestDeal"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return model.AIAnalysisResult{}, fmt.Errorf("decode JSON: %w", err)
	}
	switch {
	case raw.Recommendation == nil:
		return model.AIAnalysisResult{}, fmt.Errorf("missing field %q", "recommendation")
	case raw.Summary == nil:
		return model.AIAnalysisResult{}, fmt.Errorf("missing field %q", "summary")
	case raw.BestDeal == nil:
		return model.AIAnalysisResult{}, fmt.Errorf("missing field %q", "bestDeal")
	}

	rec := model.Recommendation(*raw.Recommendation)
	if !rec.Valid() {
		return model.AIAnalysisResult{}, fmt.Errorf("unknown recommendation %q", *raw.Recommendation)
	}
	return model.AIAnalysisResult{
		Recommendation: rec,
		Summary:        *raw.Summary,
		BestDeal:       *raw.BestDeal,
	}, nil
}
