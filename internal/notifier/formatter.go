package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"PadelTracker/internal/calculator"
	"PadelTracker/internal/dashboard"
	"PadelTracker/internal/model"
)

var trendMarks = map[calculator.Trend]string{
	calculator.TrendDown: "↓",
	calculator.TrendUp:   "↑",
	calculator.TrendFlat: "→",
}

var verdictMarks = map[model.Recommendation]string{
	model.RecommendationBuy:     "🟢",
	model.RecommendationWait:    "🟠",
	model.RecommendationNeutral: "⚪",
}

// FormatMarketReport renders the cheapest-first vendor list.
func FormatMarketReport(snap *model.MarketData, now time.Time) string {
	list := dashboard.BuildCompetitorList(snap)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("🎾 <b>%s</b> | %s\n\n", html.EscapeString(snap.ProductName), now.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Lowest price: €%d\n\n", list.BestPrice))
	for _, row := range list.Competitors {
		best := ""
		if row.IsBest {
			best = " ⭐"
		}
		b.WriteString(fmt.Sprintf("%s %s: €%d%s\n", trendMarks[row.Trend], html.EscapeString(row.Name), row.CurrentPrice, best))
	}
	return b.String()
}

// FormatAnalysis renders an analysis verdict.
func FormatAnalysis(result model.AIAnalysisResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>VERDICT: %s</b>\n\n", verdictMarks[result.Recommendation], result.Recommendation))
	b.WriteString(html.EscapeString(result.Summary))
	b.WriteString(fmt.Sprintf("\n\n<b>Best Deal:</b> %s", html.EscapeString(result.BestDeal)))
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "Available commands:\n• /prices - current vendor prices\n• /analyze - AI buy/wait verdict\n• /refresh - reload market data"
}
