package analytics

import (
	"fmt"

	"coachmetrics/internal/models"
)

// Rule thresholds for the deterministic insight generator. The LLM path
// may replace this generator but must keep the same output shape.
const (
	revenueGrowthStrong = 20.0
	revenueDeclineAlert = -10.0
	showUpRateFloor     = 80.0
	acceptedToSaleFloor = 25.0
)

// GenerateInsights derives human-readable insights from the monthly
// series. With fewer than two months there is nothing to compare, so a
// single "need more data" recommendation is returned. Otherwise the last
// two months are examined by an independent rule list: zero, one, or
// several insights may fire per call.
func (c *Calculator) GenerateInsights(history []models.MonthlyMetrics) []models.Insight {
	if len(history) < 2 {
		return []models.Insight{{
			Type:        models.InsightRecommendation,
			Title:       "More Data Needed",
			Description: "At least two months of metrics are required before trends can be analyzed.",
			Impact:      models.ImpactMedium,
			Action:      "Keep ingesting data and check back after the next month closes.",
		}}
	}

	previous := history[len(history)-2]
	current := history[len(history)-1]
	insights := []models.Insight{}

	growth := c.changePercent(current.NewCashCollected.Total, previous.NewCashCollected.Total)
	if growth > revenueGrowthStrong {
		insights = append(insights, models.Insight{
			Type:        models.InsightTrend,
			Title:       "Strong Revenue Growth",
			Description: fmt.Sprintf("New cash collected grew %.1f%% month over month (%.0f to %.0f).", growth, previous.NewCashCollected.Total, current.NewCashCollected.Total),
			Impact:      models.ImpactHigh,
		})
	}
	if growth < revenueDeclineAlert {
		insights = append(insights, models.Insight{
			Type:        models.InsightAlert,
			Title:       "Revenue Decline",
			Description: fmt.Sprintf("New cash collected fell %.1f%% month over month.", -growth),
			Impact:      models.ImpactHigh,
			Action:      "Review the funnel drop-off report for the stage losing the most volume.",
		})
	}

	// Rate rules look at the two-month average so a single soft month
	// after a strong one stays quiet; only sustained underperformance
	// fires.
	showUp := (previous.ShowUpRate + current.ShowUpRate) / 2
	if showUp < showUpRateFloor {
		insights = append(insights, models.Insight{
			Type:        models.InsightRecommendation,
			Title:       "Improve Show-Up Rate",
			Description: fmt.Sprintf("Show-up rate averaged %.1f%% over the last two months, below the %.0f%% target.", showUp, showUpRateFloor),
			Impact:      models.ImpactMedium,
			Action:      "Add reminder sequences 24h and 1h before each booked call.",
		})
	}

	closeRate := (previous.ConversionRates.AcceptedToSale + current.ConversionRates.AcceptedToSale) / 2
	if closeRate < acceptedToSaleFloor {
		insights = append(insights, models.Insight{
			Type:        models.InsightRecommendation,
			Title:       "Optimize Sales Calls",
			Description: fmt.Sprintf("Accepted-to-sale conversion averaged %.1f%%, below the %.0f%% target.", closeRate, acceptedToSaleFloor),
			Impact:      models.ImpactHigh,
			Action:      "Review call recordings and tighten the offer presentation.",
		})
	}

	return insights
}
