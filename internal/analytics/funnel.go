package analytics

import (
	"sort"

	"coachmetrics/internal/models"
)

// Funnel stage names.
const (
	StageYouTubeView  = "youtube_view"
	StageWebsiteVisit = "website_visit"
	StageCallBooked   = "call_booked"
	StageCallShowUp   = "call_show_up"
	StageSaleClosed   = "sale_closed"
)

type funnelStage struct {
	stage     string
	fromStage string
	rate      func(m models.MonthlyMetrics) float64
	flagBelow float64
	expected  float64
	highCut   float64
	mediumCut float64
}

// Fixed business thresholds per funnel transition. A stage is flagged
// only when its rate is strictly below flagBelow.
var funnelStages = []funnelStage{
	{StageWebsiteVisit, StageYouTubeView, func(m models.MonthlyMetrics) float64 { return m.ConversionRates.ViewToWebsite }, 8, 10, 5, 8},
	{StageCallBooked, StageWebsiteVisit, func(m models.MonthlyMetrics) float64 { return m.ConversionRates.WebsiteToCall }, 15, 20, 10, 15},
	{StageCallShowUp, StageCallBooked, func(m models.MonthlyMetrics) float64 { return m.ShowUpRate }, 70, 75, 60, 70},
	{StageSaleClosed, StageCallShowUp, func(m models.MonthlyMetrics) float64 { return m.ConversionRates.AcceptedToSale }, 20, 25, 15, 20},
}

var severityRank = map[string]int{
	models.DropoffHigh:   0,
	models.DropoffMedium: 1,
	models.DropoffLow:    2,
}

// DetectDropoffs flags every funnel stage of the latest month that
// converts below its threshold, ordered by severity (high first, stable
// for ties).
func (c *Calculator) DetectDropoffs(latest models.MonthlyMetrics) []models.DropoffPoint {
	var points []models.DropoffPoint
	for _, fs := range funnelStages {
		rate := fs.rate(latest)
		if rate >= fs.flagBelow {
			continue
		}
		severity := models.DropoffLow
		switch {
		case rate < fs.highCut:
			severity = models.DropoffHigh
		case rate < fs.mediumCut:
			severity = models.DropoffMedium
		}
		points = append(points, models.DropoffPoint{
			Stage:          fs.stage,
			FromStage:      fs.fromStage,
			ConversionRate: rate,
			ExpectedRate:   fs.expected,
			Variance:       rate - fs.expected,
			Severity:       severity,
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return severityRank[points[i].Severity] < severityRank[points[j].Severity]
	})
	return points
}
