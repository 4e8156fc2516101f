package analytics

import (
	"coachmetrics/internal/models"
)

// Metric names used in trend records.
const (
	MetricYouTubeViews    = "youtube_views"
	MetricWebsiteVisitors = "website_visitors"
	MetricCallsBooked     = "calls_booked"
	MetricCallsAccepted   = "calls_accepted"
	MetricShowUpRate      = "show_up_rate"
	MetricNewCash         = "new_cash_collected"
	MetricCloseRate       = "close_rate"
)

type trendMetric struct {
	name     string
	value    func(m models.MonthlyMetrics) float64
	severity func(value, changePercent float64) string
}

// Show-up and close rate carry fixed business bands; volume metrics are
// judged on the direction and size of the month-over-month move.
var trendMetrics = []trendMetric{
	{MetricYouTubeViews, func(m models.MonthlyMetrics) float64 { return float64(m.YouTubeViews) }, volumeSeverity},
	{MetricWebsiteVisitors, func(m models.MonthlyMetrics) float64 { return float64(m.WebsiteVisitors) }, volumeSeverity},
	{MetricCallsBooked, func(m models.MonthlyMetrics) float64 { return float64(m.CallsBooked) }, volumeSeverity},
	{MetricCallsAccepted, func(m models.MonthlyMetrics) float64 { return float64(m.CallsAccepted) }, volumeSeverity},
	{MetricShowUpRate, func(m models.MonthlyMetrics) float64 { return m.ShowUpRate }, showUpSeverity},
	{MetricNewCash, func(m models.MonthlyMetrics) float64 { return m.NewCashCollected.Total }, volumeSeverity},
	{MetricCloseRate, func(m models.MonthlyMetrics) float64 { return m.ConversionRates.AcceptedToSale }, closeRateSeverity},
}

func showUpSeverity(value, _ float64) string {
	switch {
	case value < 70:
		return models.SeverityCritical
	case value < 80:
		return models.SeverityWarning
	default:
		return models.SeverityGood
	}
}

func closeRateSeverity(value, _ float64) string {
	switch {
	case value < 15:
		return models.SeverityCritical
	case value < 25:
		return models.SeverityWarning
	default:
		return models.SeverityGood
	}
}

func volumeSeverity(_, changePercent float64) string {
	switch {
	case changePercent <= -20:
		return models.SeverityCritical
	case changePercent < 0:
		return models.SeverityWarning
	default:
		return models.SeverityGood
	}
}

// CompareMonths computes the month-over-month trend records for the
// tracked metrics. previous may be nil (first month in a series): the
// change fields stay 0 and status is stable, which callers must treat as
// a valid case, not an error.
func (c *Calculator) CompareMonths(current models.MonthlyMetrics, previous *models.MonthlyMetrics) []models.TrendRecord {
	records := make([]models.TrendRecord, 0, len(trendMetrics))
	for _, tm := range trendMetrics {
		rec := models.TrendRecord{
			Metric:  tm.name,
			Current: tm.value(current),
			Status:  models.TrendStable,
		}
		if previous != nil {
			rec.Previous = tm.value(*previous)
			rec.Change = rec.Current - rec.Previous
			rec.ChangePercent = c.changePercent(rec.Current, rec.Previous)
			if rec.Current > rec.Previous {
				rec.Status = models.TrendUp
			} else if rec.Current < rec.Previous {
				rec.Status = models.TrendDown
			}
		}
		rec.Severity = tm.severity(rec.Current, rec.ChangePercent)
		records = append(records, rec)
	}
	return records
}

// IsRecordHigh reports whether value equals the maximum of series. Any
// month matching the maximum is flagged, not just the first occurrence,
// so repeated identical peaks stay deterministic.
func (c *Calculator) IsRecordHigh(value float64, series []float64) bool {
	if len(series) == 0 {
		return false
	}
	max := series[0]
	for _, v := range series[1:] {
		if v > max {
			max = v
		}
	}
	return value == max
}

// AnalyzeTrends compares the two most recent months of history and marks
// each record that sits at its all-time high across the full series.
func (c *Calculator) AnalyzeTrends(history []models.MonthlyMetrics) []models.TrendRecord {
	if len(history) == 0 {
		return nil
	}
	current := history[len(history)-1]
	var previous *models.MonthlyMetrics
	if len(history) > 1 {
		previous = &history[len(history)-2]
	}

	records := c.CompareMonths(current, previous)
	for i, tm := range trendMetrics {
		series := make([]float64, 0, len(history))
		for _, m := range history {
			series = append(series, tm.value(m))
		}
		records[i].RecordHigh = c.IsRecordHigh(records[i].Current, series)
	}
	return records
}
