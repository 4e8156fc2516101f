package analytics

import (
	"math"
	"time"

	"coachmetrics/internal/models"
)

// Calculator holds the pure aggregation functions that turn raw event
// collections into the derived metrics the dashboard consumes. Every
// method is a pure function of its inputs; nothing is mutated in place.
type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// safeDivide guards every ratio in the core: zero denominator yields 0,
// never NaN or Inf. Results are not rounded here because the drop-off
// detector compares rates against strict numeric cutoffs.
func (c *Calculator) safeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	result := numerator / denominator
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0
	}
	return result
}

// pct is safeDivide expressed as a percentage.
func (c *Calculator) pct(numerator, denominator float64) float64 {
	return c.safeDivide(numerator, denominator) * 100
}

// changePercent is the guarded month-over-month delta: 0 when there is
// no previous value to compare against.
func (c *Calculator) changePercent(current, previous float64) float64 {
	return c.safeDivide(current-previous, previous) * 100
}

func inMonth(t time.Time, month string) bool {
	return models.MonthOf(t) == month
}

// AggregateMonth reduces the raw event collections to one MonthlyMetrics
// for the given YYYY-MM month. Each collection is filtered to records
// whose timestamp falls inside the month; visitors is the website
// visitor count for the same month, supplied by the traffic integration.
func (c *Calculator) AggregateMonth(month string, calls []models.CallBooking, sales []models.Sale, videos []models.YouTubeVideo, visitors int) models.MonthlyMetrics {
	callsBooked := 0
	callsAccepted := 0
	for _, call := range calls {
		if !inMonth(call.BookedAt, month) {
			continue
		}
		callsBooked++
		if call.Status == models.CallStatusAccepted {
			callsAccepted++
		}
	}

	salesClosed := 0
	cash := models.CashBreakdown{}
	for _, sale := range sales {
		if !inMonth(sale.ClosedAt, month) {
			continue
		}
		salesClosed++
		switch sale.Type {
		case models.SaleTypePaidInFull:
			cash.PaidInFull += sale.Amount
		case models.SaleTypeInstallment:
			cash.Installments += sale.Amount
		}
	}
	cash.Total = cash.PaidInFull + cash.Installments

	views := 0
	uniqueViews := 0
	for _, video := range videos {
		if !inMonth(video.PublishedAt, month) {
			continue
		}
		views += video.Views
		uniqueViews += video.UniqueViews
	}

	return models.MonthlyMetrics{
		Month:              month,
		YouTubeViews:       views,
		YouTubeUniqueViews: uniqueViews,
		WebsiteVisitors:    visitors,
		CallsBooked:        callsBooked,
		CallsAccepted:      callsAccepted,
		SalesClosed:        salesClosed,
		ShowUpRate:         c.pct(float64(callsAccepted), float64(callsBooked)),
		NewCashCollected:   cash,
		TotalCashCollected: cash.Total,
		ConversionRates: models.ConversionRates{
			ViewToWebsite:  c.pct(float64(visitors), float64(views)),
			WebsiteToCall:  c.pct(float64(callsBooked), float64(visitors)),
			CallToAccepted: c.pct(float64(callsAccepted), float64(callsBooked)),
			AcceptedToSale: c.pct(float64(salesClosed), float64(callsAccepted)),
		},
	}
}

// AggregateHistory runs AggregateMonth for each month key, in order.
// Visitor counts are looked up per month; absent months count as 0.
func (c *Calculator) AggregateHistory(months []string, calls []models.CallBooking, sales []models.Sale, videos []models.YouTubeVideo, visitorsByMonth map[string]int) []models.MonthlyMetrics {
	history := make([]models.MonthlyMetrics, 0, len(months))
	for _, month := range months {
		history = append(history, c.AggregateMonth(month, calls, sales, videos, visitorsByMonth[month]))
	}
	return history
}
