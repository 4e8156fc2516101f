package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachmetrics/internal/models"
)

func ts(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAggregateMonth(t *testing.T) {
	calc := NewCalculator()

	calls := []models.CallBooking{
		{ID: "c1", BookedAt: ts("2025-06-03"), Status: models.CallStatusAccepted},
		{ID: "c2", BookedAt: ts("2025-06-10"), Status: models.CallStatusAccepted},
		{ID: "c3", BookedAt: ts("2025-06-17"), Status: models.CallStatusAccepted},
		{ID: "c4", BookedAt: ts("2025-06-24"), Status: models.CallStatusNoShow},
		{ID: "c5", BookedAt: ts("2025-05-30"), Status: models.CallStatusAccepted}, // previous month
	}
	sales := []models.Sale{
		{ID: "s1", CallID: "c1", Amount: 10000, Type: models.SaleTypePaidInFull, ClosedAt: ts("2025-06-05")},
		{ID: "s2", CallID: "c2", Amount: 2500, Type: models.SaleTypeInstallment, ClosedAt: ts("2025-06-12")},
		{ID: "s3", CallID: "c5", Amount: 9000, Type: models.SaleTypePaidInFull, ClosedAt: ts("2025-07-01")}, // next month
	}
	videos := []models.YouTubeVideo{
		{ID: "v1", PublishedAt: ts("2025-06-01"), Views: 1000, UniqueViews: 800},
		{ID: "v2", PublishedAt: ts("2025-06-15"), Views: 2000, UniqueViews: 1600},
		{ID: "v3", PublishedAt: ts("2025-05-01"), Views: 9999, UniqueViews: 9999},
	}

	m := calc.AggregateMonth("2025-06", calls, sales, videos, 300)

	assert.Equal(t, "2025-06", m.Month)
	assert.Equal(t, 4, m.CallsBooked)
	assert.Equal(t, 3, m.CallsAccepted)
	assert.Equal(t, 2, m.SalesClosed)
	assert.Equal(t, 3000, m.YouTubeViews)
	assert.Equal(t, 2400, m.YouTubeUniqueViews)
	assert.Equal(t, 300, m.WebsiteVisitors)
	assert.InDelta(t, 75.0, m.ShowUpRate, 1e-9)

	assert.InDelta(t, 10000.0, m.NewCashCollected.PaidInFull, 1e-9)
	assert.InDelta(t, 2500.0, m.NewCashCollected.Installments, 1e-9)
	assert.InDelta(t, 12500.0, m.NewCashCollected.Total, 1e-9)
	assert.InDelta(t, m.NewCashCollected.Total, m.TotalCashCollected, 1e-9)

	assert.InDelta(t, 10.0, m.ConversionRates.ViewToWebsite, 1e-9)
	assert.InDelta(t, 4.0/300*100, m.ConversionRates.WebsiteToCall, 1e-9)
	assert.InDelta(t, 75.0, m.ConversionRates.CallToAccepted, 1e-9)
	assert.InDelta(t, 2.0/3*100, m.ConversionRates.AcceptedToSale, 1e-9)
}

func TestAggregateMonthZeroCounts(t *testing.T) {
	calc := NewCalculator()

	m := calc.AggregateMonth("2025-06", nil, nil, nil, 0)

	rates := []float64{
		m.ShowUpRate,
		m.ConversionRates.ViewToWebsite,
		m.ConversionRates.WebsiteToCall,
		m.ConversionRates.CallToAccepted,
		m.ConversionRates.AcceptedToSale,
	}
	for _, rate := range rates {
		require.False(t, rate != rate, "rate must not be NaN")
		assert.GreaterOrEqual(t, rate, 0.0)
		assert.LessOrEqual(t, rate, 100.0)
	}
	assert.Equal(t, 0.0, m.ShowUpRate)
	assert.Equal(t, 0.0, m.NewCashCollected.Total)
}

func TestCashInvariant(t *testing.T) {
	calc := NewCalculator()

	sales := []models.Sale{
		{ID: "s1", Amount: 3333.33, Type: models.SaleTypePaidInFull, ClosedAt: ts("2025-06-05")},
		{ID: "s2", Amount: 1666.67, Type: models.SaleTypeInstallment, ClosedAt: ts("2025-06-06")},
		{ID: "s3", Amount: 4999.99, Type: models.SaleTypePaidInFull, ClosedAt: ts("2025-06-07")},
	}
	m := calc.AggregateMonth("2025-06", nil, sales, nil, 0)

	assert.InDelta(t, m.NewCashCollected.PaidInFull+m.NewCashCollected.Installments, m.NewCashCollected.Total, 0.01)
}

func TestSafeDivide(t *testing.T) {
	calc := NewCalculator()

	assert.Equal(t, 0.0, calc.safeDivide(10, 0))
	assert.Equal(t, 0.0, calc.pct(5, 0))
	assert.InDelta(t, 50.0, calc.pct(1, 2), 1e-9)
	assert.Equal(t, 0.0, calc.changePercent(100, 0))
	assert.InDelta(t, -50.0, calc.changePercent(50, 100), 1e-9)
}

func TestAggregateHistoryOrder(t *testing.T) {
	calc := NewCalculator()

	calls := []models.CallBooking{
		{ID: "c1", BookedAt: ts("2025-05-10"), Status: models.CallStatusAccepted},
		{ID: "c2", BookedAt: ts("2025-06-10"), Status: models.CallStatusAccepted},
	}
	history := calc.AggregateHistory([]string{"2025-05", "2025-06"}, calls, nil, nil, map[string]int{"2025-05": 10})

	require.Len(t, history, 2)
	assert.Equal(t, "2025-05", history[0].Month)
	assert.Equal(t, 10, history[0].WebsiteVisitors)
	assert.Equal(t, "2025-06", history[1].Month)
	assert.Equal(t, 0, history[1].WebsiteVisitors)
}
