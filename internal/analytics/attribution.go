package analytics

import (
	"sort"

	"coachmetrics/internal/models"
)

// Video sort orders. Sorts are stable; ties preserve input order.
const (
	SortByRevenue    = "revenue"
	SortByViews      = "views"
	SortByViewToCall = "view_to_call"
)

// Markets the business sells into. Countries outside this list are
// rolled up under "other".
var countryCodes = []string{"US", "CA", "GB", "AU", "DE", "AE", "SG", "NL", "other"}

// AttributeVideos joins videos to the calls booked from them in the
// given month, and those calls to sales by call ID -- sales carry no
// direct video reference. Videos with no calls in the month still appear
// with zeroed rates.
func (c *Calculator) AttributeVideos(videos []models.YouTubeVideo, calls []models.CallBooking, sales []models.Sale, month, sortBy string) []models.VideoPerformance {
	salesByCall := make(map[string][]models.Sale, len(sales))
	for _, sale := range sales {
		salesByCall[sale.CallID] = append(salesByCall[sale.CallID], sale)
	}

	perf := make([]models.VideoPerformance, 0, len(videos))
	for _, video := range videos {
		p := models.VideoPerformance{
			VideoID:      video.ID,
			Title:        video.Title,
			MonthlyViews: video.Views,
		}
		for _, call := range calls {
			if call.VideoID != video.ID || !inMonth(call.BookedAt, month) {
				continue
			}
			p.CallsBooked++
			if call.Status == models.CallStatusAccepted {
				p.CallsAccepted++
			}
			for _, sale := range salesByCall[call.ID] {
				p.SalesClosed++
				p.Revenue += sale.Amount
			}
		}
		p.ViewToCallRate = c.pct(float64(p.CallsBooked), float64(p.MonthlyViews))
		p.CallToSaleRate = c.pct(float64(p.SalesClosed), float64(p.CallsBooked))
		p.RevenuePerView = c.safeDivide(p.Revenue, float64(p.MonthlyViews))
		perf = append(perf, p)
	}

	switch sortBy {
	case SortByViews:
		sort.SliceStable(perf, func(i, j int) bool { return perf[i].MonthlyViews > perf[j].MonthlyViews })
	case SortByViewToCall:
		sort.SliceStable(perf, func(i, j int) bool { return perf[i].ViewToCallRate > perf[j].ViewToCallRate })
	default:
		sort.SliceStable(perf, func(i, j int) bool { return perf[i].Revenue > perf[j].Revenue })
	}
	return perf
}

func countryKey(code string) string {
	for _, known := range countryCodes {
		if code == known {
			return code
		}
	}
	return "other"
}

type countryTotals struct {
	calls   int
	sales   int
	revenue float64
}

// AttributeCountries rolls calls and sales up per country for the given
// month. Growth compares revenue against the previous calendar month;
// the first observed month reports 0. Countries with no calls in the
// month are omitted rather than zero-filled.
func (c *Calculator) AttributeCountries(month string, calls []models.CallBooking, sales []models.Sale) []models.CountryMetrics {
	prevMonth := models.PreviousMonth(month)

	current := make(map[string]*countryTotals, len(countryCodes))
	prevRevenue := make(map[string]float64, len(countryCodes))
	for _, code := range countryCodes {
		current[code] = &countryTotals{}
	}

	for _, call := range calls {
		if !inMonth(call.BookedAt, month) {
			continue
		}
		current[countryKey(call.Country)].calls++
	}

	totalRevenue := 0.0
	for _, sale := range sales {
		switch {
		case inMonth(sale.ClosedAt, month):
			t := current[countryKey(sale.Country)]
			t.sales++
			t.revenue += sale.Amount
			totalRevenue += sale.Amount
		case prevMonth != "" && inMonth(sale.ClosedAt, prevMonth):
			prevRevenue[countryKey(sale.Country)] += sale.Amount
		}
	}

	out := make([]models.CountryMetrics, 0, len(countryCodes))
	for _, code := range countryCodes {
		t := current[code]
		if t.calls == 0 {
			continue
		}
		out = append(out, models.CountryMetrics{
			Country:        code,
			TotalCalls:     t.calls,
			TotalSales:     t.sales,
			TotalRevenue:   t.revenue,
			ConversionRate: c.pct(float64(t.sales), float64(t.calls)),
			MarketShare:    c.pct(t.revenue, totalRevenue),
			Growth:         c.changePercent(t.revenue, prevRevenue[code]),
		})
	}
	return out
}
