package analytics

import (
	"coachmetrics/internal/models"
)

// emailCostPerSend is the fixed per-unit rate used to estimate campaign
// cost for ROI.
const emailCostPerSend = 0.01

// EmailPerformance computes the derived rates for each campaign. Rates
// are computed on demand, never stored on the campaign record.
func (c *Calculator) EmailPerformance(campaigns []models.EmailCampaign) []models.CampaignPerformance {
	perf := make([]models.CampaignPerformance, 0, len(campaigns))
	for _, campaign := range campaigns {
		cost := float64(campaign.Recipients.Sent) * emailCostPerSend
		perf = append(perf, models.CampaignPerformance{
			Campaign:    campaign,
			OpenRate:    c.pct(float64(campaign.Engagement.UniqueOpens), float64(campaign.Recipients.Delivered)),
			ClickRate:   c.pct(float64(campaign.Engagement.UniqueClicks), float64(campaign.Recipients.Delivered)),
			ClickToOpen: c.pct(float64(campaign.Engagement.UniqueClicks), float64(campaign.Engagement.UniqueOpens)),
			Cost:        cost,
			ROI:         c.pct(campaign.Conversions.Revenue-cost, cost),
		})
	}
	return perf
}

// TrafficPerformance computes conversion and ROI per traffic source.
// Cost is estimated from cost-per-acquisition when the source reports
// one; organic sources carry zero cost and report zero ROI.
func (c *Calculator) TrafficPerformance(sources []models.TrafficSource) []models.TrafficPerformance {
	perf := make([]models.TrafficPerformance, 0, len(sources))
	for _, source := range sources {
		cost := source.CostPerAcquisition * float64(source.SalesClosed)
		perf = append(perf, models.TrafficPerformance{
			Source:         source,
			ConversionRate: c.pct(float64(source.SalesClosed), float64(source.Visitors)),
			Cost:           cost,
			ROI:            c.pct(source.Revenue-cost, cost),
		})
	}
	return perf
}
