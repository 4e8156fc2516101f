package models

import (
	"time"
)

// Call booking lifecycle statuses. A booking is immutable once created;
// its lifecycle ends at a terminal status.
const (
	CallStatusBooked    = "booked"
	CallStatusAccepted  = "accepted"
	CallStatusNoShow    = "no-show"
	CallStatusCancelled = "cancelled"
)

// Sale payment types.
const (
	SaleTypePaidInFull  = "paid-in-full"
	SaleTypeInstallment = "installment"
)

// CallBooking is a single discovery/sales call booked through the
// scheduling integration.
type CallBooking struct {
	ID         string    `json:"id"`
	VideoID    string    `json:"video_id"`
	BookedAt   time.Time `json:"booked_at"`
	Status     string    `json:"status"`
	Country    string    `json:"country"`
	LeadSource string    `json:"lead_source"`
}

// Sale references the call it was closed on. A call yields at most one
// sale in this model.
type Sale struct {
	ID       string    `json:"id"`
	CallID   string    `json:"call_id"`
	Amount   float64   `json:"amount"`
	Type     string    `json:"type"`
	Product  string    `json:"product"`
	ClosedAt time.Time `json:"closed_at"`
	Country  string    `json:"country"`
}

// YouTubeVideo carries lifetime counters as reported by the channel
// integration. Invariants: CallsAccepted <= CallsBooked and
// SalesClosed <= CallsAccepted.
type YouTubeVideo struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	PublishedAt    time.Time `json:"published_at"`
	Views          int       `json:"views"`
	UniqueViews    int       `json:"unique_views"`
	LeadsGenerated int       `json:"leads_generated"`
	CallsBooked    int       `json:"calls_booked"`
	CallsAccepted  int       `json:"calls_accepted"`
	SalesClosed    int       `json:"sales_closed"`
	Revenue        float64   `json:"revenue"`
	ConversionRate float64   `json:"conversion_rate"`
	RevenuePerView float64   `json:"revenue_per_view"`
}

// EmailCampaign groups the raw counters of one campaign send. Derived
// rates (open rate, click rate, ROI) are computed, never stored.
type EmailCampaign struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Subject     string              `json:"subject"`
	Type        string              `json:"type"`
	Status      string              `json:"status"`
	SentAt      time.Time           `json:"sent_at"`
	Recipients  CampaignRecipients  `json:"recipients"`
	Engagement  CampaignEngagement  `json:"engagement"`
	Conversions CampaignConversions `json:"conversions"`
}

type CampaignRecipients struct {
	Sent      int `json:"sent"`
	Delivered int `json:"delivered"`
}

type CampaignEngagement struct {
	UniqueOpens  int `json:"unique_opens"`
	UniqueClicks int `json:"unique_clicks"`
}

type CampaignConversions struct {
	CallsBooked int     `json:"calls_booked"`
	Revenue     float64 `json:"revenue"`
}

// TrafficSource is one attributed acquisition channel.
type TrafficSource struct {
	Platform           string  `json:"platform"`
	Medium             string  `json:"medium"`
	Campaign           string  `json:"campaign,omitempty"`
	Visitors           int     `json:"visitors"`
	CallsBooked        int     `json:"calls_booked"`
	SalesClosed        int     `json:"sales_closed"`
	Revenue            float64 `json:"revenue"`
	CostPerAcquisition float64 `json:"cost_per_acquisition,omitempty"`
}

// MonthlyMetrics is the per-calendar-month rollup the dashboard consumes.
// Month is formatted YYYY-MM.
type MonthlyMetrics struct {
	Month              string          `json:"month"`
	YouTubeViews       int             `json:"youtube_views"`
	YouTubeUniqueViews int             `json:"youtube_unique_views"`
	WebsiteVisitors    int             `json:"website_visitors"`
	CallsBooked        int             `json:"calls_booked"`
	CallsAccepted      int             `json:"calls_accepted"`
	SalesClosed        int             `json:"sales_closed"`
	ShowUpRate         float64         `json:"show_up_rate"`
	NewCashCollected   CashBreakdown   `json:"new_cash_collected"`
	TotalCashCollected float64         `json:"total_cash_collected"`
	ConversionRates    ConversionRates `json:"conversion_rates"`
}

type CashBreakdown struct {
	PaidInFull   float64 `json:"paid_in_full"`
	Installments float64 `json:"installments"`
	Total        float64 `json:"total"`
}

type ConversionRates struct {
	ViewToWebsite  float64 `json:"view_to_website"`
	WebsiteToCall  float64 `json:"website_to_call"`
	CallToAccepted float64 `json:"call_to_accepted"`
	AcceptedToSale float64 `json:"accepted_to_sale"`
}

// Trend statuses and severities.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"

	SeverityGood     = "good"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// TrendRecord is one metric compared month over month.
type TrendRecord struct {
	Metric        string  `json:"metric"`
	Current       float64 `json:"current"`
	Previous      float64 `json:"previous"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Status        string  `json:"status"`
	Severity      string  `json:"severity"`
	RecordHigh    bool    `json:"record_high"`
}

// VideoPerformance is the per-video attribution rollup for one month.
type VideoPerformance struct {
	VideoID        string  `json:"video_id"`
	Title          string  `json:"title"`
	MonthlyViews   int     `json:"monthly_views"`
	CallsBooked    int     `json:"calls_booked"`
	CallsAccepted  int     `json:"calls_accepted"`
	SalesClosed    int     `json:"sales_closed"`
	Revenue        float64 `json:"revenue"`
	ViewToCallRate float64 `json:"view_to_call_rate"`
	CallToSaleRate float64 `json:"call_to_sale_rate"`
	RevenuePerView float64 `json:"revenue_per_view"`
}

// CountryMetrics is the per-country attribution rollup for one month.
// Growth compares revenue against the previous calendar month.
type CountryMetrics struct {
	Country        string  `json:"country"`
	TotalCalls     int     `json:"total_calls"`
	TotalSales     int     `json:"total_sales"`
	TotalRevenue   float64 `json:"total_revenue"`
	ConversionRate float64 `json:"conversion_rate"`
	MarketShare    float64 `json:"market_share"`
	Growth         float64 `json:"growth"`
}

// Drop-off severities, ranked high > medium > low.
const (
	DropoffHigh   = "high"
	DropoffMedium = "medium"
	DropoffLow    = "low"
)

// DropoffPoint flags a funnel stage converting below its expected rate.
type DropoffPoint struct {
	Stage          string  `json:"stage"`
	FromStage      string  `json:"from_stage"`
	ConversionRate float64 `json:"conversion_rate"`
	ExpectedRate   float64 `json:"expected_rate"`
	Variance       float64 `json:"variance"`
	Severity       string  `json:"severity"`
}

// Insight types and impacts.
const (
	InsightTrend          = "trend"
	InsightRecommendation = "recommendation"
	InsightAlert          = "alert"

	ImpactHigh   = "high"
	ImpactMedium = "medium"
	ImpactLow    = "low"
)

// Insight is a human-readable observation derived from the monthly
// series, by the rule engine or by the LLM path.
type Insight struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Action      string `json:"action,omitempty"`
}

// CampaignPerformance is an email campaign with its derived rates.
type CampaignPerformance struct {
	Campaign    EmailCampaign `json:"campaign"`
	OpenRate    float64       `json:"open_rate"`
	ClickRate   float64       `json:"click_rate"`
	ClickToOpen float64       `json:"click_to_open"`
	Cost        float64       `json:"cost"`
	ROI         float64       `json:"roi"`
}

// TrafficPerformance is a traffic source with its derived rates.
type TrafficPerformance struct {
	Source         TrafficSource `json:"source"`
	ConversionRate float64       `json:"conversion_rate"`
	Cost           float64       `json:"cost"`
	ROI            float64       `json:"roi"`
}

// Integration connection states.
const (
	IntegrationConnected = "connected"
	IntegrationMock      = "mock"
	IntegrationError     = "error"
)

// IntegrationStatus reports connected-vs-mock per upstream API.
type IntegrationStatus struct {
	YouTube string `json:"youtube"`
	Kajabi  string `json:"kajabi"`
	CalCom  string `json:"calcom"`
	OpenAI  string `json:"openai"`
}

// Notification is an event emitted by the analytics pipeline (record
// highs, critical drop-offs). Delivered over a channel, never a shared
// mutable slice.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// DashboardRequest selects the slice of history to aggregate.
type DashboardRequest struct {
	TimeRange string `json:"time_range" binding:"required,oneof=3m 6m 12m all"`
}

// DashboardResponse is the full derived dataset.
type DashboardResponse struct {
	Months       []MonthlyMetrics      `json:"months"`
	Trends       []TrendRecord         `json:"trends"`
	Videos       []VideoPerformance    `json:"videos"`
	Countries    []CountryMetrics      `json:"countries"`
	Dropoffs     []DropoffPoint        `json:"dropoffs"`
	Insights     []Insight             `json:"insights"`
	Emails       []CampaignPerformance `json:"emails"`
	Traffic      []TrafficPerformance  `json:"traffic"`
	Integrations IntegrationStatus     `json:"integrations"`
	GeneratedAt  string                `json:"generated_at"`
}

// InsightsRequest carries the monthly series to analyze.
type InsightsRequest struct {
	MonthlyMetrics []MonthlyMetrics `json:"monthly_metrics" binding:"required"`
}

// InsightsResponse wraps the insight list with provenance.
type InsightsResponse struct {
	Insights    []Insight `json:"insights"`
	GeneratedAt string    `json:"generated_at"`
	DataPoints  int       `json:"data_points"`
	Source      string    `json:"source"`
}

// IngestResponse summarizes one ingestion run.
type IngestResponse struct {
	Status       string            `json:"status"`
	Calls        int               `json:"calls"`
	Sales        int               `json:"sales"`
	Videos       int               `json:"videos"`
	Campaigns    int               `json:"campaigns"`
	Sources      int               `json:"traffic_sources"`
	Integrations IntegrationStatus `json:"integrations"`
	ProcessedAt  string            `json:"processed_at"`
}

// MetricsResponse is the paginated list envelope.
type MetricsResponse struct {
	Data    interface{} `json:"data"`
	Total   int         `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
	HasMore bool        `json:"has_more"`
}

// ExportRecord is the flattened monthly rollup posted to the sink.
type ExportRecord struct {
	Month              string  `json:"month"`
	YouTubeViews       int     `json:"youtube_views"`
	WebsiteVisitors    int     `json:"website_visitors"`
	CallsBooked        int     `json:"calls_booked"`
	CallsAccepted      int     `json:"calls_accepted"`
	ShowUpRate         float64 `json:"show_up_rate"`
	NewCashPaidInFull  float64 `json:"new_cash_paid_in_full"`
	NewCashInstallment float64 `json:"new_cash_installments"`
	NewCashTotal       float64 `json:"new_cash_total"`
	AcceptedToSale     float64 `json:"accepted_to_sale"`
}

// MonthOf formats a timestamp as the YYYY-MM month key used across the
// aggregation core. All month math is done in UTC.
func MonthOf(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// PreviousMonth returns the YYYY-MM key immediately before month, or ""
// when month does not parse.
func PreviousMonth(month string) string {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return ""
	}
	return t.AddDate(0, -1, 0).Format("2006-01")
}
