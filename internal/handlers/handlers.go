package handlers

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"coachmetrics/internal/analytics"
	"coachmetrics/internal/client"
	"coachmetrics/internal/config"
	"coachmetrics/internal/export"
	"coachmetrics/internal/mockdata"
	"coachmetrics/internal/models"
	"coachmetrics/internal/notify"
	"coachmetrics/internal/storage"
	"coachmetrics/internal/telemetry"
	"coachmetrics/internal/transformer"
)

type Handler struct {
	config      *config.Config
	store       *storage.MemoryStore
	calculator  *analytics.Calculator
	youtube     *client.YouTubeClient
	kajabi      *client.KajabiClient
	calcom      *client.CalComClient
	ai          *client.InsightsClient
	generator   *mockdata.Generator
	transformer *transformer.Transformer
	exporter    *export.Exporter
	notifier    *notify.Notifier
	metrics     *telemetry.Metrics
	logger      *logrus.Logger

	mu     sync.RWMutex
	status models.IntegrationStatus
}

func New(cfg *config.Config, store *storage.MemoryStore, calculator *analytics.Calculator,
	youtube *client.YouTubeClient, kajabi *client.KajabiClient, calcom *client.CalComClient,
	ai *client.InsightsClient, generator *mockdata.Generator, tf *transformer.Transformer,
	exporter *export.Exporter, notifier *notify.Notifier, metrics *telemetry.Metrics,
	logger *logrus.Logger) *Handler {

	h := &Handler{
		config:      cfg,
		store:       store,
		calculator:  calculator,
		youtube:     youtube,
		kajabi:      kajabi,
		calcom:      calcom,
		ai:          ai,
		generator:   generator,
		transformer: tf,
		exporter:    exporter,
		notifier:    notifier,
		metrics:     metrics,
		logger:      logger,
	}
	h.status = models.IntegrationStatus{
		YouTube: connState(youtube.Enabled()),
		Kajabi:  connState(kajabi.Enabled()),
		CalCom:  connState(calcom.Enabled()),
		OpenAI:  connState(ai.Enabled()),
	}
	return h
}

func connState(enabled bool) string {
	if enabled {
		return models.IntegrationConnected
	}
	return models.IntegrationMock
}

func (h *Handler) integrationStatus() models.IntegrationStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "coachmetrics",
	})
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.store.HasData() {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"has_data":    true,
			"last_ingest": h.store.LastIngest().Format(time.RFC3339),
		})
	} else {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "not ready",
			"has_data": false,
			"message":  "No data ingested yet",
		})
	}
}

// IngestData pulls every integration (or its mock fallback), stores the
// normalized collections, and emits notifications for record highs and
// critical drop-offs.
func (h *Handler) IngestData(c *gin.Context) {
	startTime := time.Now()
	mock := h.generator.Generate()
	status := models.IntegrationStatus{
		YouTube: connState(h.youtube.Enabled()),
		Kajabi:  connState(h.kajabi.Enabled()),
		CalCom:  connState(h.calcom.Enabled()),
		OpenAI:  connState(h.ai.Enabled()),
	}

	videos := mock.Videos
	if h.youtube.Enabled() {
		fetched, err := h.youtube.FetchVideos()
		if err != nil {
			h.logger.WithError(err).Error("YouTube fetch failed, serving mock data")
			status.YouTube = models.IntegrationError
		} else {
			videos = h.transformer.SanitizeVideos(fetched)
		}
	}

	calls := mock.Calls
	if h.calcom.Enabled() {
		fetched, err := h.calcom.FetchBookings()
		if err != nil {
			h.logger.WithError(err).Error("Cal.com fetch failed, serving mock data")
			status.CalCom = models.IntegrationError
		} else {
			calls = h.transformer.SanitizeCalls(fetched)
		}
	}

	sales := mock.Sales
	campaigns := mock.Campaigns
	if h.kajabi.Enabled() {
		fetchedSales, err := h.kajabi.FetchSales()
		if err != nil {
			h.logger.WithError(err).Error("Kajabi sales fetch failed, serving mock data")
			status.Kajabi = models.IntegrationError
		} else {
			sales = h.transformer.SanitizeSales(fetchedSales)
			if fetchedCampaigns, err := h.kajabi.FetchCampaigns(); err != nil {
				h.logger.WithError(err).Error("Kajabi campaigns fetch failed, serving mock data")
				status.Kajabi = models.IntegrationError
			} else {
				campaigns = fetchedCampaigns
			}
		}
	}

	h.store.StoreCalls(calls)
	h.store.StoreSales(sales)
	h.store.StoreVideos(videos)
	h.store.StoreCampaigns(campaigns)
	h.store.StoreTraffic(mock.Traffic)
	h.store.StoreVisitors(mock.Visitors)

	h.mu.Lock()
	h.status = status
	h.mu.Unlock()

	h.metrics.IngestRuns.WithLabelValues("success").Inc()
	h.metrics.ConnectedAPIs.Set(float64(countConnected(status)))
	h.publishSignals()

	h.logger.WithFields(logrus.Fields{
		"calls":       len(calls),
		"sales":       len(sales),
		"videos":      len(videos),
		"campaigns":   len(campaigns),
		"duration_ms": time.Since(startTime).Milliseconds(),
	}).Info("Data ingestion completed")

	c.JSON(http.StatusOK, models.IngestResponse{
		Status:       "success",
		Calls:        len(calls),
		Sales:        len(sales),
		Videos:       len(videos),
		Campaigns:    len(campaigns),
		Sources:      len(mock.Traffic),
		Integrations: status,
		ProcessedAt:  time.Now().Format(time.RFC3339),
	})
}

func countConnected(status models.IntegrationStatus) int {
	n := 0
	for _, s := range []string{status.YouTube, status.Kajabi, status.CalCom, status.OpenAI} {
		if s == models.IntegrationConnected {
			n++
		}
	}
	return n
}

// publishSignals pushes record-high and critical-drop-off events onto
// the notifier channel after an ingest.
func (h *Handler) publishSignals() {
	history := h.history(h.store.Months())
	if len(history) == 0 {
		return
	}
	for _, trend := range h.calculator.AnalyzeTrends(history) {
		if trend.RecordHigh && trend.Current > 0 {
			h.notifier.Publish("record_high", "New record: "+trend.Metric,
				"Latest month set an all-time high for "+trend.Metric+".")
		}
	}
	for _, point := range h.calculator.DetectDropoffs(history[len(history)-1]) {
		if point.Severity == models.DropoffHigh {
			h.notifier.Publish("alert", "Funnel drop-off: "+point.Stage,
				"Conversion into "+point.Stage+" is well below its expected rate.")
		}
	}
}

func (h *Handler) history(months []string) []models.MonthlyMetrics {
	return h.calculator.AggregateHistory(months,
		h.store.GetCalls(), h.store.GetSales(), h.store.GetVideos(), h.store.GetVisitors())
}

func sliceMonths(months []string, timeRange string) []string {
	var keep int
	switch timeRange {
	case "3m":
		keep = 3
	case "6m":
		keep = 6
	case "12m":
		keep = 12
	default:
		return months
	}
	if len(months) > keep {
		return months[len(months)-keep:]
	}
	return months
}

func (h *Handler) buildDashboard(timeRange string) (models.DashboardResponse, bool) {
	months := sliceMonths(h.store.Months(), timeRange)
	if len(months) == 0 {
		return models.DashboardResponse{}, false
	}

	calls := h.store.GetCalls()
	sales := h.store.GetSales()
	videos := h.store.GetVideos()
	history := h.calculator.AggregateHistory(months, calls, sales, videos, h.store.GetVisitors())
	latest := months[len(months)-1]

	return models.DashboardResponse{
		Months:       history,
		Trends:       h.calculator.AnalyzeTrends(history),
		Videos:       h.calculator.AttributeVideos(videos, calls, sales, latest, analytics.SortByRevenue),
		Countries:    h.calculator.AttributeCountries(latest, calls, sales),
		Dropoffs:     h.calculator.DetectDropoffs(history[len(history)-1]),
		Insights:     h.calculator.GenerateInsights(history),
		Emails:       h.calculator.EmailPerformance(h.store.GetCampaigns()),
		Traffic:      h.calculator.TrafficPerformance(h.store.GetTraffic()),
		Integrations: h.integrationStatus(),
		GeneratedAt:  time.Now().Format(time.RFC3339),
	}, true
}

func (h *Handler) GetDashboard(c *gin.Context) {
	dashboard, ok := h.buildDashboard("all")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No data available. Please run ingestion first."})
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// PostDashboard returns the time-sliced subset. Shape validation lives
// here at the boundary; the aggregation core never sees bad input.
func (h *Handler) PostDashboard(c *gin.Context) {
	var req models.DashboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "time_range must be one of: 3m, 6m, 12m, all"})
		return
	}
	dashboard, ok := h.buildDashboard(req.TimeRange)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No data available. Please run ingestion first."})
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// AIInsights runs the LLM path when configured and degrades to the
// deterministic rule engine on any failure. The response shape is the
// same either way.
func (h *Handler) AIInsights(c *gin.Context) {
	var req models.InsightsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.MonthlyMetrics) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "monthly_metrics must be a non-empty array"})
		return
	}

	source := "rules"
	var insights []models.Insight
	if h.ai.Enabled() {
		generated, err := h.ai.Generate(req.MonthlyMetrics)
		if err != nil {
			h.logger.WithError(err).Warn("AI insights failed, falling back to rule engine")
			h.metrics.InsightFallbacks.Inc()
		} else {
			insights = generated
			source = "openai"
		}
	}
	if insights == nil {
		insights = h.calculator.GenerateInsights(req.MonthlyMetrics)
	}

	c.JSON(http.StatusOK, models.InsightsResponse{
		Insights:    insights,
		GeneratedAt: time.Now().Format(time.RFC3339),
		DataPoints:  len(req.MonthlyMetrics),
		Source:      source,
	})
}

func (h *Handler) latestMonth(c *gin.Context) (string, bool) {
	month := c.Query("month")
	if month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month format, use YYYY-MM"})
			return "", false
		}
		return month, true
	}
	months := h.store.Months()
	if len(months) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No data available. Please run ingestion first."})
		return "", false
	}
	return months[len(months)-1], true
}

func (h *Handler) GetVideos(c *gin.Context) {
	month, ok := h.latestMonth(c)
	if !ok {
		return
	}
	sortBy := c.DefaultQuery("sort", analytics.SortByRevenue)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	perf := h.calculator.AttributeVideos(h.store.GetVideos(), h.store.GetCalls(), h.store.GetSales(), month, sortBy)

	total := len(perf)
	start, end := clampRange(offset, limit, total)
	c.JSON(http.StatusOK, models.MetricsResponse{
		Data:    perf[start:end],
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: end < total,
	})
}

func clampRange(offset, limit, total int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = total
	}
	start := offset
	end := offset + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return start, end
}

func (h *Handler) GetCountries(c *gin.Context) {
	month, ok := h.latestMonth(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.calculator.AttributeCountries(month, h.store.GetCalls(), h.store.GetSales()))
}

func (h *Handler) GetFunnel(c *gin.Context) {
	month, ok := h.latestMonth(c)
	if !ok {
		return
	}
	latest := h.calculator.AggregateMonth(month, h.store.GetCalls(), h.store.GetSales(), h.store.GetVideos(), h.store.GetVisitors()[month])
	c.JSON(http.StatusOK, gin.H{
		"month":    latest,
		"dropoffs": h.calculator.DetectDropoffs(latest),
	})
}

func (h *Handler) GetInsights(c *gin.Context) {
	history := h.history(h.store.Months())
	if len(history) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No data available. Please run ingestion first."})
		return
	}
	c.JSON(http.StatusOK, models.InsightsResponse{
		Insights:    h.calculator.GenerateInsights(history),
		GeneratedAt: time.Now().Format(time.RFC3339),
		DataPoints:  len(history),
		Source:      "rules",
	})
}

func (h *Handler) GetEmails(c *gin.Context) {
	c.JSON(http.StatusOK, h.calculator.EmailPerformance(h.store.GetCampaigns()))
}

func (h *Handler) GetTraffic(c *gin.Context) {
	c.JSON(http.StatusOK, h.calculator.TrafficPerformance(h.store.GetTraffic()))
}

func (h *Handler) GetIntegrations(c *gin.Context) {
	c.JSON(http.StatusOK, h.integrationStatus())
}

func (h *Handler) GetNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, h.notifier.Recent())
}

// ExportData posts the signed rollup for one month to the configured
// sink.
func (h *Handler) ExportData(c *gin.Context) {
	month, ok := h.latestMonth(c)
	if !ok {
		return
	}
	latest := h.calculator.AggregateMonth(month, h.store.GetCalls(), h.store.GetSales(), h.store.GetVideos(), h.store.GetVisitors()[month])
	records := h.exporter.ToExportRecords([]models.MonthlyMetrics{latest})

	if h.config.SinkURL != "" {
		if err := h.exporter.ExportMonthly(h.config.SinkURL, records); err != nil {
			h.logger.WithError(err).Error("Failed to export to sink")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export data"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "success",
		"month":         month,
		"records_count": len(records),
		"exported_at":   time.Now().Format(time.RFC3339),
		"sink_url":      h.config.SinkURL,
		"data":          records,
	})
}
