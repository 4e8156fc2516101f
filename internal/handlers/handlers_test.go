package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

// Prometheus instruments register against the default registry once per
// process, so every test shares this instance.
var testMetrics = telemetry.NewMetrics("coachmetrics_test")

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, cfg *config.Config) (*gin.Engine, *Handler) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	httpClient := client.NewHTTPClient(cfg, logger)
	store := storage.NewMemoryStore()
	calculator := analytics.NewCalculator()
	generator := mockdata.NewGenerator(cfg.MockSeed, cfg.MockMonths)
	tf := transformer.New(logger)
	exporter := export.NewExporter(cfg.SinkSecret, httpClient, logger)
	notifier := notify.NewNotifier(50, logger)
	t.Cleanup(notifier.Close)

	youtube := client.NewYouTubeClient(cfg, httpClient, logger)
	kajabi := client.NewKajabiClient(cfg, httpClient, logger)
	calcom := client.NewCalComClient(cfg, httpClient, logger)
	ai := client.NewInsightsClient(cfg, httpClient, logger)

	handler := New(cfg, store, calculator, youtube, kajabi, calcom, ai,
		generator, tf, exporter, notifier, testMetrics, logger)

	router := gin.New()
	router.GET("/healthz", handler.HealthCheck)
	router.GET("/readyz", handler.ReadinessCheck)
	router.POST("/ingest/run", handler.IngestData)
	router.GET("/api/dashboard", handler.GetDashboard)
	router.POST("/api/dashboard", handler.PostDashboard)
	router.POST("/api/ai-insights", handler.AIInsights)
	router.GET("/api/videos", handler.GetVideos)
	router.GET("/api/countries", handler.GetCountries)
	router.GET("/api/funnel", handler.GetFunnel)
	router.GET("/api/insights", handler.GetInsights)
	router.GET("/api/emails", handler.GetEmails)
	router.GET("/api/traffic", handler.GetTraffic)
	router.GET("/api/integrations", handler.GetIntegrations)
	router.GET("/api/notifications", handler.GetNotifications)
	router.POST("/export/run", handler.ExportData)
	return router, handler
}

func mockOnlyConfig() *config.Config {
	return &config.Config{
		HTTPTimeout:   5 * time.Second,
		RetryAttempts: 1,
		MockSeed:      42,
		MockMonths:    6,
	}
}

func do(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func ingest(t *testing.T, router *gin.Engine) models.IngestResponse {
	t.Helper()
	w := do(router, http.MethodPost, "/ingest/run", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.IngestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(t, mockOnlyConfig())

	w := do(router, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestReadinessLifecycle(t *testing.T) {
	router, _ := newTestRouter(t, mockOnlyConfig())

	w := do(router, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	ingest(t, router)

	w = do(router, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"has_data":true`)
}

func TestIngestServesMockData(t *testing.T) {
	router, _ := newTestRouter(t, mockOnlyConfig())

	resp := ingest(t, router)

	assert.Equal(t, "success", resp.Status)
	assert.Greater(t, resp.Calls, 0)
	assert.Greater(t, resp.Sales, 0)
	assert.Greater(t, resp.Videos, 0)
	assert.Greater(t, resp.Campaigns, 0)
	assert.Equal(t, 4, resp.Sources)
	assert.Equal(t, models.IntegrationMock, resp.Integrations.YouTube)
	assert.Equal(t, models.IntegrationMock, resp.Integrations.Kajabi)
	assert.Equal(t, models.IntegrationMock, resp.Integrations.CalCom)
	assert.Equal(t, models.IntegrationMock, resp.Integrations.OpenAI)
}

func TestIngestMarksFailedIntegration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := mockOnlyConfig()
	cfg.YouTubeAPIKey = "yt-key"
	cfg.YouTubeAPIURL = server.URL
	router, _ := newTestRouter(t, cfg)

	resp := ingest(t, router)

	assert.Equal(t, models.IntegrationError, resp.Integrations.YouTube)
	assert.Equal(t, models.IntegrationMock, resp.Integrations.CalCom)
	assert.Greater(t, resp.Videos, 0, "mock data backfills the failed fetch")
}

func TestGetDashboard(t *testing.T) {
	router, _ := newTestRouter(t, mockOnlyConfig())

	w := do(router, http.MethodGet, "/api/dashboard", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	ingest(t, router)

	w = do(router, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.DashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Len(t, resp.Months, 6)
	assert.NotEmpty(t, resp.Trends)
	assert.NotEmpty(t, resp.Videos)
	assert.NotEmpty(t, resp.Countries)
	assert.NotEmpty(t, resp.Emails)
	assert.NotEmpty(t, resp.Traffic)
	assert.Equal(t, models.IntegrationMock, resp.Integrations.YouTube)
	assert.NotEmpty(t, resp.GeneratedAt)
}

func TestPostDashboardTimeRange(t *testing.T) {
	router, _ := newTestRouter(t, mockOnlyConfig())
	ingest(t, router)

	w := do(router, http.MethodPost, "/api/dashboard", map[string]string{"time_range": "7w"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodPost, "/api/dashboard", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodPost, "/api/dashboard", map[string]string{"time_range": "3m"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.DashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Months, 3, "3m keeps the three most recent months")
}

func TestAIInsightsValidation(t *testing.T) {
	router, _ := newTestRouter(t, mockOnlyConfig())

	w := do(router, http.MethodPost, "/api/ai-insights", map[string]string{"bogus": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodPost, "/api/ai-insights",
		map[string]interface{}{"monthly_metrics": []models.MonthlyMetrics{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAIInsightsRuleEngine(t *testing.T) {
	router, _ := newTestRouter(t, mockOnlyConfig())

	history := []models.MonthlyMetrics{
		{Month: "2025-05", NewCashCollected: models.CashBreakdown{Total: 50000}, ShowUpRate: 85,
			ConversionRates: models.ConversionRates{AcceptedToSale: 30}},
		{Month: "2025-06", NewCashCollected: models.CashBreakdown{Total: 65000}, ShowUpRate: 85,
			ConversionRates: models.ConversionRates{AcceptedToSale: 30}},
	}
	w := do(router, http.MethodPost, "/api/ai-insights",
		map[string]interface{}{"monthly_metrics": history})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.InsightsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "rules", resp.Source)
	assert.Equal(t, 2, resp.DataPoints)
	require.Len(t, resp.Insights, 1)
	assert.Equal(t, "Strong Revenue Growth", resp.Insights[0].Title)
}

func TestAIInsightsFallsBackOnAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := mockOnlyConfig()
	cfg.OpenAIAPIKey = "oa-key"
	cfg.OpenAIAPIURL = server.URL
	router, _ := newTestRouter(t, cfg)

	w := do(router, http.MethodPost, "/api/ai-insights",
		map[string]interface{}{"monthly_metrics": []models.MonthlyMetrics{{Month: "2025-06"}}})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.InsightsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rules", resp.Source)
	require.Len(t, resp.Insights, 1)
	assert.Equal(t, "More Data Needed", resp.Insights[0].Title)
}

func TestGetVideosPagination(t *testing.T) {
	router, _ := newTestRouter(t, mockOnlyConfig())
	ingest(t, router)

	w := do(router, http.MethodGet, "/api/videos?limit=2&offset=0", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.MetricsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	data, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, data, 2)
	assert.Equal(t, 2, resp.Limit)
	assert.True(t, resp.HasMore)
	assert.Greater(t, resp.Total, 2)

	w = do(router, http.MethodGet, "/api/videos?month=not-a-month", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetFunnel(t *testing.T) {
	router, _ := newTestRouter(t, mockOnlyConfig())
	ingest(t, router)

	w := do(router, http.MethodGet, "/api/funnel", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Month    models.MonthlyMetrics `json:"month"`
		Dropoffs []models.DropoffPoint `json:"dropoffs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Month.Month)
}

func TestGetInsights(t *testing.T) {
	router, _ := newTestRouter(t, mockOnlyConfig())

	w := do(router, http.MethodGet, "/api/insights", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	ingest(t, router)

	w = do(router, http.MethodGet, "/api/insights", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.InsightsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rules", resp.Source)
	assert.Equal(t, 6, resp.DataPoints)
}

func TestGetIntegrations(t *testing.T) {
	router, _ := newTestRouter(t, mockOnlyConfig())

	w := do(router, http.MethodGet, "/api/integrations", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.IntegrationStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.IntegrationMock, resp.YouTube)
	assert.Equal(t, models.IntegrationMock, resp.OpenAI)
}

func TestExportToSink(t *testing.T) {
	var signatures []string
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signatures = append(signatures, r.Header.Get("X-Signature"))
		w.Write([]byte(`{}`))
	}))
	defer sink.Close()

	cfg := mockOnlyConfig()
	cfg.SinkURL = sink.URL
	cfg.SinkSecret = "secret"
	router, _ := newTestRouter(t, cfg)
	ingest(t, router)

	w := do(router, http.MethodPost, "/export/run", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"records_count":1`)

	require.Len(t, signatures, 1)
	assert.Contains(t, signatures[0], "sha256=")
}

func TestGetNotifications(t *testing.T) {
	router, _ := newTestRouter(t, mockOnlyConfig())
	ingest(t, router)

	w := do(router, http.MethodGet, "/api/notifications", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
