package export

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"coachmetrics/internal/client"
	"coachmetrics/internal/models"
)

// Exporter posts signed monthly rollups to a downstream sink.
type Exporter struct {
	secret     string
	httpClient *client.HTTPClient
	logger     *logrus.Logger
}

func NewExporter(secret string, httpClient *client.HTTPClient, logger *logrus.Logger) *Exporter {
	return &Exporter{
		secret:     secret,
		httpClient: httpClient,
		logger:     logger,
	}
}

// ExportMonthly signs each record with HMAC-SHA256 and posts it to the
// sink.
func (e *Exporter) ExportMonthly(sinkURL string, records []models.ExportRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("no records to export")
	}

	for _, record := range records {
		signature, err := e.createSignature(record)
		if err != nil {
			e.logger.WithError(err).Error("Failed to create signature")
			return fmt.Errorf("failed to create signature: %w", err)
		}

		headers := map[string]string{"X-Signature": signature}
		if err := e.httpClient.PostJSON(sinkURL, headers, record, nil); err != nil {
			e.logger.WithError(err).WithField("month", record.Month).Error("Failed to export record")
			return fmt.Errorf("failed to export record: %w", err)
		}

		e.logger.WithField("month", record.Month).Info("Successfully exported record")
	}

	return nil
}

// ToExportRecords flattens monthly metrics into the sink wire shape.
func (e *Exporter) ToExportRecords(months []models.MonthlyMetrics) []models.ExportRecord {
	records := make([]models.ExportRecord, 0, len(months))
	for _, m := range months {
		records = append(records, models.ExportRecord{
			Month:              m.Month,
			YouTubeViews:       m.YouTubeViews,
			WebsiteVisitors:    m.WebsiteVisitors,
			CallsBooked:        m.CallsBooked,
			CallsAccepted:      m.CallsAccepted,
			ShowUpRate:         m.ShowUpRate,
			NewCashPaidInFull:  m.NewCashCollected.PaidInFull,
			NewCashInstallment: m.NewCashCollected.Installments,
			NewCashTotal:       m.NewCashCollected.Total,
			AcceptedToSale:     m.ConversionRates.AcceptedToSale,
		})
	}
	return records
}

func (e *Exporter) createSignature(data interface{}) (string, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	h := hmac.New(sha256.New, []byte(e.secret))
	h.Write(jsonData)
	signature := hex.EncodeToString(h.Sum(nil))

	return "sha256=" + signature, nil
}
