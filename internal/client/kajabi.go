package client

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"coachmetrics/internal/config"
	"coachmetrics/internal/models"
)

// KajabiClient fetches sales and email campaign data.
type KajabiClient struct {
	apiKey string
	apiURL string
	http   *HTTPClient
	logger *logrus.Logger
}

func NewKajabiClient(cfg *config.Config, http *HTTPClient, logger *logrus.Logger) *KajabiClient {
	return &KajabiClient{
		apiKey: cfg.KajabiAPIKey,
		apiURL: cfg.KajabiAPIURL,
		http:   http,
		logger: logger,
	}
}

func (c *KajabiClient) Enabled() bool {
	return c.apiKey != ""
}

func (c *KajabiClient) authHeader() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.apiKey}
}

type kajabiSale struct {
	ID          string    `json:"id"`
	OfferTitle  string    `json:"offer_title"`
	Amount      float64   `json:"amount"`
	PaymentType string    `json:"payment_type"`
	CreatedAt   time.Time `json:"created_at"`
	Country     string    `json:"country"`
	ExternalRef string    `json:"external_ref"`
}

type kajabiSalesResponse struct {
	Sales []kajabiSale `json:"sales"`
}

type kajabiCampaign struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Subject      string    `json:"subject"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	SentAt       time.Time `json:"sent_at"`
	Sent         int       `json:"sent"`
	Delivered    int       `json:"delivered"`
	UniqueOpens  int       `json:"unique_opens"`
	UniqueClicks int       `json:"unique_clicks"`
	CallsBooked  int       `json:"calls_booked"`
	Revenue      float64   `json:"revenue"`
}

type kajabiCampaignsResponse struct {
	Campaigns []kajabiCampaign `json:"campaigns"`
}

// FetchSales normalizes purchases. ExternalRef carries the booking ID
// the sale was closed on.
func (c *KajabiClient) FetchSales() ([]models.Sale, error) {
	var resp kajabiSalesResponse
	if err := c.http.GetJSON(c.apiURL+"/purchases", c.authHeader(), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch sales: %w", err)
	}

	sales := make([]models.Sale, 0, len(resp.Sales))
	for _, s := range resp.Sales {
		saleType := models.SaleTypePaidInFull
		if s.PaymentType == "installment" || s.PaymentType == "payment_plan" {
			saleType = models.SaleTypeInstallment
		}
		sales = append(sales, models.Sale{
			ID:       s.ID,
			CallID:   s.ExternalRef,
			Amount:   s.Amount,
			Type:     saleType,
			Product:  s.OfferTitle,
			ClosedAt: s.CreatedAt,
			Country:  s.Country,
		})
	}

	c.logger.WithField("sales", len(sales)).Info("Fetched Kajabi sales")
	return sales, nil
}

func (c *KajabiClient) FetchCampaigns() ([]models.EmailCampaign, error) {
	var resp kajabiCampaignsResponse
	if err := c.http.GetJSON(c.apiURL+"/email_campaigns", c.authHeader(), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch campaigns: %w", err)
	}

	campaigns := make([]models.EmailCampaign, 0, len(resp.Campaigns))
	for _, k := range resp.Campaigns {
		campaigns = append(campaigns, models.EmailCampaign{
			ID:      k.ID,
			Name:    k.Name,
			Subject: k.Subject,
			Type:    k.Type,
			Status:  k.Status,
			SentAt:  k.SentAt,
			Recipients: models.CampaignRecipients{
				Sent:      k.Sent,
				Delivered: k.Delivered,
			},
			Engagement: models.CampaignEngagement{
				UniqueOpens:  k.UniqueOpens,
				UniqueClicks: k.UniqueClicks,
			},
			Conversions: models.CampaignConversions{
				CallsBooked: k.CallsBooked,
				Revenue:     k.Revenue,
			},
		})
	}

	c.logger.WithField("campaigns", len(campaigns)).Info("Fetched Kajabi campaigns")
	return campaigns, nil
}
