package client

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"coachmetrics/internal/config"
	"coachmetrics/internal/models"
)

// CalComClient fetches call bookings.
type CalComClient struct {
	apiKey string
	apiURL string
	http   *HTTPClient
	logger *logrus.Logger
}

func NewCalComClient(cfg *config.Config, http *HTTPClient, logger *logrus.Logger) *CalComClient {
	return &CalComClient{
		apiKey: cfg.CalComAPIKey,
		apiURL: cfg.CalComAPIURL,
		http:   http,
		logger: logger,
	}
}

func (c *CalComClient) Enabled() bool {
	return c.apiKey != ""
}

type calcomBooking struct {
	UID       string    `json:"uid"`
	StartTime time.Time `json:"startTime"`
	Status    string    `json:"status"`
	Metadata  struct {
		VideoID    string `json:"videoId"`
		Country    string `json:"country"`
		LeadSource string `json:"leadSource"`
	} `json:"metadata"`
}

type calcomBookingsResponse struct {
	Bookings []calcomBooking `json:"bookings"`
}

// statusMap translates upstream booking statuses onto the internal
// lifecycle.
var statusMap = map[string]string{
	"ACCEPTED":  models.CallStatusAccepted,
	"PENDING":   models.CallStatusBooked,
	"REJECTED":  models.CallStatusCancelled,
	"CANCELLED": models.CallStatusCancelled,
	"NO_SHOW":   models.CallStatusNoShow,
}

func (c *CalComClient) FetchBookings() ([]models.CallBooking, error) {
	url := fmt.Sprintf("%s/bookings?apiKey=%s", c.apiURL, c.apiKey)

	var resp calcomBookingsResponse
	if err := c.http.GetJSON(url, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}

	calls := make([]models.CallBooking, 0, len(resp.Bookings))
	for _, b := range resp.Bookings {
		status, ok := statusMap[b.Status]
		if !ok {
			status = models.CallStatusBooked
		}
		calls = append(calls, models.CallBooking{
			ID:         b.UID,
			VideoID:    b.Metadata.VideoID,
			BookedAt:   b.StartTime,
			Status:     status,
			Country:    b.Metadata.Country,
			LeadSource: b.Metadata.LeadSource,
		})
	}

	c.logger.WithField("bookings", len(calls)).Info("Fetched Cal.com bookings")
	return calls, nil
}
