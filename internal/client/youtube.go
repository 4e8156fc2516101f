package client

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"coachmetrics/internal/config"
	"coachmetrics/internal/models"
)

// YouTubeClient fetches channel video statistics. When no API key is
// configured the caller serves mock data instead.
type YouTubeClient struct {
	apiKey string
	apiURL string
	http   *HTTPClient
	logger *logrus.Logger
}

func NewYouTubeClient(cfg *config.Config, http *HTTPClient, logger *logrus.Logger) *YouTubeClient {
	return &YouTubeClient{
		apiKey: cfg.YouTubeAPIKey,
		apiURL: cfg.YouTubeAPIURL,
		http:   http,
		logger: logger,
	}
}

func (c *YouTubeClient) Enabled() bool {
	return c.apiKey != ""
}

// The stats API reports counters as strings.
type youtubeVideoItem struct {
	ID      string `json:"id"`
	Snippet struct {
		Title       string    `json:"title"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"snippet"`
	Statistics struct {
		ViewCount string `json:"viewCount"`
	} `json:"statistics"`
}

type youtubeListResponse struct {
	Items []youtubeVideoItem `json:"items"`
}

// FetchVideos pulls the channel uploads and normalizes them. Funnel
// counters (leads, calls, sales) are filled in downstream by joining
// bookings and sales; the API only knows about views.
func (c *YouTubeClient) FetchVideos() ([]models.YouTubeVideo, error) {
	url := fmt.Sprintf("%s/videos?part=snippet,statistics&myRating=like&key=%s", c.apiURL, c.apiKey)

	var resp youtubeListResponse
	if err := c.http.GetJSON(url, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch videos: %w", err)
	}

	videos := make([]models.YouTubeVideo, 0, len(resp.Items))
	for _, item := range resp.Items {
		views, _ := strconv.Atoi(item.Statistics.ViewCount)
		videos = append(videos, models.YouTubeVideo{
			ID:          item.ID,
			Title:       item.Snippet.Title,
			PublishedAt: item.Snippet.PublishedAt,
			Views:       views,
			UniqueViews: views,
		})
	}

	c.logger.WithField("videos", len(videos)).Info("Fetched YouTube videos")
	return videos, nil
}
