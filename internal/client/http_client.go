package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"coachmetrics/internal/config"
)

// HTTPClient wraps the outbound requests to every upstream API with a
// shared timeout and square-backoff retry. 5xx responses are retried,
// 4xx fail fast.
type HTTPClient struct {
	client        *http.Client
	retryAttempts int
	logger        *logrus.Logger
}

func NewHTTPClient(cfg *config.Config, logger *logrus.Logger) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		retryAttempts: cfg.RetryAttempts,
		logger:        logger,
	}
}

// GetJSON fetches url with the given headers and decodes the body into
// target, retrying transient failures.
func (c *HTTPClient) GetJSON(url string, headers map[string]string, target interface{}) error {
	return c.retryRequest(func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	}, target)
}

// PostJSON marshals body, posts it to url and decodes the response into
// target when target is non-nil.
func (c *HTTPClient) PostJSON(url string, headers map[string]string, body interface{}, target interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.retryRequest(func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	}, target)
}

func (c *HTTPClient) retryRequest(build func() (*http.Request, error), target interface{}) error {
	var lastErr error

	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			backoffTime := time.Duration(attempt*attempt) * time.Second
			c.logger.WithFields(logrus.Fields{
				"attempt": attempt + 1,
				"backoff": backoffTime,
			}).Warn("Retrying request after backoff")
			time.Sleep(backoffTime)
		}

		req, err := build()
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			continue
		}

		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return fmt.Errorf("client error: %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if target != nil {
			if err := json.Unmarshal(body, target); err != nil {
				lastErr = err
				continue
			}
		}
		return nil
	}

	return fmt.Errorf("all retry attempts failed, last error: %w", lastErr)
}
