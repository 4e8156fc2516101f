package client

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"coachmetrics/internal/config"
	"coachmetrics/internal/models"
)

// InsightsClient asks an OpenAI-compatible chat endpoint to analyze the
// monthly series. Callers must treat any error as a signal to fall back
// to the rule-based generator; this path never reaches the API response
// unvalidated.
type InsightsClient struct {
	apiKey string
	apiURL string
	model  string
	http   *HTTPClient
	logger *logrus.Logger
}

func NewInsightsClient(cfg *config.Config, http *HTTPClient, logger *logrus.Logger) *InsightsClient {
	return &InsightsClient{
		apiKey: cfg.OpenAIAPIKey,
		apiURL: cfg.OpenAIAPIURL,
		model:  cfg.OpenAIModel,
		http:   http,
		logger: logger,
	}
}

func (c *InsightsClient) Enabled() bool {
	return c.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

const insightsPrompt = `You are an analytics assistant for a coaching business.
Given the JSON array of monthly metrics below, return ONLY a JSON array of insights.
Each insight: {"type":"trend|recommendation|alert","title":...,"description":...,"impact":"high|medium|low","action":...}.
Metrics:
%s`

// Generate returns LLM-produced insights in the same shape as the rule
// engine.
func (c *InsightsClient) Generate(history []models.MonthlyMetrics) ([]models.Insight, error) {
	payload, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metrics: %w", err)
	}

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(insightsPrompt, payload)},
		},
	}

	var resp chatResponse
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	if err := c.http.PostJSON(c.apiURL+"/chat/completions", headers, req, &resp); err != nil {
		return nil, fmt.Errorf("insights request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("insights response contained no choices")
	}

	var insights []models.Insight
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &insights); err != nil {
		return nil, fmt.Errorf("failed to parse insights payload: %w", err)
	}
	if len(insights) == 0 {
		return nil, fmt.Errorf("insights response was empty")
	}

	c.logger.WithField("insights", len(insights)).Info("Generated AI insights")
	return insights, nil
}
