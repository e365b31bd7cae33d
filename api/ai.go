package api

import (
	"context"
	"fmt"
	"net/url"
)

// AIConfig is the advisor configuration held by the backend. The API key is
// write-only: the backend never echoes it back, so an empty APIKey on a
// fetched config does not mean one is missing.
type AIConfig struct {
	ID                  int     `json:"id,omitempty"`
	Provider            string  `json:"ai_provider"`
	Model               string  `json:"ai_model"`
	APIKey              string  `json:"api_key,omitempty"`
	IsActive            bool    `json:"is_active"`
	MaxTokens           int     `json:"max_tokens"`
	Temperature         float64 `json:"temperature"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	LastUsed            string  `json:"last_used,omitempty"`
	TotalRequests       int     `json:"total_requests,omitempty"`
}

type ProviderInfo struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Models []string `json:"models"`
	APIURL string   `json:"api_url"`
}

type ProvidersResponse struct {
	Providers       []ProviderInfo `json:"providers"`
	DefaultProvider string         `json:"default_provider"`
}

// KeyTestResult is the verdict on a provider API key. The test validates the
// key against the provider without persisting anything, so repeating it with
// the same inputs yields the same verdict.
type KeyTestResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type AnalysisResult struct {
	Success      bool    `json:"success"`
	Symbol       string  `json:"symbol"`
	AnalysisType string  `json:"analysis_type"`
	Signal       string  `json:"signal"` // BUY, SELL, HOLD
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning"`
	ProcessTime  float64 `json:"processing_time"`
	Provider     string  `json:"ai_provider"`
	Model        string  `json:"ai_model"`
}

type AnalysisHistoryEntry struct {
	ID           int     `json:"id"`
	Symbol       string  `json:"symbol"`
	AnalysisType string  `json:"analysis_type"`
	Signal       string  `json:"signal"`
	Confidence   float64 `json:"confidence"`
	Provider     string  `json:"ai_provider"`
	Model        string  `json:"ai_model"`
	ProcessTime  float64 `json:"processing_time"`
	CreatedAt    string  `json:"created_at"`
}

type AnalysisHistory struct {
	History []AnalysisHistoryEntry `json:"history"`
	Total   int                    `json:"total"`
}

func (c *Client) GetAIConfig(ctx context.Context) (*AIConfig, error) {
	var config AIConfig
	if err := c.get(ctx, "/api/ai/config", &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Client) UpdateAIConfig(ctx context.Context, config AIConfig) (*AIConfig, error) {
	var updated AIConfig
	if err := c.put(ctx, "/api/ai/config", config, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) GetAIProviders(ctx context.Context) (*ProvidersResponse, error) {
	var providers ProvidersResponse
	if err := c.get(ctx, "/api/ai/providers", &providers); err != nil {
		return nil, err
	}
	return &providers, nil
}

func (c *Client) TestAPIKey(ctx context.Context, provider, apiKey string) (*KeyTestResult, error) {
	body := map[string]string{
		"provider": provider,
		"api_key":  apiKey,
	}

	var result KeyTestResult
	if err := c.post(ctx, "/api/ai/test-api-key", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Analyze(ctx context.Context, symbol, analysisType string) (*AnalysisResult, error) {
	if analysisType == "" {
		analysisType = "comprehensive"
	}

	endpoint := fmt.Sprintf("/api/ai/analyze/%s?analysis_type=%s",
		url.PathEscape(symbol), url.QueryEscape(analysisType))

	var result AnalysisResult
	if err := c.post(ctx, endpoint, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetAnalysisHistory returns past analyses, most recent first. symbol may be
// empty for all symbols; limit caps the page size.
func (c *Client) GetAnalysisHistory(ctx context.Context, symbol string, limit int) (*AnalysisHistory, error) {
	if limit <= 0 {
		limit = 20
	}

	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", limit))
	if symbol != "" {
		query.Set("symbol", symbol)
	}

	var history AnalysisHistory
	if err := c.get(ctx, "/api/ai/analysis-history?"+query.Encode(), &history); err != nil {
		return nil, err
	}
	return &history, nil
}
