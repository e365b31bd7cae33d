package api

import (
	"context"
	"net/url"
)

// NewsItem is one article from the backend's news feeds.
type NewsItem struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Source    string `json:"source"`
	URL       string `json:"url"`
	ImageURL  string `json:"image_url"`
	Time      string `json:"time"`
	Sentiment string `json:"sentiment"` // positive, negative, neutral
	Category  string `json:"category"`
}

// NewsClient is the second gateway instance. The backend serves news under
// the /api mount, so this client carries its own base URL, but the bearer
// injection and 401/403 interception are the same Client machinery.
type NewsClient struct {
	*Client
}

func NewNewsClient(client *Client) *NewsClient {
	return &NewsClient{Client: client}
}

// GetMarketNews returns general market news, optionally filtered by category.
func (c *NewsClient) GetMarketNews(ctx context.Context, category string) ([]NewsItem, error) {
	endpoint := "/news/market-news"
	if category != "" {
		endpoint += "?category=" + url.QueryEscape(category)
	}

	var items []NewsItem
	if err := c.get(ctx, endpoint, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *NewsClient) GetCryptoNews(ctx context.Context) ([]NewsItem, error) {
	var items []NewsItem
	if err := c.get(ctx, "/news/crypto-news", &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *NewsClient) GetForexNews(ctx context.Context) ([]NewsItem, error) {
	var items []NewsItem
	if err := c.get(ctx, "/news/forex-news", &items); err != nil {
		return nil, err
	}
	return items, nil
}
