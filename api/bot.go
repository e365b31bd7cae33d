package api

import "context"

// BotStatus is the bot snapshot, replaced wholesale on each fetch.
type BotStatus struct {
	Status           string           `json:"status"` // active, stopped, starting, stopping
	AutoTrading      bool             `json:"auto_trading"`
	TradingStrategy  string           `json:"trading_strategy"`
	MaxOpenTrades    int              `json:"max_open_trades"`
	CurrentTrades    int              `json:"current_trades"`
	LastSignal       string           `json:"last_signal"`
	MaxDrawdown      float64          `json:"max_drawdown"`
	PerformanceToday PerformanceToday `json:"performance_today"`
}

type PerformanceToday struct {
	Trades  int     `json:"trades"`
	WinRate float64 `json:"win_rate"`
	Profit  float64 `json:"profit"`
}

// BotSettings is the writable subset pushed with UpdateBotSettings.
type BotSettings struct {
	TradingStrategy string  `json:"trading_strategy,omitempty"`
	MaxOpenTrades   int     `json:"max_open_trades,omitempty"`
	MaxDrawdown     float64 `json:"max_drawdown,omitempty"`
	AutoTrading     *bool   `json:"auto_trading,omitempty"`
}

func (c *Client) GetBotStatus(ctx context.Context) (*BotStatus, error) {
	var status BotStatus
	if err := c.get(ctx, "/api/bot/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) StartBot(ctx context.Context) error {
	return c.post(ctx, "/api/bot/start", nil, nil)
}

func (c *Client) StopBot(ctx context.Context) error {
	return c.post(ctx, "/api/bot/stop", nil, nil)
}

func (c *Client) UpdateBotSettings(ctx context.Context, settings BotSettings) error {
	return c.put(ctx, "/api/bot/settings", settings, nil)
}
