package api

import "context"

// DashboardStats is the headline snapshot behind the dashboard screen.
type DashboardStats struct {
	Balance     float64 `json:"balance"`
	Equity      float64 `json:"equity"`
	Margin      float64 `json:"margin"`
	FreeMargin  float64 `json:"free_margin"`
	Performance struct {
		ProfitToday     float64 `json:"profit_today"`
		TradesToday     int     `json:"trades_today"`
		WinRateToday    float64 `json:"win_rate_today"`
		BestTradeToday  float64 `json:"best_trade_today"`
		WorstTradeToday float64 `json:"worst_trade_today"`
	} `json:"performance"`
	BotStatus struct {
		Status       string `json:"status"`
		AutoTrading  bool   `json:"auto_trading"`
		Strategy     string `json:"strategy"`
		LastActivity string `json:"last_activity"`
	} `json:"bot_status"`
	Summary struct {
		TotalTrades int     `json:"total_trades"`
		OpenTrades  int     `json:"open_trades"`
		WinRate     float64 `json:"win_rate"`
		TotalProfit float64 `json:"total_profit"`
	} `json:"summary"`
}

type ActiveSymbol struct {
	Symbol string  `json:"symbol"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
	Spread float64 `json:"spread"`
	Change float64 `json:"change"`
	Trend  string  `json:"trend"`
	Volume string  `json:"volume"`
}

type MarketHeadline struct {
	Title     string `json:"title"`
	Impact    string `json:"impact"`
	Currency  string `json:"currency"`
	Timestamp string `json:"timestamp"`
}

type MarketOverview struct {
	MarketStatus  string           `json:"market_status"`
	ActiveSymbols []ActiveSymbol   `json:"active_symbols"`
	MarketNews    []MarketHeadline `json:"market_news"`
}

type RecentTrade struct {
	ID        int     `json:"id"`
	Symbol    string  `json:"symbol"`
	Type      string  `json:"type"`
	Volume    float64 `json:"volume"`
	Profit    float64 `json:"profit"`
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
}

type RecentSignal struct {
	Symbol     string  `json:"symbol"`
	Signal     string  `json:"signal"`
	Confidence float64 `json:"confidence"`
	Timestamp  string  `json:"timestamp"`
	Strength   string  `json:"strength"`
}

type SystemAlert struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type RecentActivity struct {
	RecentTrades  []RecentTrade  `json:"recent_trades"`
	RecentSignals []RecentSignal `json:"recent_signals"`
	SystemAlerts  []SystemAlert  `json:"system_alerts"`
	OpenPositions []OpenPosition `json:"open_positions"`
}

func (c *Client) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	if err := c.get(ctx, "/api/dashboard/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) GetMarketOverview(ctx context.Context) (*MarketOverview, error) {
	var overview MarketOverview
	if err := c.get(ctx, "/api/dashboard/market-overview", &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

func (c *Client) GetRecentActivity(ctx context.Context) (*RecentActivity, error) {
	var activity RecentActivity
	if err := c.get(ctx, "/api/dashboard/recent-activity", &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}
