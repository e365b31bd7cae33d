package api

import "context"

// BrokerConfig is the MT5 terminal connection request. It is also what the
// prefill cache stores (without the password) to repopulate the form.
type BrokerConfig struct {
	Server   string `json:"server"`
	Login    int    `json:"login"`
	Password string `json:"password,omitempty"`
	Timeout  int    `json:"timeout,omitempty"`
	Portable bool   `json:"portable,omitempty"`
}

// BrokerStatus is the primary connection snapshot. Account details are only
// fetched separately when Connection.Connected is true.
type BrokerStatus struct {
	Config struct {
		Server         string `json:"server"`
		Login          int    `json:"login"`
		IsConnected    bool   `json:"is_connected"`
		LastConnection string `json:"last_connection"`
	} `json:"config"`
	Connection struct {
		Connected bool `json:"connected"`
	} `json:"connection"`
}

type AccountInfo struct {
	Login      int     `json:"login"`
	Balance    float64 `json:"balance"`
	Equity     float64 `json:"equity"`
	Margin     float64 `json:"margin"`
	FreeMargin float64 `json:"free_margin"`
	Leverage   int     `json:"leverage"`
	Currency   string  `json:"currency"`
	Server     string  `json:"server"`
	Profit     float64 `json:"profit"`
}

type OpenPosition struct {
	Symbol    string  `json:"symbol"`
	Type      string  `json:"type"`
	Volume    float64 `json:"volume"`
	OpenPrice float64 `json:"open_price"`
	Profit    float64 `json:"profit"`
}

// Portfolio is the secondary account-info snapshot.
type Portfolio struct {
	Success       bool           `json:"success"`
	AccountInfo   AccountInfo    `json:"account_info"`
	OpenPositions []OpenPosition `json:"open_positions"`
	Summary       struct {
		TotalPositions int     `json:"total_positions"`
		TotalProfit    float64 `json:"total_profit"`
		TotalVolume    float64 `json:"total_volume"`
		BuyPositions   int     `json:"buy_positions"`
		SellPositions  int     `json:"sell_positions"`
	} `json:"summary"`
}

func (c *Client) ConnectBroker(ctx context.Context, config BrokerConfig) error {
	return c.post(ctx, "/api/mt5/connect", config, nil)
}

func (c *Client) DisconnectBroker(ctx context.Context) error {
	return c.post(ctx, "/api/mt5/disconnect", nil, nil)
}

func (c *Client) GetBrokerStatus(ctx context.Context) (*BrokerStatus, error) {
	var status BrokerStatus
	if err := c.get(ctx, "/api/mt5/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) GetAccountInfo(ctx context.Context) (*Portfolio, error) {
	var portfolio Portfolio
	if err := c.get(ctx, "/api/mt5/account-info", &portfolio); err != nil {
		return nil, err
	}
	return &portfolio, nil
}
