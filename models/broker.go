package models

import (
	"context"
	"errors"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tradepanel/api"
)

// BrokerState is the MT5 terminal container. Portfolio is only ever non-nil
// when the last status snapshot reported a live connection.
type BrokerState struct {
	Status    *api.BrokerStatus
	Portfolio *api.Portfolio
	Form      BrokerForm
	Loading   bool
	Acting    bool
	Error     string
}

type BrokerForm struct {
	Server   string
	Login    string
	Password string
	Field    int // 0 = server, 1 = login, 2 = password
}

// brokerStatusMsg carries the status snapshot and, when the terminal was
// connected, the chained account-info snapshot fetched in the same command.
type brokerStatusMsg struct {
	gen       int
	status    *api.BrokerStatus
	portfolio *api.Portfolio
	err       error
}

type brokerActionMsg struct {
	gen        int
	disconnect bool
	err        error
}

// refreshBrokerCmd fetches the connection status and, only when it reports
// connected, follows up with exactly one account-info fetch. Both snapshots
// land in the model atomically through one message.
func (m *AppModel) refreshBrokerCmd() tea.Cmd {
	client := m.deps.Client
	gen := m.gen

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		status, err := client.GetBrokerStatus(ctx)
		if err != nil {
			return brokerStatusMsg{gen: gen, err: err}
		}

		var portfolio *api.Portfolio
		if status.Connection.Connected {
			portfolio, err = client.GetAccountInfo(ctx)
			if err != nil {
				// Keep the status snapshot; the account fetch failing does
				// not invalidate the connection state.
				return brokerStatusMsg{gen: gen, status: status, err: err}
			}
		}

		return brokerStatusMsg{gen: gen, status: status, portfolio: portfolio}
	}
}

func (m *AppModel) connectBrokerCmd(config api.BrokerConfig) tea.Cmd {
	client := m.deps.Client
	prefill := m.deps.Prefill
	logger := m.deps.Logger
	gen := m.gen

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		if err := client.ConnectBroker(ctx, config); err != nil {
			return brokerActionMsg{gen: gen, err: err}
		}

		// Remember server and login (never the password) so the form comes
		// back prefilled next time.
		cached := config
		cached.Password = ""
		if err := prefill.SaveBrokerConfig(cached); err != nil {
			logger.Warn("failed to cache broker config", "error", err)
		}

		return brokerActionMsg{gen: gen}
	}
}

func (m *AppModel) disconnectBrokerCmd() tea.Cmd {
	client := m.deps.Client
	prefill := m.deps.Prefill
	logger := m.deps.Logger
	gen := m.gen

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := client.DisconnectBroker(ctx); err != nil {
			return brokerActionMsg{gen: gen, disconnect: true, err: err}
		}

		if err := prefill.ClearBrokerConfig(); err != nil {
			logger.Warn("failed to clear cached broker config", "error", err)
		}

		return brokerActionMsg{gen: gen, disconnect: true}
	}
}

func (m *AppModel) handleBrokerStatus(msg brokerStatusMsg) (tea.Model, tea.Cmd) {
	if !m.live(msg.gen) {
		return m, nil
	}

	m.Broker.Loading = false

	if msg.status != nil {
		m.Broker.Status = msg.status
		if !msg.status.Connection.Connected {
			m.Broker.Portfolio = nil
		}
	}
	if msg.portfolio != nil {
		m.Broker.Portfolio = msg.portfolio
	}

	if msg.err != nil {
		if !errors.Is(msg.err, api.ErrUnauthorized) {
			m.Broker.Error = msg.err.Error()
		}
		return m, nil
	}

	m.Broker.Error = ""
	return m, nil
}

func (m *AppModel) handleBrokerAction(msg brokerActionMsg) (tea.Model, tea.Cmd) {
	if !m.live(msg.gen) {
		return m, nil
	}

	m.Broker.Acting = false

	if msg.err != nil {
		if !errors.Is(msg.err, api.ErrUnauthorized) {
			m.Broker.Error = msg.err.Error()
		}
		return m, nil
	}

	if !msg.disconnect {
		m.Broker.Form.Password = ""
	}
	m.Broker.Error = ""

	m.Broker.Loading = true
	return m, m.refreshBrokerCmd()
}

// prefillBrokerForm repopulates server and login from the cached config. The
// password is never cached, so it always starts empty.
func (m *AppModel) prefillBrokerForm() {
	var cached api.BrokerConfig
	if m.deps.Prefill.LoadBrokerConfig(&cached) {
		m.Broker.Form.Server = cached.Server
		if cached.Login != 0 {
			m.Broker.Form.Login = strconv.Itoa(cached.Login)
		}
	}
}
