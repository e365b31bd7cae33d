package models

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tradepanel/api"
)

// BotState is the trading-bot container. Provisional marks a status that was
// patched locally after a successful start/stop and is awaiting the
// authoritative re-fetch.
type BotState struct {
	Status      *api.BotStatus
	Provisional bool
	Loading     bool
	Acting      bool
	Error       string
}

type botStatusMsg struct {
	gen    int
	status *api.BotStatus
	err    error
}

// botActionMsg reports a start/stop/settings call. patch carries the
// provisional status string applied on success before the re-fetch lands.
type botActionMsg struct {
	gen   int
	patch string
	err   error
}

func (m *AppModel) loadBotStatusCmd() tea.Cmd {
	client := m.deps.Client
	gen := m.gen

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		status, err := client.GetBotStatus(ctx)
		return botStatusMsg{gen: gen, status: status, err: err}
	}
}

func (m *AppModel) startBotCmd() tea.Cmd {
	client := m.deps.Client
	gen := m.gen

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := client.StartBot(ctx)
		return botActionMsg{gen: gen, patch: "active", err: err}
	}
}

func (m *AppModel) stopBotCmd() tea.Cmd {
	client := m.deps.Client
	gen := m.gen

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := client.StopBot(ctx)
		return botActionMsg{gen: gen, patch: "stopped", err: err}
	}
}

func (m *AppModel) updateBotSettingsCmd(settings api.BotSettings) tea.Cmd {
	client := m.deps.Client
	gen := m.gen

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := client.UpdateBotSettings(ctx, settings)
		return botActionMsg{gen: gen, err: err}
	}
}

func (m *AppModel) handleBotStatus(msg botStatusMsg) (tea.Model, tea.Cmd) {
	if !m.live(msg.gen) {
		return m, nil
	}

	m.Bot.Loading = false
	m.Bot.Provisional = false

	if msg.err != nil {
		if !errors.Is(msg.err, api.ErrUnauthorized) {
			m.Bot.Error = msg.err.Error()
		}
		return m, nil
	}

	m.Bot.Status = msg.status
	m.Bot.Error = ""
	return m, nil
}

func (m *AppModel) handleBotAction(msg botActionMsg) (tea.Model, tea.Cmd) {
	if !m.live(msg.gen) {
		return m, nil
	}

	m.Bot.Acting = false

	if msg.err != nil {
		if !errors.Is(msg.err, api.ErrUnauthorized) {
			m.Bot.Error = msg.err.Error()
		}
		return m, nil
	}

	// Patch the snapshot provisionally so the action reflects immediately,
	// then let the re-fetch replace it with the backend's truth.
	if msg.patch != "" && m.Bot.Status != nil {
		m.Bot.Status.Status = msg.patch
		m.Bot.Provisional = true
	}
	m.Bot.Error = ""

	return m, m.loadBotStatusCmd()
}
