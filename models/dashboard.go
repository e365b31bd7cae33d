package models

import (
	"context"
	"errors"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tradepanel/api"
)

// DashboardState is the polled overview container. All three snapshots are
// replaced together or not at all.
type DashboardState struct {
	Stats     *api.DashboardStats
	Market    *api.MarketOverview
	Activity  *api.RecentActivity
	UpdatedAt time.Time
	Loading   bool
	Error     string
}

type dashboardTickMsg struct {
	gen int
}

type dashboardLoadedMsg struct {
	gen      int
	stats    *api.DashboardStats
	market   *api.MarketOverview
	activity *api.RecentActivity
	err      error
}

func (m *AppModel) dashboardTickCmd() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.deps.PollInterval, func(time.Time) tea.Msg {
		return dashboardTickMsg{gen: gen}
	})
}

// loadDashboardCmd fetches stats, market overview and recent activity in
// parallel. The refresh is all-or-nothing: if any leg fails, the previous
// snapshots stay on screen untouched.
func (m *AppModel) loadDashboardCmd() tea.Cmd {
	client := m.deps.Client
	gen := m.gen

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var (
			stats    *api.DashboardStats
			market   *api.MarketOverview
			activity *api.RecentActivity
			errStats, errMarket, errActivity error
		)

		var wg sync.WaitGroup
		wg.Add(3)
		go func() {
			defer wg.Done()
			stats, errStats = client.GetDashboardStats(ctx)
		}()
		go func() {
			defer wg.Done()
			market, errMarket = client.GetMarketOverview(ctx)
		}()
		go func() {
			defer wg.Done()
			activity, errActivity = client.GetRecentActivity(ctx)
		}()
		wg.Wait()

		for _, err := range []error{errStats, errMarket, errActivity} {
			if err != nil {
				return dashboardLoadedMsg{gen: gen, err: err}
			}
		}

		return dashboardLoadedMsg{gen: gen, stats: stats, market: market, activity: activity}
	}
}

// handleDashboardTick drives the poll loop. A tick from a dead generation is
// dropped without rescheduling, which is what deterministically stops the
// loop on logout: the stale timer fires once, fails the liveness check, and
// no successor is armed. Each live tick arms exactly one successor.
func (m *AppModel) handleDashboardTick(msg dashboardTickMsg) (tea.Model, tea.Cmd) {
	if !m.live(msg.gen) {
		return m, nil
	}

	return m, tea.Batch(
		m.loadDashboardCmd(),
		m.dashboardTickCmd(),
	)
}

func (m *AppModel) handleDashboardLoaded(msg dashboardLoadedMsg) (tea.Model, tea.Cmd) {
	if !m.live(msg.gen) {
		return m, nil
	}

	m.Dashboard.Loading = false

	if msg.err != nil {
		if !errors.Is(msg.err, api.ErrUnauthorized) {
			m.Dashboard.Error = msg.err.Error()
		}
		return m, nil
	}

	m.Dashboard.Stats = msg.stats
	m.Dashboard.Market = msg.market
	m.Dashboard.Activity = msg.activity
	m.Dashboard.UpdatedAt = time.Now()
	m.Dashboard.Error = ""
	return m, nil
}
