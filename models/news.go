package models

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tradepanel/api"
)

// News categories
const (
	NewsCategoryMarket = iota
	NewsCategoryCrypto
	NewsCategoryForex
)

// NewsState is the market-news container, one feed at a time.
type NewsState struct {
	Items     []api.NewsItem
	Category  int
	Cursor    int
	UpdatedAt time.Time
	Loading   bool
	Error     string
}

type newsLoadedMsg struct {
	gen      int
	category int
	items    []api.NewsItem
	err      error
}

func newsCategoryName(category int) string {
	switch category {
	case NewsCategoryCrypto:
		return "Crypto"
	case NewsCategoryForex:
		return "Forex"
	default:
		return "Market"
	}
}

func (m *AppModel) loadNewsCmd(category int) tea.Cmd {
	news := m.deps.News
	gen := m.gen

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var (
			items []api.NewsItem
			err   error
		)
		switch category {
		case NewsCategoryCrypto:
			items, err = news.GetCryptoNews(ctx)
		case NewsCategoryForex:
			items, err = news.GetForexNews(ctx)
		default:
			items, err = news.GetMarketNews(ctx, "")
		}

		return newsLoadedMsg{gen: gen, category: category, items: items, err: err}
	}
}

func (m *AppModel) handleNewsLoaded(msg newsLoadedMsg) (tea.Model, tea.Cmd) {
	if !m.live(msg.gen) {
		return m, nil
	}

	// The user may have switched category while the fetch was in flight.
	if msg.category != m.News.Category {
		return m, nil
	}

	m.News.Loading = false

	if msg.err != nil {
		if !errors.Is(msg.err, api.ErrUnauthorized) {
			m.News.Error = msg.err.Error()
		}
		return m, nil
	}

	m.News.Items = msg.items
	m.News.Cursor = 0
	m.News.UpdatedAt = time.Now()
	m.News.Error = ""
	return m, nil
}

// switchNewsCategory swaps the feed and kicks a fetch for it.
func (m *AppModel) switchNewsCategory(category int) tea.Cmd {
	if !m.Authenticated {
		return nil
	}

	m.News.Category = category
	m.News.Items = nil
	m.News.Cursor = 0
	m.News.Loading = true
	m.News.Error = ""
	return m.loadNewsCmd(category)
}
