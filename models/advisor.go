package models

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tradepanel/api"
)

// AdvisorState is the AI advisor container: configuration, the provider
// catalog, the analysis history and the latest on-demand analysis.
type AdvisorState struct {
	Config    *api.AIConfig
	Providers []api.ProviderInfo
	History   []api.AnalysisHistoryEntry
	Result    *api.AnalysisResult
	KeyTest   *api.KeyTestResult

	Form        ConfigForm
	SymbolInput string
	Loading     bool
	Analyzing   bool
	Testing     bool
	Saving      bool
	Error       string
}

// ConfigForm is the advisor config editor. The API key field is the only
// place a key ever exists client-side: the backend never echoes it back.
type ConfigForm struct {
	Provider string
	Model    string
	APIKey   string
	Field    int // 0 = provider, 1 = model, 2 = api key
	Editing  bool
}

// advisorLoadedMsg is the activation snapshot. Provider and history failures
// are tolerated with empty lists; only a config failure marks the container
// as errored.
type advisorLoadedMsg struct {
	gen       int
	config    *api.AIConfig
	providers []api.ProviderInfo
	history   []api.AnalysisHistoryEntry
	err       error
}

type advisorConfigSavedMsg struct {
	gen    int
	config *api.AIConfig
	err    error
}

type keyTestMsg struct {
	gen    int
	result *api.KeyTestResult
	err    error
}

type analysisMsg struct {
	gen    int
	result *api.AnalysisResult
	err    error
}

type analysisHistoryMsg struct {
	gen     int
	history []api.AnalysisHistoryEntry
	err     error
}

// enterAdvisorEdit opens the config editor, seeded from the fetched config
// or, before the first fetch lands, from the prefill cache. The key field
// always starts empty.
func (m *AppModel) enterAdvisorEdit() {
	form := &m.Advisor.Form
	form.Editing = true
	form.Field = 0
	form.APIKey = ""

	if cfg := m.Advisor.Config; cfg != nil {
		form.Provider = cfg.Provider
		form.Model = cfg.Model
		return
	}

	var cached api.AIConfig
	if m.deps.Prefill.LoadAIConfig(&cached) {
		form.Provider = cached.Provider
		form.Model = cached.Model
	}
}

// advisorFormConfig merges the edited fields over the current config so a
// save does not reset tuning values the form does not expose.
func (m *AppModel) advisorFormConfig() api.AIConfig {
	config := api.AIConfig{
		Provider: m.Advisor.Form.Provider,
		Model:    m.Advisor.Form.Model,
		APIKey:   m.Advisor.Form.APIKey,
		IsActive: true,
	}
	if current := m.Advisor.Config; current != nil {
		config.IsActive = current.IsActive
		config.MaxTokens = current.MaxTokens
		config.Temperature = current.Temperature
		config.ConfidenceThreshold = current.ConfidenceThreshold
	}
	return config
}

func (m *AppModel) loadAdvisorCmd() tea.Cmd {
	client := m.deps.Client
	logger := m.deps.Logger
	gen := m.gen

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		config, err := client.GetAIConfig(ctx)
		if err != nil {
			return advisorLoadedMsg{gen: gen, err: err}
		}

		msg := advisorLoadedMsg{gen: gen, config: config}

		if providers, err := client.GetAIProviders(ctx); err == nil {
			msg.providers = providers.Providers
		} else {
			logger.Warn("failed to load AI providers", "error", err)
		}

		if history, err := client.GetAnalysisHistory(ctx, "", 20); err == nil {
			msg.history = history.History
		} else {
			logger.Warn("failed to load analysis history", "error", err)
		}

		return msg
	}
}

func (m *AppModel) saveAdvisorConfigCmd(config api.AIConfig) tea.Cmd {
	client := m.deps.Client
	prefill := m.deps.Prefill
	logger := m.deps.Logger
	gen := m.gen

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		updated, err := client.UpdateAIConfig(ctx, config)
		if err != nil {
			return advisorConfigSavedMsg{gen: gen, err: err}
		}

		// Cache provider and model for prefill. The backend never echoes the
		// key back, and it is not cached either.
		cached := *updated
		cached.APIKey = ""
		if err := prefill.SaveAIConfig(cached); err != nil {
			logger.Warn("failed to cache AI config", "error", err)
		}

		return advisorConfigSavedMsg{gen: gen, config: updated}
	}
}

func (m *AppModel) testAPIKeyCmd(provider, apiKey string) tea.Cmd {
	client := m.deps.Client
	gen := m.gen

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		result, err := client.TestAPIKey(ctx, provider, apiKey)
		return keyTestMsg{gen: gen, result: result, err: err}
	}
}

func (m *AppModel) analyzeCmd(symbol string) tea.Cmd {
	client := m.deps.Client
	gen := m.gen

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
		defer cancel()

		result, err := client.Analyze(ctx, symbol, "comprehensive")
		return analysisMsg{gen: gen, result: result, err: err}
	}
}

func (m *AppModel) loadAnalysisHistoryCmd() tea.Cmd {
	client := m.deps.Client
	gen := m.gen

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		history, err := client.GetAnalysisHistory(ctx, "", 20)
		if err != nil {
			return analysisHistoryMsg{gen: gen, err: err}
		}
		return analysisHistoryMsg{gen: gen, history: history.History}
	}
}

func (m *AppModel) handleAdvisorLoaded(msg advisorLoadedMsg) (tea.Model, tea.Cmd) {
	if !m.live(msg.gen) {
		return m, nil
	}

	m.Advisor.Loading = false

	if msg.err != nil {
		if !errors.Is(msg.err, api.ErrUnauthorized) {
			m.Advisor.Error = msg.err.Error()
		}
		return m, nil
	}

	m.Advisor.Config = msg.config
	m.Advisor.Providers = msg.providers
	m.Advisor.History = msg.history
	m.Advisor.Error = ""
	return m, nil
}

func (m *AppModel) handleAdvisorConfigSaved(msg advisorConfigSavedMsg) (tea.Model, tea.Cmd) {
	if !m.live(msg.gen) {
		return m, nil
	}

	m.Advisor.Saving = false

	if msg.err != nil {
		if !errors.Is(msg.err, api.ErrUnauthorized) {
			m.Advisor.Error = msg.err.Error()
		}
		return m, nil
	}

	m.Advisor.Config = msg.config
	m.Advisor.Form.Editing = false
	m.Advisor.Form.APIKey = ""
	m.Advisor.Error = ""
	return m, nil
}

// handleKeyTest records the verdict without touching the stored config. The
// test is read-only on the backend and repeatable.
func (m *AppModel) handleKeyTest(msg keyTestMsg) (tea.Model, tea.Cmd) {
	if !m.live(msg.gen) {
		return m, nil
	}

	m.Advisor.Testing = false

	if msg.err != nil {
		if !errors.Is(msg.err, api.ErrUnauthorized) {
			m.Advisor.Error = msg.err.Error()
		}
		return m, nil
	}

	m.Advisor.KeyTest = msg.result
	m.Advisor.Error = ""
	return m, nil
}

func (m *AppModel) handleAnalysis(msg analysisMsg) (tea.Model, tea.Cmd) {
	if !m.live(msg.gen) {
		return m, nil
	}

	m.Advisor.Analyzing = false

	if msg.err != nil {
		if !errors.Is(msg.err, api.ErrUnauthorized) {
			m.Advisor.Error = msg.err.Error()
		}
		return m, nil
	}

	m.Advisor.Result = msg.result
	m.Advisor.Error = ""

	// The new analysis belongs at the top of the history; re-fetch rather
	// than splice locally.
	return m, m.loadAnalysisHistoryCmd()
}

func (m *AppModel) handleAnalysisHistory(msg analysisHistoryMsg) (tea.Model, tea.Cmd) {
	if !m.live(msg.gen) {
		return m, nil
	}

	if msg.err != nil {
		// History is decoration; keep whatever we had.
		return m, nil
	}

	m.Advisor.History = msg.history
	return m, nil
}
