package models

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradepanel/api"
	"tradepanel/auth"
	"tradepanel/storage"
)

// backend is a fake panel backend that counts hits per path.
type backend struct {
	mu          sync.Mutex
	hits        map[string]int
	connected   bool
	loginFail   bool
	savedConfig api.AIConfig
	testedKey   string
}

func (b *backend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

func (b *backend) saved() api.AIConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.savedConfig
}

func (b *backend) lastTestedKey() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.testedKey
}

func (b *backend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.hits[r.URL.Path]++
		b.mu.Unlock()

		switch r.URL.Path {
		case "/api/auth/login":
			if b.loginFail {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(api.LoginResponse{
				AccessToken: "test-token",
				TokenType:   "bearer",
				ExpiresIn:   1800,
				User:        auth.User{ID: 1, Username: "trader", RiskLevel: "moderate"},
			})
		case "/api/bot/status":
			json.NewEncoder(w).Encode(api.BotStatus{Status: "stopped", TradingStrategy: "scalping"})
		case "/api/bot/start", "/api/bot/stop", "/api/bot/settings":
			w.WriteHeader(http.StatusOK)
		case "/api/mt5/status":
			status := api.BrokerStatus{}
			status.Connection.Connected = b.connected
			status.Config.Server = "Demo-Server"
			status.Config.Login = 12345
			json.NewEncoder(w).Encode(status)
		case "/api/mt5/account-info":
			portfolio := api.Portfolio{Success: true}
			portfolio.AccountInfo.Balance = 10000
			json.NewEncoder(w).Encode(portfolio)
		case "/api/ai/config":
			if r.Method == http.MethodPut {
				var cfg api.AIConfig
				json.NewDecoder(r.Body).Decode(&cfg)
				b.mu.Lock()
				b.savedConfig = cfg
				b.mu.Unlock()
				cfg.APIKey = "" // never echoed back
				json.NewEncoder(w).Encode(cfg)
				return
			}
			json.NewEncoder(w).Encode(api.AIConfig{Provider: "openai", Model: "gpt-4"})
		case "/api/ai/test-api-key":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			b.mu.Lock()
			b.testedKey = body["api_key"]
			b.mu.Unlock()
			json.NewEncoder(w).Encode(api.KeyTestResult{Valid: body["api_key"] == "sk-good", Message: "checked"})
		case "/api/ai/providers":
			json.NewEncoder(w).Encode(api.ProvidersResponse{})
		case "/api/ai/analysis-history":
			json.NewEncoder(w).Encode(api.AnalysisHistory{})
		case "/api/dashboard/stats":
			json.NewEncoder(w).Encode(api.DashboardStats{Balance: 10000})
		case "/api/dashboard/market-overview":
			json.NewEncoder(w).Encode(api.MarketOverview{MarketStatus: "open"})
		case "/api/dashboard/recent-activity":
			json.NewEncoder(w).Encode(api.RecentActivity{})
		default:
			http.NotFound(w, r)
		}
	})
}

func newTestModel(t *testing.T) (*AppModel, *backend, storage.Store) {
	t.Helper()

	b := &backend{hits: map[string]int{}}
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	store := storage.NewMemory()
	tokens := auth.NewTokenStore(store)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client := api.NewClient(srv.URL, tokens, logger, 5*time.Second)
	news := api.NewNewsClient(api.NewClient(srv.URL+"/api", tokens, logger, 5*time.Second))

	m := NewAppModel(Deps{
		Client:       client,
		News:         news,
		Tokens:       tokens,
		Prefill:      auth.NewPrefillCache(store),
		Logger:       logger,
		PollInterval: 5 * time.Millisecond,
	})

	return m, b, store
}

func seedSession(t *testing.T, m *AppModel) {
	t.Helper()
	require.NoError(t, m.deps.Tokens.Save(auth.Credential{
		Token:     "test-token",
		ExpiresAt: time.Now().Add(time.Hour).UnixMilli(),
		User:      auth.User{ID: 1, Username: "trader", RiskLevel: "moderate"},
	}))
	m.Authenticated = true
	user := auth.User{ID: 1, Username: "trader", RiskLevel: "moderate"}
	m.User = &user
	m.gen = 1
	m.refreshChoices()
}

// runCmd executes a command tree synchronously and flattens the messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// drain applies messages to the model, executing follow-up commands until
// everything settles. Poll ticks are dropped here because a live tick always
// arms a successor; tests that care about ticks feed them to Update directly.
func drain(m *AppModel, msgs []tea.Msg) {
	for len(msgs) > 0 {
		msg := msgs[0]
		msgs = msgs[1:]
		if _, ok := msg.(dashboardTickMsg); ok {
			continue
		}
		_, cmd := m.Update(msg)
		msgs = append(msgs, runCmd(cmd)...)
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+e":
		return tea.KeyMsg{Type: tea.KeyCtrlE}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestStartupRestoresSession(t *testing.T) {
	m, _, _ := newTestModel(t)
	assert.False(t, m.Authenticated)

	seedSession(t, m)
	m2 := NewAppModel(m.deps)

	assert.True(t, m2.Authenticated)
	require.NotNil(t, m2.User)
	assert.Equal(t, "trader", m2.User.Username)
	assert.Equal(t, "moderate", m2.User.RiskLevel)
}

func TestLoginActivatesDependentContainers(t *testing.T) {
	m, b, _ := newTestModel(t)

	msg := m.submitLoginCmd("trader", "secret")()
	_, cmd := m.Update(msg)

	assert.True(t, m.Authenticated)
	require.NotNil(t, m.User)
	assert.Equal(t, "moderate", m.User.RiskLevel)

	drain(m, runCmd(cmd))

	require.NotNil(t, m.Bot.Status)
	assert.Equal(t, "stopped", m.Bot.Status.Status)
	require.NotNil(t, m.Broker.Status)
	require.NotNil(t, m.Advisor.Config)
	assert.Equal(t, "openai", m.Advisor.Config.Provider)
	require.NotNil(t, m.Dashboard.Stats)

	assert.Equal(t, 1, b.count("/api/bot/status"))
	assert.Equal(t, 1, b.count("/api/mt5/status"))
	assert.Equal(t, 1, b.count("/api/ai/config"))
}

func TestLoginFailureUniformError(t *testing.T) {
	m, b, store := newTestModel(t)
	b.loginFail = true

	msg := m.submitLoginCmd("trader", "wrong")()
	m.Update(msg)

	assert.False(t, m.Authenticated)
	assert.Equal(t, loginFailedText, m.LoginForm.Error)
	assert.Empty(t, m.LoginForm.Password)

	// A failed login leaves no credential behind.
	_, ok, err := store.Get("access_token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBotStartProvisionalThenConfirmed(t *testing.T) {
	m, b, _ := newTestModel(t)
	seedSession(t, m)
	m.Bot.Status = &api.BotStatus{Status: "stopped"}
	m.State = StateBot

	_, cmd := m.Update(keyMsg("s"))
	require.NotNil(t, cmd)

	msgs := runCmd(cmd)
	require.Len(t, msgs, 1)
	_, refetch := m.Update(msgs[0])

	// Provisionally active until the authoritative snapshot lands.
	assert.Equal(t, "active", m.Bot.Status.Status)
	assert.True(t, m.Bot.Provisional)
	assert.Equal(t, 1, b.count("/api/bot/start"))

	drain(m, runCmd(refetch))

	assert.Equal(t, "stopped", m.Bot.Status.Status)
	assert.False(t, m.Bot.Provisional)
	assert.Equal(t, 1, b.count("/api/bot/status"))
}

func TestBrokerDisconnectedSkipsAccountFetch(t *testing.T) {
	m, b, _ := newTestModel(t)
	seedSession(t, m)
	b.connected = false

	drain(m, runCmd(m.refreshBrokerCmd()))

	require.NotNil(t, m.Broker.Status)
	assert.False(t, m.Broker.Status.Connection.Connected)
	assert.Nil(t, m.Broker.Portfolio)
	assert.Equal(t, 0, b.count("/api/mt5/account-info"))
}

func TestBrokerConnectedFetchesAccountOnce(t *testing.T) {
	m, b, _ := newTestModel(t)
	seedSession(t, m)
	b.connected = true

	drain(m, runCmd(m.refreshBrokerCmd()))

	require.NotNil(t, m.Broker.Status)
	assert.True(t, m.Broker.Status.Connection.Connected)
	require.NotNil(t, m.Broker.Portfolio)
	assert.Equal(t, float64(10000), m.Broker.Portfolio.AccountInfo.Balance)
	assert.Equal(t, 1, b.count("/api/mt5/account-info"))
}

func TestLogoutDiscardsInFlightResponse(t *testing.T) {
	m, _, _ := newTestModel(t)
	seedSession(t, m)

	// Issue the fetch under the live session, then log out before it lands.
	inflight := m.loadBotStatusCmd()
	m.logout()

	assert.False(t, m.Authenticated)
	assert.Nil(t, m.Bot.Status)

	drain(m, runCmd(inflight))
	assert.Nil(t, m.Bot.Status, "stale response must not repopulate a cleared container")
}

func TestStaleResponseDoesNotLeakIntoNextSession(t *testing.T) {
	m, _, _ := newTestModel(t)
	seedSession(t, m)

	inflight := m.loadBotStatusCmd()
	m.logout()

	// A fresh login bumps the generation again.
	msg := m.submitLoginCmd("trader", "secret")()
	m.Update(msg)
	require.True(t, m.Authenticated)
	m.Bot = BotState{}

	drain(m, runCmd(inflight))
	assert.Nil(t, m.Bot.Status, "response from the previous session epoch must be dropped")
}

func TestLogoutClearsCredentialAndContainers(t *testing.T) {
	m, _, store := newTestModel(t)
	seedSession(t, m)
	m.Bot.Status = &api.BotStatus{Status: "active"}
	m.Dashboard.Stats = &api.DashboardStats{Balance: 1}

	m.logout()

	assert.False(t, m.Authenticated)
	assert.Nil(t, m.User)
	assert.Nil(t, m.Bot.Status)
	assert.Nil(t, m.Dashboard.Stats)

	for _, key := range []string{"access_token", "user_data", "token_expires"} {
		_, ok, err := store.Get(key)
		require.NoError(t, err)
		assert.False(t, ok, "key %q must be gone after logout", key)
	}
}

func TestDeadGenerationTickStopsPolling(t *testing.T) {
	m, b, _ := newTestModel(t)
	seedSession(t, m)

	tick := m.dashboardTickCmd()
	m.logout()

	msgs := runCmd(tick)
	require.Len(t, msgs, 1)
	_, cmd := m.Update(msgs[0])

	// The stale tick dies at the liveness check: no fetch, no successor.
	assert.Nil(t, cmd)
	assert.Equal(t, 0, b.count("/api/dashboard/stats"))
}

func TestLiveTickFetchesAndReschedules(t *testing.T) {
	m, b, _ := newTestModel(t)
	seedSession(t, m)

	msgs := runCmd(m.dashboardTickCmd())
	require.Len(t, msgs, 1)
	_, cmd := m.Update(msgs[0])
	require.NotNil(t, cmd, "a live tick must fetch and rearm")
	drain(m, runCmd(cmd))

	require.NotNil(t, m.Dashboard.Stats)
	assert.Equal(t, 1, b.count("/api/dashboard/stats"))
	assert.Equal(t, 1, b.count("/api/dashboard/market-overview"))
	assert.Equal(t, 1, b.count("/api/dashboard/recent-activity"))
}

func TestUnauthenticatedMutationFailsFast(t *testing.T) {
	m, b, _ := newTestModel(t)
	m.State = StateBot

	_, cmd := m.Update(keyMsg("s"))

	assert.Nil(t, cmd, "no request may be issued while logged out")
	assert.Equal(t, "Not authenticated", m.Bot.Error)
	assert.Equal(t, 0, b.count("/api/bot/start"))
}

func TestSessionExpiredForcesLoginScreen(t *testing.T) {
	m, _, store := newTestModel(t)
	seedSession(t, m)
	m.Bot.Status = &api.BotStatus{Status: "active"}
	m.State = StateDashboard

	_, cmd := m.Update(SessionExpiredMsg{})

	assert.Nil(t, cmd)
	assert.False(t, m.Authenticated)
	assert.Equal(t, StateLogin, m.State)
	assert.Nil(t, m.Bot.Status)
	assert.NotEmpty(t, m.LoginForm.Error)

	_, ok, err := store.Get("access_token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdvisorConfigSavePersistsCacheAndRefreshes(t *testing.T) {
	m, b, _ := newTestModel(t)
	seedSession(t, m)
	m.Advisor.Config = &api.AIConfig{Provider: "openai", Model: "gpt-4", MaxTokens: 500, IsActive: true}
	m.State = StateAdvisor

	m.Update(keyMsg("ctrl+e"))
	require.True(t, m.Advisor.Form.Editing)
	assert.Equal(t, "openai", m.Advisor.Form.Provider)
	assert.Empty(t, m.Advisor.Form.APIKey)

	m.Advisor.Form.Provider = "gemini"
	m.Advisor.Form.Model = "gemini-pro"
	m.Advisor.Form.APIKey = "sk-new"

	_, cmd := m.Update(keyMsg("enter"))
	require.NotNil(t, cmd)
	assert.True(t, m.Advisor.Saving)
	drain(m, runCmd(cmd))

	assert.False(t, m.Advisor.Saving)
	assert.False(t, m.Advisor.Form.Editing)
	assert.Empty(t, m.Advisor.Form.APIKey)

	require.NotNil(t, m.Advisor.Config)
	assert.Equal(t, "gemini", m.Advisor.Config.Provider)
	assert.Equal(t, "gemini-pro", m.Advisor.Config.Model)
	assert.Equal(t, 500, m.Advisor.Config.MaxTokens, "tuning values must survive the save")
	assert.Empty(t, m.Advisor.Config.APIKey, "backend never echoes the key")

	// The key travels to the backend but never into the prefill cache.
	assert.Equal(t, "sk-new", b.saved().APIKey)

	var cached api.AIConfig
	require.True(t, m.deps.Prefill.LoadAIConfig(&cached))
	assert.Equal(t, "gemini", cached.Provider)
	assert.Equal(t, "gemini-pro", cached.Model)
	assert.Empty(t, cached.APIKey)
}

func TestAdvisorConfigSaveFailsFastUnauthenticated(t *testing.T) {
	m, b, _ := newTestModel(t)
	m.State = StateAdvisor
	m.Advisor.Form.Editing = true
	m.Advisor.Form.Provider = "openai"
	m.Advisor.Form.Model = "gpt-4"

	_, cmd := m.Update(keyMsg("enter"))

	assert.Nil(t, cmd, "no request may be issued while logged out")
	assert.Equal(t, "Not authenticated", m.Advisor.Error)
	assert.Equal(t, 0, b.count("/api/ai/config"))
}

func TestAdvisorEditSeedsFromPrefillCache(t *testing.T) {
	m, _, _ := newTestModel(t)
	seedSession(t, m)
	require.NoError(t, m.deps.Prefill.SaveAIConfig(api.AIConfig{Provider: "anthropic", Model: "claude-3"}))
	m.State = StateAdvisor

	// No fetched config yet; the editor falls back to the cached one.
	m.Update(keyMsg("ctrl+e"))

	assert.Equal(t, "anthropic", m.Advisor.Form.Provider)
	assert.Equal(t, "claude-3", m.Advisor.Form.Model)
	assert.Empty(t, m.Advisor.Form.APIKey)
}

func TestAdvisorKeyTestSendsTypedKey(t *testing.T) {
	m, b, _ := newTestModel(t)
	seedSession(t, m)
	m.State = StateAdvisor

	m.Update(keyMsg("ctrl+e"))
	m.Advisor.Form.Provider = "openai"
	m.Advisor.Form.APIKey = "sk-good"

	_, cmd := m.Update(keyMsg("ctrl+t"))
	require.NotNil(t, cmd)
	drain(m, runCmd(cmd))

	require.NotNil(t, m.Advisor.KeyTest)
	assert.True(t, m.Advisor.KeyTest.Valid)
	assert.Equal(t, "sk-good", b.lastTestedKey())
}

func TestAdvisorKeyTestRequiresTypedKey(t *testing.T) {
	m, b, _ := newTestModel(t)
	seedSession(t, m)
	m.Advisor.Config = &api.AIConfig{Provider: "openai", Model: "gpt-4"}
	m.State = StateAdvisor

	_, cmd := m.Update(keyMsg("ctrl+t"))

	assert.Nil(t, cmd)
	assert.Equal(t, "Enter an API key first (Ctrl+E)", m.Advisor.Error)
	assert.Equal(t, 0, b.count("/api/ai/test-api-key"))
}

func TestBrokerFormPrefilledWithoutPassword(t *testing.T) {
	m, _, _ := newTestModel(t)
	seedSession(t, m)

	require.NoError(t, m.deps.Prefill.SaveBrokerConfig(api.BrokerConfig{
		Server: "Demo-Server",
		Login:  12345,
	}))

	m.prefillBrokerForm()

	assert.Equal(t, "Demo-Server", m.Broker.Form.Server)
	assert.Equal(t, "12345", m.Broker.Form.Login)
	assert.Empty(t, m.Broker.Form.Password)
}
