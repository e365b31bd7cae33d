package models

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tradepanel/api"
	"tradepanel/auth"
)

// App states
const (
	StateMenu = iota
	StateLogin
	StateDashboard
	StateBot
	StateBroker
	StateAdvisor
	StateNews
	StateHelp
)

// Deps is everything the model borrows from main: the two gateway clients,
// the credential store, the prefill cache and the poll interval.
type Deps struct {
	Client       *api.Client
	News         *api.NewsClient
	Tokens       *auth.TokenStore
	Prefill      *auth.PrefillCache
	Logger       *slog.Logger
	PollInterval time.Duration
}

// AppModel is the whole panel: the session controller plus the dependent
// containers (bot, broker, advisor, dashboard, news). All mutation happens on
// the Update loop; commands only talk to the backend and report back as
// messages tagged with the activation generation they were issued under.
type AppModel struct {
	State   int
	Choices []string
	Cursor  int
	Width   int
	Height  int

	// Session state. Authenticated is the gate every dependent fetch and
	// mutation checks. gen is bumped on every login and logout, so a response
	// issued under a dead session can be recognized and discarded.
	Authenticated bool
	User          *auth.User
	gen           int

	LoginForm LoginForm

	Bot       BotState
	Broker    BrokerState
	Advisor   AdvisorState
	Dashboard DashboardState
	News      NewsState

	deps Deps
}

type LoginForm struct {
	Username   string
	Password   string
	Field      int // 0 = username, 1 = password
	Submitting bool
	Error      string
}

// NewAppModel resolves the session's initial unknown state with one
// synchronous read of the token store, before the program loop starts. A
// partial or corrupt credential reads as logged out.
func NewAppModel(deps Deps) *AppModel {
	if deps.PollInterval <= 0 {
		deps.PollInterval = 30 * time.Second
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	m := &AppModel{
		State: StateMenu,
		deps:  deps,
	}

	if cred, ok, err := deps.Tokens.Load(); err == nil && ok {
		user := cred.User
		m.Authenticated = true
		m.User = &user
		m.gen = 1
	}

	m.refreshChoices()
	return m
}

func (m *AppModel) refreshChoices() {
	if m.Authenticated {
		m.Choices = []string{
			"📊 Dashboard",
			"🤖 Trading Bot",
			"🏦 Broker Terminal",
			"🧠 AI Advisor",
			"📰 Market News",
			"❓ Help",
			"🔓 Logout",
			"🚪 Exit",
		}
	} else {
		m.Choices = []string{
			"🔐 Login",
			"❓ Help",
			"🚪 Exit",
		}
	}

	if m.Cursor >= len(m.Choices) {
		m.Cursor = 0
	}
}

// Bubble Tea interface methods

func (m *AppModel) Init() tea.Cmd {
	if m.Authenticated {
		return m.activate()
	}
	return nil
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case SessionExpiredMsg:
		return m.handleSessionExpired()

	case loginResultMsg:
		return m.handleLoginResult(msg)

	case dashboardTickMsg:
		return m.handleDashboardTick(msg)

	case dashboardLoadedMsg:
		return m.handleDashboardLoaded(msg)

	case botStatusMsg:
		return m.handleBotStatus(msg)

	case botActionMsg:
		return m.handleBotAction(msg)

	case brokerStatusMsg:
		return m.handleBrokerStatus(msg)

	case brokerActionMsg:
		return m.handleBrokerAction(msg)

	case advisorLoadedMsg:
		return m.handleAdvisorLoaded(msg)

	case advisorConfigSavedMsg:
		return m.handleAdvisorConfigSaved(msg)

	case keyTestMsg:
		return m.handleKeyTest(msg)

	case analysisMsg:
		return m.handleAnalysis(msg)

	case analysisHistoryMsg:
		return m.handleAnalysisHistory(msg)

	case newsLoadedMsg:
		return m.handleNewsLoaded(msg)

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

func (m *AppModel) View() string {
	switch m.State {
	case StateMenu:
		return m.menuView()
	case StateLogin:
		return m.loginView()
	case StateDashboard:
		return m.dashboardView()
	case StateBot:
		return m.botView()
	case StateBroker:
		return m.brokerView()
	case StateAdvisor:
		return m.advisorView()
	case StateNews:
		return m.newsView()
	case StateHelp:
		return m.helpView()
	default:
		return m.menuView()
	}
}

// live reports whether a completion issued under generation gen may still be
// applied. Every asynchronous result passes through this gate, so a response
// that raced a logout, or a logout followed by a fresh login, is dropped
// instead of leaking into the new session.
func (m *AppModel) live(gen int) bool {
	return m.Authenticated && gen == m.gen
}

// activate fires the initial fetch of every dependent container plus the
// first dashboard poll tick, all tagged with the current generation.
func (m *AppModel) activate() tea.Cmd {
	m.Bot.Loading = true
	m.Broker.Loading = true
	m.Advisor.Loading = true
	m.Dashboard.Loading = true
	m.prefillBrokerForm()

	return tea.Batch(
		m.loadBotStatusCmd(),
		m.refreshBrokerCmd(),
		m.loadAdvisorCmd(),
		m.loadDashboardCmd(),
		m.dashboardTickCmd(),
	)
}
