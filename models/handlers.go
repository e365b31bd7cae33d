package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"tradepanel/api"
	"tradepanel/ui"
)

func (m *AppModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "q":
		// Typing screens need the letter; only quit or back out elsewhere.
		if m.State == StateLogin || m.State == StateBroker || m.State == StateAdvisor {
			break
		}
		if m.State == StateMenu {
			return m, tea.Quit
		}
		m.State = StateMenu
		return m, nil

	case "esc":
		m.State = StateMenu
		m.LoginForm.Submitting = false
		m.Advisor.Form.Editing = false
		m.Advisor.Form.APIKey = ""
		return m, nil

	case "f5":
		return m.handleRefresh()
	}

	switch m.State {
	case StateMenu:
		return m.handleMenuKeys(msg)
	case StateLogin:
		return m.handleLoginKeys(msg)
	case StateDashboard:
		return m.handleDashboardKeys(msg)
	case StateBot:
		return m.handleBotKeys(msg)
	case StateBroker:
		return m.handleBrokerKeys(msg)
	case StateAdvisor:
		return m.handleAdvisorKeys(msg)
	case StateNews:
		return m.handleNewsKeys(msg)
	}

	return m, nil
}

// handleRefresh re-fetches whatever the current screen shows. Every path
// checks the session gate; an anonymous session never issues a fetch.
func (m *AppModel) handleRefresh() (tea.Model, tea.Cmd) {
	if !m.Authenticated {
		return m, nil
	}

	switch m.State {
	case StateDashboard:
		m.Dashboard.Loading = true
		return m, m.loadDashboardCmd()
	case StateBot:
		m.Bot.Loading = true
		return m, m.loadBotStatusCmd()
	case StateBroker:
		m.Broker.Loading = true
		return m, m.refreshBrokerCmd()
	case StateAdvisor:
		m.Advisor.Loading = true
		return m, m.loadAdvisorCmd()
	case StateNews:
		m.News.Loading = true
		return m, m.loadNewsCmd(m.News.Category)
	}
	return m, nil
}

func (m *AppModel) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Choices)-1 {
			m.Cursor++
		}
	case "enter", " ":
		return m.handleMenuSelection()
	case "1", "2", "3", "4", "5", "6", "7", "8":
		idx, _ := strconv.Atoi(msg.String())
		if idx >= 1 && idx <= len(m.Choices) {
			m.Cursor = idx - 1
			return m.handleMenuSelection()
		}
	}
	return m, nil
}

func (m *AppModel) handleMenuSelection() (tea.Model, tea.Cmd) {
	if !m.Authenticated {
		switch m.Cursor {
		case 0: // Login
			m.State = StateLogin
			m.LoginForm = LoginForm{}
		case 1: // Help
			m.State = StateHelp
		case 2: // Exit
			return m, tea.Quit
		}
		return m, nil
	}

	switch m.Cursor {
	case 0:
		m.State = StateDashboard
	case 1:
		m.State = StateBot
	case 2:
		m.State = StateBroker
	case 3:
		m.State = StateAdvisor
	case 4:
		m.State = StateNews
		if m.News.Items == nil && !m.News.Loading {
			m.News.Loading = true
			return m, m.loadNewsCmd(m.News.Category)
		}
	case 5:
		m.State = StateHelp
	case 6:
		m.logout()
	case 7:
		return m, tea.Quit
	}
	return m, nil
}

func (m *AppModel) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.LoginForm.Submitting {
		return m, nil
	}

	switch msg.String() {
	case "enter":
		if m.LoginForm.Username != "" && m.LoginForm.Password != "" {
			m.LoginForm.Submitting = true
			m.LoginForm.Error = ""
			return m, m.submitLoginCmd(m.LoginForm.Username, m.LoginForm.Password)
		}
		return m, nil

	case "tab", "down", "up":
		m.LoginForm.Field = (m.LoginForm.Field + 1) % 2
		return m, nil

	case "ctrl+v":
		if text, err := clipboard.ReadAll(); err == nil {
			text = strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(text, "\n", ""), "\r", ""))
			if m.LoginForm.Field == 0 {
				m.LoginForm.Username += text
			} else {
				m.LoginForm.Password += text
			}
		}
		return m, nil

	case "backspace":
		if m.LoginForm.Field == 0 && len(m.LoginForm.Username) > 0 {
			m.LoginForm.Username = m.LoginForm.Username[:len(m.LoginForm.Username)-1]
		} else if m.LoginForm.Field == 1 && len(m.LoginForm.Password) > 0 {
			m.LoginForm.Password = m.LoginForm.Password[:len(m.LoginForm.Password)-1]
		}
		return m, nil

	default:
		if len(msg.String()) == 1 {
			char := msg.String()
			if char[0] >= 32 && char[0] <= 126 { // Printable ASCII
				if m.LoginForm.Field == 0 {
					m.LoginForm.Username += char
				} else {
					m.LoginForm.Password += char
				}
			}
		}
	}
	return m, nil
}

func (m *AppModel) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		return m.handleRefresh()
	}
	return m, nil
}

func (m *AppModel) handleBotKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Bot.Acting {
		return m, nil
	}

	switch msg.String() {
	case "s":
		// Mutations fail fast on an anonymous session, no request issued.
		if !m.Authenticated {
			m.Bot.Error = "Not authenticated"
			return m, nil
		}
		m.Bot.Acting = true
		m.Bot.Error = ""
		return m, m.startBotCmd()

	case "x":
		if !m.Authenticated {
			m.Bot.Error = "Not authenticated"
			return m, nil
		}
		m.Bot.Acting = true
		m.Bot.Error = ""
		return m, m.stopBotCmd()

	case "a":
		if !m.Authenticated || m.Bot.Status == nil {
			return m, nil
		}
		auto := !m.Bot.Status.AutoTrading
		m.Bot.Acting = true
		m.Bot.Error = ""
		return m, m.updateBotSettingsCmd(api.BotSettings{AutoTrading: &auto})

	case "r":
		return m.handleRefresh()
	}
	return m, nil
}

func (m *AppModel) handleBrokerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Broker.Acting {
		return m, nil
	}

	switch msg.String() {
	case "enter":
		if !m.Authenticated {
			m.Broker.Error = "Not authenticated"
			return m, nil
		}
		login, err := strconv.Atoi(m.Broker.Form.Login)
		if m.Broker.Form.Server == "" || err != nil || m.Broker.Form.Password == "" {
			m.Broker.Error = "Server, numeric login and password are required"
			return m, nil
		}
		m.Broker.Acting = true
		m.Broker.Error = ""
		return m, m.connectBrokerCmd(api.BrokerConfig{
			Server:   m.Broker.Form.Server,
			Login:    login,
			Password: m.Broker.Form.Password,
		})

	case "ctrl+d":
		if !m.Authenticated {
			m.Broker.Error = "Not authenticated"
			return m, nil
		}
		m.Broker.Acting = true
		m.Broker.Error = ""
		return m, m.disconnectBrokerCmd()

	case "ctrl+r":
		return m.handleRefresh()

	case "tab", "down":
		m.Broker.Form.Field = (m.Broker.Form.Field + 1) % 3
		return m, nil

	case "up":
		m.Broker.Form.Field = (m.Broker.Form.Field + 2) % 3
		return m, nil

	case "ctrl+v":
		if text, err := clipboard.ReadAll(); err == nil {
			text = strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(text, "\n", ""), "\r", ""))
			m.setBrokerField(text)
		}
		return m, nil

	case "backspace":
		m.backspaceBrokerField()
		return m, nil

	default:
		if len(msg.String()) == 1 {
			char := msg.String()
			if char[0] >= 32 && char[0] <= 126 {
				m.appendBrokerField(char)
			}
		}
	}
	return m, nil
}

func (m *AppModel) appendBrokerField(s string) {
	switch m.Broker.Form.Field {
	case 0:
		m.Broker.Form.Server += s
	case 1:
		if s[0] >= '0' && s[0] <= '9' {
			m.Broker.Form.Login += s
		}
	case 2:
		m.Broker.Form.Password += s
	}
}

func (m *AppModel) setBrokerField(s string) {
	switch m.Broker.Form.Field {
	case 0:
		m.Broker.Form.Server = s
	case 1:
		m.Broker.Form.Login = s
	case 2:
		m.Broker.Form.Password = s
	}
}

func (m *AppModel) backspaceBrokerField() {
	switch m.Broker.Form.Field {
	case 0:
		if len(m.Broker.Form.Server) > 0 {
			m.Broker.Form.Server = m.Broker.Form.Server[:len(m.Broker.Form.Server)-1]
		}
	case 1:
		if len(m.Broker.Form.Login) > 0 {
			m.Broker.Form.Login = m.Broker.Form.Login[:len(m.Broker.Form.Login)-1]
		}
	case 2:
		if len(m.Broker.Form.Password) > 0 {
			m.Broker.Form.Password = m.Broker.Form.Password[:len(m.Broker.Form.Password)-1]
		}
	}
}

func (m *AppModel) handleAdvisorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Advisor.Form.Editing {
		return m.handleAdvisorConfigKeys(msg)
	}

	switch msg.String() {
	case "enter":
		if m.Advisor.Analyzing {
			return m, nil
		}
		if !m.Authenticated {
			m.Advisor.Error = "Not authenticated"
			return m, nil
		}
		symbol := strings.ToUpper(strings.TrimSpace(m.Advisor.SymbolInput))
		if symbol == "" {
			return m, nil
		}
		m.Advisor.Analyzing = true
		m.Advisor.Error = ""
		return m, m.analyzeCmd(symbol)

	case "ctrl+e":
		m.enterAdvisorEdit()
		return m, nil

	case "ctrl+t":
		return m.startKeyTest()

	case "ctrl+r":
		return m.handleRefresh()

	case "backspace":
		if len(m.Advisor.SymbolInput) > 0 {
			m.Advisor.SymbolInput = m.Advisor.SymbolInput[:len(m.Advisor.SymbolInput)-1]
		}
		return m, nil

	default:
		if len(msg.String()) == 1 {
			char := msg.String()
			if (char[0] >= 'A' && char[0] <= 'Z') || (char[0] >= 'a' && char[0] <= 'z') ||
				(char[0] >= '0' && char[0] <= '9') {
				m.Advisor.SymbolInput += strings.ToUpper(char)
			}
		}
	}
	return m, nil
}

func (m *AppModel) handleAdvisorConfigKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Advisor.Saving {
		return m, nil
	}

	switch msg.String() {
	case "ctrl+e":
		m.Advisor.Form.Editing = false
		m.Advisor.Form.APIKey = ""
		return m, nil

	case "enter":
		if !m.Authenticated {
			m.Advisor.Error = "Not authenticated"
			return m, nil
		}
		if m.Advisor.Form.Provider == "" || m.Advisor.Form.Model == "" {
			m.Advisor.Error = "Provider and model are required"
			return m, nil
		}
		m.Advisor.Saving = true
		m.Advisor.Error = ""
		return m, m.saveAdvisorConfigCmd(m.advisorFormConfig())

	case "ctrl+t":
		return m.startKeyTest()

	case "tab", "down":
		m.Advisor.Form.Field = (m.Advisor.Form.Field + 1) % 3
		return m, nil

	case "up":
		m.Advisor.Form.Field = (m.Advisor.Form.Field + 2) % 3
		return m, nil

	case "ctrl+v":
		if text, err := clipboard.ReadAll(); err == nil {
			text = strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(text, "\n", ""), "\r", ""))
			m.setAdvisorField(text)
		}
		return m, nil

	case "backspace":
		m.backspaceAdvisorField()
		return m, nil

	default:
		if len(msg.String()) == 1 {
			char := msg.String()
			if char[0] >= 32 && char[0] <= 126 {
				m.appendAdvisorField(char)
			}
		}
	}
	return m, nil
}

// startKeyTest validates the key typed into the config form. The fetched
// config never carries a key, so there is nothing to test until one is typed.
func (m *AppModel) startKeyTest() (tea.Model, tea.Cmd) {
	if m.Advisor.Testing {
		return m, nil
	}
	if !m.Authenticated {
		m.Advisor.Error = "Not authenticated"
		return m, nil
	}

	provider := m.Advisor.Form.Provider
	if provider == "" && m.Advisor.Config != nil {
		provider = m.Advisor.Config.Provider
	}
	if m.Advisor.Form.APIKey == "" {
		m.Advisor.Error = "Enter an API key first (Ctrl+E)"
		return m, nil
	}

	m.Advisor.Testing = true
	m.Advisor.Error = ""
	return m, m.testAPIKeyCmd(provider, m.Advisor.Form.APIKey)
}

func (m *AppModel) appendAdvisorField(s string) {
	switch m.Advisor.Form.Field {
	case 0:
		m.Advisor.Form.Provider += s
	case 1:
		m.Advisor.Form.Model += s
	case 2:
		m.Advisor.Form.APIKey += s
	}
}

func (m *AppModel) setAdvisorField(s string) {
	switch m.Advisor.Form.Field {
	case 0:
		m.Advisor.Form.Provider = s
	case 1:
		m.Advisor.Form.Model = s
	case 2:
		m.Advisor.Form.APIKey = s
	}
}

func (m *AppModel) backspaceAdvisorField() {
	switch m.Advisor.Form.Field {
	case 0:
		if len(m.Advisor.Form.Provider) > 0 {
			m.Advisor.Form.Provider = m.Advisor.Form.Provider[:len(m.Advisor.Form.Provider)-1]
		}
	case 1:
		if len(m.Advisor.Form.Model) > 0 {
			m.Advisor.Form.Model = m.Advisor.Form.Model[:len(m.Advisor.Form.Model)-1]
		}
	case 2:
		if len(m.Advisor.Form.APIKey) > 0 {
			m.Advisor.Form.APIKey = m.Advisor.Form.APIKey[:len(m.Advisor.Form.APIKey)-1]
		}
	}
}

func (m *AppModel) handleNewsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "1":
		return m, m.switchNewsCategory(NewsCategoryMarket)
	case "2":
		return m, m.switchNewsCategory(NewsCategoryCrypto)
	case "3":
		return m, m.switchNewsCategory(NewsCategoryForex)
	case "r":
		return m.handleRefresh()
	case "up", "k":
		if m.News.Cursor > 0 {
			m.News.Cursor--
		}
	case "down", "j":
		if m.News.Cursor < len(m.News.Items)-1 {
			m.News.Cursor++
		}
	}
	return m, nil
}

func (m *AppModel) menuView() string {
	title := ui.TitleStyle.Render("⚡ TRADE PANEL ⚡\nTrading Bot Control Terminal")

	var menu string
	menu += "Choose an option:\n\n"

	for i, choice := range m.Choices {
		cursor := " "
		if m.Cursor == i {
			cursor = ">"
			choice = ui.SelectedStyle.Render(choice)
		} else {
			choice = ui.UnselectedStyle.Render(choice)
		}
		menu += fmt.Sprintf("%s %s\n", cursor, choice)
	}

	authStatus := "🔴 Not Authenticated"
	if m.Authenticated && m.User != nil {
		authStatus = fmt.Sprintf("🟢 Logged in as %s (risk: %s)", m.User.Username, m.User.RiskLevel)
	}

	footer := ui.InfoStyle.Render(fmt.Sprintf("\nStatus: %s\nPress 'q' to quit • Use ↑↓ to navigate • Enter to select", authStatus))

	return fmt.Sprintf("%s\n\n%s\n%s", title, ui.MenuStyle.Render(menu), footer)
}

func (m *AppModel) helpView() string {
	title := ui.HeaderStyle.Render("❓ HELP & INFORMATION")

	content := `
⚡ TRADE PANEL HELP
══════════════════

KEYBOARD SHORTCUTS:
  ↑↓ or jk    - Navigate menus and lists
  Enter/Space - Select / submit
  Esc         - Go back to main menu
  Q           - Quit application (from main menu)
  F5          - Refresh the current screen
  Tab         - Next form field
  Ctrl+V      - Paste into the focused field

SCREENS:
  📊 Dashboard       - Account stats, market overview, recent
                       activity. Auto-refreshes every 30 seconds.
  🤖 Trading Bot     - s start • x stop • a toggle auto-trading
  🏦 Broker Terminal - Enter connect • Ctrl+D disconnect
  🧠 AI Advisor      - Type a symbol, Enter to analyze
                       Ctrl+E edit provider/model/API key
                       Ctrl+T to test the typed API key
  📰 Market News     - 1 market • 2 crypto • 3 forex

SESSION:
  Your login token is stored locally and reused on restart.
  When the backend rejects it, the panel clears it and returns
  to the login screen on its own.
`

	footer := ui.InfoStyle.Render("Press 'Esc' to return to menu")

	return fmt.Sprintf("%s\n%s\n%s", title, ui.MenuStyle.Render(content), footer)
}
