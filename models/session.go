package models

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tradepanel/api"
)

// SessionExpiredMsg arrives when either gateway intercepted a 401/403 and
// already cleared the credential. main wires Client.SetOnUnauthorized to
// Program.Send so the teardown runs on the Update loop like everything else.
type SessionExpiredMsg struct{}

type loginResultMsg struct {
	resp *api.LoginResponse
	err  error
}

// loginFailedText is deliberately uniform. The backend's reason for rejecting
// a login is not echoed to the user.
const loginFailedText = "Login failed. Check your username and password."

// submitLoginCmd exchanges the form credentials for a token and persists the
// credential before reporting back. Persisting inside the command is fine,
// the token store is safe for concurrent use; the model itself is only
// touched in Update.
func (m *AppModel) submitLoginCmd(username, password string) tea.Cmd {
	client := m.deps.Client
	tokens := m.deps.Tokens
	logger := m.deps.Logger

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		resp, err := client.Login(ctx, username, password)
		if err != nil {
			// Defensive: a failed login must never leave a half-written
			// credential behind.
			if clearErr := tokens.Clear(); clearErr != nil {
				logger.Error("failed to clear credential", "error", clearErr)
			}
			return loginResultMsg{err: err}
		}

		cred := api.CredentialFromLogin(resp, time.Now())
		if err := tokens.Save(cred); err != nil {
			logger.Error("failed to persist credential", "error", err)
			return loginResultMsg{err: err}
		}

		return loginResultMsg{resp: resp}
	}
}

func (m *AppModel) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	m.LoginForm.Submitting = false

	if msg.err != nil {
		m.LoginForm.Error = loginFailedText
		m.LoginForm.Password = ""
		return m, nil
	}

	user := msg.resp.User
	m.Authenticated = true
	m.User = &user
	m.gen++
	m.LoginForm = LoginForm{}
	m.State = StateDashboard
	m.refreshChoices()

	m.deps.Logger.Info("session activated", "username", user.Username)

	return m, m.activate()
}

// handleSessionExpired converges on the same teardown as a manual logout. The
// gateway already cleared the token store; clearing it again is harmless and
// keeps a single path.
func (m *AppModel) handleSessionExpired() (tea.Model, tea.Cmd) {
	if !m.Authenticated {
		return m, nil
	}

	m.deps.Logger.Warn("session expired, returning to login")
	m.logout()
	m.LoginForm.Error = "Session expired. Please log in again."
	m.State = StateLogin
	return m, nil
}

// logout tears the session down synchronously: clear the stored credential,
// flip the gate, bump the generation so in-flight completions die at the
// liveness check, and reset every dependent container in the same step.
func (m *AppModel) logout() {
	if err := m.deps.Tokens.Clear(); err != nil {
		m.deps.Logger.Error("failed to clear credential", "error", err)
	}

	m.Authenticated = false
	m.User = nil
	m.gen++

	m.Bot = BotState{}
	m.Broker = BrokerState{}
	m.Advisor = AdvisorState{}
	m.Dashboard = DashboardState{}
	m.News = NewsState{}
	m.LoginForm = LoginForm{}

	m.State = StateMenu
	m.refreshChoices()
}
