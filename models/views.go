package models

import (
	"fmt"
	"strings"

	"tradepanel/ui"
)

func (m *AppModel) loginView() string {
	title := ui.HeaderStyle.Render("🔐 PANEL LOGIN")

	var content strings.Builder

	if m.LoginForm.Error != "" {
		content.WriteString(ui.NegativeStyle.Render("❌ " + m.LoginForm.Error + "\n\n"))
	}

	if m.LoginForm.Submitting {
		content.WriteString(ui.LoadingStyle.Render("🔄 Signing in...\n\n"))
	} else {
		content.WriteString(ui.PositiveStyle.Render("Sign in to your trading panel account:") + "\n\n")

		content.WriteString("Username\n")
		content.WriteString(renderField(m.LoginForm.Username, m.LoginForm.Field == 0, false) + "\n\n")

		content.WriteString("Password\n")
		content.WriteString(renderField(m.LoginForm.Password, m.LoginForm.Field == 1, true) + "\n\n")

		content.WriteString("Tab to switch fields • Ctrl+V to paste • Enter to sign in • Esc to cancel\n")
	}

	footer := ui.InfoStyle.Render("Your session token is stored locally and reused on restart")

	return fmt.Sprintf("%s\n%s\n%s", title, ui.MenuStyle.Render(content.String()), footer)
}

func renderField(value string, focused, masked bool) string {
	shown := value
	if masked {
		shown = strings.Repeat("*", len(value))
	}
	if focused {
		shown += "│"
	}
	if shown == "" {
		shown = " "
	}
	if focused {
		return ui.InputStyle.Render(shown)
	}
	return ui.UnselectedStyle.Render(shown)
}

func (m *AppModel) dashboardView() string {
	if !m.Authenticated {
		return "Please login first!"
	}

	title := ui.HeaderStyle.Render("📊 DASHBOARD")

	var content strings.Builder

	if m.Dashboard.Error != "" {
		content.WriteString(ui.NegativeStyle.Render("❌ " + m.Dashboard.Error + "\n\n"))
	}

	if m.Dashboard.Loading && m.Dashboard.Stats == nil {
		content.WriteString(ui.LoadingStyle.Render("🔄 Loading dashboard...\n\n"))
	} else if m.Dashboard.Stats == nil {
		content.WriteString("No dashboard data yet.\n\n")
	} else {
		stats := m.Dashboard.Stats

		content.WriteString("💰 ACCOUNT\n")
		content.WriteString("═══════════\n")
		content.WriteString(fmt.Sprintf("Balance:      %s\n", ui.FormatValue(stats.Balance)))
		content.WriteString(fmt.Sprintf("Equity:       %s\n", ui.FormatValue(stats.Equity)))
		content.WriteString(fmt.Sprintf("Margin:       %s\n", ui.FormatValue(stats.Margin)))
		content.WriteString(fmt.Sprintf("Free Margin:  %s\n\n", ui.FormatValue(stats.FreeMargin)))

		content.WriteString("📈 TODAY\n")
		content.WriteString("════════\n")
		content.WriteString(fmt.Sprintf("Profit:   %s   Trades: %d   Win Rate: %s\n\n",
			ui.FormatCurrency(stats.Performance.ProfitToday),
			stats.Performance.TradesToday,
			ui.FormatPercentage(stats.Performance.WinRateToday)))

		content.WriteString(fmt.Sprintf("🤖 Bot: %s", renderBotStatusWord(stats.BotStatus.Status)))
		if stats.BotStatus.Strategy != "" {
			content.WriteString(fmt.Sprintf("  (%s)", stats.BotStatus.Strategy))
		}
		content.WriteString("\n\n")

		if m.Dashboard.Market != nil && len(m.Dashboard.Market.ActiveSymbols) > 0 {
			content.WriteString("🌐 MARKET\n")
			content.WriteString("═════════\n")
			content.WriteString("Symbol      Bid          Ask          Change\n")
			content.WriteString("─────────────────────────────────────────────\n")
			for _, sym := range m.Dashboard.Market.ActiveSymbols {
				content.WriteString(fmt.Sprintf("%-10s  %-11.5f  %-11.5f  %s\n",
					sym.Symbol, sym.Bid, sym.Ask, ui.FormatPercentage(sym.Change)))
			}
			content.WriteString("\n")
		}

		if m.Dashboard.Activity != nil && len(m.Dashboard.Activity.RecentTrades) > 0 {
			content.WriteString("📋 RECENT TRADES\n")
			content.WriteString("════════════════\n")
			maxTrades := 5
			if len(m.Dashboard.Activity.RecentTrades) < maxTrades {
				maxTrades = len(m.Dashboard.Activity.RecentTrades)
			}
			for i := 0; i < maxTrades; i++ {
				trade := m.Dashboard.Activity.RecentTrades[i]
				content.WriteString(fmt.Sprintf("%-10s %-4s %8.2f  %s\n",
					trade.Symbol, strings.ToUpper(trade.Type), trade.Volume,
					ui.FormatCurrency(trade.Profit)))
			}
			content.WriteString("\n")
		}

		if !m.Dashboard.UpdatedAt.IsZero() {
			content.WriteString(fmt.Sprintf("Last updated: %s\n", m.Dashboard.UpdatedAt.Format("3:04:05 PM")))
		}
	}

	footer := ui.InfoStyle.Render(fmt.Sprintf("Press 'R' or 'F5' to refresh • 'Esc' to return to menu • Auto-refresh every %.0fs",
		m.deps.PollInterval.Seconds()))

	return fmt.Sprintf("%s\n%s\n%s", title, ui.MenuStyle.Render(content.String()), footer)
}

func renderBotStatusWord(status string) string {
	switch status {
	case "active":
		return ui.PositiveStyle.Render("ACTIVE")
	case "stopped":
		return ui.NegativeStyle.Render("STOPPED")
	default:
		return ui.NeutralStyle.Render(strings.ToUpper(status))
	}
}

func (m *AppModel) botView() string {
	if !m.Authenticated {
		return "Please login first!"
	}

	title := ui.HeaderStyle.Render("🤖 TRADING BOT")

	var content strings.Builder

	if m.Bot.Error != "" {
		content.WriteString(ui.NegativeStyle.Render("❌ " + m.Bot.Error + "\n\n"))
	}

	if m.Bot.Acting {
		content.WriteString(ui.LoadingStyle.Render("🔄 Applying...\n\n"))
	} else if m.Bot.Loading && m.Bot.Status == nil {
		content.WriteString(ui.LoadingStyle.Render("🔄 Loading bot status...\n\n"))
	}

	if m.Bot.Status != nil {
		status := m.Bot.Status

		statusWord := renderBotStatusWord(status.Status)
		if m.Bot.Provisional {
			statusWord += ui.LoadingStyle.Render(" (confirming...)")
		}

		content.WriteString(fmt.Sprintf("Status:        %s\n", statusWord))
		content.WriteString(fmt.Sprintf("Auto-trading:  %v\n", status.AutoTrading))
		content.WriteString(fmt.Sprintf("Strategy:      %s\n", status.TradingStrategy))
		content.WriteString(fmt.Sprintf("Open trades:   %d / %d\n", status.CurrentTrades, status.MaxOpenTrades))
		content.WriteString(fmt.Sprintf("Max drawdown:  %.1f%%\n", status.MaxDrawdown))
		if status.LastSignal != "" {
			content.WriteString(fmt.Sprintf("Last signal:   %s\n", status.LastSignal))
		}
		content.WriteString("\n📈 TODAY\n")
		content.WriteString("════════\n")
		content.WriteString(fmt.Sprintf("Trades: %d   Win rate: %s   Profit: %s\n",
			status.PerformanceToday.Trades,
			ui.FormatPercentage(status.PerformanceToday.WinRate),
			ui.FormatCurrency(status.PerformanceToday.Profit)))
	}

	footer := ui.InfoStyle.Render("s start • x stop • a toggle auto-trading • r refresh • Esc menu")

	return fmt.Sprintf("%s\n%s\n%s", title, ui.MenuStyle.Render(content.String()), footer)
}

func (m *AppModel) brokerView() string {
	if !m.Authenticated {
		return "Please login first!"
	}

	title := ui.HeaderStyle.Render("🏦 BROKER TERMINAL (MT5)")

	var content strings.Builder

	if m.Broker.Error != "" {
		content.WriteString(ui.NegativeStyle.Render("❌ " + m.Broker.Error + "\n\n"))
	}

	if m.Broker.Acting {
		content.WriteString(ui.LoadingStyle.Render("🔄 Talking to terminal...\n\n"))
	} else if m.Broker.Loading && m.Broker.Status == nil {
		content.WriteString(ui.LoadingStyle.Render("🔄 Loading connection status...\n\n"))
	}

	connected := m.Broker.Status != nil && m.Broker.Status.Connection.Connected

	if connected {
		content.WriteString(ui.PositiveStyle.Render("🟢 Connected") + "\n")
		content.WriteString(fmt.Sprintf("Server: %s   Login: %d\n\n",
			m.Broker.Status.Config.Server, m.Broker.Status.Config.Login))

		if m.Broker.Portfolio != nil {
			acct := m.Broker.Portfolio.AccountInfo
			content.WriteString("💰 ACCOUNT\n")
			content.WriteString("═══════════\n")
			content.WriteString(fmt.Sprintf("Balance:  %s   Equity:  %s\n",
				ui.FormatValue(acct.Balance), ui.FormatValue(acct.Equity)))
			content.WriteString(fmt.Sprintf("Margin:   %s   Free:    %s\n",
				ui.FormatValue(acct.Margin), ui.FormatValue(acct.FreeMargin)))
			content.WriteString(fmt.Sprintf("Leverage: 1:%d   Currency: %s\n\n", acct.Leverage, acct.Currency))

			if len(m.Broker.Portfolio.OpenPositions) > 0 {
				content.WriteString("📋 OPEN POSITIONS\n")
				content.WriteString("═════════════════\n")
				for _, pos := range m.Broker.Portfolio.OpenPositions {
					content.WriteString(fmt.Sprintf("%-10s %-4s %8.2f @ %.5f  %s\n",
						pos.Symbol, strings.ToUpper(pos.Type), pos.Volume, pos.OpenPrice,
						ui.FormatCurrency(pos.Profit)))
				}
				content.WriteString("\n")
			}
		}
	} else {
		content.WriteString(ui.NegativeStyle.Render("🔴 Not connected") + "\n\n")

		content.WriteString("Server\n")
		content.WriteString(renderField(m.Broker.Form.Server, m.Broker.Form.Field == 0, false) + "\n\n")
		content.WriteString("Login\n")
		content.WriteString(renderField(m.Broker.Form.Login, m.Broker.Form.Field == 1, false) + "\n\n")
		content.WriteString("Password\n")
		content.WriteString(renderField(m.Broker.Form.Password, m.Broker.Form.Field == 2, true) + "\n\n")
	}

	footer := ui.InfoStyle.Render("Enter connect • Ctrl+D disconnect • Ctrl+R refresh • Tab next field • Esc menu")

	return fmt.Sprintf("%s\n%s\n%s", title, ui.MenuStyle.Render(content.String()), footer)
}

func (m *AppModel) advisorView() string {
	if !m.Authenticated {
		return "Please login first!"
	}

	title := ui.HeaderStyle.Render("🧠 AI ADVISOR")

	var content strings.Builder

	if m.Advisor.Error != "" {
		content.WriteString(ui.NegativeStyle.Render("❌ " + m.Advisor.Error + "\n\n"))
	}

	if m.Advisor.Loading && m.Advisor.Config == nil {
		content.WriteString(ui.LoadingStyle.Render("🔄 Loading advisor...\n\n"))
	}

	if m.Advisor.Form.Editing {
		if m.Advisor.Saving {
			content.WriteString(ui.LoadingStyle.Render("🔄 Saving configuration...\n\n"))
		}

		content.WriteString(ui.PositiveStyle.Render("⚙️ EDIT CONFIGURATION") + "\n\n")
		content.WriteString("Provider\n")
		content.WriteString(renderField(m.Advisor.Form.Provider, m.Advisor.Form.Field == 0, false) + "\n\n")
		content.WriteString("Model\n")
		content.WriteString(renderField(m.Advisor.Form.Model, m.Advisor.Form.Field == 1, false) + "\n\n")
		content.WriteString("API key (leave empty to keep the stored one)\n")
		content.WriteString(renderField(m.Advisor.Form.APIKey, m.Advisor.Form.Field == 2, true) + "\n\n")

		if len(m.Advisor.Providers) > 0 {
			content.WriteString("Available providers:\n")
			for _, p := range m.Advisor.Providers {
				content.WriteString(fmt.Sprintf("  %s (%s)\n", p.Name, strings.Join(p.Models, ", ")))
			}
			content.WriteString("\n")
		}

		footer := ui.InfoStyle.Render("Enter save • Ctrl+T test API key • Tab next field • Ctrl+E cancel • Esc menu")
		return fmt.Sprintf("%s\n%s\n%s", title, ui.MenuStyle.Render(content.String()), footer)
	}

	if m.Advisor.Config != nil {
		content.WriteString(fmt.Sprintf("Provider: %s   Model: %s\n",
			m.Advisor.Config.Provider, m.Advisor.Config.Model))
		content.WriteString(fmt.Sprintf("Max tokens: %d   Temperature: %.1f   Confidence threshold: %.0f%%\n\n",
			m.Advisor.Config.MaxTokens, m.Advisor.Config.Temperature, m.Advisor.Config.ConfidenceThreshold))
	}

	if m.Advisor.KeyTest != nil {
		if m.Advisor.KeyTest.Valid {
			content.WriteString(ui.PositiveStyle.Render("🔑 API key valid: "+m.Advisor.KeyTest.Message) + "\n\n")
		} else {
			content.WriteString(ui.NegativeStyle.Render("🔑 API key invalid: "+m.Advisor.KeyTest.Message) + "\n\n")
		}
	} else if m.Advisor.Testing {
		content.WriteString(ui.LoadingStyle.Render("🔄 Testing API key...\n\n"))
	}

	content.WriteString("Symbol to analyze\n")
	content.WriteString(renderField(m.Advisor.SymbolInput, true, false) + "\n\n")

	if m.Advisor.Analyzing {
		content.WriteString(ui.LoadingStyle.Render("🔄 Analyzing...\n\n"))
	} else if m.Advisor.Result != nil {
		result := m.Advisor.Result

		signal := ui.NeutralStyle.Render(result.Signal)
		switch result.Signal {
		case "BUY":
			signal = ui.PositiveStyle.Render("BUY")
		case "SELL":
			signal = ui.NegativeStyle.Render("SELL")
		}

		content.WriteString(fmt.Sprintf("📊 %s: %s (confidence %s)\n",
			result.Symbol, signal, ui.FormatPercentage(result.Confidence)))
		if result.Reasoning != "" {
			content.WriteString(result.Reasoning + "\n")
		}
		content.WriteString(fmt.Sprintf("%s/%s in %.1fs\n\n", result.Provider, result.Model, result.ProcessTime))
	}

	if len(m.Advisor.History) > 0 {
		content.WriteString("🕑 HISTORY\n")
		content.WriteString("══════════\n")
		maxEntries := 8
		if len(m.Advisor.History) < maxEntries {
			maxEntries = len(m.Advisor.History)
		}
		for i := 0; i < maxEntries; i++ {
			entry := m.Advisor.History[i]
			content.WriteString(fmt.Sprintf("%-10s %-5s %5.1f%%  %s\n",
				entry.Symbol, entry.Signal, entry.Confidence, entry.CreatedAt))
		}
	}

	footer := ui.InfoStyle.Render("Enter analyze • Ctrl+E edit config • Ctrl+T test API key • Ctrl+R refresh • Esc menu")

	return fmt.Sprintf("%s\n%s\n%s", title, ui.MenuStyle.Render(content.String()), footer)
}

func (m *AppModel) newsView() string {
	if !m.Authenticated {
		return "Please login first!"
	}

	title := ui.HeaderStyle.Render(fmt.Sprintf("📰 %s NEWS", strings.ToUpper(newsCategoryName(m.News.Category))))

	var content strings.Builder

	if m.News.Error != "" {
		content.WriteString(ui.NegativeStyle.Render("❌ " + m.News.Error + "\n\n"))
	}

	if m.News.Loading {
		content.WriteString(ui.LoadingStyle.Render("🔄 Loading news...\n\n"))
	} else if len(m.News.Items) == 0 {
		content.WriteString("No articles.\n\n")
	} else {
		for i, item := range m.News.Items {
			marker := " "
			titleLine := item.Title
			if i == m.News.Cursor {
				marker = ">"
				titleLine = ui.SelectedStyle.Render(titleLine)
			} else {
				titleLine = ui.UnselectedStyle.Render(titleLine)
			}

			sentiment := "⚪"
			switch item.Sentiment {
			case "positive":
				sentiment = "🟢"
			case "negative":
				sentiment = "🔴"
			}

			content.WriteString(fmt.Sprintf("%s %s %s\n", marker, sentiment, titleLine))
			content.WriteString(fmt.Sprintf("   %s • %s\n", item.Source, item.Time))
			if i == m.News.Cursor && item.Summary != "" {
				content.WriteString("   " + item.Summary + "\n")
			}
			content.WriteString("\n")
		}

		if !m.News.UpdatedAt.IsZero() {
			content.WriteString(fmt.Sprintf("Last updated: %s\n", m.News.UpdatedAt.Format("3:04 PM")))
		}
	}

	footer := ui.InfoStyle.Render("1 market • 2 crypto • 3 forex • r refresh • ↑↓ browse • Esc menu")

	return fmt.Sprintf("%s\n%s\n%s", title, ui.MenuStyle.Render(content.String()), footer)
}
