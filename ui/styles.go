package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Main styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#2DD4BF")).
			Background(lipgloss.Color("#000000")).
			Padding(1, 2).
			Align(lipgloss.Center)

	MenuStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#0E7490")).
			Padding(1, 2).
			MarginTop(1)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5EEAD4")).
			Bold(true)

	UnselectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#0E7490")).
			Padding(0, 1)

	InfoStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(lipgloss.Color("#0E7490"))

	// Data display styles
	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA"))

	PositiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#22C55E")).
			Bold(true)

	NegativeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	NeutralStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	// Loading styles
	LoadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	// Input styles
	InputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0F172A")).
			Background(lipgloss.Color("#2DD4BF")).
			Padding(0, 1)
)

func FormatCurrency(value float64) string {
	if value >= 0 {
		return PositiveStyle.Render(fmt.Sprintf("+$%.2f", value))
	}
	return NegativeStyle.Render(fmt.Sprintf("-$%.2f", -value))
}

func FormatValue(value float64) string {
	if value < 1.0 {
		return ValueStyle.Render(fmt.Sprintf("$%.4f", value))
	}
	return ValueStyle.Render(fmt.Sprintf("$%.2f", value))
}

func FormatPercentage(value float64) string {
	if value >= 0 {
		return PositiveStyle.Render(fmt.Sprintf("+%.2f%%", value))
	}
	return NegativeStyle.Render(fmt.Sprintf("%.2f%%", value))
}
