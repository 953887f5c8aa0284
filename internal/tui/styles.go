package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/kelsos/comet-dash/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))

	tabStyle       = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("244"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 2).Bold(true).Underline(true).Foreground(lipgloss.Color("255"))

	buttonStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 3).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("255"))
	disabledButtonStyle = buttonStyle.
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("238"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(1, 2)
)

func tierColor(tier models.RiskTier) lipgloss.Color {
	switch tier {
	case models.RiskDanger:
		return lipgloss.Color("196")
	case models.RiskWarning:
		return lipgloss.Color("214")
	default:
		return lipgloss.Color("82")
	}
}

// assetStyle colours a symbol with the asset's configured colour
func assetStyle(hex string) lipgloss.Style {
	if hex == "" {
		return lipgloss.NewStyle().Bold(true)
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(hex))
}
