// Package styles defines the visual styling for the console.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette. Primary and Secondary are the two ends of the ranking gradient.
var (
	Primary   = lipgloss.Color("#FF5F87")
	Secondary = lipgloss.Color("#7D56F4")
	Subtle    = lipgloss.Color("240")

	Success = lipgloss.Color("#04B575")
	Error   = lipgloss.Color("#FF4D4D")
	Warning = lipgloss.Color("#FFB000")
	Info    = lipgloss.Color("#5FAFFF")

	BgPanel  = lipgloss.Color("235")
	BgAccent = lipgloss.Color("236")
	BgButton = lipgloss.Color("238")

	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("241")
)

// Layout
var (
	DocStyle = lipgloss.NewStyle().
			Margin(1, 2).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Subtle).
			Padding(1, 2).
			MarginBottom(1)

	// StatCardStyle is the compact card used for headline numbers.
	StatCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Secondary).
			Padding(0, 2).
			MarginRight(1)

	ModalContentStyle = lipgloss.NewStyle().
				Border(lipgloss.DoubleBorder()).
				BorderForeground(Primary).
				Padding(1, 2).
				Background(BgPanel)

	HelpPanelStyle = ModalContentStyle.
			Padding(1, 3)

	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Secondary).
			Padding(0, 1).
			MarginBottom(1)
)

// Headings
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			MarginBottom(1)

	SubTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Secondary).
			MarginBottom(1)

	CardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Secondary).
			MarginBottom(1)

	StatValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextPrimary)
)

// Text
var (
	HelpStyle          = lipgloss.NewStyle().Foreground(TextMuted)
	HelpKeyStyle       = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	HelpSeparatorStyle = lipgloss.NewStyle().Foreground(Subtle)
	ProgressLabelStyle = lipgloss.NewStyle().Foreground(TextSecondary).Width(20)

	ErrorTextStyle   = lipgloss.NewStyle().Foreground(Error)
	SuccessTextStyle = lipgloss.NewStyle().Foreground(Success)
	WarningTextStyle = lipgloss.NewStyle().Foreground(Warning)
	InfoTextStyle    = lipgloss.NewStyle().Foreground(Info)
)

// Form inputs and buttons
var (
	FocusedStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	BlurredStyle = lipgloss.NewStyle().Foreground(TextMuted)

	FocusedBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(Primary).
				Padding(0, 1)
	BlurredBorderStyle = FocusedBorderStyle.
				BorderForeground(Subtle)

	ButtonActiveStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Background(Primary).
				Foreground(lipgloss.Color("#FFFDF5")).
				Bold(true)
	ButtonInactiveStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Background(BgButton).
				Foreground(TextSecondary)
)

// Project table
var (
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Secondary).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(Subtle)

	TableSelectedStyle = lipgloss.NewStyle().
				Background(BgAccent).
				Foreground(TextPrimary).
				Bold(true)

	activeStatusStyle   = lipgloss.NewStyle().Foreground(Success).Bold(true)
	inactiveStatusStyle = lipgloss.NewStyle().Foreground(Error)
	pendingStatusStyle  = lipgloss.NewStyle().Foreground(Warning).Italic(true)
)

// GetShareStyle returns the style for a model's share of the top count.
func GetShareStyle(share float64) lipgloss.Style {
	switch {
	case share >= 0.75:
		return lipgloss.NewStyle().Foreground(Primary)
	case share >= 0.25:
		return lipgloss.NewStyle().Foreground(Info)
	default:
		return lipgloss.NewStyle().Foreground(TextSecondary)
	}
}

// GetStatusStyle returns the style for a project's activation label. A
// pending toggle wins over the stored flag.
func GetStatusStyle(active, pending bool) lipgloss.Style {
	switch {
	case pending:
		return pendingStatusStyle
	case active:
		return activeStatusStyle
	default:
		return inactiveStatusStyle
	}
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
