package tui

import "github.com/charmbracelet/lipgloss"

var (
	amber = lipgloss.Color("#FBBF24")
	rose  = lipgloss.Color("#FB7185")
	slate = lipgloss.Color("#94A3B8")
	white = lipgloss.Color("#F8FAFC")

	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0F172A")).
			Background(amber).
			Padding(0, 1)

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	mutedStyle   = lipgloss.NewStyle().Foreground(slate)
	errorStyle   = lipgloss.NewStyle().Foreground(rose)
	warningStyle = lipgloss.NewStyle().
			Foreground(amber).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(amber).
			Padding(0, 1)

	activeStyle   = lipgloss.NewStyle().Bold(true).Foreground(amber)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#0F172A")).Background(amber)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#334155")).
			Padding(0, 2).
			Width(18)

	drawerStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(amber).
			PaddingLeft(2)
)

// Banner is shown above every page.
const Banner = "Not affiliated with UC/CSU/ASSIST. Year/term matters."
