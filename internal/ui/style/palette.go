package style

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Cyan    = lipgloss.Color("#00E5FF")
	Magenta = lipgloss.Color("#FF1B6B")
	Yellow  = lipgloss.Color("#FFB500")
	Green   = lipgloss.Color("#2AFFAA")
	Red     = lipgloss.Color("#FF5555")
	Orange  = lipgloss.Color("#F7931A") // bitcoin orange

	Base01 = lipgloss.Color("#6C7280") // Muted text
	Base2  = lipgloss.Color("#ECEFF4") // Primary text
)

// Styles used by the trade screen
type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Buy     lipgloss.Style
	Sell    lipgloss.Style
	Error   lipgloss.Style
	Online  lipgloss.Style
	Offline lipgloss.Style
	Panel   lipgloss.Style
	Price   lipgloss.Style
}

// DefaultStyles returns the default trade screen styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(Orange).
			Bold(true).
			Margin(1, 0, 0, 0),
		Label: lipgloss.NewStyle().Foreground(Base01).Width(14),
		Value: lipgloss.NewStyle().Foreground(Base2),
		Muted: lipgloss.NewStyle().Foreground(Base01),
		Buy: lipgloss.NewStyle().
			Foreground(Green).
			Bold(true),
		Sell: lipgloss.NewStyle().
			Foreground(Red).
			Bold(true),
		Error:   lipgloss.NewStyle().Foreground(Red),
		Online:  lipgloss.NewStyle().Foreground(Green),
		Offline: lipgloss.NewStyle().Foreground(Yellow),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Cyan).
			Padding(0, 1),
		Price: lipgloss.NewStyle().
			Foreground(Magenta).
			Bold(true),
	}
}
