package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.AdaptiveColor{Light: "#005577", Dark: "#00aadd"}
	text   = lipgloss.AdaptiveColor{Light: "#262626", Dark: "#d9d9d9"}
	muted  = lipgloss.AdaptiveColor{Light: "#626262", Dark: "#a8a8a8"}
	green  = lipgloss.AdaptiveColor{Light: "#859900", Dark: "#50fa7b"}
	yellow = lipgloss.AdaptiveColor{Light: "#b58900", Dark: "#f1fa8c"}
	red    = lipgloss.AdaptiveColor{Light: "#dc322f", Dark: "#ff5555"}
	pink   = lipgloss.AdaptiveColor{Light: "#d33682", Dark: "#ff79c6"}
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#dddddd"}).
			Bold(true).
			Margin(1, 0, 2, 0).
			Align(lipgloss.Center)

	menuItemStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Margin(0, 1).
			Foreground(text)

	selectedMenuItemStyle = menuItemStyle.
				Foreground(lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#000000"}).
				Background(accent).
				Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(muted).
			Margin(2, 0, 0, 0)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2).
			Margin(1, 0)

	inputStyle    = lipgloss.NewStyle().Foreground(pink)
	labelStyle    = lipgloss.NewStyle().Foreground(green).Bold(true)
	progressStyle = lipgloss.NewStyle().Margin(1, 0)
	successStyle  = lipgloss.NewStyle().Foreground(green).Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(yellow).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(red).Bold(true)
)

// GetAdaptiveStyles returns the title, panel and help styles sized to the terminal width.
func GetAdaptiveStyles(width, height int) (title, panel, help lipgloss.Style) {
	maxWidth := width - 4
	if maxWidth < 0 {
		maxWidth = 0
	}
	return titleStyle.Width(maxWidth), panelStyle.Width(maxWidth), helpStyle.Width(maxWidth)
}

// place centers content horizontally once the terminal size is known.
func place(width, height int, vertical lipgloss.Position, content string) string {
	if width <= 0 || height <= 0 {
		return content
	}
	return lipgloss.Place(width, height, lipgloss.Center, vertical, content)
}

// window returns the [start, end) slice of n rows that keeps cursor visible within rows.
func window(n, cursor, rows int) (int, int) {
	if rows < 5 {
		rows = 5
	}
	if n <= rows {
		return 0, n
	}
	start := cursor - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > n {
		start = n - rows
	}
	return start, start + rows
}
