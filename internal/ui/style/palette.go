package style

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Cyan    = lipgloss.Color("#00E5FF") // Primary highlight
	Magenta = lipgloss.Color("#FF1B6B") // Accent
	Yellow  = lipgloss.Color("#FFB500") // Warnings
	Green   = lipgloss.Color("#2AFFAA") // Success
	Red     = lipgloss.Color("#FF5555") // Errors
	Blue    = lipgloss.Color("#3B82F6") // Info / links

	Base01 = lipgloss.Color("#6C7280") // Muted text
	Base2  = lipgloss.Color("#ECEFF4") // Primary text
	Base1  = lipgloss.Color("#B4BCC8") // Secondary text
)

// Palette provides a centralized color management
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Info      lipgloss.Color

	Text          lipgloss.Color
	TextMuted     lipgloss.Color
	TextSecondary lipgloss.Color
}

// DefaultPalette returns the default color palette
func DefaultPalette() Palette {
	return Palette{
		Primary:   Cyan,
		Secondary: Magenta,
		Success:   Green,
		Error:     Red,
		Warning:   Yellow,
		Info:      Blue,

		Text:          Base2,
		TextMuted:     Base01,
		TextSecondary: Base1,
	}
}

// Styles used by prompts.
type Styles struct {
	Title lipgloss.Style
	Label lipgloss.Style
	Value lipgloss.Style
	Fee   lipgloss.Style
	Key   lipgloss.Style
	Help  lipgloss.Style
	Box   lipgloss.Style
}

// DefaultStyles builds Styles from the default palette.
func DefaultStyles() Styles {
	p := DefaultPalette()
	return Styles{
		Title: lipgloss.NewStyle().Foreground(p.Primary).Bold(true),
		Label: lipgloss.NewStyle().Foreground(p.TextMuted).Width(14),
		Value: lipgloss.NewStyle().Foreground(p.Text),
		Fee:   lipgloss.NewStyle().Foreground(p.Warning).Bold(true),
		Key:   lipgloss.NewStyle().Foreground(p.Primary).Bold(true),
		Help:  lipgloss.NewStyle().Foreground(p.TextMuted),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Secondary).
			Padding(0, 1),
	}
}
