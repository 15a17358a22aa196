package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the color scheme of the stats panel.
type Theme struct {
	Name     string
	Title    lipgloss.Color
	Accent   lipgloss.Color
	Text     lipgloss.Color
	Muted    lipgloss.Color
	Border   lipgloss.Color
	Selected lipgloss.Color
	Running  lipgloss.Color
	Paused   lipgloss.Color
	Error    lipgloss.Color
}

var (
	ThemeNight = Theme{
		Name:     "night",
		Title:    lipgloss.Color("#d9ebff"),
		Accent:   lipgloss.Color("#6fb7ff"),
		Text:     lipgloss.Color("#c8c8d0"),
		Muted:    lipgloss.Color("#5a5a70"),
		Border:   lipgloss.Color("#333344"),
		Selected: lipgloss.Color("#ffd24d"),
		Running:  lipgloss.Color("#00ff88"),
		Paused:   lipgloss.Color("#ffaa00"),
		Error:    lipgloss.Color("#ff5555"),
	}

	ThemeMinimal = Theme{
		Name:     "minimal",
		Title:    lipgloss.Color("#ffffff"),
		Accent:   lipgloss.Color("#cccccc"),
		Text:     lipgloss.Color("#bbbbbb"),
		Muted:    lipgloss.Color("#666666"),
		Border:   lipgloss.Color("#444444"),
		Selected: lipgloss.Color("#0088ff"),
		Running:  lipgloss.Color("#ffffff"),
		Paused:   lipgloss.Color("#888888"),
		Error:    lipgloss.Color("#ff0000"),
	}

	ThemeRetro = Theme{
		Name:     "retro",
		Title:    lipgloss.Color("#88ff88"),
		Accent:   lipgloss.Color("#00cc00"),
		Text:     lipgloss.Color("#00ff00"),
		Muted:    lipgloss.Color("#005500"),
		Border:   lipgloss.Color("#003300"),
		Selected: lipgloss.Color("#ffff00"),
		Running:  lipgloss.Color("#88ff88"),
		Paused:   lipgloss.Color("#ffff00"),
		Error:    lipgloss.Color("#ff0000"),
	}

	ThemeSunset = Theme{
		Name:     "sunset",
		Title:    lipgloss.Color("#fff5f5"),
		Accent:   lipgloss.Color("#feca57"),
		Text:     lipgloss.Color("#f0d8e0"),
		Muted:    lipgloss.Color("#8b6b8c"),
		Border:   lipgloss.Color("#4d2b4e"),
		Selected: lipgloss.Color("#ff9ff3"),
		Running:  lipgloss.Color("#5fd068"),
		Paused:   lipgloss.Color("#ffc048"),
		Error:    lipgloss.Color("#ff4757"),
	}

	Themes = []Theme{ThemeNight, ThemeMinimal, ThemeRetro, ThemeSunset}
)

// GetTheme returns the named theme, or ThemeNight.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeNight
}

// NextTheme returns the theme after name, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
