package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme names
const (
	ThemeCute  = "cute"
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// DefaultThemeName is applied when no theme has been saved
const DefaultThemeName = ThemeCute

// TUITheme defines the color scheme for the chat interface
type TUITheme struct {
	Name        string
	Description string

	// MarkdownStyle is the glamour style used for reply bodies
	MarkdownStyle string

	// Base colors
	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	// Accent colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	// Bubbles
	UserBubble      lipgloss.Color
	UserText        lipgloss.Color
	AssistantBubble lipgloss.Color
	AssistantText   lipgloss.Color

	// Text colors
	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

// Built-in TUI themes
var (
	// CuteTheme is the default pastel pink theme
	CuteTheme = TUITheme{
		Name:          ThemeCute,
		Description:   "Cute - Pastel pinks with soft lavender accents",
		MarkdownStyle: "dark",

		Background: lipgloss.Color("#2b1f2e"),
		Surface:    lipgloss.Color("#3a2a3f"),
		Border:     lipgloss.Color("#f5a9c8"),

		Primary:   lipgloss.Color("#ff8fc7"),
		Secondary: lipgloss.Color("#b8e0d2"),
		Accent:    lipgloss.Color("#c9a7ff"),
		Warning:   lipgloss.Color("#ffd6a5"),
		Error:     lipgloss.Color("#ff6b8b"),

		UserBubble:      lipgloss.Color("#ff8fc7"),
		UserText:        lipgloss.Color("#2b1f2e"),
		AssistantBubble: lipgloss.Color("#4a3650"),
		AssistantText:   lipgloss.Color("#fde2f3"),

		Text:     lipgloss.Color("#fde2f3"),
		TextDim:  lipgloss.Color("#b58fa8"),
		TextMute: lipgloss.Color("#6e5570"),
	}

	// LightTheme is a bright theme for light terminals
	LightTheme = TUITheme{
		Name:          ThemeLight,
		Description:   "Light - Clean white theme with blue accents",
		MarkdownStyle: "light",

		Background: lipgloss.Color("#ffffff"),
		Surface:    lipgloss.Color("#f2f4f7"),
		Border:     lipgloss.Color("#c5cbd3"),

		Primary:   lipgloss.Color("#2f6fde"),
		Secondary: lipgloss.Color("#2e9d5b"),
		Accent:    lipgloss.Color("#8a4fd8"),
		Warning:   lipgloss.Color("#c98a12"),
		Error:     lipgloss.Color("#d43c4a"),

		UserBubble:      lipgloss.Color("#2f6fde"),
		UserText:        lipgloss.Color("#ffffff"),
		AssistantBubble: lipgloss.Color("#e6e9ee"),
		AssistantText:   lipgloss.Color("#1f2328"),

		Text:     lipgloss.Color("#1f2328"),
		TextDim:  lipgloss.Color("#656d76"),
		TextMute: lipgloss.Color("#a0a8b1"),
	}

	// DarkTheme is a neutral dark theme
	DarkTheme = TUITheme{
		Name:          ThemeDark,
		Description:   "Dark - Neutral dark theme with blue accents",
		MarkdownStyle: "dark",

		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#24283b"),
		Border:     lipgloss.Color("#414868"),

		Primary:   lipgloss.Color("#7aa2f7"),
		Secondary: lipgloss.Color("#9ece6a"),
		Accent:    lipgloss.Color("#bb9af7"),
		Warning:   lipgloss.Color("#e0af68"),
		Error:     lipgloss.Color("#f7768e"),

		UserBubble:      lipgloss.Color("#3d59a1"),
		UserText:        lipgloss.Color("#c0caf5"),
		AssistantBubble: lipgloss.Color("#292e42"),
		AssistantText:   lipgloss.Color("#c0caf5"),

		Text:     lipgloss.Color("#c0caf5"),
		TextDim:  lipgloss.Color("#565f89"),
		TextMute: lipgloss.Color("#3b4261"),
	}
)

// currentTUITheme holds the currently active TUI theme
var currentTUITheme = CuteTheme

// GetTUITheme returns the currently active TUI theme
func GetTUITheme() TUITheme {
	return currentTUITheme
}

// SetTUITheme sets the active TUI theme by name
func SetTUITheme(name string) bool {
	theme, ok := GetTUIThemeByName(name)
	if ok {
		currentTUITheme = theme
		return true
	}
	return false
}

// GetTUIThemeByName returns a TUI theme by its name (case-insensitive)
func GetTUIThemeByName(name string) (TUITheme, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ThemeCute:
		return CuteTheme, true
	case ThemeLight:
		return LightTheme, true
	case ThemeDark:
		return DarkTheme, true
	default:
		return TUITheme{}, false
	}
}

// AvailableTUIThemes returns a list of all available TUI themes
func AvailableTUIThemes() []TUITheme {
	return []TUITheme{
		CuteTheme,
		LightTheme,
		DarkTheme,
	}
}

// TUIThemeNames returns just the theme names for selection
func TUIThemeNames() []string {
	themes := AvailableTUIThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
