package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for prompts and status output.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Dim       lipgloss.Color
	Border    lipgloss.Color
	HuhTheme  *huh.Theme
}

// DefaultTheme is tokyonight.
func DefaultTheme() *Theme {
	return &Theme{
		Name:      "tokyonight",
		Primary:   lipgloss.Color("#7aa2f7"),
		Secondary: lipgloss.Color("#bb9af7"),
		Success:   lipgloss.Color("#9ece6a"),
		Error:     lipgloss.Color("#f7768e"),
		Dim:       lipgloss.Color("#565f89"),
		Border:    lipgloss.Color("#3b4261"),
	}
}

func (t *Theme) GetHuhTheme() *huh.Theme {
	if t.HuhTheme != nil {
		return t.HuhTheme
	}

	theme := huh.ThemeBase()

	theme.Focused.Title = theme.Focused.Title.Foreground(t.Primary)
	theme.Focused.Description = theme.Focused.Description.Foreground(t.Dim)
	theme.Focused.ErrorMessage = theme.Focused.ErrorMessage.Foreground(t.Error)
	theme.Focused.ErrorIndicator = theme.Focused.ErrorIndicator.Foreground(t.Error)
	theme.Focused.TextInput.Prompt = theme.Focused.TextInput.Prompt.Foreground(t.Secondary)
	theme.Focused.Base = theme.Focused.Base.BorderForeground(t.Border)

	theme.Help.ShortKey = theme.Help.ShortKey.Foreground(t.Primary).Bold(true)
	theme.Help.ShortDesc = theme.Help.ShortDesc.Foreground(t.Secondary)
	theme.Help.ShortSeparator = theme.Help.ShortSeparator.Foreground(t.Dim)

	theme.Blurred.Title = theme.Blurred.Title.Foreground(t.Dim)
	theme.Blurred.Description = theme.Blurred.Description.Foreground(t.Dim)

	t.HuhTheme = theme
	return theme
}
