package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/nowplaying/internal/theme"
	"github.com/olivier-w/nowplaying/internal/waveform"
)

// styles are rebuilt whenever the theme changes.
type styles struct {
	header  lipgloss.Style
	title   lipgloss.Style
	row     lipgloss.Style
	active  lipgloss.Style
	cursor  lipgloss.Style
	icon    lipgloss.Style
	time    lipgloss.Style
	status  lipgloss.Style
	help    lipgloss.Style
	rule    lipgloss.Style
	failed  lipgloss.Style
	spinner lipgloss.Style
}

func newStyles(p theme.Palette) styles {
	return styles{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Muted),

		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Text),

		row: lipgloss.NewStyle().
			Foreground(p.Text),

		active: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Accent).
			Background(p.Highlight),

		cursor: lipgloss.NewStyle().
			Foreground(p.Accent),

		icon: lipgloss.NewStyle().
			Foreground(p.Accent),

		time: lipgloss.NewStyle().
			Foreground(p.Muted),

		status: lipgloss.NewStyle().
			Foreground(p.Muted),

		help: lipgloss.NewStyle().
			Foreground(p.Muted),

		rule: lipgloss.NewStyle().
			Foreground(p.Wave),

		failed: lipgloss.NewStyle().
			Foreground(p.Muted).
			Strikethrough(true),

		spinner: lipgloss.NewStyle().
			Foreground(p.Accent),
	}
}

func waveColors(p theme.Palette) waveform.Colors {
	return waveform.Colors{Wave: p.Wave, Progress: p.Progress}
}

func helpStyles(p theme.Palette) help.Styles {
	s := help.New().Styles
	muted := lipgloss.NewStyle().Foreground(p.Muted)
	s.ShortKey = lipgloss.NewStyle().Foreground(p.Text)
	s.ShortDesc = muted
	s.ShortSeparator = muted
	s.FullKey = s.ShortKey
	s.FullDesc = muted
	s.FullSeparator = muted
	return s
}
