// Package theme holds the colour themes and resolves the "system" choice
// against the terminal background.
package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Choice is a user-selectable theme.
type Choice string

const (
	System  Choice = "system"
	Light   Choice = "light"
	Dark    Choice = "dark"
	Retro   Choice = "retro"
	Myspace Choice = "myspace"
)

var choices = []Choice{System, Light, Dark, Retro, Myspace}

// Choices returns every theme in menu order.
func Choices() []Choice {
	return append([]Choice(nil), choices...)
}

// Parse returns the theme named s.
func Parse(s string) (Choice, error) {
	for _, c := range choices {
		if string(c) == s {
			return c, nil
		}
	}
	return System, fmt.Errorf("unknown theme %q", s)
}

// Next returns the following theme in menu order, wrapping around.
func (c Choice) Next() Choice {
	for i, x := range choices {
		if x == c {
			return choices[(i+1)%len(choices)]
		}
	}
	return System
}

// Resolve maps System onto Dark or Light; other choices resolve to themselves.
func (c Choice) Resolve(darkBackground bool) Choice {
	if c != System {
		return c
	}
	if darkBackground {
		return Dark
	}
	return Light
}

// Palette is the set of colours one resolved theme draws with.
type Palette struct {
	Wave      lipgloss.Color // unplayed waveform
	Progress  lipgloss.Color // played waveform
	Bar       lipgloss.Color // visualizer
	Accent    lipgloss.Color // titles, active icons
	Text      lipgloss.Color
	Muted     lipgloss.Color // durations, help
	Highlight lipgloss.Color // active row background
}

var palettes = map[Choice]Palette{
	Light: {
		Wave:      "#d4d4d4",
		Progress:  "#16a34a",
		Bar:       "#16a34a",
		Accent:    "#16a34a",
		Text:      "#171717",
		Muted:     "#737373",
		Highlight: "#f0fdf4",
	},
	Dark: {
		Wave:      "#404040",
		Progress:  "#22c55e",
		Bar:       "#22c55e",
		Accent:    "#22c55e",
		Text:      "#f5f5f5",
		Muted:     "#a3a3a3",
		Highlight: "#052e16",
	},
	Retro: {
		Wave:      "#4a4a2a",
		Progress:  "#e0b030",
		Bar:       "#e0b030",
		Accent:    "#f0c040",
		Text:      "#e8e0c0",
		Muted:     "#8a8460",
		Highlight: "#1a1a0e",
	},
	Myspace: {
		Wave:      "#33337a",
		Progress:  "#ff66cc",
		Bar:       "#66ccff",
		Accent:    "#ff66cc",
		Text:      "#ffffff",
		Muted:     "#9999cc",
		Highlight: "#000033",
	},
}

// PaletteFor returns the palette of a resolved theme. System falls back to Dark.
func PaletteFor(c Choice) Palette {
	if p, ok := palettes[c]; ok {
		return p
	}
	return palettes[Dark]
}

// Theme is a choice together with its resolved palette.
type Theme struct {
	Choice   Choice
	Resolved Choice
	Palette  Palette
}

// New resolves choice against the terminal background.
func New(choice Choice, darkBackground bool) Theme {
	resolved := choice.Resolve(darkBackground)
	return Theme{Choice: choice, Resolved: resolved, Palette: PaletteFor(resolved)}
}

// TerminalIsDark reports whether the terminal has a dark background. It
// queries the terminal, so call it before the UI takes over.
func TerminalIsDark() bool {
	return lipgloss.HasDarkBackground()
}
