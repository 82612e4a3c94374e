package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#F25D94", "#04B575", "#FF5F5F", "#FFA500", "#626262")

// Palette is the stylesheet for the discover browser.
type Palette struct {
	title   lipgloss.Style
	ok      lipgloss.Style
	err     lipgloss.Style
	warn    lipgloss.Style
	muted   lipgloss.Style
	section lipgloss.Style
	card    lipgloss.Style
}

func NewPalette(t, s, e, w, m string) *Palette {
	return &Palette{
		title:   NewBold(t).MarginBottom(1),
		ok:      NewBold(s),
		err:     NewBold(e),
		warn:    NewStyle(w),
		muted:   NewEm(m),
		section: NewBold(t).Underline(true),
		card:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(m)).Padding(0, 1),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
