package view

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Level is the severity of a notification.
type Level int

const (
	Info Level = iota
	Success
	Error
)

// Notify writes a one-line notification. Validation and request failures use
// the same channel; only the text tells them apart.
func Notify(w io.Writer, lvl Level, msg string) {
	var icon string
	var c lipgloss.Color
	switch lvl {
	case Success:
		icon, c = "✔", colorGood
	case Error:
		icon, c = "✖", colorExpired
	default:
		icon, c = "ℹ", colorLow
	}
	fmt.Fprintln(w, lipgloss.NewStyle().Foreground(c).Render(icon+" "+msg))
}
