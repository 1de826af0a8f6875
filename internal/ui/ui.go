// Package ui holds the shared terminal styles for CLI output. Styling is
// disabled automatically when stdout is not a terminal, so piped output
// stays clean.
package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var styled = term.IsTerminal(int(os.Stdout.Fd()))

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
)

func render(s lipgloss.Style, text string) string {
	if !styled {
		return text
	}
	return s.Render(text)
}

// Title renders a section heading.
func Title(text string) string { return render(titleStyle, text) }

// Success renders a positive status line.
func Success(text string) string { return render(successStyle, text) }

// Error renders a failure message.
func Error(text string) string { return render(errorStyle, text) }

// Dim renders secondary detail text.
func Dim(text string) string { return render(dimStyle, text) }

// Label renders a key in a key/value line.
func Label(text string) string { return render(labelStyle, text) }

// KV formats one aligned key/value row.
func KV(key string, value any) string {
	return fmt.Sprintf("  %s %v", Label(fmt.Sprintf("%-14s", key+":")), value)
}
