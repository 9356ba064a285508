// Package ui provides shared terminal styling for the dormitory chat.
package ui

import "github.com/charmbracelet/lipgloss"

// Color palette (256-color).
var (
	ClrBrand  = lipgloss.Color("75")  // blue
	ClrSubtle = lipgloss.Color("242") // dark gray
)

// Reusable styles.
var (
	Brand  = lipgloss.NewStyle().Foreground(ClrBrand).Bold(true)
	Subtle = lipgloss.NewStyle().Foreground(ClrSubtle)
)

// Prompt renders the input prompt with color.
func Prompt() string {
	return Brand.Render(">>") + " "
}

// Dim renders dimmed/muted text.
func Dim(text string) string {
	return Subtle.Render(text)
}
