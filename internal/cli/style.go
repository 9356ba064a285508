package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// palette holds the ANSI-256 color values used throughout the CLI.
var (
	clrBrand = lipgloss.Color("75") // blue
	clrGreen = lipgloss.Color("114")
	clrRed   = lipgloss.Color("203")
	clrDim   = lipgloss.Color("245")
	clrWhite = lipgloss.Color("255")
)

// styles wraps lipgloss renderers that respect TTY detection. When
// output is not a terminal (piped, redirected), styling is disabled
// and raw text is emitted.
type styles struct {
	enabled bool

	Header  lipgloss.Style
	Key     lipgloss.Style
	Value   lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
}

// newStyles creates a styles instance. Colors are enabled only when w
// points to a terminal file descriptor.
func newStyles(w io.Writer) styles {
	enabled := false
	if f, ok := w.(*os.File); ok {
		enabled = term.IsTerminal(int(f.Fd()))
	}

	s := styles{enabled: enabled}
	if !enabled {
		noop := lipgloss.NewStyle()
		s.Header = noop
		s.Key = noop
		s.Value = noop
		s.Error = noop
		s.Success = noop
		return s
	}

	s.Header = lipgloss.NewStyle().Bold(true).Foreground(clrBrand)
	s.Key = lipgloss.NewStyle().Foreground(clrDim)
	s.Value = lipgloss.NewStyle().Foreground(clrWhite)
	s.Error = lipgloss.NewStyle().Foreground(clrRed).Bold(true)
	s.Success = lipgloss.NewStyle().Foreground(clrGreen)
	return s
}

// kv formats a key-value pair like "  Key:  value".
func (s styles) kv(key, value string) string {
	if !s.enabled {
		return fmt.Sprintf("  %-14s %s", key+":", value)
	}
	return fmt.Sprintf("  %s %s",
		s.Key.Render(fmt.Sprintf("%-14s", key+":")),
		s.Value.Render(value),
	)
}

// sectionHeader formats a section header.
func (s styles) sectionHeader(title string) string {
	if !s.enabled {
		return title
	}
	return s.Header.Render(title)
}

// success wraps text in success styling.
func (s styles) success(text string) string {
	if !s.enabled {
		return text
	}
	return s.Success.Render(text)
}
