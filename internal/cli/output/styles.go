package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds the lipgloss styles used for text output.
type Styles struct {
	Header1       lipgloss.Style
	Header2       lipgloss.Style
	Bold          lipgloss.Style
	Muted         lipgloss.Style
	Success       lipgloss.Style
	Warning       lipgloss.Style
	Error         lipgloss.Style
	Info          lipgloss.Style
	Path          lipgloss.Style
	Value         lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

// NewStyles creates styles rendering for w. With plain set, every style
// renders its input unchanged apart from the status icons.
func NewStyles(w io.Writer, plain bool) *Styles {
	r := lipgloss.NewRenderer(w)
	if plain {
		r.SetColorProfile(termenv.Ascii)
	}

	return &Styles{
		Header1:       r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2:       r.NewStyle().Bold(true),
		Bold:          r.NewStyle().Bold(true),
		Muted:         r.NewStyle().Foreground(lipgloss.Color("8")),
		Success:       r.NewStyle().Foreground(lipgloss.Color("2")),
		Warning:       r.NewStyle().Foreground(lipgloss.Color("3")),
		Error:         r.NewStyle().Foreground(lipgloss.Color("1")),
		Info:          r.NewStyle().Foreground(lipgloss.Color("6")),
		Path:          r.NewStyle().Foreground(lipgloss.Color("4")),
		Value:         r.NewStyle().Foreground(lipgloss.Color("7")),
		StatusSuccess: r.NewStyle().Foreground(lipgloss.Color("2")).SetString("✓"),
		StatusFailed:  r.NewStyle().Foreground(lipgloss.Color("1")).SetString("✗"),
	}
}

// SeverityStyle returns the style for a diagnostic severity name.
func (s *Styles) SeverityStyle(severity string) lipgloss.Style {
	switch severity {
	case "fatal", "error":
		return s.Error
	case "warn":
		return s.Warning
	case "info":
		return s.Info
	default:
		return s.Muted
	}
}
