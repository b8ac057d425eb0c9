// Package theme holds the terminal palette used by command output.
package theme

import (
	"io"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-isatty"

	"github.com/abhisek/dailyquest/internal/progression"
)

// Color palette
var (
	Primary = lipgloss.Color("#8B5CF6") // Vivid Purple
	Accent  = lipgloss.Color("#F97316") // Orange
	Success = lipgloss.Color("#22C55E") // Green
	Error   = lipgloss.Color("#F43F5E") // Rose
	Info    = lipgloss.Color("#14B8A6") // Teal
	TextDim = lipgloss.Color("#94A3B8") // Slate
)

var (
	Label   = lipgloss.NewStyle().Foreground(TextDim)
	Title   = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	Reward  = lipgloss.NewStyle().Foreground(Success)
	Penalty = lipgloss.NewStyle().Foreground(Error)
	Hint    = lipgloss.NewStyle().Foreground(TextDim).Italic(true)
)

var stateStyles = map[progression.State]lipgloss.Style{
	progression.StateActive:    lipgloss.NewStyle().Bold(true).Foreground(Accent),
	progression.StateCooldown:  lipgloss.NewStyle().Foreground(Info),
	progression.StateCompleted: lipgloss.NewStyle().Foreground(Success),
	progression.StateFailed:    lipgloss.NewStyle().Foreground(Error),
	progression.StateExpired:   lipgloss.NewStyle().Foreground(Error),
}

// State returns the style for a quest state.
func State(s progression.State) lipgloss.Style {
	if st, ok := stateStyles[s]; ok {
		return st
	}
	return lipgloss.NewStyle()
}

// Painter applies styles only when writing to a terminal.
type Painter struct {
	color bool
}

// For returns a Painter for w. Anything other than a terminal gets plain
// text.
func For(w io.Writer) Painter {
	f, ok := w.(*os.File)
	if !ok {
		return Painter{}
	}
	return Painter{color: isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())}
}

// Paint renders text with style, or returns it unchanged.
func (p Painter) Paint(style lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return style.Render(text)
}
