package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/hluaguo/ponopush/internal/git"
	"golang.org/x/term"
)

func getTermWidth(f *os.File) int {
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 80 // default
	}
	return width
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Styles holds all the styled components using a theme.
type Styles struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
}

func NewStyles(theme *Theme) *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),
		Success: lipgloss.NewStyle().
			Foreground(theme.Success),
		Error: lipgloss.NewStyle().
			Foreground(theme.Error),
		Dim: lipgloss.NewStyle().
			Foreground(theme.Dim),
	}
}

func wrapText(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

// Printer writes styled status lines for the user.
type Printer struct {
	out    io.Writer
	styles *Styles
	width  int
}

// NewPrinter writes to f, wrapping at the terminal width.
func NewPrinter(f *os.File) *Printer {
	return &Printer{
		out:    f,
		styles: NewStyles(DefaultTheme()),
		width:  getTermWidth(f),
	}
}

func (p *Printer) line(style lipgloss.Style, s string) {
	fmt.Fprintln(p.out, wrapText(style.Render(s), p.width-2))
}

func (p *Printer) Success(msg string) {
	p.line(p.styles.Success, msg)
}

func (p *Printer) Info(msg string) {
	p.line(p.styles.Dim, msg)
}

func (p *Printer) Error(err error) {
	p.line(p.styles.Error, fmt.Sprintf("Error: %v", err))
}

// Staged lists the files about to be committed, one per line.
func (p *Printer) Staged(files []git.FileStatus) {
	p.line(p.styles.Title, fmt.Sprintf("Staged %d file(s):", len(files)))
	for _, f := range files {
		name := f.Path
		if f.From != "" {
			name = f.From + " -> " + f.Path
		}
		p.line(p.styles.Dim, fmt.Sprintf("  %-12s %s", f.StatusLabel(), name))
	}
}
