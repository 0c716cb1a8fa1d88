package tui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type generateMsg struct {
	text string
	err  error
}

// generatingModel shows a spinner until the request finishes. Ctrl+C
// cancels the request rather than quitting, so the caller still gets a
// result to fall back from.
type generatingModel struct {
	spinner spinner.Model
	styles  *Styles
	run     func() (string, error)
	cancel  context.CancelFunc
	result  generateMsg
	done    bool
}

func newGeneratingModel(theme *Theme, run func() (string, error), cancel context.CancelFunc) *generatingModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = s.Style.Foreground(theme.Secondary)

	return &generatingModel{
		spinner: s,
		styles:  NewStyles(theme),
		run:     run,
		cancel:  cancel,
	}
}

func (m *generatingModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.generate)
}

func (m *generatingModel) generate() tea.Msg {
	text, err := m.run()
	return generateMsg{text: text, err: err}
}

func (m *generatingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
		}
		return m, nil

	case generateMsg:
		m.result = msg
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *generatingModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + m.styles.Dim.Render(" Generating commit message...") + "\n"
}

// SpinnerCompleter wraps a Completer with a spinner on the terminal.
type SpinnerCompleter struct {
	next    Completer
	theme   *Theme
	out     io.Writer
	enabled bool
}

// WithSpinner shows progress on stderr while next runs. Without a terminal
// the call goes straight through.
func WithSpinner(next Completer) *SpinnerCompleter {
	return &SpinnerCompleter{
		next:    next,
		theme:   DefaultTheme(),
		out:     os.Stderr,
		enabled: isTerminal(os.Stdin) && isTerminal(os.Stderr),
	}
}

func (s *SpinnerCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if !s.enabled {
		return s.next.Complete(ctx, prompt)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newGeneratingModel(s.theme, func() (string, error) {
		return s.next.Complete(ctx, prompt)
	}, cancel)

	p := tea.NewProgram(m, tea.WithOutput(s.out))
	if _, err := p.Run(); err != nil {
		return "", fmt.Errorf("spinner failed: %w", err)
	}
	return m.result.text, m.result.err
}
