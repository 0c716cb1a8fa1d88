package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
)

// TokenPrompt asks for the API token on first run.
type TokenPrompt struct {
	In          io.Reader
	Out         io.Writer
	Interactive bool
	theme       *Theme
}

func NewTokenPrompt() *TokenPrompt {
	return &TokenPrompt{
		In:          os.Stdin,
		Out:         os.Stdout,
		Interactive: isTerminal(os.Stdin) && isTerminal(os.Stdout),
		theme:       DefaultTheme(),
	}
}

func validateToken(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("token cannot be empty")
	}
	return nil
}

func (p *TokenPrompt) PromptToken(ctx context.Context) (string, error) {
	theme := p.theme
	if theme == nil {
		theme = DefaultTheme()
	}
	styles := NewStyles(theme)

	fmt.Fprintln(p.Out, styles.Title.Render("OpenAI API Token not found."))

	if !p.Interactive {
		fmt.Fprint(p.Out, "Please enter your OpenAI API Token: ")
		line, err := bufio.NewReader(p.In).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		if err := validateToken(line); err != nil {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	var token string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Please enter your OpenAI API Token").
				Description("Saved to your settings file; change it later with `ponopush config api.token`.").
				EchoMode(huh.EchoModePassword).
				Validate(validateToken).
				Value(&token),
		),
	).WithTheme(theme.GetHuhTheme())

	if err := form.RunWithContext(ctx); err != nil {
		return "", err
	}
	return strings.TrimSpace(token), nil
}
