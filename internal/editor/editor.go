// Package editor hands a draft commit message to the user's editor and
// reads back the result.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"github.com/rs/zerolog/log"
)

// DefaultEditor is used when $EDITOR is unset.
const DefaultEditor = "vi"

var ErrEditorFailed = errors.New("editor exited with an error")

// Command resolves the editor command line from $EDITOR.
func Command() string {
	if e := strings.TrimSpace(os.Getenv("EDITOR")); e != "" {
		return e
	}
	return DefaultEditor
}

type Session struct {
	// Command is a shell command line; the scratch path is appended quoted.
	Command string
	// Dir holds the scratch file. Empty means os.TempDir.
	Dir string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	path string
}

// New returns a session attached to the process terminal.
func New() *Session {
	return &Session{
		Command: Command(),
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Path is the scratch file, empty until the first Edit.
func (s *Session) Path() string {
	return s.path
}

// Edit writes initial to the scratch file, runs the editor on it and returns
// the file contents once the editor exits. The scratch file is kept.
func (s *Session) Edit(ctx context.Context, initial string) (string, error) {
	if err := s.writeDraft(initial); err != nil {
		return "", err
	}

	line := s.Command + " " + shellescape.Quote(s.path)
	log.Debug().Str("cmd", line).Msg("Launching editor")

	cmd := exec.CommandContext(ctx, "sh", "-c", line)
	cmd.Stdin = s.Stdin
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEditorFailed, err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("failed to read edited message: %w", err)
	}
	return string(data), nil
}

func (s *Session) writeDraft(text string) error {
	var f *os.File
	var err error
	if s.path == "" {
		f, err = os.CreateTemp(s.Dir, "ponopush-*.COMMIT_EDITMSG")
		if err == nil {
			s.path = f.Name()
		}
	} else {
		f, err = os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	}
	if err != nil {
		return fmt.Errorf("failed to create scratch file: %w", err)
	}

	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return fmt.Errorf("failed to write draft: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write draft: %w", err)
	}
	return f.Close()
}

// Remove deletes the scratch file.
func (s *Session) Remove() error {
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	s.path = ""
	return nil
}
