// Package workflow drives a single ponopush invocation: stage, draft a
// message from the staged diff, let the user edit it, then commit and push.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hluaguo/ponopush/internal/ai"
	"github.com/hluaguo/ponopush/internal/config"
	"github.com/hluaguo/ponopush/internal/git"
	"github.com/rs/zerolog/log"
)

var (
	// ErrEmptyMessage aborts a run whose edited message is blank.
	ErrEmptyMessage = errors.New("commit message cannot be empty")
	// ErrNoToken is returned when the first-run prompt yields no token.
	ErrNoToken = errors.New("an API token is required")
)

// ExitError ends the invocation with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func abort(err error) error {
	return &ExitError{Code: 1, Err: err}
}

// Repository is the subset of git the pipeline drives.
type Repository interface {
	StagedFiles(ctx context.Context) ([]git.FileStatus, error)
	EnsureGitignoreTracked(ctx context.Context) error
	StageAll(ctx context.Context) error
	StagedDiff(ctx context.Context) (string, error)
	Commit(ctx context.Context, messageFile string) error
	Push(ctx context.Context) error
}

// Completer drafts a message for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Editor hands a draft to the user. Path names the file holding the last
// edited text.
type Editor interface {
	Edit(ctx context.Context, initial string) (string, error)
	Path() string
	Remove() error
}

// TokenPrompter asks the user for an API token.
type TokenPrompter interface {
	PromptToken(ctx context.Context) (string, error)
}

// Reporter shows the user which files a run is about to commit.
type Reporter interface {
	Staged(files []git.FileStatus)
}

// EnsureToken asks for a token when cfg has none and persists the answer.
func EnsureToken(ctx context.Context, cfg *config.Config, path string, prompter TokenPrompter) error {
	if cfg.API.Token != "" {
		return nil
	}

	token, err := prompter.PromptToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to read API token: %w", err)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrNoToken
	}

	cfg.API.Token = token
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// SetConfig applies one key override and persists the whole settings file.
func SetConfig(cfg *config.Config, path, key, value string) error {
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	log.Debug().Str("key", key).Msg("Configuration updated")
	return nil
}

type state int

const (
	stateStageAndDiff state = iota
	stateBuildPrompt
	stateRequestCompletion
	stateReviewInEditor
	stateValidateMessage
	stateCommit
	statePush
	stateCleanup
)

func (s state) String() string {
	switch s {
	case stateStageAndDiff:
		return "stage"
	case stateBuildPrompt:
		return "prompt"
	case stateRequestCompletion:
		return "completion"
	case stateReviewInEditor:
		return "editor"
	case stateValidateMessage:
		return "validate"
	case stateCommit:
		return "commit"
	case statePush:
		return "push"
	case stateCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// Runner is the commit pipeline. Settings are already applied to the
// Completer, so the Runner itself never reads configuration.
type Runner struct {
	Repo      Repository
	Completer Completer
	Editor    Editor
	// Reporter is optional.
	Reporter Reporter

	// TemplatePath is the prompt template; empty means ai.DefaultTemplatePath.
	TemplatePath string
}

func (r *Runner) enter(s state) {
	log.Debug().Stringer("state", s).Msg("Entering step")
}

// Run executes the pipeline once. Aborts are returned as *ExitError.
func (r *Runner) Run(ctx context.Context) error {
	r.enter(stateStageAndDiff)
	diff, err := r.stageAndDiff(ctx)
	if err != nil {
		return abort(err)
	}

	r.enter(stateBuildPrompt)
	template, err := ai.LoadTemplate(r.TemplatePath)
	if err != nil {
		return abort(err)
	}
	prompt := ai.BuildPrompt(template, diff)

	r.enter(stateRequestCompletion)
	draft, err := r.Completer.Complete(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("Could not generate a commit message")
		draft = ai.FallbackMessage
	}

	r.enter(stateReviewInEditor)
	final, err := r.Editor.Edit(ctx, draft)
	if err != nil {
		return abort(err)
	}

	r.enter(stateValidateMessage)
	if strings.TrimSpace(final) == "" {
		return abort(ErrEmptyMessage)
	}

	r.enter(stateCommit)
	if err := r.Repo.Commit(ctx, r.Editor.Path()); err != nil {
		log.Warn().Str("path", r.Editor.Path()).Msg("Commit message kept")
		return abort(err)
	}

	r.enter(statePush)
	pushErr := r.Repo.Push(ctx)

	r.enter(stateCleanup)
	if err := r.Editor.Remove(); err != nil {
		log.Warn().Err(err).Msg("Failed to remove scratch file")
	}

	if pushErr != nil {
		return abort(fmt.Errorf("committed, but %w", pushErr))
	}
	return nil
}

func (r *Runner) stageAndDiff(ctx context.Context) (string, error) {
	if err := r.Repo.EnsureGitignoreTracked(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to stage .gitignore")
	}
	if err := r.Repo.StageAll(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to stage changes")
	}

	if files, err := r.Repo.StagedFiles(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to list staged files")
	} else {
		log.Debug().Int("files", len(files)).Msg("Changes staged")
		if r.Reporter != nil && len(files) > 0 {
			r.Reporter.Staged(files)
		}
	}

	diff, err := r.Repo.StagedDiff(ctx)
	if err != nil {
		return "", err
	}
	if diff == "" {
		log.Warn().Msg("No staged changes")
	}
	return diff, nil
}
