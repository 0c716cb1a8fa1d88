package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/hluaguo/ponopush/internal/ai"
	"github.com/hluaguo/ponopush/internal/config"
	"github.com/hluaguo/ponopush/internal/editor"
	"github.com/hluaguo/ponopush/internal/git"
	"github.com/hluaguo/ponopush/internal/tui"
	"github.com/hluaguo/ponopush/internal/workflow"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type options struct {
	configPath   string
	templatePath string
	timeout      time.Duration
	verbose      bool

	// prompter is swapped in tests.
	prompter workflow.TokenPrompter
}

func newRootCmd() *cobra.Command {
	return newRootCmdWithOptions(&options{})
}

func newRootCmdWithOptions(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ponopush",
		Short: "Draft a commit message with AI, edit it, commit and push",
		Long: `ponopush stages every change in the repository, asks a chat completion
API to draft a commit message from the staged diff, and opens the draft in
$EDITOR. Saving a non-empty message commits and pushes the current branch.

Examples:
  ponopush                          # stage, draft, edit, commit, push
  ponopush config api.model gpt-4o  # change a setting
  ponopush config show              # print settings`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr(), opts.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"settings file (default: ~/.ponopush_config.toml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"verbose output")
	cmd.Flags().StringVar(&opts.templatePath, "template", ai.DefaultTemplatePath,
		"prompt template file")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", ai.DefaultTimeout,
		"completion request timeout (0 disables)")

	cmd.AddCommand(newConfigCmd(opts))

	return cmd
}

func setupLogging(w io.Writer, verbose bool) {
	level := zerolog.WarnLevel
	if verbose || os.Getenv("DEBUG") != "" {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
}

func (o *options) tokenPrompter() workflow.TokenPrompter {
	if o.prompter != nil {
		return o.prompter
	}
	return tui.NewTokenPrompt()
}

func runCommit(ctx context.Context, opts *options) error {
	cfg := config.Load(opts.configPath)
	if err := workflow.EnsureToken(ctx, cfg, opts.configPath, opts.tokenPrompter()); err != nil {
		return err
	}

	repo, err := git.New(ctx, "")
	if err != nil {
		return err
	}

	client, err := ai.New(cfg.API, ai.WithTimeout(opts.timeout))
	if err != nil {
		return err
	}

	runner := &workflow.Runner{
		Repo:         repo,
		Completer:    tui.WithSpinner(client),
		Editor:       editor.New(),
		Reporter:     tui.NewPrinter(os.Stderr),
		TemplatePath: opts.templatePath,
	}
	if err := runner.Run(ctx); err != nil {
		return err
	}

	tui.NewPrinter(os.Stdout).Success("Committed and pushed.")
	return nil
}
