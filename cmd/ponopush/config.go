package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hluaguo/ponopush/internal/config"
	"github.com/hluaguo/ponopush/internal/workflow"
	"github.com/spf13/cobra"
)

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config <key> <value>",
		Short: "Set a configuration value",
		Long: fmt.Sprintf(`Set one setting and save the settings file.

Valid keys: %s

An unknown key, or an api.max_tokens value that is not a positive integer,
is reported on stderr and exits with status 1. The settings file is left
unchanged.`, strings.Join(config.Keys(), ", ")),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(opts.configPath)
			if err := workflow.EnsureToken(cmd.Context(), cfg, opts.configPath, opts.tokenPrompter()); err != nil {
				return err
			}
			return workflow.SetConfig(cfg, opts.configPath, args[0], args[1])
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(opts.configPath)
			red := cfg.Redacted()
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(&red)
		},
	})

	return cmd
}
