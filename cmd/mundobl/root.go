package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/juanjparedez/mundobl/internal/config"
	"github.com/juanjparedez/mundobl/internal/logging"
)

// commandContext carries state shared by every subcommand.
type commandContext struct {
	cfg    *config.Config
	logger *slog.Logger
}

func (c *commandContext) init() error {
	if c.cfg != nil {
		return nil
	}
	cfg := config.Load()
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	c.cfg, c.logger = cfg, logger
	return nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "mundobl",
		Short:         "MundoBL catalog server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newTokenCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}
