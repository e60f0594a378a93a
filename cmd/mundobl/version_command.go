package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/juanjparedez/mundobl/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Load()
			fmt.Fprintln(cmd.OutOrStdout(), info.Version, info.Commit)
			return nil
		},
	}
}
