package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/juanjparedez/mundobl/internal/db"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down|version]",
		Short:     "Apply or roll back the embedded schema migrations",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := "up"
			if len(args) == 1 {
				direction = args[0]
			}

			database, err := db.Connect(ctx.cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			switch direction {
			case "up":
				err = database.Migrate()
			case "down":
				err = database.MigrateDown()
			case "version":
			default:
				return fmt.Errorf("unknown direction %q", direction)
			}
			if err != nil {
				return err
			}

			version, dirty, err := database.Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", version, dirty)
			return nil
		},
	}
	return cmd
}
