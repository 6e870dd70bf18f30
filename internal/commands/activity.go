package commands

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

func addActivity(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the audit trail",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addActivityList(cmd)
	topLevel.AddCommand(cmd)
}

func addActivityList(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded activities, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, closer, err := loadEnv()
			if err != nil {
				return err
			}
			defer closer()
			if err := e.requireOwner(); err != nil {
				return err
			}

			acts, err := e.api.ListActivities(context.Background(), e.owner)
			if err != nil {
				return err
			}
			if len(acts) == 0 {
				f := color.New(color.Faint, color.Italic)
				_, _ = f.Println("no activity")
				return nil
			}

			tbl := uitable.New()
			tbl.Separator = "  "
			bold := color.New(color.Bold).Sprint
			tbl.AddRow(bold("WHEN"), bold("ACTION"))
			for _, a := range acts {
				tbl.AddRow(a.CreatedAt, a.Action)
			}
			_, _ = fmt.Fprintln(color.Output, tbl)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}
