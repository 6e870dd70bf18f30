package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func addMessage(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Manage the message draft and send blasts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addMessageShow(cmd)
	addMessageSet(cmd)
	addMessageTitle(cmd)
	addMessageCompose(cmd)
	addMessageSend(cmd)

	topLevel.AddCommand(cmd)
}

func addMessageShow(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current draft",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, closer, err := loadEnv()
			if err != nil {
				return err
			}
			defer closer()

			fmt.Printf("title:    %s\n", e.store.Title())
			fmt.Printf("message:  %s\n", e.store.Message())
			fmt.Printf("selected: %d contacts\n", len(e.store.Selected()))
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addMessageSet(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "set <text...>",
		Short: "Set the draft body",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, closer, err := loadEnv()
			if err != nil {
				return err
			}
			defer closer()
			e.store.SetMessage(strings.Join(args, " "))
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addMessageTitle(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "title <text...>",
		Short: "Set the draft title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, closer, err := loadEnv()
			if err != nil {
				return err
			}
			defer closer()
			e.store.SetTitle(strings.Join(args, " "))
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addMessageCompose(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "compose <goal...>",
		Short: "Have the backend draft a message body for a goal",
		Example: `
blastctl message compose announce a weekend sale on running shoes
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, closer, err := loadEnv()
			if err != nil {
				return err
			}
			defer closer()
			if err := e.requireOwner(); err != nil {
				return err
			}

			if err := e.store.ComposeMessage(context.Background(), strings.Join(args, " "), e.owner); err != nil {
				return err
			}
			fmt.Println(e.store.Message())
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addMessageSend(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send the draft to every selected contact",
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

			count := len(e.store.Selected())
			if err := e.store.SendBlast(context.Background(), e.owner); err != nil {
				return err
			}
			fmt.Printf("blast sent to %d contacts\n", count)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}
