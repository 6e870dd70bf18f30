// Package commands implements the blastctl command tree. Every leaf
// command builds a short-lived store around the profile snapshot, runs
// one action against the backend and drains the audit outbox before
// exiting.
package commands

import (
	"github.com/spf13/cobra"
)

var profileFlag string

// New builds the blastctl root command.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blastctl",
		Short: "Manage contacts, labels and message blasts from the command line.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "profile name (overrides config default)")

	AddCommands(cmd)
	return cmd
}

// AddCommands attaches every command group to the root.
func AddCommands(topLevel *cobra.Command) {
	addContacts(topLevel)
	addLabels(topLevel)
	addMessage(topLevel)
	addSession(topLevel)
	addActivity(topLevel)
}
