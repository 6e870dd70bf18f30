package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

func addLabels(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Manage contact labels",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addLabelsList(cmd)
	addLabelsCreate(cmd)
	addLabelsDelete(cmd)
	addLabelsToggle(cmd)
	addLabelsAssign(cmd)
	addLabelsDeassign(cmd)

	topLevel.AddCommand(cmd)
}

func addLabelsList(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List labels and their member counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, closer, err := loadEnv()
			if err != nil {
				return err
			}
			defer closer()

			labels := e.store.Labels()
			if len(labels) == 0 {
				f := color.New(color.Faint, color.Italic)
				_, _ = f.Println("no labels")
				return nil
			}

			tbl := uitable.New()
			tbl.Separator = "  "
			bold := color.New(color.Bold).Sprint
			tbl.AddRow(bold("ID"), bold("NAME"), bold("COLOR"), bold("CONTACTS"))
			for _, l := range labels {
				tbl.AddRow(l.ID, l.Name, l.Color, len(l.ContactIDs))
			}
			_, _ = fmt.Fprintln(color.Output, tbl)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addLabelsCreate(topLevel *cobra.Command) {
	var clr string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a label",
		Args:  cobra.ExactArgs(1),
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
			return e.store.CreateLabel(context.Background(), args[0], clr, e.owner)
		},
	}
	cmd.Flags().StringVar(&clr, "color", "", "hex color, defaulted when omitted")
	topLevel.AddCommand(cmd)
}

func addLabelsDelete(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "delete <label-id>",
		Short: "Delete a label and detach every member contact",
		Args:  cobra.ExactArgs(1),
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
			return e.store.DeleteLabel(context.Background(), args[0], e.owner)
		},
	}
	topLevel.AddCommand(cmd)
}

func addLabelsToggle(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "toggle <phone> <label-id>",
		Short: "Attach or detach one label on one contact",
		Args:  cobra.ExactArgs(2),
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

			id, err := contactIDFor(e, args[0])
			if err != nil {
				return err
			}
			return e.store.ToggleLabel(context.Background(), id, args[1], e.owner)
		},
	}
	topLevel.AddCommand(cmd)
}

func addLabelsAssign(topLevel *cobra.Command) {
	var selected bool

	cmd := &cobra.Command{
		Use:   "assign <label-id> [phone...]",
		Short: "Attach a label to several contacts in one batch",
		Example: `
blastctl labels assign <label-id> 5511999999999 5511888888888
blastctl labels assign <label-id> --selected
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

			ids, err := resolveTargets(e, args[1:], selected)
			if err != nil {
				return err
			}
			return e.store.MassAssignLabel(context.Background(), ids, args[0], e.owner)
		},
	}
	cmd.Flags().BoolVar(&selected, "selected", false, "target the selected contacts")
	topLevel.AddCommand(cmd)
}

func addLabelsDeassign(topLevel *cobra.Command) {
	var selected bool

	cmd := &cobra.Command{
		Use:   "deassign <label-id> [phone...]",
		Short: "Detach a label from several contacts in one batch",
		Args:  cobra.MinimumNArgs(1),
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

			ids, err := resolveTargets(e, args[1:], selected)
			if err != nil {
				return err
			}
			return e.store.MassDeassignLabel(context.Background(), ids, args[0], e.owner)
		},
	}
	cmd.Flags().BoolVar(&selected, "selected", false, "target the selected contacts")
	topLevel.AddCommand(cmd)
}

// resolveTargets maps phones (or the selection set) to contact ids,
// skipping phones that are not loaded.
func resolveTargets(e *env, phones []string, selected bool) ([]string, error) {
	if selected {
		phones = e.store.Selected()
	}
	if len(phones) == 0 {
		return nil, errors.New("no target contacts; pass phones or --selected")
	}

	byPhone := make(map[string]string)
	for _, c := range e.store.Contacts() {
		byPhone[c.Phone] = c.ID
	}
	var ids []string
	for _, p := range phones {
		if id, ok := byPhone[p]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, errors.New("none of the given phones are loaded; run contacts list --refresh")
	}
	return ids, nil
}

func contactIDFor(e *env, phone string) (string, error) {
	for _, c := range e.store.Contacts() {
		if c.Phone == phone {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("contact %s not loaded; run contacts list --refresh", phone)
}
