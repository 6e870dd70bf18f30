package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"github.com/wablast/blast/internal/backend"
)

func addContacts(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Manage the contact list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addContactsList(cmd)
	addContactsAdd(cmd)
	addContactsImport(cmd)
	addContactsDelete(cmd)
	addContactsMassDelete(cmd)
	addContactsScrape(cmd)
	addContactsSelect(cmd)
	addContactsSelectAll(cmd)
	addContactsDeselectAll(cmd)

	topLevel.AddCommand(cmd)
}

func addContactsList(topLevel *cobra.Command) {
	var search, label string
	var refresh bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts, optionally filtered",
		Example: `
blastctl contacts list
blastctl contacts list --search alice --label <label-id>
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, closer, err := loadEnv()
			if err != nil {
				return err
			}
			defer closer()

			if refresh {
				if err := e.requireOwner(); err != nil {
					return err
				}
				if err := e.store.Refresh(context.Background(), e.owner); err != nil {
					return err
				}
			}
			e.store.SetSearchTerm(search)
			e.store.SetActiveLabel(label)

			printContacts(e.store.FilteredContacts(), e.store.Labels(), e.store.Selected())
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by name, phone or label name")
	cmd.Flags().StringVar(&label, "label", "", "filter by label id")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "fetch from the backend first")
	topLevel.AddCommand(cmd)
}

func addContactsAdd(topLevel *cobra.Command) {
	var name, phone string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add one contact",
		Example: `
blastctl contacts add --name "Alice" --phone 5511999999999
`,
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
			return e.store.AddContact(context.Background(), e.owner, name, phone, false)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "contact name")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	_ = cmd.MarkFlagRequired("phone")
	topLevel.AddCommand(cmd)
}

func addContactsImport(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "import <file.vcf>",
		Short: "Import contacts from a vCard file",
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

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			added, err := e.store.ImportVCF(context.Background(), e.owner, f)
			if err != nil {
				return err
			}
			fmt.Printf("%d contacts imported\n", added)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addContactsDelete(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "delete <phone>",
		Short: "Delete one contact and detach its labels",
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
			return e.store.DeleteContact(context.Background(), e.owner, args[0])
		},
	}
	topLevel.AddCommand(cmd)
}

func addContactsMassDelete(topLevel *cobra.Command) {
	var selected bool

	cmd := &cobra.Command{
		Use:   "mass-delete [phone...]",
		Short: "Delete several contacts in one batch",
		Example: `
blastctl contacts mass-delete 5511999999999 5511888888888
blastctl contacts mass-delete --selected
`,
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

			phones := args
			if selected {
				phones = e.store.Selected()
			}
			if len(phones) == 0 {
				return errors.New("nothing to delete; pass phones or --selected")
			}
			return e.store.MassDeleteContacts(context.Background(), e.owner, phones)
		},
	}
	cmd.Flags().BoolVar(&selected, "selected", false, "delete the selected contacts")
	topLevel.AddCommand(cmd)
}

func addContactsScrape(topLevel *cobra.Command) {
	var groups bool

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Pull phone numbers from the linked WhatsApp account",
		Example: `
blastctl contacts scrape
blastctl contacts scrape --groups
`,
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

			if groups {
				return e.store.ScrapeGroups(context.Background(), e.owner)
			}
			return e.store.ScrapeContacts(context.Background(), e.owner)
		},
	}
	cmd.Flags().BoolVar(&groups, "groups", false, "scrape group participants instead")
	topLevel.AddCommand(cmd)
}

func addContactsSelect(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "select <phone>",
		Short: "Toggle a contact's selection for the next blast",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, closer, err := loadEnv()
			if err != nil {
				return err
			}
			defer closer()
			e.store.SelectContact(args[0])
			fmt.Printf("%d contacts selected\n", len(e.store.Selected()))
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addContactsSelectAll(topLevel *cobra.Command) {
	var search, label string

	cmd := &cobra.Command{
		Use:   "select-all",
		Short: "Select every contact matching the filter",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, closer, err := loadEnv()
			if err != nil {
				return err
			}
			defer closer()
			e.store.SetSearchTerm(search)
			e.store.SetActiveLabel(label)
			e.store.SelectAllFiltered()
			fmt.Printf("%d contacts selected\n", len(e.store.Selected()))
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by name, phone or label name")
	cmd.Flags().StringVar(&label, "label", "", "filter by label id")
	topLevel.AddCommand(cmd)
}

func addContactsDeselectAll(topLevel *cobra.Command) {
	var search, label string

	cmd := &cobra.Command{
		Use:   "deselect-all",
		Short: "Deselect every contact matching the filter",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, closer, err := loadEnv()
			if err != nil {
				return err
			}
			defer closer()
			e.store.SetSearchTerm(search)
			e.store.SetActiveLabel(label)
			e.store.DeselectAllFiltered()
			fmt.Printf("%d contacts selected\n", len(e.store.Selected()))
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by name, phone or label name")
	cmd.Flags().StringVar(&label, "label", "", "filter by label id")
	topLevel.AddCommand(cmd)
}

func printContacts(contacts []backend.Contact, labels []backend.Label, selected []string) {
	if len(contacts) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Println("no contacts")
		return
	}

	names := make(map[string]string, len(labels))
	for _, l := range labels {
		names[l.ID] = l.Name
	}
	selectedSet := make(map[string]struct{}, len(selected))
	for _, p := range selected {
		selectedSet[p] = struct{}{}
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	bold := color.New(color.Bold).Sprint
	tbl.AddRow(bold("SEL"), bold("NAME"), bold("PHONE"), bold("LABELS"))
	for _, c := range contacts {
		mark := ""
		if _, ok := selectedSet[c.Phone]; ok {
			mark = "*"
		}
		var ln []string
		for _, id := range c.Labels {
			if n, ok := names[id]; ok {
				ln = append(ln, n)
			} else {
				ln = append(ln, id)
			}
		}
		tbl.AddRow(mark, c.DisplayName(), c.Phone, strings.Join(ln, ", "))
	}
	_, _ = fmt.Fprintln(color.Output, tbl)
}
