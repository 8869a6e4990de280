package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/sadopc/orgauns/internal/agenda"
	"github.com/sadopc/orgauns/internal/store"
)

func addNotes(topLevel *cobra.Command, open func() (*env, error)) {
	cmd := &cobra.Command{
		Use:     "notes",
		Aliases: []string{"note"},
		Short:   "List and edit notes",
	}

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notes, most recently updated first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open()
			if err != nil {
				return err
			}
			defer e.Close()

			uid, err := e.userID()
			if err != nil {
				return err
			}
			notes, err := e.store.ListNotes(uid)
			if err != nil {
				return err
			}
			printNotes(cmd.OutOrStdout(), agenda.SortNotes(notes))
			return nil
		},
	}

	var body string
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a note",
		Example: `
orgauns notes add meeting ideas --body "ask about the budget"
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open()
			if err != nil {
				return err
			}
			defer e.Close()

			uid, err := e.userID()
			if err != nil {
				return err
			}
			id, err := e.store.CreateNote(uid, store.Note{Title: strings.Join(args, " "), Body: body})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created note %s\n", short(id))
			return nil
		},
	}
	add.Flags().StringVarP(&body, "body", "b", "", "Note text.")

	rm := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open()
			if err != nil {
				return err
			}
			defer e.Close()

			uid, err := e.userID()
			if err != nil {
				return err
			}
			notes, err := e.store.ListNotes(uid)
			if err != nil {
				return err
			}
			var match []store.Note
			for _, n := range notes {
				if strings.HasPrefix(n.ID, args[0]) {
					match = append(match, n)
				}
			}
			note, err := pick(match, args[0], "note")
			if err != nil {
				return err
			}
			if err := e.store.DeleteNote(uid, note.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", note.Title)
			return nil
		},
	}

	cmd.AddCommand(list, add, rm)
	topLevel.AddCommand(cmd)
}

func printNotes(w io.Writer, notes []store.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(w, "No notes.")
		return
	}
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 50
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("UPDATED"), bold.Sprint("TITLE"), bold.Sprint("TEXT"))
	for _, n := range notes {
		text := strings.Join(strings.Fields(n.Body), " ")
		tbl.AddRow(short(n.ID), n.UpdatedAt.Local().Format(dueLayout), n.Title, text)
	}
	fmt.Fprintln(w, tbl)
}
