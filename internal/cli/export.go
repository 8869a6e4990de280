package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sadopc/orgauns/internal/agenda"
	"github.com/sadopc/orgauns/internal/export"
)

type exportOptions struct {
	Format string
	Out    string
	Notes  bool
	Status string
}

func addExport(topLevel *cobra.Command, open func() (*env, error)) {
	o := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks (or notes) as CSV, JSON or iCalendar",
		Example: `
orgauns export --format ics --out agenda.ics
orgauns export --format csv --status pending
orgauns export --notes --format json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.validate(); err != nil {
				return err
			}
			e, err := open()
			if err != nil {
				return err
			}
			defer e.Close()

			uid, err := e.userID()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if o.Out != "" && o.Out != "-" {
				if err := o.toFile(e, uid); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", o.Out)
				return nil
			}
			return o.write(out, e, uid)
		},
	}
	cmd.Flags().StringVarP(&o.Format, "format", "f", export.FormatCSV, "csv, json or ics.")
	cmd.Flags().StringVarP(&o.Out, "out", "o", "", `Output file; stdout when empty or "-".`)
	cmd.Flags().BoolVar(&o.Notes, "notes", false, "Export notes instead of tasks (json only).")
	cmd.Flags().StringVar(&o.Status, "status", "all", "Task status filter, as for 'tasks list'.")

	topLevel.AddCommand(cmd)
}

func (o *exportOptions) validate() error {
	switch o.Format {
	case export.FormatCSV, export.FormatJSON, export.FormatICS:
	default:
		return fmt.Errorf("unknown format %q: want csv, json or ics", o.Format)
	}
	if o.Notes && o.Format != export.FormatJSON {
		return fmt.Errorf("notes export only supports json")
	}
	if _, ok := agenda.ParseStatus(o.Status); !ok {
		return fmt.Errorf("unknown status %q", o.Status)
	}
	return nil
}

func (o *exportOptions) write(w io.Writer, e *env, uid string) error {
	if o.Notes {
		notes, err := e.store.ListNotes(uid)
		if err != nil {
			return err
		}
		return export.WriteNotesJSON(w, agenda.SortNotes(notes))
	}

	tasks, err := e.store.ListTasks(uid)
	if err != nil {
		return err
	}
	status, _ := agenda.ParseStatus(o.Status)
	tasks = agenda.TaskFilter{Status: status}.Apply(tasks)

	switch o.Format {
	case export.FormatJSON:
		return export.WriteTasksJSON(w, tasks)
	case export.FormatICS:
		return export.WriteTasksICS(w, tasks)
	}
	return export.WriteTasksCSV(w, tasks)
}

func (o *exportOptions) toFile(e *env, uid string) error {
	if o.Notes {
		notes, err := e.store.ListNotes(uid)
		if err != nil {
			return err
		}
		return export.NotesToJSON(agenda.SortNotes(notes), o.Out)
	}

	tasks, err := e.store.ListTasks(uid)
	if err != nil {
		return err
	}
	status, _ := agenda.ParseStatus(o.Status)
	tasks = agenda.TaskFilter{Status: status}.Apply(tasks)

	switch o.Format {
	case export.FormatJSON:
		return export.TasksToJSON(tasks, o.Out)
	case export.FormatICS:
		return export.TasksToICS(tasks, o.Out)
	}
	return export.TasksToCSV(tasks, o.Out)
}
