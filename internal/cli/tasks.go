package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/sadopc/orgauns/internal/agenda"
	"github.com/sadopc/orgauns/internal/store"
)

// shortID is the id prefix printed in listings and accepted as an argument.
const shortID = 8

const dueLayout = agenda.DueLayout

type taskListOptions struct {
	Status   string
	Priority string
	Query    string
}

type taskAddOptions struct {
	Due         string
	Priority    string
	Description string
}

func addTasks(topLevel *cobra.Command, open func() (*env, error)) {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "List and edit tasks",
	}

	lo := &taskListOptions{}
	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Example: `
orgauns tasks list
orgauns tasks list --status pending --priority high
orgauns tasks list --query report
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := lo.filter()
			if err != nil {
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
			tasks, err := e.store.ListTasks(uid)
			if err != nil {
				return err
			}
			printTasks(cmd.OutOrStdout(), f.Apply(tasks), e.now())
			return nil
		},
	}
	list.Flags().StringVar(&lo.Status, "status", "all", "One of: all, pending, completed, with-date, without-date.")
	list.Flags().StringVar(&lo.Priority, "priority", "", "Only tasks of this priority (low, medium, high).")
	list.Flags().StringVarP(&lo.Query, "query", "q", "", "Case-insensitive search in title and description.")

	ao := &taskAddOptions{}
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Example: `
orgauns tasks add write the report --due "2026-10-20 14:00" --priority high
orgauns tasks add buy milk
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := store.Task{
				Title:       strings.Join(args, " "),
				Description: ao.Description,
				Priority:    store.PriorityLow,
			}
			var err error
			if task.DueAt, err = parseDue(ao.Due); err != nil {
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

			if ao.Priority != "" {
				if task.Priority, err = store.ParsePriority(ao.Priority); err != nil {
					return err
				}
			} else if v, err := e.store.GetUserSetting(uid, "default_priority"); err == nil {
				if p, err := store.ParsePriority(v); err == nil {
					task.Priority = p
				}
			}

			id, err := e.store.CreateTask(uid, task)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s\n", short(id))
			return nil
		},
	}
	add.Flags().StringVar(&ao.Due, "due", "", `Due date, "YYYY-MM-DD" (09:00) or "YYYY-MM-DD HH:MM".`)
	add.Flags().StringVar(&ao.Priority, "priority", "", "low, medium or high (default from settings).")
	add.Flags().StringVarP(&ao.Description, "description", "d", "", "Longer description.")

	var undo bool
	done := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task done",
		Args:  cobra.ExactArgs(1),
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
			task, err := findTask(e.store, uid, args[0])
			if err != nil {
				return err
			}
			task.Done = !undo
			if err := e.store.UpdateTask(uid, task); err != nil {
				return err
			}
			state := "done"
			if undo {
				state = "pending"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", task.Title, state)
			return nil
		},
	}
	done.Flags().BoolVar(&undo, "undo", false, "Mark the task pending again.")

	rm := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
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
			task, err := findTask(e.store, uid, args[0])
			if err != nil {
				return err
			}
			if err := e.store.DeleteTask(uid, task.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", task.Title)
			return nil
		},
	}

	cmd.AddCommand(list, add, done, rm)
	topLevel.AddCommand(cmd)
}

func (o *taskListOptions) filter() (agenda.TaskFilter, error) {
	f := agenda.TaskFilter{Query: o.Query}
	if o.Status != "" {
		s, ok := agenda.ParseStatus(o.Status)
		if !ok {
			return f, fmt.Errorf("unknown status %q", o.Status)
		}
		f.Status = s
	}
	if o.Priority != "" {
		p, err := store.ParsePriority(o.Priority)
		if err != nil {
			return f, err
		}
		f.Priority = p
	}
	return f, nil
}

// parseDue reads a local "YYYY-MM-DD HH:MM" or "YYYY-MM-DD" (09:00).
func parseDue(s string) (*int64, error) {
	due, err := agenda.ParseDue(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --due %q: %w", s, err)
	}
	return due, nil
}

func short(id string) string {
	if len(id) > shortID {
		return id[:shortID]
	}
	return id
}

// findTask resolves a full id or a unique prefix.
func findTask(s *store.Store, userID, ref string) (store.Task, error) {
	tasks, err := s.ListTasks(userID)
	if err != nil {
		return store.Task{}, err
	}
	var match []store.Task
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			match = append(match, t)
		}
	}
	return pick(match, ref, "task")
}

func pick[T any](match []T, ref, what string) (T, error) {
	var zero T
	switch len(match) {
	case 0:
		return zero, fmt.Errorf("%s %q: %w", what, ref, store.ErrNotFound)
	case 1:
		return match[0], nil
	}
	return zero, fmt.Errorf("ambiguous %s id %q: give more characters", what, ref)
}

func printTasks(w io.Writer, tasks []store.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}
	bold := color.New(color.Bold)
	overdue := color.New(color.FgRed)
	muted := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint(" "), bold.Sprint("PRIORITY"), bold.Sprint("DUE"), bold.Sprint("TITLE"))
	for _, t := range tasks {
		check := "[ ]"
		title := t.Title
		if t.Done {
			check = "[x]"
			title = muted.Sprint(title)
		}
		due := ""
		if d, ok := t.Due(); ok {
			due = d.Local().Format(dueLayout)
			if !t.Done && d.Before(now) {
				due = overdue.Sprint(due)
			}
		}
		tbl.AddRow(short(t.ID), check, priorityColor(t.Priority).Sprint(t.Priority), due, title)
	}
	fmt.Fprintln(w, tbl)
}

func priorityColor(p store.Priority) *color.Color {
	switch p {
	case store.PriorityHigh:
		return color.New(color.FgRed, color.Bold)
	case store.PriorityMedium:
		return color.New(color.FgYellow)
	}
	return color.New(color.FgGreen)
}
