package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sadopc/orgauns/internal/calendar"
	"github.com/sadopc/orgauns/internal/store"
)

type calendarOptions struct {
	Month string
	Week  string
}

func addCalendar(topLevel *cobra.Command, open func() (*env, error)) {
	o := &calendarOptions{}

	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Print a month or week with the days that have tasks",
		Example: `
orgauns calendar
orgauns calendar --month 2026-12
orgauns calendar --week 2026-10-19
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open()
			if err != nil {
				return err
			}
			defer e.Close()

			today := calendar.DateOf(e.now())
			heading, days, err := o.grid(today)
			if err != nil {
				return err
			}

			// The grid is useful without an account; tasks need one.
			var tasks []store.Task
			if uid := e.auth.CurrentUserID(); uid != "" {
				if tasks, err = e.store.ListTasks(uid); err != nil {
					return err
				}
			}
			printCalendar(cmd.OutOrStdout(), heading, days, tasks, today)
			return nil
		},
	}
	cmd.Flags().StringVar(&o.Month, "month", "", "Month to show, YYYY-MM (default this month).")
	cmd.Flags().StringVar(&o.Week, "week", "", "Show the week containing this date, YYYY-MM-DD.")
	cmd.MarkFlagsMutuallyExclusive("month", "week")

	topLevel.AddCommand(cmd)
}

func (o *calendarOptions) grid(today calendar.Date) (string, []calendar.Day, error) {
	if o.Week != "" {
		d, err := calendar.ParseDate(o.Week)
		if err != nil {
			return "", nil, err
		}
		days := calendar.WeekGrid(d)
		return "Week of " + days[0].Date.String(), days, nil
	}
	ym := today.YearMonth()
	if o.Month != "" {
		var err error
		if ym, err = calendar.ParseYearMonth(o.Month); err != nil {
			return "", nil, err
		}
	}
	return ym.Title(), calendar.MonthGrid(ym), nil
}

func printCalendar(w io.Writer, heading string, days []calendar.Day, tasks []store.Task, today calendar.Date) {
	bold := color.New(color.Bold)
	busy := color.New(color.FgCyan, color.Bold)
	faint := color.New(color.Faint)
	now := color.New(color.ReverseVideo)

	byDate := calendar.GroupByDate(tasks)

	fmt.Fprintln(w, bold.Sprint(heading))
	var header strings.Builder
	for _, h := range calendar.WeekdayHeaders() {
		header.WriteString(fmt.Sprintf("%4s ", h))
	}
	fmt.Fprintln(w, faint.Sprint(strings.TrimRight(header.String(), " ")))

	for _, week := range calendar.Weeks(days) {
		cells := make([]string, 0, len(week))
		for _, d := range week {
			mark := " "
			if len(byDate[d.Date]) > 0 {
				mark = "*"
			}
			cell := fmt.Sprintf("%3d%s", d.Date.Day, mark)
			switch {
			case d.Date == today:
				cell = now.Sprint(cell)
			case mark == "*":
				cell = busy.Sprint(cell)
			case !d.IsCurrentMonth:
				cell = faint.Sprint(cell)
			}
			cells = append(cells, cell)
		}
		fmt.Fprintln(w, strings.Join(cells, " "))
	}

	var listed bool
	for _, d := range days {
		dayTasks := byDate[d.Date]
		if len(dayTasks) == 0 {
			continue
		}
		if !listed {
			fmt.Fprintln(w)
			listed = true
		}
		fmt.Fprintln(w, bold.Sprint(d.Date.In(time.Local).Format("Mon Jan 2")))
		for _, t := range dayTasks {
			check := "[ ]"
			if t.Done {
				check = "[x]"
			}
			due, _ := t.Due()
			fmt.Fprintf(w, "  %s %s %s %s\n", check, due.Local().Format("15:04"), t.Title, priorityColor(t.Priority).Sprint(t.Priority))
		}
	}
}
