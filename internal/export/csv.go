package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/sadopc/orgauns/internal/store"
)

func TasksToCSV(tasks []store.Task, path string) error {
	return toFile(path, func(w io.Writer) error { return WriteTasksCSV(w, tasks) })
}

func WriteTasksCSV(out io.Writer, tasks []store.Task) error {
	w := csv.NewWriter(out)

	// Header
	if err := w.Write([]string{"ID", "Title", "Description", "Due", "Priority", "Done", "Created", "Updated"}); err != nil {
		return err
	}

	for _, t := range tasks {
		row := []string{
			t.ID,
			t.Title,
			t.Description,
			formatDue(t.DueAt),
			t.Priority.String(),
			strconv.FormatBool(t.Done),
			formatTime(t.CreatedAt),
			formatTime(t.UpdatedAt),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
