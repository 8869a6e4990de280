package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sadopc/orgauns/internal/store"
)

type jsonExport[T any] struct {
	ExportedAt string `json:"exported_at"`
	Count      int    `json:"count"`
	Items      []T    `json:"items"`
}

type jsonTask struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Due         string `json:"due,omitempty"`
	DueMillis   *int64 `json:"due_ms,omitempty"`
	Priority    string `json:"priority"`
	Done        bool   `json:"done"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type jsonNote struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func TasksToJSON(tasks []store.Task, path string) error {
	return toFile(path, func(w io.Writer) error { return WriteTasksJSON(w, tasks) })
}

func WriteTasksJSON(w io.Writer, tasks []store.Task) error {
	var items []jsonTask
	for _, t := range tasks {
		items = append(items, jsonTask{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Due:         formatDue(t.DueAt),
			DueMillis:   t.DueAt,
			Priority:    t.Priority.String(),
			Done:        t.Done,
			CreatedAt:   formatTime(t.CreatedAt),
			UpdatedAt:   formatTime(t.UpdatedAt),
		})
	}
	return writeJSON(w, items)
}

func NotesToJSON(notes []store.Note, path string) error {
	return toFile(path, func(w io.Writer) error { return WriteNotesJSON(w, notes) })
}

func WriteNotesJSON(w io.Writer, notes []store.Note) error {
	var items []jsonNote
	for _, n := range notes {
		items = append(items, jsonNote{
			ID:        n.ID,
			Title:     n.Title,
			Body:      n.Body,
			CreatedAt: formatTime(n.CreatedAt),
			UpdatedAt: formatTime(n.UpdatedAt),
		})
	}
	return writeJSON(w, items)
}

func writeJSON[T any](w io.Writer, items []T) error {
	export := jsonExport[T]{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(items),
		Items:      items,
	}
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
