// Package export writes tasks and notes out as CSV, JSON or iCalendar.
package export

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Format names accepted by Write.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatICS  = "ics"
)

// toFile runs write against path, or stdout when path is "" or "-".
func toFile(path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(time.RFC3339)
}

func formatDue(ms *int64) string {
	if ms == nil {
		return ""
	}
	return formatTime(time.UnixMilli(*ms))
}
