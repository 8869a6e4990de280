package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/sadopc/orgauns/internal/store"
)

// EventLength is the duration given to every exported task event.
const EventLength = time.Hour

const prodID = "-//orgauns//agenda//EN"

// icsPriority maps task priority onto RFC 5545 PRIORITY (1 highest, 9 lowest).
var icsPriority = map[store.Priority]int{
	store.PriorityHigh:   1,
	store.PriorityMedium: 5,
	store.PriorityLow:    9,
}

func TasksToICS(tasks []store.Task, path string) error {
	return toFile(path, func(w io.Writer) error { return WriteTasksICS(w, tasks) })
}

// WriteTasksICS writes one VEVENT per task with a due instant, starting at
// the due instant. Undated tasks are skipped.
func WriteTasksICS(w io.Writer, tasks []store.Task) error {
	cal := BuildCalendar(tasks)
	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("write ics: %w", err)
	}
	return nil
}

func BuildCalendar(tasks []store.Task) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)

	for _, t := range tasks {
		due, ok := t.Due()
		if !ok {
			continue
		}
		ev := cal.AddEvent(t.ID + "@orgauns")
		ev.SetDtStampTime(t.UpdatedAt.UTC())
		ev.SetCreatedTime(t.CreatedAt.UTC())
		ev.SetModifiedAt(t.UpdatedAt.UTC())
		ev.SetStartAt(due.UTC())
		ev.SetEndAt(due.Add(EventLength).UTC())
		ev.SetSummary(t.Title)
		if t.Description != "" {
			ev.SetDescription(t.Description)
		}
		if p, ok := icsPriority[t.Priority]; ok {
			ev.SetProperty(ical.ComponentPropertyPriority, strconv.Itoa(p))
		}
		ev.SetProperty(ical.ComponentPropertyStatus, "CONFIRMED")
		if t.Done {
			ev.SetProperty(ical.ComponentPropertyCategories, "DONE")
		}
	}
	return cal
}
