package worker

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sadopc/orgauns/internal/logging"
	"github.com/sadopc/orgauns/internal/store"
)

// ReminderJob notifies about pending tasks coming due within the lead time.
// Each task is announced once per due instant; moving the due date re-arms it.
type ReminderJob struct {
	store    *store.Store
	session  Session
	notifier Notifier
	lead     time.Duration
	log      *logrus.Entry
	now      func() time.Time

	mu   sync.Mutex
	sent map[string]int64 // task id -> due millis already announced
}

func NewReminderJob(s *store.Store, session Session, n Notifier, lead time.Duration, log *logrus.Entry) *ReminderJob {
	return &ReminderJob{
		store:    s,
		session:  session,
		notifier: n,
		lead:     lead,
		log:      logging.Component(log, "reminder"),
		now:      time.Now,
		sent:     make(map[string]int64),
	}
}

// Run sends the reminders that are due and returns how many were sent.
func (j *ReminderJob) Run(ctx context.Context) (int, error) {
	userID := j.session.CurrentUserID()
	if userID == "" {
		return 0, nil
	}
	tasks, err := j.store.ListTasks(userID)
	if err != nil {
		return 0, err
	}

	now := j.now()
	horizon := now.Add(j.lead)

	j.mu.Lock()
	defer j.mu.Unlock()

	live := make(map[string]struct{}, len(tasks))
	sent := 0
	for _, t := range tasks {
		live[t.ID] = struct{}{}
		due, ok := t.Due()
		if !ok || t.Done || due.Before(now) || due.After(horizon) {
			continue
		}
		if j.sent[t.ID] == *t.DueAt {
			continue
		}
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		body := t.Title + " is due at " + due.Format("15:04")
		if t.Description != "" {
			body += ": " + t.Description
		}
		if err := j.notifier.Notify(ctx, "Task reminder", body); err != nil {
			j.log.WithError(err).WithField("task", t.ID).Warn("reminder not delivered")
			continue
		}
		j.sent[t.ID] = *t.DueAt
		sent++
	}
	for id := range j.sent {
		if _, ok := live[id]; !ok {
			delete(j.sent, id)
		}
	}
	if sent > 0 {
		j.log.WithField("count", sent).Debug("reminders sent")
	}
	return sent, nil
}
