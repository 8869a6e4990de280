package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sadopc/orgauns/internal/logging"
	"github.com/sadopc/orgauns/internal/store"
)

// SyncJob counts the signed-in user's tasks and notes and records the run.
type SyncJob struct {
	store    *store.Store
	session  Session
	notifier Notifier
	log      *logrus.Entry
	now      func() time.Time
}

func NewSyncJob(s *store.Store, session Session, n Notifier, log *logrus.Entry) *SyncJob {
	return &SyncJob{
		store:    s,
		session:  session,
		notifier: n,
		log:      logging.Component(log, "sync"),
		now:      time.Now,
	}
}

// Run performs one sync and returns the recorded run. Nobody signed in is
// recorded as a failed run and reported as store.ErrNotAuthenticated.
func (j *SyncJob) Run(ctx context.Context) (*store.SyncRun, error) {
	run := store.SyncRun{UserID: j.session.CurrentUserID(), RanAt: j.now()}

	err := store.ErrNotAuthenticated
	if run.UserID != "" {
		err = j.count(ctx, &run)
	}

	switch {
	case run.UserID == "":
		run.Status = store.SyncFailed
		run.Message = "Skipped: user not authenticated"
		j.log.Debug("skipping sync, nobody signed in")
	case err != nil:
		run.Status = store.SyncFailed
		run.Message = "Could not sync: " + err.Error()
		j.log.WithError(err).Warn("sync failed")
		j.notifier.Notify(ctx, "Sync failed", run.Message)
	default:
		run.Status = store.SyncSucceeded
		run.Message = fmt.Sprintf("%d tasks and %d notes synced at %s",
			run.TaskCount, run.NoteCount, run.RanAt.Format("15:04"))
		j.log.WithFields(logrus.Fields{"tasks": run.TaskCount, "notes": run.NoteCount}).Info("sync complete")
		j.notifier.Notify(ctx, "Sync complete", run.Message)
	}

	saved, recErr := j.store.RecordSyncRun(run)
	if recErr != nil {
		return nil, recErr
	}
	return saved, err
}

func (j *SyncJob) count(ctx context.Context, run *store.SyncRun) error {
	tasks, err := j.store.ListTasks(run.UserID)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	notes, err := j.store.ListNotes(run.UserID)
	if err != nil {
		return err
	}
	run.TaskCount = len(tasks)
	run.NoteCount = len(notes)
	return nil
}
