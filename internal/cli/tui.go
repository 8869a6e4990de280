package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/orgauns/internal/store"
	"github.com/sadopc/orgauns/internal/tui"
	"github.com/sadopc/orgauns/internal/worker"
)

func runTUI(ctx context.Context, e *env) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := e.store.Watch(ctx); err != nil {
		e.log.WithError(err).Warn("external changes will not be picked up")
	}

	var syncJob *worker.SyncJob
	app := tui.NewApp(ctx, tui.Deps{
		Store: e.store,
		Auth:  e.auth,
		Log:   e.log,
		Now:   e.now,
		Sync: func(ctx context.Context) (*store.SyncRun, error) {
			return syncJob.Run(ctx)
		},
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	notify := worker.NotifierFunc(func(title, body string) {
		p.Send(tui.NotificationMsg{Title: title, Body: body})
	})
	syncJob = worker.NewSyncJob(e.store, e.auth, notify, e.log)

	sched, err := newScheduler(e, syncJob, notify)
	if err != nil {
		return err
	}
	sched.Start(ctx)
	defer sched.Stop()

	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func newScheduler(e *env, syncJob *worker.SyncJob, n worker.Notifier) (*worker.Scheduler, error) {
	loc, err := e.cfg.Location()
	if err != nil {
		return nil, err
	}
	sched := worker.NewScheduler(loc, e.log)
	if err := sched.AddSync(e.cfg.SyncSchedule, syncJob); err != nil {
		return nil, err
	}
	reminders := worker.NewReminderJob(e.store, e.auth, n, e.cfg.ReminderLead, e.log)
	if err := sched.AddReminders(e.cfg.ReminderSchedule, reminders); err != nil {
		return nil, err
	}
	return sched, nil
}
