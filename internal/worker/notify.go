// Package worker runs the periodic background jobs: sync bookkeeping and
// task reminders.
package worker

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/sadopc/orgauns/internal/logging"
)

// Notifier delivers a user-facing notification.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// NotifierFunc adapts a plain function, e.g. one that feeds the TUI status line.
type NotifierFunc func(title, body string)

func (f NotifierFunc) Notify(_ context.Context, title, body string) error {
	f(title, body)
	return nil
}

// LogNotifier writes notifications to the log.
type LogNotifier struct {
	log *logrus.Entry
}

func NewLogNotifier(log *logrus.Entry) *LogNotifier {
	return &LogNotifier{log: logging.Component(log, "notify")}
}

func (n *LogNotifier) Notify(_ context.Context, title, body string) error {
	n.log.WithField("title", title).Info(body)
	return nil
}

// Session reports who is signed in. *auth.Service satisfies it.
type Session interface {
	CurrentUserID() string
}
