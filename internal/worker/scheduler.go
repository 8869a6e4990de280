package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/sadopc/orgauns/internal/logging"
)

// Scheduler runs jobs on standard cron specs until stopped or its context ends.
type Scheduler struct {
	cron *cron.Cron
	log  *logrus.Entry

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(loc *time.Location, log *logrus.Entry) *Scheduler {
	log = logging.Component(log, "scheduler")
	if loc == nil {
		loc = time.Local
	}
	cl := cronLogger{log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log: log,
		ctx: context.Background(),
	}
}

// Add registers fn under spec. Jobs receive the context given to Start.
func (s *Scheduler) Add(name, spec string, fn func(context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := fn(s.context()); err != nil {
			s.log.WithError(err).WithField("job", name).Warn("job failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.log.WithFields(logrus.Fields{"job": name, "spec": spec}).Debug("job scheduled")
	return nil
}

// AddSync schedules j.Run under spec.
func (s *Scheduler) AddSync(spec string, j *SyncJob) error {
	return s.Add("sync", spec, func(ctx context.Context) error {
		_, err := j.Run(ctx)
		return err
	})
}

func (s *Scheduler) AddReminders(spec string, j *ReminderJob) error {
	return s.Add("reminders", spec, func(ctx context.Context) error {
		_, err := j.Run(ctx)
		return err
	})
}

// Start runs the scheduler in the background. Cancelling ctx stops it.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	runCtx := s.ctx
	s.mu.Unlock()

	s.cron.Start()
	go func() {
		<-runCtx.Done()
		s.Stop()
	}()
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	<-s.cron.Stop().Done()
}

func (s *Scheduler) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// Entries is the number of scheduled jobs.
func (s *Scheduler) Entries() int { return len(s.cron.Entries()) }

type cronLogger struct{ log *logrus.Entry }

func (l cronLogger) Info(msg string, kv ...interface{}) {
	l.log.WithFields(fields(kv)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, kv ...interface{}) {
	l.log.WithError(err).WithFields(fields(kv)).Error(msg)
}

func fields(kv []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}
