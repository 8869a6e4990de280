// Package cli wires the orgauns command line: the TUI as the default command
// plus scriptable account, task, note, calendar, export and daemon commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sadopc/orgauns/internal/auth"
	"github.com/sadopc/orgauns/internal/config"
	"github.com/sadopc/orgauns/internal/logging"
	"github.com/sadopc/orgauns/internal/store"
)

// env is everything a command needs, opened once per invocation.
type env struct {
	cfg   *config.Config
	log   *logrus.Entry
	store *store.Store
	auth  *auth.Service
	now   func() time.Time
	close func() error
}

func (e *env) Close() error {
	if e.close == nil {
		return nil
	}
	return e.close()
}

// userID returns the signed-in user or store.ErrNotAuthenticated.
func (e *env) userID() (string, error) {
	id := e.auth.CurrentUserID()
	if id == "" {
		return "", fmt.Errorf("%w: run 'orgauns login' first", store.ErrNotAuthenticated)
	}
	return id, nil
}

type rootOptions struct {
	ConfigPath string
}

// loader opens the environment. logToFile sends logs to the configured log
// file instead of stderr, for commands that own the terminal.
type loader func(o *rootOptions, logToFile bool) (*env, error)

// New returns the root command.
func New() *cobra.Command {
	return newRoot(loadEnv)
}

func newRoot(load loader) *cobra.Command {
	o := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "orgauns",
		Short: "A simple agenda: tasks, notes and a calendar in the terminal.",
		Long: `A simple agenda: tasks, notes and a calendar in the terminal.

Run without a subcommand to open the interactive UI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := load(o, true)
			if err != nil {
				return err
			}
			defer e.Close()
			return runTUI(cmd.Context(), e)
		},
	}
	cmd.PersistentFlags().StringVar(&o.ConfigPath, "config", "",
		"Config file (default ~/.config/orgauns/config.yaml).")

	open := func() (*env, error) { return load(o, false) }

	addAccount(cmd, open)
	addTasks(cmd, open)
	addNotes(cmd, open)
	addCalendar(cmd, open)
	addExport(cmd, open)
	addSync(cmd, open)
	addDaemon(cmd, func() (*env, error) { return load(o, true) })
	return cmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return New().ExecuteContext(ctx)
}

func loadEnv(o *rootOptions, logToFile bool) (*env, error) {
	path := o.ConfigPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("config path: %w", err)
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	time.Local = loc

	var closers []io.Closer
	closeAll := func() error {
		var first error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil && first == nil {
				first = err
			}
		}
		return first
	}

	var out io.Writer = os.Stderr
	if logToFile && cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		closers = append(closers, f)
		out = f
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, out)
	if err != nil {
		closeAll()
		return nil, err
	}

	s, err := store.New(cfg.DBPath)
	if err != nil {
		closeAll()
		return nil, err
	}
	closers = append(closers, s)
	log.WithField("db", cfg.DBPath).Debug("store opened")

	return &env{
		cfg:   cfg,
		log:   log,
		store: s,
		auth:  auth.New(s, log),
		now:   time.Now,
		close: closeAll,
	}, nil
}
