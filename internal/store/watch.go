package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

type collection int

const (
	collectionTasks collection = iota
	collectionNotes
)

// hub fans change notifications out to subscribers. Wake channels hold at
// most one pending signal, so bursts of writes collapse into one re-query.
type hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscriber
}

type subscriber struct {
	userID string
	kind   collection
	wake   chan struct{}
	done   chan struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[int]*subscriber)}
}

func (h *hub) add(userID string, kind collection) (int, *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	sub := &subscriber{
		userID: userID,
		kind:   kind,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	h.subs[h.nextID] = sub
	return h.nextID, sub
}

func (h *hub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

// notify wakes subscribers of the user's collection. An empty userID wakes everyone.
func (h *hub) notify(userID string, kind collection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		if userID != "" && (sub.userID != userID || sub.kind != kind) {
			continue
		}
		select {
		case sub.wake <- struct{}{}:
		default:
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.subs {
		close(sub.done)
		delete(h.subs, id)
	}
}

// SubscribeTasks streams snapshots of the user's tasks: one immediately, then
// one after every change. The channel is closed when ctx is cancelled or the
// store is closed; cancelling ctx is how a subscriber releases it.
func (s *Store) SubscribeTasks(ctx context.Context, userID string) (<-chan []Task, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return subscribe(ctx, s.hub, userID, collectionTasks, s.ListTasks)
}

// SubscribeNotes is SubscribeTasks for notes.
func (s *Store) SubscribeNotes(ctx context.Context, userID string) (<-chan []Note, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return subscribe(ctx, s.hub, userID, collectionNotes, s.ListNotes)
}

func subscribe[T any](ctx context.Context, h *hub, userID string, kind collection, load func(string) ([]T, error)) (<-chan []T, error) {
	first, err := load(userID)
	if err != nil {
		return nil, err
	}

	id, sub := h.add(userID, kind)
	out := make(chan []T, 1)
	out <- first

	go func() {
		defer close(out)
		defer h.remove(id)

		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.done:
				return
			case <-sub.wake:
			}

			items, err := load(userID)
			if err != nil {
				// The next change triggers another attempt.
				continue
			}

			// Replace an unread snapshot so consumers only see the latest.
			select {
			case <-out:
			default:
			}
			select {
			case out <- items:
			case <-ctx.Done():
				return
			case <-sub.done:
				return
			}
		}
	}()

	return out, nil
}

// Watch follows the database files on disk so writes made by other processes
// reach subscribers. It returns once the watcher is running; the watcher stops
// when ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" || s.path == ":memory:" {
		return errors.New("store: watch needs a file-backed database")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("store: create watcher: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("store: watch %s: %w", dir, err)
	}

	if _, err := s.changedElsewhere(); err != nil {
		watcher.Close()
		return fmt.Errorf("store: read data_version: %w", err)
	}

	base := filepath.Base(s.path)
	go func() {
		defer watcher.Close()

		// Our own writes touch the files too. Their subscribers were already
		// woken by the write, so only commits from other processes go out.
		throttle := newThrottle(100*time.Millisecond, func() {
			if changed, err := s.changedElsewhere(); err == nil && !changed {
				return
			}
			s.hub.notify("", collectionTasks)
		})
		defer throttle.stop()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				throttle.trigger()
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				// Covers the main file plus its -wal and -shm companions.
				if !strings.HasPrefix(filepath.Base(evt.Name), base) {
					continue
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				throttle.trigger()
			}
		}
	}()
	return nil
}

// changedElsewhere reports whether another connection committed since the
// last call. data_version is per connection and the pool holds exactly one.
func (s *Store) changedElsewhere() (bool, error) {
	var v int64
	if err := s.db.QueryRow("PRAGMA data_version").Scan(&v); err != nil {
		return false, err
	}
	s.versionMu.Lock()
	defer s.versionMu.Unlock()
	changed := s.dataVersion != 0 && v != s.dataVersion
	s.dataVersion = v
	return changed, nil
}

// throttle runs fn once per burst of triggers.
type throttle struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
	fn    func()
}

func newThrottle(delay time.Duration, fn func()) *throttle {
	return &throttle{delay: delay, fn: fn}
}

func (t *throttle) trigger() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		return
	}
	t.timer = time.AfterFunc(t.delay, func() {
		t.mu.Lock()
		t.timer = nil
		t.mu.Unlock()
		t.fn()
	})
}

func (t *throttle) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
