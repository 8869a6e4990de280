package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestUser(t *testing.T, s *Store, email string) *User {
	t.Helper()
	u, err := s.CreateUser(email, "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// fakeClock advances one millisecond per call so updated_at ordering is stable.
func fakeClock(start time.Time) func() time.Time {
	cur := start
	return func() time.Time {
		cur = cur.Add(time.Millisecond)
		return cur
	}
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != currentVersion {
		t.Fatalf("expected user_version %d, got %d", currentVersion, version)
	}
}

func TestNewWithPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "orgauns.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Path() != path {
		t.Fatalf("Path() = %q, want %q", s.Path(), path)
	}
	s.Close()

	// Reopen; should succeed and not re-migrate
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "orgauns.db" {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)

	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Users
// ============================================================

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	u, err := s.CreateUser("  Ana@Example.com ", "hash")
	if err != nil {
		t.Fatal(err)
	}
	if u.ID == "" || u.Email != "ana@example.com" {
		t.Fatalf("unexpected user: %+v", u)
	}

	byEmail, err := s.GetUserByEmail("ANA@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if byEmail.ID != u.ID {
		t.Fatal("lookup by email returned another user")
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	newTestUser(t, s, "dup@example.com")
	if _, err := s.CreateUser("dup@example.com", "other"); err == nil {
		t.Fatal("expected error for duplicate email")
	}
}

func TestGetUserNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetUserByEmail("nobody@example.com")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ============================================================
// Tasks
// ============================================================

func TestCreateAndGetTask(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "a@example.com")
	due := time.Date(2024, 2, 10, 9, 0, 0, 0, time.Local)

	id, err := s.CreateTask(u.ID, Task{
		Title:       "Write report",
		Description: "quarterly",
		DueAt:       DueMillis(due),
		Priority:    PriorityHigh,
	})
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	task, err := s.GetTask(u.ID, id)
	if err != nil {
		t.Fatal(err)
	}
	if task.Title != "Write report" || task.Description != "quarterly" || task.Priority != PriorityHigh {
		t.Fatalf("unexpected task: %+v", task)
	}
	if task.DueAt == nil || *task.DueAt != due.UnixMilli() {
		t.Fatalf("due instant not persisted: %v", task.DueAt)
	}
	if task.Done {
		t.Fatal("new task should not be done")
	}
	if task.CreatedAt.IsZero() || !task.CreatedAt.Equal(task.UpdatedAt) {
		t.Fatalf("timestamps not stamped: %v / %v", task.CreatedAt, task.UpdatedAt)
	}
}

func TestCreateTaskDefaultsPriority(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "a@example.com")
	id, _ := s.CreateTask(u.ID, Task{Title: "x"})
	task, _ := s.GetTask(u.ID, id)
	if task.Priority != PriorityLow {
		t.Fatalf("expected low priority, got %v", task.Priority)
	}
	if task.DueAt != nil {
		t.Fatal("expected no due instant")
	}
}

func TestTaskRequiresUser(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateTask("", Task{Title: "x"}); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := s.ListTasks(""); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if err := s.DeleteTask("", "id"); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestTasksScopedPerUser(t *testing.T) {
	s := newTestStore(t)
	a := newTestUser(t, s, "a@example.com")
	b := newTestUser(t, s, "b@example.com")

	id, _ := s.CreateTask(a.ID, Task{Title: "mine"})
	s.CreateTask(b.ID, Task{Title: "theirs"})

	tasks, err := s.ListTasks(a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 || tasks[0].Title != "mine" {
		t.Fatalf("expected only a's task, got %+v", tasks)
	}
	if _, err := s.GetTask(b.ID, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("b should not see a's task, got %v", err)
	}
}

func TestListTasksEmpty(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "a@example.com")
	tasks, err := s.ListTasks(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if tasks != nil {
		t.Fatalf("expected nil slice, got %d items", len(tasks))
	}
}

func TestUpdateTask(t *testing.T) {
	s := newTestStore(t)
	s.now = fakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	u := newTestUser(t, s, "a@example.com")
	id, _ := s.CreateTask(u.ID, Task{Title: "Old", DueAt: DueMillis(time.Now())})
	task, _ := s.GetTask(u.ID, id)

	task.Title = "New"
	task.DueAt = nil
	task.Priority = PriorityMedium
	if err := s.UpdateTask(u.ID, *task); err != nil {
		t.Fatal(err)
	}

	updated, _ := s.GetTask(u.ID, id)
	if updated.Title != "New" || updated.DueAt != nil || updated.Priority != PriorityMedium {
		t.Fatalf("update failed: %+v", updated)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatal("UpdatedAt should move forward")
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "a@example.com")
	err := s.UpdateTask(u.ID, Task{ID: "missing", Title: "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestToggleTaskDone(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "a@example.com")
	id, _ := s.CreateTask(u.ID, Task{Title: "x"})
	task, _ := s.GetTask(u.ID, id)

	if err := s.ToggleTaskDone(u.ID, *task); err != nil {
		t.Fatal(err)
	}
	toggled, _ := s.GetTask(u.ID, id)
	if !toggled.Done {
		t.Fatal("task should be done")
	}

	s.ToggleTaskDone(u.ID, *toggled)
	back, _ := s.GetTask(u.ID, id)
	if back.Done {
		t.Fatal("second toggle should undo")
	}
}

func TestDeleteTask(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "a@example.com")
	id, _ := s.CreateTask(u.ID, Task{Title: "x"})

	if err := s.DeleteTask(u.ID, id); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteTask(u.ID, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete should report ErrNotFound, got %v", err)
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in   string
		want Priority
	}{
		{"low", PriorityLow},
		{"Medium", PriorityMedium},
		{" high ", PriorityHigh},
		{"3", PriorityHigh},
		{"1", PriorityLow},
	}
	for _, tt := range tests {
		got, err := ParsePriority(tt.in)
		if err != nil {
			t.Fatalf("ParsePriority(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParsePriority(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParsePriority("urgent"); err == nil {
		t.Fatal("expected error for unknown priority")
	}
}

func TestPriorityString(t *testing.T) {
	if PriorityHigh.String() != "high" {
		t.Fatalf("got %q", PriorityHigh.String())
	}
	if Priority(9).Valid() {
		t.Fatal("9 is not a valid priority")
	}
}

// ============================================================
// Notes
// ============================================================

func TestNotesCRUD(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "a@example.com")

	id, err := s.CreateNote(u.ID, Note{Title: "Ideas", Body: "one"})
	if err != nil {
		t.Fatal(err)
	}
	n, err := s.GetNote(u.ID, id)
	if err != nil {
		t.Fatal(err)
	}
	if n.Title != "Ideas" || n.Body != "one" {
		t.Fatalf("unexpected note: %+v", n)
	}

	n.Body = "two"
	if err := s.UpdateNote(u.ID, *n); err != nil {
		t.Fatal(err)
	}
	n2, _ := s.GetNote(u.ID, id)
	if n2.Body != "two" {
		t.Fatal("update not persisted")
	}

	if err := s.DeleteNote(u.ID, id); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetNote(u.ID, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListNotesMostRecentFirst(t *testing.T) {
	s := newTestStore(t)
	s.now = fakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	u := newTestUser(t, s, "a@example.com")

	first, _ := s.CreateNote(u.ID, Note{Title: "first"})
	s.CreateNote(u.ID, Note{Title: "second"})

	notes, _ := s.ListNotes(u.ID)
	if len(notes) != 2 || notes[0].Title != "second" {
		t.Fatalf("expected newest first, got %+v", notes)
	}

	// Editing the older note moves it to the top.
	n, _ := s.GetNote(u.ID, first)
	s.UpdateNote(u.ID, *n)
	notes, _ = s.ListNotes(u.ID)
	if notes[0].Title != "first" {
		t.Fatalf("expected edited note first, got %s", notes[0].Title)
	}
}

// ============================================================
// Settings and sync runs
// ============================================================

func TestDefaultSettings(t *testing.T) {
	s := newTestStore(t)
	v, err := s.GetSetting("calendar_view")
	if err != nil {
		t.Fatal(err)
	}
	if v != "month" {
		t.Fatalf("expected month, got %s", v)
	}
	if !s.GetBoolSetting("dark_mode", false) {
		t.Fatal("dark mode defaults to on")
	}
}

func TestSetAndDeleteSetting(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetSetting("session_user", "abc"); err != nil {
		t.Fatal(err)
	}
	v, _ := s.GetSetting("session_user")
	if v != "abc" {
		t.Fatalf("got %q", v)
	}
	s.DeleteSetting("session_user")
	if _, err := s.GetSetting("session_user"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if s.GetBoolSetting("missing", true) != true {
		t.Fatal("fallback not used")
	}
}

func TestUserSettingsOverrideGlobal(t *testing.T) {
	s := newTestStore(t)
	ada, _ := s.CreateUser("ada@example.com", "x")
	bob, _ := s.CreateUser("bob@example.com", "x")

	if err := s.SetUserSetting(ada.ID, "dark_mode", "false"); err != nil {
		t.Fatal(err)
	}
	if s.GetUserBoolSetting(ada.ID, "dark_mode", true) {
		t.Fatal("ada turned dark mode off")
	}
	if !s.GetUserBoolSetting(bob.ID, "dark_mode", false) {
		t.Fatal("bob should still see the global default")
	}
	if !s.GetBoolSetting("dark_mode", false) {
		t.Fatal("global row should be untouched")
	}

	v, err := s.GetUserSetting(bob.ID, "calendar_view")
	if err != nil || v != "month" {
		t.Fatalf("fallback to global = %q, %v", v, err)
	}
	if _, err := s.GetUserSetting(bob.ID, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	settings, err := s.GetUserSettings(ada.ID)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]string{}
	for _, kv := range settings {
		if _, dup := seen[kv.Key]; dup {
			t.Fatalf("key %s listed twice", kv.Key)
		}
		seen[kv.Key] = kv.Value
	}
	if seen["dark_mode"] != "false" || seen["calendar_view"] != "month" {
		t.Fatalf("merged settings = %v", seen)
	}
}

func TestMigrateV1SettingsKeepValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	// Rebuild a version 1 database by hand.
	for _, q := range []string{
		`DROP TABLE settings`,
		`CREATE TABLE settings (key TEXT PRIMARY KEY, value TEXT NOT NULL)`,
		`INSERT INTO settings (key, value) VALUES ('dark_mode', 'false'), ('session_user', 'u1')`,
		`PRAGMA user_version = 1`,
	} {
		if _, err := s.db.Exec(q); err != nil {
			t.Fatalf("%s: %v", q, err)
		}
	}
	s.Close()

	s, err = New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if s.GetBoolSetting("dark_mode", true) {
		t.Fatal("dark_mode lost in migration")
	}
	if v, _ := s.GetSetting("session_user"); v != "u1" {
		t.Fatalf("session_user = %q", v)
	}
}

func TestGetAllSettingsSorted(t *testing.T) {
	s := newTestStore(t)
	settings, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(settings); i++ {
		if settings[i-1].Key > settings[i].Key {
			t.Fatal("settings should be sorted by key")
		}
	}
}

func TestSyncRuns(t *testing.T) {
	s := newTestStore(t)
	s.now = fakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	if _, err := s.LastSyncRun("u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	s.RecordSyncRun(SyncRun{UserID: "u1", TaskCount: 1, Status: SyncSucceeded})
	s.RecordSyncRun(SyncRun{UserID: "u1", TaskCount: 2, NoteCount: 3, Status: SyncSucceeded})
	s.RecordSyncRun(SyncRun{UserID: "u2", Status: SyncFailed, Message: "boom"})

	last, err := s.LastSyncRun("u1")
	if err != nil {
		t.Fatal(err)
	}
	if last.TaskCount != 2 || last.NoteCount != 3 {
		t.Fatalf("unexpected last run: %+v", last)
	}
}

// ============================================================
// Subscriptions
// ============================================================

func receiveTasks(t *testing.T, ch <-chan []Task) []Task {
	t.Helper()
	select {
	case tasks, ok := <-ch:
		if !ok {
			t.Fatal("subscription closed")
		}
		return tasks
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return nil
}

func TestSubscribeTasksPushesSnapshots(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "a@example.com")
	s.CreateTask(u.ID, Task{Title: "existing"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.SubscribeTasks(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got := receiveTasks(t, ch); len(got) != 1 {
		t.Fatalf("initial snapshot: expected 1 task, got %d", len(got))
	}

	s.CreateTask(u.ID, Task{Title: "new"})
	if got := receiveTasks(t, ch); len(got) != 2 {
		t.Fatalf("after create: expected 2 tasks, got %d", len(got))
	}
}

func TestSubscribeTasksIgnoresOtherUsers(t *testing.T) {
	s := newTestStore(t)
	a := newTestUser(t, s, "a@example.com")
	b := newTestUser(t, s, "b@example.com")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, _ := s.SubscribeTasks(ctx, a.ID)
	receiveTasks(t, ch)

	s.CreateTask(b.ID, Task{Title: "other"})
	select {
	case got := <-ch:
		t.Fatalf("unexpected snapshot for another user: %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscriptionClosesOnCancel(t *testing.T) {
	s := newTestStore(t)
	u := newTestUser(t, s, "a@example.com")

	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := s.SubscribeNotes(ctx, u.ID)
	<-ch
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not close after cancel")
	}
}

func TestSubscribeRequiresUser(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.SubscribeTasks(context.Background(), ""); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestWatchRequiresFile(t *testing.T) {
	s := newTestStore(t)
	if err := s.Watch(context.Background()); err == nil {
		t.Fatal("expected error watching an in-memory database")
	}
}

func TestWatchFileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orgauns.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Watch(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestChangedElsewhereIgnoresOwnWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orgauns.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	other, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer other.Close()

	if _, err := s.changedElsewhere(); err != nil {
		t.Fatal(err)
	}
	u, err := s.CreateUser("ada@example.com", "x")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateTask(u.ID, Task{Title: "local", Priority: PriorityLow}); err != nil {
		t.Fatal(err)
	}
	if changed, err := s.changedElsewhere(); err != nil || changed {
		t.Fatalf("own write reported as external: %v, %v", changed, err)
	}

	if _, err := other.CreateTask(u.ID, Task{Title: "from the cli", Priority: PriorityLow}); err != nil {
		t.Fatal(err)
	}
	if changed, err := s.changedElsewhere(); err != nil || !changed {
		t.Fatalf("external write not seen: %v, %v", changed, err)
	}
	if changed, _ := s.changedElsewhere(); changed {
		t.Fatal("the same commit should be reported once")
	}
}

func TestWatchDeliversExternalWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orgauns.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	u, _ := s.CreateUser("ada@example.com", "x")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Watch(ctx); err != nil {
		t.Fatal(err)
	}
	ch, err := s.SubscribeTasks(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got := receiveTasks(t, ch); len(got) != 0 {
		t.Fatalf("initial snapshot = %d tasks", len(got))
	}

	other, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer other.Close()
	if _, err := other.CreateTask(u.ID, Task{Title: "from the cli", Priority: PriorityLow}); err != nil {
		t.Fatal(err)
	}
	if got := receiveTasks(t, ch); len(got) != 1 || got[0].Title != "from the cli" {
		t.Fatalf("snapshot after external write = %+v", got)
	}
}
