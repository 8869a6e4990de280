package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

const taskColumns = `id, user_id, title, description, due_at, priority, done, created_at, updated_at`

// CreateTask stores t for the user and returns the generated id.
// Timestamps are stamped here; a zero priority defaults to low.
func (s *Store) CreateTask(userID string, t Task) (string, error) {
	if userID == "" {
		return "", ErrNotAuthenticated
	}
	if t.Priority == 0 {
		t.Priority = PriorityLow
	}
	now := millis(s.now())
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, t.Title, t.Description, nullMillis(t.DueAt), int(t.Priority), boolInt(t.Done), now, now,
	)
	if err != nil {
		return "", fmt.Errorf("insert task: %w", err)
	}
	s.hub.notify(userID, collectionTasks)
	return id, nil
}

func (s *Store) GetTask(userID, id string) (*Task, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	t, err := scanTask(s.db.QueryRow(
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND id = ?`, userID, id,
	))
	if err != nil {
		return nil, notFound(err, "task", id)
	}
	return t, nil
}

// ListTasks returns every task of the user, oldest first.
func (s *Store) ListTasks(userID string) ([]Task, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	rows, err := s.db.Query(
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY created_at, id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// UpdateTask overwrites the stored task with t and refreshes updated_at.
func (s *Store) UpdateTask(userID string, t Task) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if t.Priority == 0 {
		t.Priority = PriorityLow
	}
	res, err := s.db.Exec(
		`UPDATE tasks SET title = ?, description = ?, due_at = ?, priority = ?, done = ?, updated_at = ?
		 WHERE user_id = ? AND id = ?`,
		t.Title, t.Description, nullMillis(t.DueAt), int(t.Priority), boolInt(t.Done), millis(s.now()),
		userID, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task %s: %w", t.ID, err)
	}
	if err := affected(res, "task", t.ID); err != nil {
		return err
	}
	s.hub.notify(userID, collectionTasks)
	return nil
}

// ToggleTaskDone flips the done flag of t and stores it.
func (s *Store) ToggleTaskDone(userID string, t Task) error {
	t.Done = !t.Done
	return s.UpdateTask(userID, t)
}

func (s *Store) DeleteTask(userID, id string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	res, err := s.db.Exec(`DELETE FROM tasks WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if err := affected(res, "task", id); err != nil {
		return err
	}
	s.hub.notify(userID, collectionTasks)
	return nil
}

func scanTask(row scanner) (*Task, error) {
	t := &Task{}
	var due sql.NullInt64
	var priority, done int
	var createdAt, updatedAt int64
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &due, &priority, &done, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if due.Valid {
		ms := due.Int64
		t.DueAt = &ms
	}
	t.Priority = Priority(priority)
	t.Done = done == 1
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return t, nil
}

func nullMillis(ms *int64) sql.NullInt64 {
	if ms == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *ms, Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func affected(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return nil
}
