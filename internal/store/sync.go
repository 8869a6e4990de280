package store

import "fmt"

func (s *Store) RecordSyncRun(r SyncRun) (*SyncRun, error) {
	if r.RanAt.IsZero() {
		r.RanAt = s.now()
	}
	res, err := s.db.Exec(
		`INSERT INTO sync_runs (user_id, task_count, note_count, status, message, ran_at) VALUES (?, ?, ?, ?, ?, ?)`,
		r.UserID, r.TaskCount, r.NoteCount, r.Status, r.Message, millis(r.RanAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert sync run: %w", err)
	}
	r.ID, _ = res.LastInsertId()
	return &r, nil
}

// LastSyncRun returns the most recent run for the user, or ErrNotFound.
func (s *Store) LastSyncRun(userID string) (*SyncRun, error) {
	r := &SyncRun{}
	var ranAt int64
	err := s.db.QueryRow(
		`SELECT id, user_id, task_count, note_count, status, message, ran_at
		 FROM sync_runs WHERE user_id = ? ORDER BY ran_at DESC, id DESC LIMIT 1`, userID,
	).Scan(&r.ID, &r.UserID, &r.TaskCount, &r.NoteCount, &r.Status, &r.Message, &ranAt)
	if err != nil {
		return nil, notFound(err, "sync run for", userID)
	}
	r.RanAt = fromMillis(ranAt)
	return r, nil
}
